package tui

import (
	"fmt"
	"strings"

	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/navblock"
	"projectforge-cli/internal/workflow"

	"github.com/charmbracelet/lipgloss"
)

const (
	loadingIdeas         = "Generating project ideas..."
	loadingEvidence      = "Loading evidence..."
	loadingSavedProject  = "Loading saved project..."
	loadingSavedEvidence = "Retrieving evidence..."

	emptyNoProject = "No project specified"
	emptyEvidence  = "No evidence found for this project"

	deletePrompt = "Are you sure you want to delete? This is a permanent change."
)

func (m appModel) View() string {
	header := styleChrome().Render("projectforge  " + m.route.Path())
	var body, help string
	switch m.view {
	case viewEntry:
		body, help = m.viewEntry()
	case viewIdeas:
		body, help = m.viewIdeas()
	case viewEvidence, viewSavedEvidence:
		body, help = m.viewEvidence()
	case viewSavedProject:
		body, help = m.viewSavedProject()
	case viewRecovery:
		body, help = m.viewRecovery()
	}
	body = normalizePane(body, m.width, m.bodyHeight())
	if m.modal != modalNone {
		body = overlayCenter(m.width, m.bodyHeight(), m.viewModal())
	}
	return strings.Join([]string{header, "", body, styleMuted().Render(help)}, "\n")
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalConfirmLeave:
		return renderConfirmModal(m.width, "Leave project ideas?", navblock.Prompt, navblock.LeaveLabel, navblock.StayLabel, m.confirmFocus)
	case modalConfirmDelete:
		return renderConfirmModal(m.width, "Delete saved project?", deletePrompt, "Delete", "Undo", m.confirmFocus)
	}
	return ""
}

func (m appModel) viewEntry() (string, string) {
	main := styleHeading().Render("Find project ideas for a role") + "\n\n" + m.form.view()
	if m.submitting {
		main += "\n\n" + styleMuted().Render("Searching jobs...")
	}
	side := styleHeading().Render("Recent searches") + "\n"
	if len(m.recent) == 0 {
		side += styleMuted().Render("No recent searches")
	} else {
		side += m.recentList.View()
	}
	help := "tab: next field   space: toggle   enter: generate   ctrl+c: quit"
	if m.pane == paneSaved {
		help = "↑/↓: move   enter: open search   tab: back to form   q: quit"
	}
	return splitPanes(main, side, m.width, m.bodyHeight(), m.sideWidth()), help
}

func (m appModel) viewIdeas() (string, string) {
	var main string
	if m.loading {
		main = styleMuted().Render(loadingIdeas)
	} else {
		saveLabel := "Save Results"
		disabled := m.saving || m.saved.IsSaved(m.ideaSet.ID)
		if m.saved.IsSaved(m.ideaSet.ID) {
			saveLabel = "Saved"
		}
		main = styleHeading().Render(fmt.Sprintf("Project ideas (%d)", len(m.ideaSet.Projects()))) + "  " +
			styleButton(false, disabled).Render(saveLabel) + "\n\n" + m.projectsList.View()
		if it, ok := selectedItem[projectItem](m.projectsList); ok {
			main += "\n\n" + renderMarkdown(projectMarkdown(it.project), m.width-m.sideWidth()-4)
		}
	}
	side := m.viewSavedSidebar()
	help := "↑/↓: move   enter: evidence   s: save   tab: saved   esc: new search   q: quit"
	if m.pane == paneSaved {
		help = "↑/↓: move   enter: open   d: delete   tab: back   q: quit"
	}
	return splitPanes(main, side, m.width, m.bodyHeight(), m.sideWidth()), help
}

func (m appModel) viewSavedSidebar() string {
	title := styleHeading().Render("Saved projects")
	if len(m.savedList.Items()) == 0 {
		return title + "\n" + styleMuted().Render("Nothing saved yet")
	}
	return title + "\n" + m.savedList.View()
}

func (m appModel) viewEvidence() (string, string) {
	back := "← Back to Projects"
	loadingText := loadingEvidence
	if m.route.Screen == workflow.ScreenSavedEvidence {
		back = "← Back to Saved Project"
		loadingText = loadingSavedEvidence
	}
	help := "↑/↓: scroll   esc: " + strings.TrimPrefix(back, "← ") + "   q: quit"

	lines := []string{styleChrome().Render(back), ""}
	switch {
	case m.route.Project == "":
		lines = append(lines, styleMuted().Render(emptyNoProject))
		return strings.Join(lines, "\n"), help
	case m.loading:
		lines = append(lines, styleMuted().Render(loadingText))
		return strings.Join(lines, "\n"), help
	}

	lines = append(lines, styleHeading().Render("Evidence for "+m.route.Project))
	if len(m.selected) == 0 {
		lines = append(lines, "", styleMuted().Render(emptyEvidence))
		return strings.Join(lines, "\n"), help
	}
	lines = append(lines, styleMuted().Render(fmt.Sprintf("%d matching job qualifications", len(m.selected))), "")
	cardW := m.width - 4
	if cardW > 100 {
		cardW = 100
	}
	for i := m.evidenceScroll; i < len(m.selected); i++ {
		lines = append(lines, renderEvidenceCard(m.selected[i], cardW, i == m.evidenceScroll))
	}
	return strings.Join(lines, "\n"), help
}

func renderEvidenceCard(r model.EvidenceRecord, width int, selected bool) string {
	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(r.JobTitle) + styleMuted().Render(" · "+r.CompanyName),
		"",
		styleChrome().Render("Qualification") + "\n" + r.Qualification,
		"",
		styleChrome().Render("Project achievement") + "\n" + r.ProjectAchievement,
	}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width).
		Render(body)
}

func (m appModel) viewSavedProject() (string, string) {
	help := "↑/↓: move   enter: evidence   esc: all projects   q: quit"
	lines := []string{styleChrome().Render("← All Projects"), ""}
	if m.loading {
		lines = append(lines, styleMuted().Render(loadingSavedProject))
		return strings.Join(lines, "\n"), help
	}
	p := m.savedProject
	lines = append(lines, styleHeading().Render(p.Title), "")
	for _, row := range savedParameterRows(p.Parameters) {
		lines = append(lines, styleChrome().Width(16).Render(row[0])+row[1])
	}
	lines = append(lines, "", styleHeading().Render(fmt.Sprintf("Projects (%d)", len(p.ProjectList.Projects))), m.projectsList.View())
	if it, ok := selectedItem[projectItem](m.projectsList); ok {
		lines = append(lines, "", renderMarkdown(projectMarkdown(it.project), m.width-4))
	}
	return strings.Join(lines, "\n"), help
}

// savedParameterRows renders the stored search snapshot with the same fallbacks as the
// saved-project page: "All" locations, "All Time", "All Types".
func savedParameterRows(p model.SavedParameters) [][2]string {
	locations := strings.Join(p.Locations, ", ")
	if locations == "" {
		locations = "All"
	}
	posted := "All Time"
	if p.DatePosted != "" {
		posted = model.DatePostedLabel(p.DatePosted)
	}
	var types []string
	for _, t := range p.EmploymentTypes {
		types = append(types, model.OptionLabel(model.EmploymentTypeOptions, t))
	}
	employment := strings.Join(types, ", ")
	if employment == "" {
		employment = "All Types"
	}
	remote := "False"
	if p.OffSite {
		remote = "True"
	}
	return [][2]string{
		{"Role", p.Role},
		{"Country", strings.ToUpper(p.Country)},
		{"Locations", locations},
		{"Posted", posted},
		{"Employment", employment},
		{"Remote/Hybrid", remote},
	}
}

func (m appModel) viewRecovery() (string, string) {
	r := fatal.NewRecovery(m.failure, m.production)
	var buttons []string
	for i, a := range r.Actions {
		buttons = append(buttons, styleButton(i == m.recoveryFocus, false).Render(a.Label()))
	}
	lines := []string{
		styleError().Render(r.Title),
		"",
		r.Message,
		"",
		strings.Join(buttons, " "),
	}
	if r.Diagnostics != "" {
		lines = append(lines, "", styleMuted().Render(r.Diagnostics))
	}
	return strings.Join(lines, "\n"), "tab: focus   enter: select   b: go back   H: go home   q: quit"
}

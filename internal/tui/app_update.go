package tui

import (
	"projectforge-cli/internal/api"
	"projectforge-cli/internal/evidence"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/workflow"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd { return m.initCmd }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.unmount()
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		switch m.view {
		case viewEntry:
			return m.updateEntry(msg)
		case viewIdeas:
			return m.updateIdeas(msg)
		case viewEvidence, viewSavedEvidence:
			return m.updateEvidence(msg)
		case viewSavedProject:
			return m.updateSavedProject(msg)
		case viewRecovery:
			return m.updateRecovery(msg)
		}
		return m, nil
	}

	return m.updateLoaded(msg)
}

// updateLoaded applies async results. Results from an earlier mount are dropped.
func (m appModel) updateLoaded(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recentLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.recent = msg.recent
		m.recentList.SetItems(recentItems(msg.recent))
		return m, nil

	case searchSubmittedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.submitting = false
		id, ok := msg.result.Value()
		if !ok {
			return m.showFailure(msg.result.Failure()), nil
		}
		if err := m.machine.SearchSubmitted(id.String()); err != nil {
			return m.fail(api.OpSubmitSearch, err), nil
		}
		return m.navigate(workflow.IdeasRoute(id.String()))

	case ideasLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		set, ok := msg.result.Value()
		if !ok {
			return m.showFailure(msg.result.Failure()), nil
		}
		if err := m.machine.IdeasLoaded(set.ID.String()); err != nil {
			return m.fail(api.OpGenerateIdeas, err), nil
		}
		m.loading = false
		m.ideaSet = set
		if len(m.projectsList.Items()) != len(set.Projects()) {
			m.projectsList.SetItems(projectItems(set.Projects()))
		}
		return m, nil

	case savedListMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.savedList.SetItems(savedItems(msg.entries))
		return m, nil

	case savedDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			return m.fail(api.OpSave, msg.err), nil
		}
		m.savedList.SetItems(savedItems(m.saved.Entries()))
		return m, nil

	case deleteDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			return m.fail(api.OpDelete, msg.err), nil
		}
		m.savedList.SetItems(savedItems(m.saved.Entries()))
		return m, nil

	case evidenceLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		records, ok := msg.result.Value()
		if !ok {
			return m.showFailure(msg.result.Failure()), nil
		}
		m.loading = false
		m.groups = evidence.Group(records)
		m.selected = evidence.Select(m.groups, m.route.Project)
		if m.route.Screen == workflow.ScreenEvidence {
			m.machine.EvidenceLoaded()
		}
		return m, nil

	case savedProjectLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		p, ok := msg.result.Value()
		if !ok {
			return m.showFailure(msg.result.Failure()), nil
		}
		m.loading = false
		m.savedProject = p
		m.projectsList.SetItems(projectItems(p.ProjectList.Projects))
		return m, nil
	}
	return m, nil
}

// isListNavKey limits what reaches bubbles/list so its own bindings (filter, quit, paging
// on letters) never fire.
func isListNavKey(k string) bool {
	switch k {
	case "up", "down", "k", "j", "ctrl+p", "ctrl+n", "home", "end", "pgup", "pgdown":
		return true
	}
	return false
}

func updateList(l list.Model, msg tea.KeyMsg) (list.Model, tea.Cmd) {
	if !isListNavKey(msg.String()) {
		return l, nil
	}
	return l.Update(msg)
}

func (m appModel) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.pane == paneSaved {
		switch key {
		case "tab", "shift+tab", "esc":
			m.setPane(paneMain)
			m.form.setFocus(fieldRole)
			return m, nil
		case "q":
			m.unmount()
			return m, tea.Quit
		case "enter":
			it, ok := selectedItem[recentItem](m.recentList)
			if !ok {
				return m, nil
			}
			if err := m.machine.SearchSubmitted(it.search.JobSearchID.String()); err != nil {
				return m.fail(api.OpRecentSearches, err), nil
			}
			return m.navigate(workflow.IdeasRoute(it.search.JobSearchID.String()))
		}
		var cmd tea.Cmd
		m.recentList, cmd = updateList(m.recentList, msg)
		return m, cmd
	}

	if key == "tab" && m.form.focus == fieldSubmit && len(m.recent) > 0 {
		m.form.role.Blur()
		m.setPane(paneSaved)
		return m, nil
	}
	if key == "q" && m.form.focus != fieldRole {
		m.unmount()
		return m, tea.Quit
	}

	cmd, submit := m.form.update(msg)
	if !submit {
		return m, cmd
	}
	if m.submitting {
		return m, nil
	}
	params, err := m.form.submitParams()
	if err != nil {
		// Validation only; nothing is sent.
		return m, nil
	}
	m.submitting = true
	return m, m.submitCmd(params)
}

func (m appModel) backToIdeas() (appModel, tea.Cmd) {
	if search, ok := m.machine.ActiveSearch(); ok {
		return m.navigate(workflow.IdeasRoute(search))
	}
	return m.navigate(workflow.EntryRoute())
}

func (m appModel) updateIdeas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		m.unmount()
		return m, tea.Quit
	case "ctrl+r":
		return m, m.loadPrimaryCmd()
	}

	if m.pane == paneSaved {
		switch key {
		case "tab", "shift+tab", "esc":
			m.setPane(paneMain)
			return m, nil
		case "enter":
			it, ok := selectedItem[savedItem](m.savedList)
			if !ok {
				return m, nil
			}
			return m.navigate(workflow.SavedProjectRoute(it.entry.ID.String()))
		case "d", "x", "delete", "backspace":
			it, ok := selectedItem[savedItem](m.savedList)
			if !ok {
				return m, nil
			}
			m.saved.RequestDelete(it.entry.ID)
			m.modal = modalConfirmDelete
			m.confirmFocus = confirmFocusCancel
			return m, nil
		}
		var cmd tea.Cmd
		m.savedList, cmd = updateList(m.savedList, msg)
		return m, cmd
	}

	switch key {
	case "esc", "b", "backspace":
		return m.navigate(workflow.EntryRoute())
	case "tab", "shift+tab":
		if len(m.savedList.Items()) > 0 {
			m.setPane(paneSaved)
		}
		return m, nil
	}
	if m.loading {
		return m, nil
	}
	switch key {
	case "s":
		if m.saving || m.saved.IsSaved(m.ideaSet.ID) {
			return m, nil
		}
		m.saving = true
		return m, m.saveCmd()
	case "enter":
		it, ok := selectedItem[projectItem](m.projectsList)
		if !ok {
			return m, nil
		}
		return m.navigate(workflow.EvidenceRoute(m.ideaSet.ID.String(), it.project.Title))
	}
	var cmd tea.Cmd
	m.projectsList, cmd = updateList(m.projectsList, msg)
	return m, cmd
}

func (m appModel) updateEvidence(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.unmount()
		return m, tea.Quit
	case "ctrl+r":
		return m, m.loadPrimaryCmd()
	case "esc", "b", "backspace":
		if m.route.Screen == workflow.ScreenSavedEvidence {
			return m.navigate(workflow.SavedProjectRoute(m.route.ID))
		}
		return m.backToIdeas()
	case "up", "k":
		if m.evidenceScroll > 0 {
			m.evidenceScroll--
		}
	case "down", "j":
		if m.evidenceScroll < len(m.selected)-1 {
			m.evidenceScroll++
		}
	}
	return m, nil
}

func (m appModel) updateSavedProject(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.unmount()
		return m, tea.Quit
	case "ctrl+r":
		return m, m.loadPrimaryCmd()
	case "esc", "b", "backspace":
		return m.backToIdeas()
	case "enter":
		if m.loading {
			return m, nil
		}
		it, ok := selectedItem[projectItem](m.projectsList)
		if !ok {
			return m, nil
		}
		return m.navigate(workflow.SavedEvidenceRoute(m.route.ID, it.project.Title))
	}
	var cmd tea.Cmd
	m.projectsList, cmd = updateList(m.projectsList, msg)
	return m, cmd
}

func (m appModel) updateRecovery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	actions := fatal.NewRecovery(m.failure, m.production).Actions
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "right", "l", "left", "h", "shift+tab":
		m.recoveryFocus = (m.recoveryFocus + 1) % len(actions)
		return m, nil
	case "b":
		return m.goBack()
	case "H":
		return m.mountRoute(workflow.EntryRoute(), true)
	case "enter":
		if actions[m.recoveryFocus] == fatal.ActionGoHome {
			return m.mountRoute(workflow.EntryRoute(), true)
		}
		return m.goBack()
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "esc", "ctrl+g":
		return m.cancelModal(), nil
	case "enter":
		if m.confirmFocus != confirmFocusConfirm {
			return m.cancelModal(), nil
		}
		switch m.modal {
		case modalConfirmLeave:
			m.modal = modalNone
			to, ok := m.blocker.Proceed()
			if !ok {
				return m, nil
			}
			return m.mountRoute(to, true)
		case modalConfirmDelete:
			m.modal = modalNone
			return m, m.confirmDeleteCmd()
		}
	}
	return m, nil
}

func (m appModel) cancelModal() appModel {
	switch m.modal {
	case modalConfirmLeave:
		m.blocker.Stay()
	case modalConfirmDelete:
		m.saved.CancelDelete()
	}
	m.modal = modalNone
	return m
}

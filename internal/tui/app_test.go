package tui

import (
	"strings"
	"testing"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/api/apitest"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/workflow"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, b *apitest.Backend, start workflow.Route) appModel {
	t.Helper()
	locations, err := model.LoadLocationOptions("")
	require.NoError(t, err)
	m := newAppModel(Options{
		Backend:   api.New(b.URL()),
		Log:       zerolog.Nop(),
		Locations: locations,
		Start:     start,
	})
	return drain(t, m, m.Init())
}

// drain runs cmd and feeds every resulting message back into the model, the way the bubbletea
// runtime would, until no commands remain.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatalf("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(appModel)
			queue = append(queue, nc)
		}
	}
	return m
}

// press sends one key. Commands are only run for keys that start backend work.
func press(t *testing.T, m appModel, k tea.KeyMsg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(appModel), cmd
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func typeRole(t *testing.T, m appModel, role string) appModel {
	t.Helper()
	for _, r := range role {
		m, _ = press(t, m, keyRunes(string(r)))
	}
	return m
}

func newFlowBackend(t *testing.T) *apitest.Backend {
	b := apitest.NewBackend(t)
	b.SearchID = "S1"
	b.Ideas["S1"] = apitest.IdeaSet("I1", "API Gateway", "Chat App")
	b.Evidence["I1"] = []model.EvidenceRecord{
		{ProjectTitle: "API Gateway", JobTitle: "Backend Engineer", CompanyName: "Acme", Qualification: "REST APIs", ProjectAchievement: "Built a gateway"},
		{ProjectTitle: "Chat App", JobTitle: "Frontend Engineer", CompanyName: "Beta", Qualification: "WebSockets", ProjectAchievement: "Realtime chat"},
		{ProjectTitle: "API Gateway", JobTitle: "Platform Engineer", CompanyName: "Gamma", Qualification: "Rate limiting", ProjectAchievement: "Token buckets"},
	}
	return b
}

// submitSearch fills the role and submits from the entry stage, running the resulting loads.
func submitSearch(t *testing.T, m appModel, role string) appModel {
	t.Helper()
	m = typeRole(t, m, role)
	m, cmd := press(t, m, keyEnter)
	require.NotNil(t, cmd)
	return drain(t, m, cmd)
}

func TestEntry_SubmitNavigatesToIdeasAndLoadsOnce(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	require.Equal(t, viewEntry, m.view)

	m = submitSearch(t, m, "Backend Engineer")

	require.Equal(t, viewIdeas, m.view)
	assert.Equal(t, workflow.IdeasRoute("S1"), m.route)
	assert.Equal(t, model.ID("I1"), m.ideaSet.ID)
	idea, ok := m.machine.ActiveIdea()
	require.True(t, ok)
	assert.Equal(t, "I1", idea)
	assert.Equal(t, "Backend Engineer", b.LastBody("/api/scrape_locations")["role"])
	assert.Equal(t, 1, b.Calls("/api/project-ideas"))

	// Re-rendering the mounted view reuses the completed fetch.
	m, cmd := press(t, m, keyCtrlR)
	assert.Nil(t, cmd, "a completed load is not reissued")
	m = drain(t, m, cmd)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(appModel)
	assert.Equal(t, 1, b.Calls("/api/project-ideas"))
	assert.Equal(t, 1, m.ideasCache.Starts())
	assert.Contains(t, m.View(), "API Gateway")
}

func TestEntry_BlankRoleIsValidationOnly(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())

	m, cmd := press(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, viewEntry, m.view)
	assert.NotEmpty(t, m.form.note)
	assert.Zero(t, b.Calls("/api/scrape_locations"))
}

func TestEntry_LocationLimit(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())

	m, _ = press(t, m, keyTab)
	require.Equal(t, fieldLocations, m.form.focus)
	for i := 0; i < model.MaxLocations+1; i++ {
		m, _ = press(t, m, keySpace)
		m, _ = press(t, m, keyDown)
	}
	assert.Len(t, m.form.params.Locations, model.MaxLocations)
	assert.Contains(t, m.form.note, "up to 3")
}

func TestEntry_RecentSearchSetsMarkerAndNavigates(t *testing.T) {
	b := newFlowBackend(t)
	b.Recent = []model.RecentSearch{{JobSearchID: "S1", Parameters: model.RecentParameters{Role: "Backend Engineer"}}}
	m := newTestModel(t, b, workflow.EntryRoute())
	require.Len(t, m.recent, 1)

	m.form.setFocus(fieldSubmit)
	m, _ = press(t, m, keyTab)
	require.Equal(t, paneSaved, m.pane)

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	assert.Equal(t, workflow.IdeasRoute("S1"), m.route)
	assert.Equal(t, viewIdeas, m.view)
	assert.Zero(t, b.Calls("/api/scrape_locations"))
}

func TestEntry_RecentSearchFailureDegrades(t *testing.T) {
	b := newFlowBackend(t)
	b.Fail["/api/recent-searches"] = 500
	m := newTestModel(t, b, workflow.EntryRoute())
	assert.Equal(t, viewEntry, m.view)
	assert.Empty(t, m.recent)
	assert.Nil(t, m.failure)
}

func TestIdeas_EvidenceShowsOnlySelectedProject(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)

	require.Equal(t, viewEvidence, m.view)
	assert.Equal(t, workflow.EvidenceRoute("I1", "API Gateway"), m.route)
	require.Len(t, m.selected, 2)
	for _, r := range m.selected {
		assert.Equal(t, "API Gateway", r.ProjectTitle)
	}
	assert.Equal(t, 2, m.groups.Len())
	assert.Contains(t, m.View(), "Evidence for API Gateway")

	// Back goes to the ideas stage of the active search.
	m, cmd = press(t, m, keyEsc)
	m = drain(t, m, cmd)
	assert.Equal(t, workflow.IdeasRoute("S1"), m.route)
}

func TestGuard_FreshSessionRedirectsToEntry(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.IdeasRoute("S1"))
	assert.Equal(t, workflow.EntryRoute(), m.route)
	assert.Equal(t, viewEntry, m.view)
	assert.Zero(t, b.Calls("/api/project-ideas"))
}

func TestGuard_StaleIdeaRedirectsToIdeas(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	m, cmd := m.mountRoute(workflow.EvidenceRoute("I9", "API Gateway"), true)
	m = drain(t, m, cmd)
	assert.Equal(t, workflow.IdeasRoute("S1"), m.route)
	assert.Zero(t, b.Calls("/api/project-evidence"))
}

func TestEvidence_MissingProjectShowsEmptyState(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	m, cmd := m.mountRoute(workflow.EvidenceRoute("I1", ""), true)
	m = drain(t, m, cmd)
	assert.Equal(t, viewEvidence, m.view)
	assert.Contains(t, m.View(), emptyNoProject)
	assert.Zero(t, b.Calls("/api/project-evidence"))
}

func TestIdeas_LeaveIsBlockedUntilConfirmed(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	m, _ = press(t, m, keyEsc)
	require.Equal(t, modalConfirmLeave, m.modal)
	assert.Contains(t, m.View(), "Are you sure you want to leave?")

	// Default focus is Stay.
	m, _ = press(t, m, keyEnter)
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, workflow.IdeasRoute("S1"), m.route)
	_, pending := m.blocker.Pending()
	assert.False(t, pending)

	m, _ = press(t, m, keyEsc)
	m, _ = press(t, m, keyTab)
	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	assert.Equal(t, workflow.EntryRoute(), m.route)
	_, ok := m.machine.ActiveSearch()
	assert.False(t, ok, "entering the entry stage clears markers")
}

func TestIdeas_SaveOnceThenDisabled(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	m, cmd := press(t, m, keyRunes("s"))
	require.NotNil(t, cmd)
	m = drain(t, m, cmd)
	assert.True(t, m.saved.IsSaved("I1"))
	assert.Equal(t, "I1", b.LastBody("/api/save")["save_project"])
	assert.Len(t, m.savedList.Items(), 1)

	_, cmd = press(t, m, keyRunes("s"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, b.Calls("/api/save"))
	assert.Contains(t, m.View(), "Saved")
}

func TestIdeas_DeleteSavedWithConfirmation(t *testing.T) {
	b := newFlowBackend(t)
	b.Saved = []model.SavedEntry{{ID: "7", Title: "Data Analyst"}, {ID: "8", Title: "Backend Engineer"}}
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")
	require.Len(t, m.savedList.Items(), 2)

	m, _ = press(t, m, keyTab)
	require.Equal(t, paneSaved, m.pane)

	// Undo keeps the entry.
	m, _ = press(t, m, keyRunes("d"))
	require.Equal(t, modalConfirmDelete, m.modal)
	assert.Contains(t, m.View(), "Are you sure you want to delete?")
	m, _ = press(t, m, keyEsc)
	_, pending := m.saved.Pending()
	assert.False(t, pending)
	assert.Zero(t, b.Calls("/api/delete-saved-project"))

	m, _ = press(t, m, keyRunes("d"))
	m, _ = press(t, m, keyTab)
	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	assert.Equal(t, 1, b.Calls("/api/delete-saved-project"))
	require.Len(t, m.savedList.Items(), 1)
	assert.Equal(t, model.ID("8"), m.savedList.Items()[0].(savedItem).entry.ID)
}

func TestFailure_ShowsRecoveryAndGoesBack(t *testing.T) {
	b := newFlowBackend(t)
	b.Fail["/api/project-ideas"] = 500
	b.FailMessage = "Model quota exceeded"
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")

	require.Equal(t, viewRecovery, m.view)
	require.NotNil(t, m.failure)
	assert.Equal(t, api.OpGenerateIdeas, m.failure.Op)
	out := m.View()
	assert.Contains(t, out, fatal.Title)
	assert.Contains(t, out, "Model quota exceeded")
	assert.Contains(t, out, "op: generate-ideas")

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	assert.Equal(t, viewEntry, m.view)
	assert.Nil(t, m.failure)
}

func TestFailure_SameSearchLoadsAgainAfterRecovery(t *testing.T) {
	b := newFlowBackend(t)
	b.Fail["/api/project-ideas"] = 500
	m := newTestModel(t, b, workflow.EntryRoute())
	m = submitSearch(t, m, "Backend Engineer")
	require.Equal(t, viewRecovery, m.view)
	require.Equal(t, 1, b.Calls("/api/project-ideas"))

	b.Lock()
	delete(b.Fail, "/api/project-ideas")
	b.Unlock()

	m, cmd := press(t, m, keyRunes("b"))
	m = drain(t, m, cmd)
	require.Equal(t, viewEntry, m.view)
	m = submitSearch(t, m, "Backend Engineer")

	assert.Equal(t, viewIdeas, m.view)
	assert.Equal(t, 2, b.Calls("/api/project-ideas"))
	assert.Equal(t, model.ID("I1"), m.ideaSet.ID)
}

func TestEntry_EmptyLocationPickerIgnoresToggle(t *testing.T) {
	b := newFlowBackend(t)
	m := newAppModel(Options{
		Backend: api.New(b.URL()),
		Log:     zerolog.Nop(),
		Start:   workflow.EntryRoute(),
	})
	m = drain(t, m, m.Init())

	m, _ = press(t, m, keyTab)
	require.Equal(t, fieldLocations, m.form.focus)
	assert.NotPanics(t, func() {
		m, _ = press(t, m, keySpace)
		m, _ = press(t, m, keyRunes("x"))
	})
	assert.Empty(t, m.form.params.Locations)
	assert.Contains(t, m.View(), "Locations")
}

func TestFailure_ProductionHidesDiagnostics(t *testing.T) {
	b := newFlowBackend(t)
	b.Fail["/api/project-ideas"] = 500
	m := newTestModel(t, b, workflow.EntryRoute())
	m.production = true
	m = submitSearch(t, m, "Backend Engineer")

	out := m.View()
	assert.Contains(t, out, api.OpGenerateIdeas.Fallback())
	assert.NotContains(t, out, "op:")
}

func TestStaleResultIsDiscarded(t *testing.T) {
	b := newFlowBackend(t)
	m := newTestModel(t, b, workflow.EntryRoute())

	stale := ideasLoadedMsg{gen: m.gen - 1, result: fatal.OK(apitest.IdeaSet("I9", "Old"))}
	next, cmd := m.Update(stale)
	m = next.(appModel)
	assert.Nil(t, cmd)
	assert.Equal(t, viewEntry, m.view)
	assert.Empty(t, m.ideaSet.ID)
	_, ok := m.machine.ActiveIdea()
	assert.False(t, ok)
}

func TestSavedProject_IsDurableAndShowsParameters(t *testing.T) {
	b := newFlowBackend(t)
	p := model.SavedProject{
		ID:    "12",
		Title: "Backend Engineer",
		Parameters: model.SavedParameters{
			Role:            "Backend Engineer",
			Country:         "uk",
			EmploymentTypes: model.StringList{"full_time"},
		},
	}
	p.ProjectList.Projects = apitest.IdeaSet("", "API Gateway").Projects()
	b.SavedProjects["12"] = p
	b.SavedEvidence["12"] = b.Evidence["I1"]

	m := newTestModel(t, b, workflow.SavedProjectRoute("12"))
	require.Equal(t, viewSavedProject, m.view)
	out := m.View()
	assert.Contains(t, out, "UK")
	assert.Contains(t, out, "All Time")
	assert.Contains(t, out, "Full Time")
	assert.Contains(t, out, "False")

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	require.Equal(t, viewSavedEvidence, m.view)
	assert.Equal(t, workflow.SavedEvidenceRoute("12", "API Gateway"), m.route)
	assert.Len(t, m.selected, 2)

	m, cmd = press(t, m, keyEsc)
	m = drain(t, m, cmd)
	assert.Equal(t, workflow.SavedProjectRoute("12"), m.route)
	assert.Equal(t, 2, b.Calls("/api/fetch-saved-project"), "each mount fetches once")
}

func TestSavedParameterRowsFallbacks(t *testing.T) {
	rows := savedParameterRows(model.SavedParameters{Role: "Dev", Locations: model.StringList{"London", "Leeds"}, DatePosted: "604800", OffSite: true})
	got := map[string]string{}
	for _, r := range rows {
		got[r[0]] = r[1]
	}
	assert.Equal(t, "London, Leeds", got["Locations"])
	assert.Equal(t, "Last week", got["Posted"])
	assert.Equal(t, "All Types", got["Employment"])
	assert.Equal(t, "True", got["Remote/Hybrid"])
	assert.True(t, strings.HasPrefix(got["Role"], "Dev"))
}

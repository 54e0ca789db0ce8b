package tui

import (
	"context"
	"errors"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/evidence"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/fetchguard"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/navblock"
	"projectforge-cli/internal/saved"
	"projectforge-cli/internal/session"
	"projectforge-cli/internal/workflow"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Backend is everything the TUI asks of the projectforge API.
type Backend interface {
	saved.Backend
	SubmitSearch(ctx context.Context, p model.SearchParameters) (model.ID, error)
	RecentSearches(ctx context.Context) ([]model.RecentSearch, error)
	GenerateIdeas(ctx context.Context, searchID model.ID) (model.IdeaSet, error)
	ProjectEvidence(ctx context.Context, ideaSetID model.ID) ([]model.EvidenceRecord, error)
	SavedProject(ctx context.Context, id model.ID) (model.SavedProject, error)
	SavedEvidence(ctx context.Context, id model.ID) ([]model.EvidenceRecord, error)
}

type Options struct {
	Backend    Backend
	Log        zerolog.Logger
	Production bool
	Locations  []model.Option
	// Start is the route opened first; it goes through the workflow guard like any other.
	Start      workflow.Route
	Theme      string
	SavedCache saved.Cache
}

const maxHistory = 50

type appModel struct {
	api        Backend
	log        zerolog.Logger
	production bool
	locations  []model.Option

	machine *workflow.Machine
	blocker *navblock.Blocker
	saved   *saved.Registry

	width  int
	height int

	view    view
	route   workflow.Route
	mounted bool
	history []workflow.Route

	// One generation per mounted view. ctx is cancelled and the caches closed on unmount.
	gen               int
	ctx               context.Context
	cancel            context.CancelFunc
	fetched           *fetchguard.Guard
	ideasCache        *fetchguard.Cache[model.IdeaSet]
	evidenceCache     *fetchguard.Cache[[]model.EvidenceRecord]
	savedProjectCache *fetchguard.Cache[model.SavedProject]

	modal        modalKind
	confirmFocus confirmModalFocus

	pane        pane
	mainFocused *bool
	sideFocused *bool

	form       entryForm
	submitting bool
	recent     []model.RecentSearch
	recentList list.Model

	loading      bool
	saving       bool
	ideaSet      model.IdeaSet
	projectsList list.Model
	savedList    list.Model

	groups         evidence.Groups
	selected       []model.EvidenceRecord
	evidenceScroll int

	savedProject model.SavedProject

	failure       *fatal.Failure
	recoveryFocus int

	initCmd tea.Cmd
}

func newAppModel(opts Options) appModel {
	log := opts.Log
	markers := session.NewMemory()
	mainFocused, sideFocused := true, false
	m := appModel{
		api:         opts.Backend,
		log:         log,
		production:  opts.Production,
		locations:   opts.Locations,
		machine:     workflow.NewMachine(markers, log),
		blocker:     navblock.New(),
		width:       100,
		height:      30,
		mainFocused: &mainFocused,
		sideFocused: &sideFocused,
	}
	regOpts := []saved.Option{saved.WithLogger(log)}
	if opts.SavedCache != nil {
		regOpts = append(regOpts, saved.WithCache(opts.SavedCache))
	}
	m.saved = saved.New(opts.Backend, regOpts...)

	m.recentList = newList("Recent searches", nil, m.sideFocused)
	m.projectsList = newList("Projects", nil, m.mainFocused)
	m.savedList = newList("Saved projects", nil, m.sideFocused)
	m.resizeLists()

	m, m.initCmd = m.mountRoute(opts.Start, true)
	return m
}

func (m *appModel) setPane(p pane) {
	m.pane = p
	*m.mainFocused = p == paneMain
	*m.sideFocused = p == paneSaved
}

func (m *appModel) resizeLists() {
	sideW := m.sideWidth()
	bodyH := m.bodyHeight()
	m.recentList.SetSize(sideW, bodyH)
	m.savedList.SetSize(sideW, bodyH-2)
	m.projectsList.SetSize(m.width-sideW-2, 8)
}

func (m appModel) sideWidth() int {
	w := m.width / 3
	if w > 40 {
		w = 40
	}
	if w < 16 {
		w = 16
	}
	return w
}

func (m appModel) bodyHeight() int {
	h := m.height - 4
	if h < 4 {
		h = 4
	}
	return h
}

// navigate is the user-facing route change; it goes through the navigation blocker.
func (m appModel) navigate(to workflow.Route) (appModel, tea.Cmd) {
	if m.blocker.Attempt(m.route, to) == navblock.Blocked {
		m.modal = modalConfirmLeave
		m.confirmFocus = confirmFocusCancel
		return m, nil
	}
	return m.mountRoute(to, true)
}

// mountRoute admits to through the workflow guard (following redirects), unmounts the current
// view and mounts the admitted one. push records the previous route for "Go Back".
func (m appModel) mountRoute(to workflow.Route, push bool) (appModel, tea.Cmd) {
	for i := 0; i < 3; i++ {
		d := m.machine.Admit(to)
		if d.Admitted {
			break
		}
		to = d.Redirect
	}

	m.unmount()
	if push && m.mounted && m.route != to {
		m.history = append(m.history, m.route)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.mounted = true
	m.route = to
	m.gen++
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.fetched = fetchguard.NewGuard()
	m.ideasCache = fetchguard.NewCache[model.IdeaSet]()
	m.evidenceCache = fetchguard.NewCache[[]model.EvidenceRecord]()
	m.savedProjectCache = fetchguard.NewCache[model.SavedProject]()

	m.modal = modalNone
	m.failure = nil
	m.recoveryFocus = 0
	m.loading = false
	m.saving = false
	m.submitting = false
	m.evidenceScroll = 0
	m.setPane(paneMain)
	m.log.Debug().Str("route", to.Path()).Int("gen", m.gen).Msg("mount")

	switch to.Screen {
	case workflow.ScreenEntry:
		m.view = viewEntry
		if err := m.machine.Enter(); err != nil {
			return m.fail(api.OpSubmitSearch, err), nil
		}
		m.form = newEntryForm(m.locations)
		m.recent = nil
		m.recentList.SetItems(nil)
		return m, m.loadRecentCmd()

	case workflow.ScreenIdeas:
		m.view = viewIdeas
		m.loading = true
		m.ideaSet = model.IdeaSet{}
		m.projectsList.SetItems(nil)
		m.savedList.SetItems(savedItems(m.saved.Entries()))
		return m, tea.Batch(m.loadPrimaryCmd(), m.loadSavedListCmd())

	case workflow.ScreenEvidence:
		m.view = viewEvidence
		m.groups = evidence.Groups{}
		m.selected = nil
		if to.Project == "" {
			return m, nil
		}
		m.loading = true
		return m, m.loadPrimaryCmd()

	case workflow.ScreenSavedProject:
		m.view = viewSavedProject
		m.loading = true
		m.savedProject = model.SavedProject{}
		m.projectsList.SetItems(nil)
		return m, m.loadPrimaryCmd()

	case workflow.ScreenSavedEvidence:
		m.view = viewSavedEvidence
		m.groups = evidence.Groups{}
		m.selected = nil
		m.loading = true
		return m, m.loadPrimaryCmd()
	}
	return m, nil
}

// loadPrimaryCmd issues the current view's primary load at most once per mount and id. A
// failed load swaps in the recovery view, so the next mount starts with a fresh guard.
func (m appModel) loadPrimaryCmd() tea.Cmd {
	if m.fetched == nil || !m.fetched.ShouldFetch(m.route.ID) {
		return nil
	}
	switch m.route.Screen {
	case workflow.ScreenIdeas:
		return m.loadIdeasCmd()
	case workflow.ScreenEvidence:
		if m.route.Project == "" {
			return nil
		}
		return m.loadEvidenceCmd()
	case workflow.ScreenSavedEvidence:
		return m.loadEvidenceCmd()
	case workflow.ScreenSavedProject:
		return m.loadSavedProjectCmd()
	}
	return nil
}

func (m *appModel) unmount() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.ideasCache != nil {
		m.ideasCache.Close()
		m.evidenceCache.Close()
		m.savedProjectCache.Close()
	}
}

// fail swaps the current view for the recovery view. In-flight loads are abandoned.
func (m appModel) fail(op api.Op, err error) appModel {
	var f *fatal.Failure
	if !errors.As(err, &f) {
		f = fatal.New(op, err)
	}
	return m.showFailure(f)
}

func (m appModel) showFailure(f *fatal.Failure) appModel {
	m.log.Error().Str("op", string(f.Op)).Str("route", m.route.Path()).Str("view", viewToString(m.view)).Err(f.Err).Msg(f.Message)
	m.unmount()
	m.gen++
	m.failure = f
	m.view = viewRecovery
	m.modal = modalNone
	m.loading = false
	m.recoveryFocus = 0
	return m
}

// goBack returns to the previous route, or to the entry stage when there is none.
func (m appModel) goBack() (appModel, tea.Cmd) {
	if n := len(m.history); n > 0 {
		prev := m.history[n-1]
		m.history = m.history[:n-1]
		return m.mountRoute(prev, false)
	}
	return m.mountRoute(workflow.EntryRoute(), false)
}

func (m appModel) loadRecentCmd() tea.Cmd {
	gen, ctx, backend, log := m.gen, m.ctx, m.api, m.log
	return func() tea.Msg {
		recent, err := backend.RecentSearches(ctx)
		return recentLoadedMsg{gen: gen, recent: fatal.Degrade(log, api.OpRecentSearches, recent, err)}
	}
}

func (m appModel) submitCmd(p model.SearchParameters) tea.Cmd {
	gen, ctx, backend := m.gen, m.ctx, m.api
	return func() tea.Msg {
		id, err := backend.SubmitSearch(ctx, p)
		return searchSubmittedMsg{gen: gen, result: fatal.From(api.OpSubmitSearch, id, err)}
	}
}

func (m appModel) loadIdeasCmd() tea.Cmd {
	gen, ctx, backend, cache, id := m.gen, m.ctx, m.api, m.ideasCache, m.route.ID
	return func() tea.Msg {
		set, err := cache.GetOrStart(ctx, id, func(ctx context.Context) (model.IdeaSet, error) {
			return backend.GenerateIdeas(ctx, model.ID(id))
		})
		return ideasLoadedMsg{gen: gen, result: fatal.From(api.OpGenerateIdeas, set, err)}
	}
}

func (m appModel) loadSavedListCmd() tea.Cmd {
	gen, ctx, reg := m.gen, m.ctx, m.saved
	return func() tea.Msg {
		return savedListMsg{gen: gen, entries: reg.FetchAll(ctx)}
	}
}

func (m appModel) saveCmd() tea.Cmd {
	gen, ctx, reg, id := m.gen, m.ctx, m.saved, m.ideaSet.ID
	return func() tea.Msg {
		return savedDoneMsg{gen: gen, err: reg.Save(ctx, id)}
	}
}

func (m appModel) confirmDeleteCmd() tea.Cmd {
	gen, ctx, reg := m.gen, m.ctx, m.saved
	return func() tea.Msg {
		return deleteDoneMsg{gen: gen, err: reg.ConfirmDelete(ctx)}
	}
}

// loadEvidenceCmd serves both evidence views; the saved one is addressed by a saved id.
func (m appModel) loadEvidenceCmd() tea.Cmd {
	gen, ctx, backend, cache, r := m.gen, m.ctx, m.api, m.evidenceCache, m.route
	op := api.OpEvidence
	fetch := backend.ProjectEvidence
	if r.Screen == workflow.ScreenSavedEvidence {
		op = api.OpSavedEvidence
		fetch = backend.SavedEvidence
	}
	return func() tea.Msg {
		records, err := cache.GetOrStart(ctx, r.ID, func(ctx context.Context) ([]model.EvidenceRecord, error) {
			return fetch(ctx, model.ID(r.ID))
		})
		return evidenceLoadedMsg{gen: gen, result: fatal.From(op, records, err)}
	}
}

func (m appModel) loadSavedProjectCmd() tea.Cmd {
	gen, ctx, backend, cache, id := m.gen, m.ctx, m.api, m.savedProjectCache, m.route.ID
	return func() tea.Msg {
		p, err := cache.GetOrStart(ctx, id, func(ctx context.Context) (model.SavedProject, error) {
			return backend.SavedProject(ctx, model.ID(id))
		})
		return savedProjectLoadedMsg{gen: gen, result: fatal.From(api.OpSavedProject, p, err)}
	}
}

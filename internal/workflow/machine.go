package workflow

import (
	"fmt"

	"projectforge-cli/internal/session"

	"github.com/rs/zerolog"
)

// Stage is the position of the ephemeral flow.
type Stage int

const (
	StageEntry Stage = iota
	StageAwaitingIdeas
	StageIdeasReady
	StageAwaitingEvidence
	StageEvidenceReady
	// StageRejected is the outcome of a failed marker check. It always leads to a redirect.
	StageRejected
)

func (s Stage) String() string {
	switch s {
	case StageEntry:
		return "entry"
	case StageAwaitingIdeas:
		return "awaiting-ideas"
	case StageIdeasReady:
		return "ideas-ready"
	case StageAwaitingEvidence:
		return "awaiting-evidence"
	case StageEvidenceReady:
		return "evidence-ready"
	case StageRejected:
		return "rejected"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Decision is the result of Admit. A rejected decision carries the route to redirect to;
// rejection is a silent redirect, never an error.
type Decision struct {
	Admitted bool
	Redirect Route
}

// Machine enforces stage order using the session markers.
type Machine struct {
	markers session.Markers
	stage   Stage
	log     zerolog.Logger
}

func NewMachine(markers session.Markers, log zerolog.Logger) *Machine {
	return &Machine{markers: markers, stage: StageEntry, log: log}
}

func (m *Machine) Stage() Stage              { return m.stage }
func (m *Machine) Markers() session.Markers { return m.markers }

// ActiveSearch returns the active search marker, if any.
func (m *Machine) ActiveSearch() (string, bool) { return m.markers.Active(session.KindSearch) }

// ActiveIdea returns the active idea-set marker, if any.
func (m *Machine) ActiveIdea() (string, bool) { return m.markers.Active(session.KindIdea) }

// Enter moves to the entry stage and invalidates any in-progress flow.
func (m *Machine) Enter() error {
	m.transition(StageEntry)
	return m.markers.Reset()
}

// SearchSubmitted records a new search as the active one. Selecting a recent search goes
// through here as well.
func (m *Machine) SearchSubmitted(searchID string) error {
	if err := m.markers.Clear(session.KindIdea); err != nil {
		return err
	}
	return m.markers.SetActive(session.KindSearch, searchID)
}

// Admit checks route against the markers. Durable and entry routes are always admitted.
func (m *Machine) Admit(r Route) Decision {
	switch r.Screen {
	case ScreenIdeas:
		active, ok := m.markers.Active(session.KindSearch)
		if !ok || active != r.ID {
			m.reject(r, EntryRoute())
			return Decision{Redirect: EntryRoute()}
		}
		m.transition(StageAwaitingIdeas)
		return Decision{Admitted: true}

	case ScreenEvidence:
		active, ok := m.markers.Active(session.KindIdea)
		if !ok || active != r.ID {
			// The idea set may still be valid, so fall back to the ideas stage for the active
			// search instead of restarting the flow.
			to := EntryRoute()
			if search, ok := m.markers.Active(session.KindSearch); ok {
				to = IdeasRoute(search)
			}
			m.reject(r, to)
			return Decision{Redirect: to}
		}
		m.transition(StageAwaitingEvidence)
		return Decision{Admitted: true}
	}
	return Decision{Admitted: true}
}

// IdeasLoaded records the idea set as the active idea marker.
func (m *Machine) IdeasLoaded(ideaSetID string) error {
	if err := m.markers.SetActive(session.KindIdea, ideaSetID); err != nil {
		return err
	}
	m.transition(StageIdeasReady)
	return nil
}

func (m *Machine) EvidenceLoaded() { m.transition(StageEvidenceReady) }

func (m *Machine) transition(to Stage) {
	if m.stage == to {
		return
	}
	m.log.Debug().Str("from", m.stage.String()).Str("to", to.String()).Msg("workflow stage")
	m.stage = to
}

func (m *Machine) reject(r Route, to Route) {
	m.log.Debug().Str("route", r.Path()).Str("redirect", to.Path()).Msg("workflow guard rejected route")
	m.stage = StageRejected
}

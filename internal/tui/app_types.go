package tui

import (
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"
)

type view int

const (
	viewEntry view = iota
	viewIdeas
	viewEvidence
	viewSavedProject
	viewSavedEvidence
	viewRecovery
)

func viewToString(v view) string {
	switch v {
	case viewEntry:
		return "entry"
	case viewIdeas:
		return "ideas"
	case viewEvidence:
		return "evidence"
	case viewSavedProject:
		return "saved-project"
	case viewSavedEvidence:
		return "saved-evidence"
	case viewRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmLeave
	modalConfirmDelete
)

type pane int

const (
	paneMain pane = iota
	paneSaved
)

// Async results. Every message carries the mount generation it was started under; results for
// an older generation belong to a view that is gone and are dropped.

type recentLoadedMsg struct {
	gen    int
	recent []model.RecentSearch
}

type searchSubmittedMsg struct {
	gen    int
	result fatal.Result[model.ID]
}

type ideasLoadedMsg struct {
	gen    int
	result fatal.Result[model.IdeaSet]
}

type savedListMsg struct {
	gen     int
	entries []model.SavedEntry
}

type savedDoneMsg struct {
	gen int
	err error
}

type deleteDoneMsg struct {
	gen int
	err error
}

type evidenceLoadedMsg struct {
	gen    int
	result fatal.Result[[]model.EvidenceRecord]
}

type savedProjectLoadedMsg struct {
	gen    int
	result fatal.Result[model.SavedProject]
}

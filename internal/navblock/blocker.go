// Package navblock intercepts navigation that would abandon the idea-review stage.
package navblock

import (
	"sync"

	"projectforge-cli/internal/workflow"
)

const (
	Prompt     = "Are you sure you want to leave? You'll need to re-submit the form."
	StayLabel  = "Stay"
	LeaveLabel = "Leave"
)

type Outcome int

const (
	// Allowed means the caller should navigate immediately.
	Allowed Outcome = iota
	// Blocked means the navigation is held until Proceed or Stay.
	Blocked
)

// Blocker holds at most one intercepted navigation.
type Blocker struct {
	mu      sync.Mutex
	pending *workflow.Route
}

func New() *Blocker { return &Blocker{} }

// ShouldBlock reports whether leaving from for to needs confirmation. Only ideas → entry does.
func ShouldBlock(from, to workflow.Route) bool {
	return from.Screen == workflow.ScreenIdeas && to.Screen == workflow.ScreenEntry
}

// Attempt records an intercepted navigation or lets it through. A new blocked attempt replaces
// the pending one.
func (b *Blocker) Attempt(from, to workflow.Route) Outcome {
	if !ShouldBlock(from, to) {
		return Allowed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r := to
	b.pending = &r
	return Blocked
}

// Pending returns the held destination.
func (b *Blocker) Pending() (workflow.Route, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return workflow.Route{}, false
	}
	return *b.pending, true
}

// Proceed releases the held navigation; the caller completes it and abandons stage state.
func (b *Blocker) Proceed() (workflow.Route, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return workflow.Route{}, false
	}
	r := *b.pending
	b.pending = nil
	return r, true
}

// Stay cancels the held navigation.
func (b *Blocker) Stay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

// Package saved keeps the client-side view of the user's saved idea sets consistent with the
// backend. The backend list is canonical: every mutation reconciles against it.
package saved

import (
	"context"
	"sync"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"

	"github.com/rs/zerolog"
)

// Backend is the slice of api.Client the registry needs.
type Backend interface {
	SavedEntries(ctx context.Context) ([]model.SavedEntry, error)
	Save(ctx context.Context, ideaSetID model.ID) (model.SavedEntry, error)
	DeleteSaved(ctx context.Context, id model.ID) error
}

// Cache receives the reconciled list. internal/store implements it.
type Cache interface {
	ReplaceSavedEntries(ctx context.Context, entries []model.SavedEntry) error
	RemoveSavedEntry(ctx context.Context, id model.ID) error
}

type Registry struct {
	backend Backend
	cache   Cache
	log     zerolog.Logger

	mu      sync.Mutex
	entries []model.SavedEntry
	pending *model.ID
	saved   map[model.ID]bool
}

type Option func(*Registry)

func WithCache(c Cache) Option { return func(r *Registry) { r.cache = c } }

func WithLogger(l zerolog.Logger) Option { return func(r *Registry) { r.log = l } }

func New(backend Backend, opts ...Option) *Registry {
	r := &Registry{
		backend: backend,
		log:     zerolog.Nop(),
		entries: []model.SavedEntry{},
		saved:   map[model.ID]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Entries returns a copy of the current list in server order.
func (r *Registry) Entries() []model.SavedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SavedEntry{}, r.entries...)
}

// Pending returns the delete candidate, if any.
func (r *Registry) Pending() (model.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return "", false
	}
	return *r.pending, true
}

// IsSaved reports whether ideaSetID was saved through this registry.
func (r *Registry) IsSaved(ideaSetID model.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[ideaSetID]
}

// FetchAll replaces the list with the server's. A failed fetch is non-critical: it is logged and
// the list becomes empty.
func (r *Registry) FetchAll(ctx context.Context) []model.SavedEntry {
	list, err := r.backend.SavedEntries(ctx)
	list = fatal.Degrade(r.log, api.OpSavedList, list, err)
	r.mu.Lock()
	r.entries = list
	r.mu.Unlock()
	if err == nil {
		r.writeThrough(ctx, list)
	}
	return append([]model.SavedEntry{}, list...)
}

// Save persists the idea set, then re-fetches the canonical list. Either step failing is fatal
// to the caller and leaves the registry untouched.
func (r *Registry) Save(ctx context.Context, ideaSetID model.ID) error {
	if _, err := r.backend.Save(ctx, ideaSetID); err != nil {
		return fatal.New(api.OpSave, err)
	}
	list, err := r.backend.SavedEntries(ctx)
	if err != nil {
		return fatal.New(api.OpSavedList, err)
	}
	if list == nil {
		list = []model.SavedEntry{}
	}
	r.mu.Lock()
	r.entries = list
	r.saved[ideaSetID] = true
	r.mu.Unlock()
	r.log.Debug().Str("idea_set", ideaSetID.String()).Int("entries", len(list)).Msg("saved")
	r.writeThrough(ctx, list)
	return nil
}

// RequestDelete marks id as the delete candidate. A later request replaces an earlier one.
func (r *Registry) RequestDelete(id model.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &id
}

func (r *Registry) CancelDelete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// ConfirmDelete deletes the pending candidate. On success exactly that entry leaves the list.
// On failure the list is unchanged and the failure is returned. The candidate is cleared either
// way. Without a candidate it is a no-op.
func (r *Registry) ConfirmDelete(ctx context.Context) error {
	r.mu.Lock()
	if r.pending == nil {
		r.mu.Unlock()
		return nil
	}
	id := *r.pending
	r.pending = nil
	r.mu.Unlock()

	if err := r.backend.DeleteSaved(ctx, id); err != nil {
		return fatal.New(api.OpDelete, err)
	}

	r.mu.Lock()
	kept := make([]model.SavedEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.RemoveSavedEntry(ctx, id); err != nil {
			r.log.Warn().Err(err).Str("id", id.String()).Msg("saved cache remove failed")
		}
	}
	return nil
}

func (r *Registry) writeThrough(ctx context.Context, list []model.SavedEntry) {
	if r.cache == nil {
		return
	}
	if err := r.cache.ReplaceSavedEntries(ctx, list); err != nil {
		r.log.Warn().Err(err).Msg("saved cache write failed")
	}
}

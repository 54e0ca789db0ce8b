// Package session holds the per-session "active" identifiers that gate the idea and evidence
// stages. Markers are a workflow guard, not an access control boundary.
package session

import (
	"strings"
	"sync"
)

type Kind string

const (
	KindSearch Kind = "search"
	KindIdea   Kind = "idea"
)

// Markers is the session context threaded through the flow.
type Markers interface {
	SetActive(kind Kind, id string) error
	Active(kind Kind) (string, bool)
	Clear(kind Kind) error
	// Reset clears every kind; called whenever the entry stage is entered.
	Reset() error
}

// Memory keeps markers for the lifetime of one interactive session.
type Memory struct {
	mu     sync.Mutex
	active map[Kind]string
}

func NewMemory() *Memory {
	return &Memory{active: map[Kind]string{}}
}

func (m *Memory) SetActive(kind Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.TrimSpace(id)
	if id == "" {
		delete(m.active, kind)
		return nil
	}
	m.active[kind] = id
	return nil
}

func (m *Memory) Active(kind Kind) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[kind]
	return id, ok
}

func (m *Memory) Clear(kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, kind)
	return nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.active)
	return nil
}

// Backend is the persistence a Persistent session needs. internal/store implements it.
type Backend interface {
	GetMarker(session string, kind string) (string, bool, error)
	SetMarker(session string, kind string, id string) error
	DeleteMarkers(session string, kinds ...string) error
}

// Persistent stores markers under a named session so that separate CLI invocations share one
// flow. Read errors are treated as "no marker", which makes the guard redirect.
type Persistent struct {
	name    string
	backend Backend
}

func NewPersistent(name string, backend Backend) *Persistent {
	return &Persistent{name: name, backend: backend}
}

func (p *Persistent) Name() string { return p.name }

func (p *Persistent) SetActive(kind Kind, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return p.Clear(kind)
	}
	return p.backend.SetMarker(p.name, string(kind), id)
}

func (p *Persistent) Active(kind Kind) (string, bool) {
	id, ok, err := p.backend.GetMarker(p.name, string(kind))
	if err != nil {
		return "", false
	}
	return id, ok
}

func (p *Persistent) Clear(kind Kind) error {
	return p.backend.DeleteMarkers(p.name, string(kind))
}

func (p *Persistent) Reset() error {
	return p.backend.DeleteMarkers(p.name, string(KindSearch), string(KindIdea))
}

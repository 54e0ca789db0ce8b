package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetClearReset(t *testing.T) {
	m := NewMemory()
	_, ok := m.Active(KindSearch)
	assert.False(t, ok)

	require.NoError(t, m.SetActive(KindSearch, "S1"))
	require.NoError(t, m.SetActive(KindIdea, "I1"))
	id, ok := m.Active(KindSearch)
	assert.True(t, ok)
	assert.Equal(t, "S1", id)

	require.NoError(t, m.Clear(KindIdea))
	_, ok = m.Active(KindIdea)
	assert.False(t, ok)

	require.NoError(t, m.Reset())
	_, ok = m.Active(KindSearch)
	assert.False(t, ok)
}

func TestMemory_BlankIDClears(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetActive(KindSearch, "S1"))
	require.NoError(t, m.SetActive(KindSearch, "  "))
	_, ok := m.Active(KindSearch)
	assert.False(t, ok)
}

type mapBackend struct {
	m       map[string]string
	readErr error
}

func (b *mapBackend) GetMarker(s, k string) (string, bool, error) {
	if b.readErr != nil {
		return "", false, b.readErr
	}
	v, ok := b.m[s+"/"+k]
	return v, ok, nil
}

func (b *mapBackend) SetMarker(s, k, id string) error {
	b.m[s+"/"+k] = id
	return nil
}

func (b *mapBackend) DeleteMarkers(s string, kinds ...string) error {
	for _, k := range kinds {
		delete(b.m, s+"/"+k)
	}
	return nil
}

func TestPersistent_SessionsAreIsolated(t *testing.T) {
	be := &mapBackend{m: map[string]string{}}
	a := NewPersistent("a", be)
	b := NewPersistent("b", be)

	require.NoError(t, a.SetActive(KindSearch, "S1"))
	_, ok := b.Active(KindSearch)
	assert.False(t, ok)

	require.NoError(t, a.SetActive(KindIdea, "I1"))
	require.NoError(t, a.Reset())
	_, ok = a.Active(KindIdea)
	assert.False(t, ok)
}

func TestPersistent_ReadErrorMeansNoMarker(t *testing.T) {
	be := &mapBackend{m: map[string]string{"a/search": "S1"}, readErr: errors.New("disk")}
	_, ok := NewPersistent("a", be).Active(KindSearch)
	assert.False(t, ok)
}

package fatal

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"projectforge-cli/internal/api"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Union(t *testing.T) {
	ok := OK(3)
	v, good := ok.Value()
	assert.True(t, good)
	assert.Equal(t, 3, v)
	assert.False(t, ok.Failed())
	assert.Nil(t, ok.Failure())

	bad := From(api.OpGenerateIdeas, 0, errors.New("dial tcp: refused"))
	_, good = bad.Value()
	assert.False(t, good)
	require.True(t, bad.Failed())
	assert.Equal(t, "Failed to generate project ideas", bad.Failure().Message)
}

func TestFailure_UsesBackendMessage(t *testing.T) {
	err := fmt.Errorf("load ideas: %w", &api.Error{Op: api.OpGenerateIdeas, Status: 500, Message: "quota exceeded"})
	f := New(api.OpGenerateIdeas, err)
	assert.Equal(t, "quota exceeded", f.Error())

	var apiErr *api.Error
	assert.True(t, errors.As(f, &apiErr))
	assert.Contains(t, f.Detail(), "status: 500")
	assert.Contains(t, f.Detail(), "load ideas")
}

func TestNewRecovery_HidesDiagnosticsInProduction(t *testing.T) {
	f := New(api.OpSave, errors.New("boom"))

	dev := NewRecovery(f, false)
	assert.Equal(t, Title, dev.Title)
	assert.Equal(t, "Failed to save project", dev.Message)
	assert.Equal(t, []Action{ActionGoBack, ActionGoHome}, dev.Actions)
	assert.NotEmpty(t, dev.Diagnostics)

	prod := NewRecovery(f, true)
	assert.Empty(t, prod.Diagnostics)

	assert.Equal(t, DefaultMessage, NewRecovery(nil, false).Message)
	assert.Equal(t, "Go Back", ActionGoBack.Label())
	assert.Equal(t, "Go Home", ActionGoHome.Label())
}

func TestDegrade_LogsAndReturnsEmpty(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	out := Degrade[string](log, api.OpRecentSearches, nil, errors.New("timeout"))
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "recent-searches")

	buf.Reset()
	assert.Equal(t, []string{"a"}, Degrade(log, api.OpSavedList, []string{"a"}, nil))
	assert.NotNil(t, Degrade[string](log, api.OpSavedList, nil, nil))
	assert.Empty(t, buf.String())
}

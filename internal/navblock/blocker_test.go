package navblock

import (
	"testing"

	"projectforge-cli/internal/workflow"

	"github.com/stretchr/testify/assert"
)

func TestAttempt_OnlyIdeasToEntryIsBlocked(t *testing.T) {
	ideas := workflow.IdeasRoute("S1")
	cases := []struct {
		name string
		from workflow.Route
		to   workflow.Route
		want Outcome
	}{
		{"ideas to entry", ideas, workflow.EntryRoute(), Blocked},
		{"ideas to evidence", ideas, workflow.EvidenceRoute("I1", "x"), Allowed},
		{"ideas to saved", ideas, workflow.SavedProjectRoute("4"), Allowed},
		{"evidence to entry", workflow.EvidenceRoute("I1", "x"), workflow.EntryRoute(), Allowed},
		{"saved to entry", workflow.SavedProjectRoute("4"), workflow.EntryRoute(), Allowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New()
			assert.Equal(t, tc.want, b.Attempt(tc.from, tc.to))
			_, pending := b.Pending()
			assert.Equal(t, tc.want == Blocked, pending)
		})
	}
}

func TestProceed_ReleasesDestination(t *testing.T) {
	b := New()
	b.Attempt(workflow.IdeasRoute("S1"), workflow.EntryRoute())

	to, ok := b.Proceed()
	assert.True(t, ok)
	assert.Equal(t, workflow.EntryRoute(), to)
	_, pending := b.Pending()
	assert.False(t, pending)

	_, ok = b.Proceed()
	assert.False(t, ok)
}

func TestStay_CancelsWithoutNavigating(t *testing.T) {
	b := New()
	b.Attempt(workflow.IdeasRoute("S1"), workflow.EntryRoute())
	b.Stay()
	_, pending := b.Pending()
	assert.False(t, pending)
	_, ok := b.Proceed()
	assert.False(t, ok)
}

// Package evidence partitions evidence records into per-project buckets.
package evidence

import "projectforge-cli/internal/model"

// Groups maps project titles to their records. Titles keep first-seen order and each bucket
// keeps encounter order. There is never an empty bucket.
type Groups struct {
	titles  []string
	buckets map[string][]model.EvidenceRecord
}

// Group partitions records by exact ProjectTitle equality.
func Group(records []model.EvidenceRecord) Groups {
	g := Groups{buckets: make(map[string][]model.EvidenceRecord)}
	for _, r := range records {
		if _, ok := g.buckets[r.ProjectTitle]; !ok {
			g.titles = append(g.titles, r.ProjectTitle)
		}
		g.buckets[r.ProjectTitle] = append(g.buckets[r.ProjectTitle], r)
	}
	return g
}

// Select returns the bucket for title. A blank or unknown title yields an empty slice, which
// the views render as an empty state.
func Select(g Groups, title string) []model.EvidenceRecord {
	if title == "" {
		return []model.EvidenceRecord{}
	}
	recs, ok := g.buckets[title]
	if !ok {
		return []model.EvidenceRecord{}
	}
	return recs
}

func (g Groups) Titles() []string { return append([]string(nil), g.titles...) }

// Len is the number of buckets.
func (g Groups) Len() int { return len(g.titles) }

// Count is the total number of records across buckets.
func (g Groups) Count() int {
	n := 0
	for _, recs := range g.buckets {
		n += len(recs)
	}
	return n
}

// Package apitest provides an in-memory fake of the projectforge backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"projectforge-cli/internal/model"
)

// Backend serves the backend routes from in-memory state. Zero values are usable; set fields
// before issuing requests or guard with Lock/Unlock.
type Backend struct {
	sync.Mutex

	SearchID model.ID
	Recent   []model.RecentSearch
	// Ideas maps search id -> idea set.
	Ideas map[model.ID]model.IdeaSet
	// Evidence maps idea set id -> records.
	Evidence      map[model.ID][]model.EvidenceRecord
	Saved         []model.SavedEntry
	SavedProjects map[model.ID]model.SavedProject
	SavedEvidence map[model.ID][]model.EvidenceRecord

	// Fail maps a route prefix (e.g. "/api/project-ideas") to a status code; the response body
	// carries FailMessage as its error field unless FailMessage is empty.
	Fail        map[string]int
	FailMessage string

	calls    map[string]int
	lastBody map[string]map[string]any
	nextID   int

	Server *httptest.Server
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		Ideas:         map[model.ID]model.IdeaSet{},
		Evidence:      map[model.ID][]model.EvidenceRecord{},
		SavedProjects: map[model.ID]model.SavedProject{},
		SavedEvidence: map[model.ID][]model.EvidenceRecord{},
		Fail:          map[string]int{},
		calls:         map[string]int{},
		lastBody:      map[string]map[string]any{},
		nextID:        100,
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

// Calls returns how many requests hit the route prefix.
func (b *Backend) Calls(route string) int {
	b.Lock()
	defer b.Unlock()
	return b.calls[route]
}

// LastBody returns the decoded JSON body of the last request to route.
func (b *Backend) LastBody(route string) map[string]any {
	b.Lock()
	defer b.Unlock()
	return b.lastBody[route]
}

// IdeaSet builds an idea set with the given projects.
func IdeaSet(id model.ID, titles ...string) model.IdeaSet {
	var s model.IdeaSet
	s.ID = id
	for _, title := range titles {
		s.Data.ProjectList.Projects = append(s.Data.ProjectList.Projects, model.Project{
			Title:                  title,
			ProblemStatement:       "Problem for " + title,
			CoreFeatures:           []string{"feature one", "feature two"},
			RecommendedTechStack:   []string{"Go", "PostgreSQL"},
			AchievedQualifications: []string{"APIs"},
			TargetUsers:            []string{"developers"},
		})
	}
	return s
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	route := routeOf(r.URL.Path)

	b.Lock()
	defer b.Unlock()

	b.calls[route]++
	if r.Body != nil {
		var body map[string]any
		if json.NewDecoder(r.Body).Decode(&body) == nil {
			b.lastBody[route] = body
		}
	}

	if status, ok := b.Fail[route]; ok {
		if b.FailMessage == "" {
			writeJSON(w, status, map[string]any{"success": false})
			return
		}
		writeJSON(w, status, map[string]any{"success": false, "error": b.FailMessage})
		return
	}

	tail := strings.TrimPrefix(r.URL.Path, route+"/")

	switch {
	case route == "/api/scrape_locations" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "job_search_id": b.SearchID})
	case route == "/api/recent-searches":
		writeJSON(w, http.StatusOK, nonNil(b.Recent))
	case route == "/api/project-ideas" && r.Method == http.MethodPost:
		id := model.ID(stringField(b.lastBody[route], "job_search_id"))
		set, ok := b.Ideas[id]
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "unknown job search"})
			return
		}
		writeJSON(w, http.StatusOK, set)
	case route == "/api/project-evidence" && r.Method == http.MethodPost:
		id := model.ID(stringField(b.lastBody[route], "id"))
		writeJSON(w, http.StatusOK, nonNil(b.Evidence[id]))
	case route == "/api/fetch-saved-projects":
		writeJSON(w, http.StatusOK, nonNil(b.Saved))
	case route == "/api/save" && r.Method == http.MethodPost:
		b.nextID++
		entry := model.SavedEntry{
			ID:    model.ID(strconv.Itoa(b.nextID)),
			Title: "Saved " + stringField(b.lastBody[route], "save_project"),
		}
		b.Saved = append(b.Saved, entry)
		writeJSON(w, http.StatusOK, entry)
	case route == "/api/delete-saved-project" && r.Method == http.MethodDelete:
		id := model.ID(tail)
		kept := b.Saved[:0]
		for _, e := range b.Saved {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		b.Saved = kept
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case route == "/api/fetch-saved-project":
		p, ok := b.SavedProjects[model.ID(tail)]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "saved project not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	case route == "/api/fetch-saved-project-evidence":
		writeJSON(w, http.StatusOK, nonNil(b.SavedEvidence[model.ID(tail)]))
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no route " + r.Method + " " + r.URL.Path})
	}
}

// routeOf strips a trailing id segment from the id-addressed routes.
func routeOf(path string) string {
	for _, prefix := range []string{
		"/api/delete-saved-project/",
		"/api/fetch-saved-project-evidence/",
		"/api/fetch-saved-project/",
	} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimSuffix(prefix, "/")
		}
	}
	return path
}

func stringField(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

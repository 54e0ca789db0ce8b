package workflow

import (
	"fmt"
	"net/url"
	"strings"
)

// Screen identifies one page of the flow.
type Screen int

const (
	ScreenEntry Screen = iota
	ScreenIdeas
	ScreenEvidence
	ScreenSavedProject
	ScreenSavedEvidence
)

func (s Screen) String() string {
	switch s {
	case ScreenEntry:
		return "entry"
	case ScreenIdeas:
		return "ideas"
	case ScreenEvidence:
		return "evidence"
	case ScreenSavedProject:
		return "saved-project"
	case ScreenSavedEvidence:
		return "saved-evidence"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Route is a navigable location: a screen, the identifier it is addressed by and, for
// evidence screens, the selected project title.
type Route struct {
	Screen  Screen
	ID      string
	Project string
}

func EntryRoute() Route                 { return Route{Screen: ScreenEntry} }
func IdeasRoute(searchID string) Route  { return Route{Screen: ScreenIdeas, ID: searchID} }
func SavedProjectRoute(id string) Route { return Route{Screen: ScreenSavedProject, ID: id} }

func EvidenceRoute(ideaSetID, project string) Route {
	return Route{Screen: ScreenEvidence, ID: ideaSetID, Project: project}
}

func SavedEvidenceRoute(id, project string) Route {
	return Route{Screen: ScreenSavedEvidence, ID: id, Project: project}
}

// Durable reports whether the route is addressed by a saved-collection id rather than a
// session marker. Durable routes skip the marker check.
func (r Route) Durable() bool {
	return r.Screen == ScreenSavedProject || r.Screen == ScreenSavedEvidence
}

var screenPrefixes = []struct {
	screen Screen
	prefix string
}{
	// Longer prefixes first: /saved-project-evidence/ shares a prefix with /saved-project/.
	{ScreenSavedEvidence, "/saved-project-evidence/"},
	{ScreenSavedProject, "/saved-project/"},
	{ScreenEvidence, "/project-evidence/"},
	{ScreenIdeas, "/project-ideas/"},
}

func (r Route) Path() string {
	if r.Screen == ScreenEntry {
		return "/"
	}
	for _, sp := range screenPrefixes {
		if sp.screen != r.Screen {
			continue
		}
		p := sp.prefix + url.PathEscape(r.ID)
		if r.Screen == ScreenEvidence || r.Screen == ScreenSavedEvidence {
			if r.Project != "" {
				p += "?project=" + url.QueryEscape(r.Project)
			}
		}
		return p
	}
	return "/"
}

func (r Route) String() string { return r.Path() }

// ParseRoute is the inverse of Route.Path.
func ParseRoute(raw string) (Route, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return Route{}, fmt.Errorf("parse route %q: %w", raw, err)
	}
	path := u.EscapedPath()
	if path == "" || path == "/" {
		return EntryRoute(), nil
	}
	for _, sp := range screenPrefixes {
		if !strings.HasPrefix(path, sp.prefix) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimPrefix(path, sp.prefix))
		if err != nil {
			return Route{}, fmt.Errorf("parse route %q: %w", raw, err)
		}
		if id == "" || strings.Contains(id, "/") {
			return Route{}, fmt.Errorf("parse route %q: bad identifier", raw)
		}
		r := Route{Screen: sp.screen, ID: id}
		if sp.screen == ScreenEvidence || sp.screen == ScreenSavedEvidence {
			r.Project = u.Query().Get("project")
		}
		return r, nil
	}
	return Route{}, fmt.Errorf("unknown route %q", raw)
}

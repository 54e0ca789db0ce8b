package cli

import (
	"fmt"

	"projectforge-cli/internal/workflow"
)

// routeRejectedError is returned when the session guard refuses a stage; it names where the
// interactive client would have redirected.
type routeRejectedError struct {
	route    workflow.Route
	redirect workflow.Route
}

func (e routeRejectedError) Error() string {
	return fmt.Sprintf("%s is not active in this session; start from %s", e.route.Path(), e.redirect.Path())
}

func errRejected(route, redirect workflow.Route) error {
	return routeRejectedError{route: route, redirect: redirect}
}

type missingMarkerError struct {
	what string
	hint string
}

func (e missingMarkerError) Error() string {
	return fmt.Sprintf("no active %s in this session; %s", e.what, e.hint)
}

// admit runs route through the session guard.
func admit(m *workflow.Machine, route workflow.Route) error {
	d := m.Admit(route)
	if !d.Admitted {
		return errRejected(route, d.Redirect)
	}
	return nil
}

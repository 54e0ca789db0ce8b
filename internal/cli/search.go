package cli

import (
	"errors"
	"fmt"
	"strings"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/workflow"

	"github.com/spf13/cobra"
)

func newSearchCmd(app *App) *cobra.Command {
	var (
		role            string
		locations       []string
		employmentTypes []string
		datePosted      string
		remote          bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Submit a job search and make it the session's active search",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.NewSearchParameters()
			p.Role = strings.TrimSpace(role)
			p.HybridOrRemote = remote
			if !p.SelectLocations(locations) {
				return writeErr(cmd, fmt.Errorf("at most %d locations can be selected", model.MaxLocations))
			}
			known, err := model.LoadLocationOptions(app.cfg.LocationsFile)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, loc := range p.Locations {
				if !hasOption(known, loc) {
					return writeErr(cmd, fmt.Errorf("unknown --location %q", loc))
				}
			}
			if !p.SelectEmploymentTypes(employmentTypes) {
				return writeErr(cmd, fmt.Errorf("at most %d employment types from %s can be selected", model.MaxEmploymentTypes, optionValues(model.EmploymentTypeOptions)))
			}
			if !p.SetDatePosted(datePosted) {
				return writeErr(cmd, fmt.Errorf("unknown --date-posted %q (one of %s)", datePosted, optionValues(model.DatePostedOptions)))
			}
			if err := p.Validate(); err != nil {
				return writeErr(cmd, errors.New("--role is required"))
			}

			m := app.machine()
			if err := m.Enter(); err != nil {
				return writeErr(cmd, err)
			}
			id, err := app.client().SubmitSearch(cmd.Context(), p)
			if err != nil {
				return writeFailure(cmd, app, api.OpSubmitSearch, err)
			}
			if err := m.SearchSubmitted(id.String()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"jobSearchId": id,
				"route":       workflow.IdeasRoute(id.String()).Path(),
			}})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role to search for")
	cmd.Flags().StringSliceVar(&locations, "location", nil, fmt.Sprintf("UK location (repeatable, max %d)", model.MaxLocations))
	cmd.Flags().StringSliceVar(&employmentTypes, "employment-type", nil, fmt.Sprintf("Employment type (repeatable, max %d)", model.MaxEmploymentTypes))
	cmd.Flags().StringVar(&datePosted, "date-posted", "", "Posting window in seconds (86400, 259200, 604800, 2592000; empty = all time)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Only hybrid or remote jobs")
	return cmd
}

func hasOption(opts []model.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func optionValues(opts []model.Option) string {
	vals := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.Value != "" {
			vals = append(vals, o.Value)
		}
	}
	return strings.Join(vals, ", ")
}

func newRecentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.client().RecentSearches(cmd.Context())
			list = fatal.Degrade(app.log, api.OpRecentSearches, list, err)
			type row struct {
				model.RecentSearch `yaml:",inline"`
				Display            string `json:"display" yaml:"display"`
			}
			out := make([]row, 0, len(list))
			for _, r := range list {
				out = append(out, row{RecentSearch: r, Display: r.DisplayText()})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.AddCommand(newRecentUseCmd(app))
	return cmd
}

// newRecentUseCmd mirrors picking a recent search in the TUI: it becomes the active search.
func newRecentUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <job-search-id>",
		Short: "Make a recent search the session's active search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return writeErr(cmd, errors.New("empty job search id"))
			}
			m := app.machine()
			if err := m.SearchSubmitted(id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"jobSearchId": id,
				"route":       workflow.IdeasRoute(id).Path(),
			}})
		},
	}
}

package cli

import (
	"strings"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/evidence"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/workflow"

	"github.com/spf13/cobra"
)

func newIdeasCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ideas [job-search-id]",
		Short: "Generate project ideas for the active search",
		Long: strings.TrimSpace(`
Generates (or returns the cached) project ideas for a job search. The search must be the
session's active search; it defaults to it. On success the idea set becomes the session's
active idea set, which unlocks "evidence".
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := app.machine()
			searchID, ok := m.ActiveSearch()
			if len(args) == 1 {
				searchID, ok = strings.TrimSpace(args[0]), true
			}
			if !ok {
				return writeErr(cmd, missingMarkerError{what: "search", hint: "run `projectforge search` first"})
			}
			route := workflow.IdeasRoute(searchID)
			if err := admit(m, route); err != nil {
				return writeErr(cmd, err)
			}

			set, err := app.client().GenerateIdeas(cmd.Context(), model.ID(route.ID))
			if err != nil {
				return writeFailure(cmd, app, api.OpGenerateIdeas, err)
			}
			if err := m.IdeasLoaded(set.ID.String()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": set})
		},
	}
}

func newEvidenceCmd(app *App) *cobra.Command {
	var (
		ideaSetID string
		project   string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Show the job qualifications backing one project of the active idea set",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := app.machine()
			id := strings.TrimSpace(ideaSetID)
			if id == "" {
				active, ok := m.ActiveIdea()
				if !ok {
					return writeErr(cmd, missingMarkerError{what: "idea set", hint: "run `projectforge ideas` first"})
				}
				id = active
			}
			project = strings.TrimSpace(project)
			if project == "" && !all {
				return writeErr(cmd, missingMarkerError{what: "project", hint: "pass --project <title> or --all"})
			}
			route := workflow.EvidenceRoute(id, project)
			if err := admit(m, route); err != nil {
				return writeErr(cmd, err)
			}

			records, err := app.client().ProjectEvidence(cmd.Context(), model.ID(route.ID))
			if err != nil {
				return writeFailure(cmd, app, api.OpEvidence, err)
			}
			m.EvidenceLoaded()
			return writeOut(cmd, app, map[string]any{"data": evidenceView(evidence.Group(records), project, all)})
		},
	}

	cmd.Flags().StringVar(&ideaSetID, "idea", "", "Idea set id (default: the session's active idea set)")
	cmd.Flags().StringVar(&project, "project", "", "Project title to show evidence for")
	cmd.Flags().BoolVar(&all, "all", false, "Show every project's evidence, grouped by title")
	return cmd
}

// evidenceView shapes grouped evidence for output: one project's records, or every group in
// first-seen order.
func evidenceView(g evidence.Groups, project string, all bool) any {
	if all {
		type group struct {
			Project  string `json:"project" yaml:"project"`
			Evidence any    `json:"evidence" yaml:"evidence"`
		}
		out := make([]group, 0, g.Len())
		for _, title := range g.Titles() {
			out = append(out, group{Project: title, Evidence: evidence.Select(g, title)})
		}
		return out
	}
	return map[string]any{
		"project":  project,
		"evidence": evidence.Select(g, project),
		"projects": g.Titles(),
	}
}

package cli

import (
	"errors"
	"strings"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/evidence"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/saved"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSavedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Saved project commands",
	}
	cmd.AddCommand(newSavedListCmd(app))
	cmd.AddCommand(newSavedShowCmd(app))
	cmd.AddCommand(newSavedEvidenceCmd(app))
	cmd.AddCommand(newSavedSaveCmd(app))
	cmd.AddCommand(newSavedDeleteCmd(app))
	return cmd
}

func (app *App) registry() *saved.Registry {
	return saved.New(app.client(), saved.WithCache(app.store()), saved.WithLogger(app.log))
}

func newSavedListCmd(app *App) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cached {
				list, err := app.store().SavedEntries(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": list, "meta": map[string]any{"source": "cache"}})
			}
			list := app.registry().FetchAll(cmd.Context())
			return writeOut(cmd, app, map[string]any{"data": list})
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "Read the last synced list from the local cache instead of the backend")
	return cmd
}

func newSavedShowCmd(app *App) *cobra.Command {
	var withEvidence bool
	cmd := &cobra.Command{
		Use:   "show <saved-id>",
		Short: "Show a saved project and its search parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.ID(strings.TrimSpace(args[0]))
			client := app.client()

			var (
				project model.SavedProject
				records []model.EvidenceRecord
			)
			// Each load reports its own op; g.Wait returns the first failure.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				p, err := client.SavedProject(ctx, id)
				if err != nil {
					return fatal.New(api.OpSavedProject, err)
				}
				project = p
				return nil
			})
			if withEvidence {
				g.Go(func() error {
					r, err := client.SavedEvidence(ctx, id)
					if err != nil {
						return fatal.New(api.OpSavedEvidence, err)
					}
					records = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return writeFailure(cmd, app, api.OpSavedProject, err)
			}

			out := map[string]any{"project": project}
			if withEvidence {
				grouped := evidence.Group(records)
				byTitle := map[string][]model.EvidenceRecord{}
				for _, title := range grouped.Titles() {
					byTitle[title] = evidence.Select(grouped, title)
				}
				out["evidence"] = byTitle
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&withEvidence, "evidence", false, "Also fetch the saved evidence, grouped by project title")
	return cmd
}

func newSavedEvidenceCmd(app *App) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "evidence <saved-id>",
		Short: "Show saved evidence for one project of a saved idea set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project = strings.TrimSpace(project)
			if project == "" {
				return writeErr(cmd, errors.New("--project is required"))
			}
			id := model.ID(strings.TrimSpace(args[0]))
			records, err := app.client().SavedEvidence(cmd.Context(), id)
			if err != nil {
				return writeFailure(cmd, app, api.OpSavedEvidence, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evidenceView(evidence.Group(records), project, false)})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project title")
	return cmd
}

func newSavedSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save [idea-set-id]",
		Short: "Save an idea set (default: the session's active idea set)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := app.machine().ActiveIdea()
			if len(args) == 1 {
				id, ok = strings.TrimSpace(args[0]), true
			}
			if !ok || id == "" {
				return writeErr(cmd, missingMarkerError{what: "idea set", hint: "run `projectforge ideas` first"})
			}
			reg := app.registry()
			if err := reg.Save(cmd.Context(), model.ID(id)); err != nil {
				return writeFailure(cmd, app, api.OpSave, err)
			}
			return writeOut(cmd, app, map[string]any{"data": reg.Entries()})
		},
	}
}

func newSavedDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <saved-id>",
		Short: "Delete a saved project (permanent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errors.New("deleting is a permanent change; pass --yes to confirm"))
			}
			reg := app.registry()
			reg.FetchAll(cmd.Context())
			reg.RequestDelete(model.ID(strings.TrimSpace(args[0])))
			if err := reg.ConfirmDelete(cmd.Context()); err != nil {
				return writeFailure(cmd, app, api.OpDelete, err)
			}
			return writeOut(cmd, app, map[string]any{"data": reg.Entries()})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

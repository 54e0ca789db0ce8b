package cli

import (
	"fmt"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/logging"
	"projectforge-cli/internal/model"
	"projectforge-cli/internal/tui"
	"projectforge-cli/internal/workflow"

	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Open the TUI at a route (e.g. /saved-project/12)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := workflow.ParseRoute(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return runTUI(cmd, app, route)
		},
	}
}

// runTUI starts the interactive client. Logs go to a file because the terminal belongs to the
// alternate screen.
func runTUI(cmd *cobra.Command, app *App, start workflow.Route) error {
	locations, err := model.LoadLocationOptions(app.cfg.LocationsFile)
	if err != nil {
		return writeErr(cmd, err)
	}

	path, err := app.cfg.LogFile()
	if err != nil {
		return writeErr(cmd, err)
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer f.Close()
	log := logging.New(logging.Options{Level: app.cfg.Log.Level, Format: app.cfg.Log.Format, Output: f})

	client := api.New(app.cfg.APIURL,
		api.WithLogger(log),
		api.WithTimeout(app.cfg.RequestTimeout),
		api.WithRateLimit(app.cfg.RateLimit.PerSecond, app.cfg.RateLimit.Burst),
	)
	log.Info().Str("api", client.BaseURL()).Str("start", start.Path()).Msg("tui start")

	if err := tui.Run(tui.Options{
		Backend:    client,
		Log:        log,
		Production: app.cfg.Production(),
		Locations:  locations,
		Start:      start,
		Theme:      app.cfg.TUI.Theme,
		SavedCache: app.store(),
	}); err != nil {
		return writeErr(cmd, fmt.Errorf("tui: %w", err))
	}
	return nil
}

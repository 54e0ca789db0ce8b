package cli

import (
	"projectforge-cli/internal/store"

	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset CLI sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known sessions and their active markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.store().Sessions(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if sessions == nil {
				sessions = []store.Session{}
			}
			return writeOut(cmd, app, map[string]any{"data": sessions})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the current session's active search and idea set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.machine().Enter(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"session": app.cfg.Session, "route": "/"}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Forget a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store().DeleteSession(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	})
	return cmd
}

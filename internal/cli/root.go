package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"projectforge-cli/internal/api"
	"projectforge-cli/internal/config"
	"projectforge-cli/internal/fatal"
	"projectforge-cli/internal/format"
	"projectforge-cli/internal/logging"
	"projectforge-cli/internal/session"
	"projectforge-cli/internal/store"
	"projectforge-cli/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigPath string
	APIURL     string
	Session    string
	PrettyJSON bool
	Format     string

	cfg *config.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "projectforge",
		Short:        "Turn job searches into portfolio project ideas backed by evidence",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  projectforge

  # Open the TUI at a route (still subject to the session guard)
  projectforge /saved-project/12

  # Scriptable flow within one named session
  projectforge search --role "Backend Engineer" --location London --remote
  projectforge ideas
  projectforge evidence --project "API Gateway"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app, workflow.EntryRoute())
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PROJECTFORGE_DIR", ""), "Local state dir for sessions and the saved-list cache (default: config dir)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("PROJECTFORGE_CONFIG", ""), "Config file (default: ~/.projectforge/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.Session, "session", "", "Session name; commands in one session share the active search and idea set")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PROJECTFORGE_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newRecentCmd(app))
	cmd.AddCommand(newIdeasCmd(app))
	cmd.AddCommand(newEvidenceCmd(app))
	cmd.AddCommand(newSavedCmd(app))
	cmd.AddCommand(newSessionCmd(app))

	return cmd
}

// load resolves configuration once per invocation. Flags win over the environment, which
// wins over the config file.
func (app *App) load(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if v := strings.TrimSpace(app.APIURL); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(app.Session); v != "" {
		cfg.Session = v
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	if strings.TrimSpace(app.Dir) == "" {
		dir, err := config.Dir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Dir = dir
	}
	app.cfg = cfg
	app.log = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	return nil
}

func (app *App) client() *api.Client {
	return api.New(app.cfg.APIURL,
		api.WithLogger(app.log),
		api.WithTimeout(app.cfg.RequestTimeout),
		api.WithRateLimit(app.cfg.RateLimit.PerSecond, app.cfg.RateLimit.Burst),
	)
}

func (app *App) store() store.Store { return store.Store{Dir: app.Dir} }

// machine returns the workflow guard for the named CLI session.
func (app *App) machine() *workflow.Machine {
	markers := session.NewPersistent(app.cfg.Session, app.store())
	return workflow.NewMachine(markers, app.log)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// writeFailure reports an unrecoverable backend failure: the recovery title and message, plus
// diagnostics outside production.
func writeFailure(cmd *cobra.Command, app *App, op api.Op, err error) error {
	var f *fatal.Failure
	if !errors.As(err, &f) {
		f = fatal.New(op, err)
	}
	app.log.Error().Str("op", string(f.Op)).Err(f.Err).Msg(f.Message)
	r := fatal.NewRecovery(f, app.cfg.Production())
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Title, r.Message)
	if r.Diagnostics != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), r.Diagnostics)
	}
	return f
}

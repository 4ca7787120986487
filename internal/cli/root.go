package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/cache"
	"github.com/rileyhilliard/terminus/internal/commands"
	"github.com/rileyhilliard/terminus/internal/config"
	"github.com/rileyhilliard/terminus/internal/dispatch"
	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/rileyhilliard/terminus/internal/output"
	"github.com/rileyhilliard/terminus/internal/ui"
	"github.com/rileyhilliard/terminus/internal/util"
)

// App holds what the command tree needs from the outside world. Tests
// replace the executor and store; main uses DefaultApp.
type App struct {
	Out io.Writer
	Err io.Writer

	Groups []*dispatch.Group

	NewExecutor func(cfg *config.Config, log logger.Logger) api.Executor
	NewStore    func(cfg *config.Config) cache.Store
}

// DefaultApp wires the real API client, the file cache and every command
// group.
func DefaultApp() (*App, error) {
	groups, err := commands.Groups()
	if err != nil {
		return nil, err
	}
	return &App{
		Out:    os.Stdout,
		Err:    os.Stderr,
		Groups: groups,
		NewExecutor: func(cfg *config.Config, log logger.Logger) api.Executor {
			return api.NewClient(api.Config{
				Host:               cfg.API.Host,
				Port:               cfg.API.Port,
				Timeout:            cfg.API.Timeout,
				InsecureSkipVerify: cfg.API.InsecureSkipVerify,
				Logger:             log,
			})
		},
		NewStore: func(cfg *config.Config) cache.Store {
			return cache.NewFileStore(cfg.Cache.Dir)
		},
	}, nil
}

// Execute runs the CLI against os.Args and exits with its status.
func Execute() {
	app, err := DefaultApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(Run(app, os.Args[1:]))
}

// Run executes one command line and returns the process exit code.
func Run(app *App, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, opts := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if isUnknownCommandError(err) {
		err = unknownCommand(extractUnknownCommand(err), app.Groups)
	}
	report(app, opts.outputFormat(), err)
	return 1
}

// NewRootCmd builds the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	root, _ := newRootCmd(app)
	return root
}

func newRootCmd(app *App) (*cobra.Command, *GlobalFlags) {
	opts := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "terminus",
		Short: "Manage sites and environments from the command line",
		Long: `terminus talks to the site management API with your cached session.

With --json or --yaml, results are wrapped in an envelope:
  {"success": true, "data": ...} on success and
  {"success": false, "error": {"code", "message", "suggestion"}} on failure.
Read .data for the records themselves.

Examples:
  terminus sites show
  terminus site info --site=my-site
  terminus site backups-list --site=my-site --env=live --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.apply()
		},
	}

	AddGlobalFlags(root, opts)

	for _, g := range app.Groups {
		root.AddCommand(newGroupCmd(app, opts, g))
	}
	root.AddCommand(newVersionCmd())

	return root, opts
}

// report writes err for the user: the error envelope in JSON/YAML mode,
// the structured text on stderr otherwise.
func report(app *App, format output.Format, err error) {
	if format.Raw() {
		if werr := output.NewPresenter(app.Out, format).Error(ErrorToJSON(err)); werr == nil {
			return
		}
	}
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(app.Err, msg)
}

// isUnknownCommandError checks whether cobra rejected the command name.
// Unknown flags are reported as cobra words them.
func isUnknownCommandError(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "terminus"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// unknownCommand points users who typed an action without its group at
// the full command.
func unknownCommand(name string, groups []*dispatch.Group) error {
	if name != "" {
		for _, g := range groups {
			if a, ok := g.Lookup(name); ok {
				return errors.New(errors.ErrUnknownAction,
					fmt.Sprintf("Unknown command '%s'", name),
					fmt.Sprintf("Did you mean 'terminus %s %s'?", g.Name(), a.Name))
			}
		}
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name())
	}
	return errors.New(errors.ErrUnknownAction,
		fmt.Sprintf("Unknown command '%s'", util.OrNone(name)),
		"Available command groups: "+util.JoinOrNone(names)+". Run 'terminus --help' for details.")
}

// colorMode applies the color setting: --no-color wins, then the config.
func colorMode(noColor bool, mode string) {
	switch {
	case noColor || mode == "never":
		ui.DisableColors()
	case mode == "always":
		ui.ForceColors()
	}
}

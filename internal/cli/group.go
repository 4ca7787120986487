package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/terminus/internal/dispatch"
	"github.com/rileyhilliard/terminus/internal/invocation"
	"github.com/rileyhilliard/terminus/internal/output"
	"github.com/rileyhilliard/terminus/internal/resolver"
	"github.com/rileyhilliard/terminus/internal/ui"
)

// groupSummaries are the one-line descriptions shown in `terminus --help`.
var groupSummaries = map[string]string{
	"sites": "List the sites you can access",
	"site":  "Inspect one site and its environments",
}

// switchUsage describes the boolean flags actions declare.
var switchUsage = map[string]string{
	"refresh": "refetch instead of using the cached list",
}

// groupFlags collects the named arguments a group's actions read.
type groupFlags struct {
	site     string
	env      string
	switches map[string]*bool
}

// named converts the parsed flags into the dispatcher's named arguments.
// Unset values are left out.
func (g *groupFlags) named(cmd *cobra.Command) map[string]string {
	named := map[string]string{}
	if g.site != "" {
		named["site"] = g.site
	}
	if g.env != "" {
		named["env"] = g.env
	}
	for name, v := range g.switches {
		if cmd.Flags().Changed(name) {
			named[name] = strconv.FormatBool(*v)
		}
	}
	return named
}

func newGroupCmd(app *App, opts *GlobalFlags, g *dispatch.Group) *cobra.Command {
	flags := &groupFlags{switches: map[string]*bool{}}

	cmd := &cobra.Command{
		Use:       g.Name() + " <action>",
		Short:     groupSummaries[g.Name()],
		Long:      groupHelp(g),
		Args:      cobra.ArbitraryArgs,
		ValidArgs: g.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchGroup(cmd.Context(), app, opts, g, args, flags.named(cmd))
		},
	}

	var needsSite, needsEnv bool
	for _, a := range g.Actions() {
		needsSite = needsSite || a.NeedsSite()
		needsEnv = needsEnv || a.RequiresEnv
		for _, sw := range a.Switches {
			if _, ok := flags.switches[sw]; !ok {
				usage, ok := switchUsage[sw]
				if !ok {
					usage = sw + " (" + a.Name + ")"
				}
				flags.switches[sw] = cmd.Flags().Bool(sw, false, usage)
			}
		}
	}
	if needsSite {
		cmd.Flags().StringVar(&flags.site, "site", "", "site name or UUID")
	}
	if needsEnv {
		cmd.Flags().StringVar(&flags.env, "env", "", "environment name (e.g. dev, test, live)")
	}
	return cmd
}

// groupHelp lists a group's actions for `terminus <group> --help`.
func groupHelp(g *dispatch.Group) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nActions:\n", groupSummaries[g.Name()])

	width := 0
	for _, a := range g.Actions() {
		width = max(width, len(a.Name))
	}
	for _, a := range g.Actions() {
		req := ""
		switch {
		case a.RequiresEnv:
			req = " (--site, --env)"
		case a.RequiresSite:
			req = " (--site)"
		}
		fmt.Fprintf(&b, "  %-*s  %s%s\n", width, a.Name, a.Short, req)
	}
	return strings.TrimRight(b.String(), "\n")
}

// dispatchGroup loads config and cached state, then runs the action.
func dispatchGroup(ctx context.Context, app *App, opts *GlobalFlags, g *dispatch.Group, args []string, named map[string]string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	log := opts.logger(app)
	store := app.NewStore(cfg)
	exec := app.NewExecutor(cfg, log)

	inv, err := invocation.Load(store, exec, log)
	if err != nil {
		return err
	}
	inv.Debug = opts.Debug

	res := resolver.New(log)
	res.Progress = func(label string) func(error) {
		return ui.Track(app.Err, label)
	}

	presenter := output.NewPresenter(app.Out, opts.outputFormat())
	d := dispatch.New(res, presenter, log)
	d.DebugOut = app.Err

	return d.Run(ctx, g, inv, args, named)
}

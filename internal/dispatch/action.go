package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/invocation"
	"github.com/rileyhilliard/terminus/internal/resolver"
	"github.com/rileyhilliard/terminus/internal/site"
)

// Handler performs one action once its arguments, site and environment are
// bound.
type Handler func(ctx context.Context, call *Call) Result

// Action is one registered subcommand of a group.
type Action struct {
	// Name as users type it, e.g. "backups-list".
	Name  string
	Short string

	// Headers relabel the columns of a Records result in table mode.
	Headers []string

	RequiresSite bool
	// RequiresEnv implies RequiresSite.
	RequiresEnv bool

	// Switches are boolean named arguments the action reads, e.g.
	// "refresh". The CLI registers one flag per switch.
	Switches []string

	Handler Handler
}

// NeedsSite reports whether the action works on a bound site.
func (a Action) NeedsSite() bool {
	return a.RequiresSite || a.RequiresEnv
}

// NormalizeAction maps an action token to its registry key. Dashes and
// underscores are interchangeable.
func NormalizeAction(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}

// Group is a named, closed set of actions.
type Group struct {
	name    string
	actions map[string]Action
	order   []string
}

// NewGroup validates and registers actions. Names must be non-empty and
// unique after normalization, and every action needs a handler.
func NewGroup(name string, actions ...Action) (*Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("command group needs a name")
	}
	g := &Group{name: name, actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		key := NormalizeAction(a.Name)
		if key == "" {
			return nil, fmt.Errorf("group %s: action with empty name", name)
		}
		if a.Handler == nil {
			return nil, fmt.Errorf("group %s: action %s has no handler", name, a.Name)
		}
		if prev, dup := g.actions[key]; dup {
			return nil, fmt.Errorf("group %s: action %s collides with %s", name, a.Name, prev.Name)
		}
		g.actions[key] = a
		g.order = append(g.order, key)
	}
	return g, nil
}

// MustGroup is NewGroup for static registrations; it panics on error.
func MustGroup(name string, actions ...Action) *Group {
	g, err := NewGroup(name, actions...)
	if err != nil {
		panic(err)
	}
	return g
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Lookup finds an action by any spelling of its name.
func (g *Group) Lookup(name string) (Action, bool) {
	a, ok := g.actions[NormalizeAction(name)]
	return a, ok
}

// Actions returns the actions in registration order.
func (g *Group) Actions() []Action {
	out := make([]Action, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.actions[key])
	}
	return out
}

// Names returns the display names in registration order.
func (g *Group) Names() []string {
	names := make([]string, 0, len(g.order))
	for _, key := range g.order {
		names = append(names, g.actions[key].Name)
	}
	return names
}

// Call is what a handler receives.
type Call struct {
	// Args are the positional arguments after the action name.
	Args []string
	// Named holds flag values such as "site" and "env".
	Named map[string]string

	Inv      *invocation.Context
	Resolver *resolver.Resolver
}

// Flag returns a named argument, or the empty string.
func (c *Call) Flag(name string) string {
	return c.Named[name]
}

// Bool parses a boolean switch. An absent switch is false.
func (c *Call) Bool(name string) (bool, error) {
	v, ok := c.Named[name]
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for --%s", v, name)
	}
	return b, nil
}

// Site returns the bound site, if the action required one.
func (c *Call) Site() *site.Record {
	return c.Inv.Site
}

// Env returns the bound environment name.
func (c *Call) Env() string {
	return c.Inv.Env
}

// Do runs an API request in the invocation's session.
func (c *Call) Do(ctx context.Context, spec api.RequestSpec) (*api.Response, error) {
	return c.Inv.Do(ctx, spec)
}

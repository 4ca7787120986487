// Package dispatch binds a command invocation to a registered action,
// resolves the site and environment it needs, runs its handler and hands
// the result to the presenter.
package dispatch

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/invocation"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/rileyhilliard/terminus/internal/output"
	"github.com/rileyhilliard/terminus/internal/resolver"
)

// State is a stage of one Run.
type State int

const (
	StateIdle State = iota
	StateArgumentsBound
	StateSiteResolved
	StateEnvironmentResolved
	StateExecuted
	StatePresented
	StateReported
)

// String returns the display name for a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArgumentsBound:
		return "arguments-bound"
	case StateSiteResolved:
		return "site-resolved"
	case StateEnvironmentResolved:
		return "environment-resolved"
	case StateExecuted:
		return "executed"
	case StatePresented:
		return "presented"
	case StateReported:
		return "reported"
	default:
		return "unknown"
	}
}

// Dispatcher runs actions. It is shared by every group of one process.
type Dispatcher struct {
	Resolver  *resolver.Resolver
	Presenter *output.Presenter
	Log       logger.Logger

	// DebugOut receives state dumps when the invocation is in debug mode.
	DebugOut io.Writer
}

// New creates a Dispatcher. A nil log discards messages.
func New(res *resolver.Resolver, presenter *output.Presenter, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{
		Resolver:  res,
		Presenter: presenter,
		Log:       log,
		DebugOut:  io.Discard,
	}
}

// Run walks one invocation through every stage: bind the action, bind the
// site and environment it requires, execute it and present the result.
func (d *Dispatcher) Run(ctx context.Context, group *Group, inv *invocation.Context, positional []string, named map[string]string) error {
	run := d.NewRun(group, inv)
	err := run.all(ctx, positional, named)
	if err != nil {
		run.state = StateReported
		run.dump(err)
	}
	return err
}

func (r *Run) all(ctx context.Context, positional []string, named map[string]string) error {
	if err := r.BindAction(positional); err != nil {
		return err
	}
	if r.action.NeedsSite() {
		if err := r.BindSite(ctx, named); err != nil {
			return err
		}
	}
	if r.action.RequiresEnv {
		if err := r.BindEnvironment(ctx, named); err != nil {
			return err
		}
	}
	if err := r.Execute(ctx); err != nil {
		return err
	}
	r.dump(nil)
	return r.Present()
}

// Run is the state of one dispatch.
type Run struct {
	d      *Dispatcher
	group  *Group
	inv    *invocation.Context
	state  State
	action Action
	args   []string
	named  map[string]string
	result Result
}

// NewRun starts a Run in the Idle state.
func (d *Dispatcher) NewRun(group *Group, inv *invocation.Context) *Run {
	return &Run{d: d, group: group, inv: inv, state: StateIdle, named: map[string]string{}}
}

// State returns the current stage.
func (r *Run) State() State { return r.state }

// Action returns the bound action.
func (r *Run) Action() Action { return r.action }

// Result returns what the handler produced.
func (r *Run) Result() Result { return r.result }

func (r *Run) expect(allowed ...State) error {
	for _, s := range allowed {
		if r.state == s {
			return nil
		}
	}
	return fmt.Errorf("dispatch: unexpected step in state %s", r.state)
}

// BindAction takes the first positional argument as the action name and
// keeps the rest for the handler.
func (r *Run) BindAction(positional []string) error {
	if err := r.expect(StateIdle); err != nil {
		return err
	}

	name := ""
	if len(positional) > 0 {
		name = positional[0]
	}
	action, ok := r.group.Lookup(name)
	if !ok || name == "" {
		return errors.UnknownAction(r.group.Name(), name, r.group.Names())
	}

	r.action = action
	if len(positional) > 1 {
		r.args = append([]string(nil), positional[1:]...)
	}
	r.state = StateArgumentsBound
	r.d.Log.Debug("bound %s %s", r.group.Name(), action.Name)
	return nil
}

// BindSite resolves the "site" argument, a name or a UUID, and binds the
// record to the invocation.
func (r *Run) BindSite(ctx context.Context, named map[string]string) error {
	if err := r.expect(StateArgumentsBound); err != nil {
		return err
	}
	r.remember(named)

	token := named["site"]
	if token == "" {
		return errors.MissingSite()
	}

	id, err := r.d.Resolver.ResolveSiteOrIdentifier(ctx, r.inv, token)
	if err != nil {
		return err
	}
	rec, ok := r.inv.Sites.Lookup(id)
	if !ok {
		return errors.SiteNotFound(token)
	}

	r.inv.BindSite(rec)
	r.state = StateSiteResolved
	r.d.Log.Debug("site %s resolved to %s", token, rec.UUID)
	return nil
}

// BindEnvironment fetches the bound site's environment bindings and checks
// the "env" argument against them.
func (r *Run) BindEnvironment(ctx context.Context, named map[string]string) error {
	if err := r.expect(StateSiteResolved); err != nil {
		return err
	}
	r.remember(named)

	env := named["env"]
	if env == "" {
		return errors.MissingEnv()
	}

	bindings, err := r.d.Resolver.ResolveEnvironmentBindings(ctx, r.inv, r.inv.Site, env)
	if err != nil {
		return err
	}

	r.inv.BindEnvironment(env, bindings)
	r.state = StateEnvironmentResolved
	return nil
}

func (r *Run) remember(named map[string]string) {
	for k, v := range named {
		r.named[k] = v
	}
}

// Execute runs the handler. A Failure or an empty message is reported as
// EXEC_FAILED with the handler's error as the cause, except session and
// connection errors, which are returned as they are.
func (r *Run) Execute(ctx context.Context) error {
	if err := r.expect(StateArgumentsBound, StateSiteResolved, StateEnvironmentResolved); err != nil {
		return err
	}
	if r.action.NeedsSite() && r.state == StateArgumentsBound {
		return errors.MissingSite()
	}
	if r.action.RequiresEnv && r.state != StateEnvironmentResolved {
		return errors.MissingEnv()
	}

	call := &Call{
		Args:     r.args,
		Named:    r.named,
		Inv:      r.inv,
		Resolver: r.d.Resolver,
	}
	r.result = r.action.Handler(ctx, call)
	r.state = StateExecuted

	if r.result.Failed() {
		if errors.IsSessionOrConnection(r.result.Err) {
			return r.result.Err
		}
		return errors.ExecFailed(r.result.Err)
	}
	return nil
}

// Present writes the result.
func (r *Run) Present() error {
	if err := r.expect(StateExecuted); err != nil {
		return err
	}

	var err error
	switch r.result.Kind {
	case KindRecords:
		err = r.d.Presenter.Records(r.result.Data, r.action.Headers)
	case KindMessage:
		err = r.d.Presenter.Message(r.result.Text)
	default:
		return errors.ExecFailed(r.result.Err)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExecFailed, "Could not render the result", "")
	}
	r.state = StatePresented
	return nil
}

// dump writes the invocation state as YAML in debug mode.
func (r *Run) dump(cause error) {
	if !r.inv.Debug || r.d.DebugOut == nil {
		return
	}

	snap := r.inv.Snapshot()
	snap.Extra = map[string]any{
		"group": r.group.Name(),
		"state": r.state.String(),
	}
	if r.action.Name != "" {
		snap.Extra["action"] = r.action.Name
	}
	if cause != nil {
		snap.Extra["error_code"] = errors.Code(cause)
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		r.d.Log.Warn("could not encode debug state: %v", err)
		return
	}
	fmt.Fprintf(r.d.DebugOut, "--- debug: %s ---\n%s", r.group.Name(), data)
}

// Package invocation carries the state of one command invocation.
//
// A Context is built once per process from the cache, then threaded
// explicitly through the resolver, the dispatcher and the handlers. Nothing
// here is global.
package invocation

import (
	"context"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/cache"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/rileyhilliard/terminus/internal/site"
)

// Context is the explicit state of one invocation.
type Context struct {
	Session *api.Session
	Sites   site.Collection

	// Site and Bindings are set by the dispatcher. Bindings always belong
	// to Site.
	Site     *site.Record
	Env      string
	Bindings site.Bindings

	// LastResponse is the most recent API response, kept for debug dumps.
	LastResponse *api.Response

	Debug bool

	Store  cache.Store
	Client api.Executor
	Log    logger.Logger
}

// Load builds a Context from the cached session and site list. A missing
// session is not an error here; the first API call reports it. A corrupt
// site list is dropped with a warning so the next lookup refetches it.
func Load(store cache.Store, client api.Executor, log logger.Logger) (*Context, error) {
	if log == nil {
		log = logger.Noop()
	}
	c := &Context{
		Store:  store,
		Client: client,
		Log:    log,
		Sites:  site.Collection{},
	}

	var session api.Session
	ok, err := store.Get(cache.KeySession, &session)
	if err != nil {
		return nil, err
	}
	if ok {
		c.Session = &session
	}

	var sites site.Collection
	ok, err = store.Get(cache.KeySites, &sites)
	switch {
	case err != nil:
		log.Warn("ignoring unreadable site cache: %v", err)
	case ok && sites != nil:
		c.Sites = sites
	}

	return c, nil
}

// Do executes spec with the invocation's session and remembers the
// response, successful or not.
func (c *Context) Do(ctx context.Context, spec api.RequestSpec) (*api.Response, error) {
	resp, err := c.Client.Execute(ctx, c.Session, spec)
	if resp != nil {
		c.LastResponse = resp
	}
	return resp, err
}

// ReplaceSites swaps in a freshly fetched collection. The old map is never
// edited.
func (c *Context) ReplaceSites(sites site.Collection) {
	if sites == nil {
		sites = site.Collection{}
	}
	c.Sites = sites
}

// BindSite records the resolved site. Binding a different site drops any
// environment bindings fetched for the previous one.
func (c *Context) BindSite(rec *site.Record) {
	if c.Site == nil || rec == nil || c.Site.UUID != rec.UUID {
		c.Env = ""
		c.Bindings = nil
	}
	c.Site = rec
}

// BindEnvironment records env and its bindings for the bound site.
func (c *Context) BindEnvironment(env string, bindings site.Bindings) {
	c.Env = env
	c.Bindings = bindings
}

// Snapshot is the debug view of a Context. The session token is omitted.
type Snapshot struct {
	UserID       string         `yaml:"user_uuid,omitempty"`
	Site         *site.Record   `yaml:"site,omitempty"`
	Env          string         `yaml:"env,omitempty"`
	Bindings     site.Bindings  `yaml:"bindings,omitempty"`
	CachedSites  int            `yaml:"cached_sites"`
	LastResponse *api.Response  `yaml:"last_response,omitempty"`
	Extra        map[string]any `yaml:"extra,omitempty"`
}

// Snapshot captures the current state for a debug dump.
func (c *Context) Snapshot() Snapshot {
	s := Snapshot{
		Site:         c.Site,
		Env:          c.Env,
		Bindings:     c.Bindings,
		CachedSites:  len(c.Sites),
		LastResponse: c.LastResponse,
	}
	if c.Session != nil {
		s.UserID = c.Session.UserID
	}
	return s
}

// Package resolver turns user-supplied site and environment names into
// canonical identifiers, using the cached site list first and the API
// second.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/cache"
	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/invocation"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/rileyhilliard/terminus/internal/site"
	"github.com/rileyhilliard/terminus/internal/util"
)

// SitesPath is the user-realm path that lists every site the user can see.
const SitesPath = "sites"

// ProgressFunc reports a blocking step to the user. It returns a function
// to call with the step's outcome.
type ProgressFunc func(label string) (done func(err error))

// Resolver resolves sites and environments for one invocation.
type Resolver struct {
	Log      logger.Logger
	Progress ProgressFunc
}

// New creates a Resolver. A nil log discards messages.
func New(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Noop()
	}
	return &Resolver{Log: log}
}

// FetchSites returns the cached site list, fetching it first when the cache
// is empty or noCache is set.
func (r *Resolver) FetchSites(ctx context.Context, inv *invocation.Context, noCache bool) (site.Collection, error) {
	if len(inv.Sites) > 0 && !noCache {
		return inv.Sites, nil
	}
	if err := r.refreshSites(ctx, inv); err != nil {
		return nil, err
	}
	return inv.Sites, nil
}

// refreshSites refetches the whole site list, swaps it into inv and
// persists it.
func (r *Resolver) refreshSites(ctx context.Context, inv *invocation.Context) (err error) {
	r.Log.Info("Fetching site list")
	if r.Progress != nil {
		done := r.Progress("Fetching site list")
		defer func() { done(err) }()
	}

	userID := ""
	if inv.Session != nil {
		userID = inv.Session.UserID
	}

	resp, err := inv.Do(ctx, api.Get(api.RealmUser, userID, SitesPath, map[string]any{"hydrated": true}))
	if err != nil {
		return err
	}

	sites, err := decodeSites(resp.Payload())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrRequestFailed,
			"Unexpected site list from the API",
			"Re-run with --debug to see the raw response")
	}

	inv.ReplaceSites(sites)
	if inv.Store != nil {
		if err := inv.Store.Put(cache.KeySites, sites); err != nil {
			r.Log.Warn("could not cache site list: %v", err)
		}
	}
	r.Log.Debug("cached %d %s", len(sites), util.Pluralize(len(sites), "site", "sites"))
	return nil
}

// decodeSites converts a decoded payload into a Collection. An empty JSON
// array means no sites.
func decodeSites(payload any) (site.Collection, error) {
	switch p := payload.(type) {
	case nil:
		return nil, fmt.Errorf("response body is not JSON")
	case []any:
		if len(p) == 0 {
			return site.Collection{}, nil
		}
		return nil, fmt.Errorf("expected an object keyed by site uuid, got a list of %d items", len(p))
	case map[string]any:
		encoded, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		var sites site.Collection
		if err := json.Unmarshal(encoded, &sites); err != nil {
			return nil, err
		}
		return sites, nil
	default:
		return nil, fmt.Errorf("expected an object keyed by site uuid, got %T", payload)
	}
}

// ResolveSite finds a site by exact name. The cached list is searched first
// unless forceRefresh is set; on a miss the list is refetched once and
// searched again.
func (r *Resolver) ResolveSite(ctx context.Context, inv *invocation.Context, name string, forceRefresh bool) (*site.Record, error) {
	if !forceRefresh {
		if rec, ok := inv.Sites.FindByName(name); ok {
			r.Log.Debug("site %q found in cache as %s", name, rec.UUID)
			return rec, nil
		}
	}

	if err := r.refreshSites(ctx, inv); err != nil {
		return nil, err
	}

	if rec, ok := inv.Sites.FindByName(name); ok {
		return rec, nil
	}
	return nil, errors.SiteNotFound(name)
}

// ResolveSiteOrIdentifier returns the UUID for token. A token that is
// already a valid UUID present in the cached list is returned as is;
// anything else is resolved by name.
func (r *Resolver) ResolveSiteOrIdentifier(ctx context.Context, inv *invocation.Context, token string) (string, error) {
	if site.IsValidUUID(token) {
		if _, ok := inv.Sites[token]; ok {
			return token, nil
		}
	}

	rec, err := r.ResolveSite(ctx, inv, token, false)
	if err != nil {
		return "", err
	}
	return rec.UUID, nil
}

// ResolveEnvironmentBindings fetches the bindings of rec and checks that
// env is among them.
func (r *Resolver) ResolveEnvironmentBindings(ctx context.Context, inv *invocation.Context, rec *site.Record, env string) (site.Bindings, error) {
	if rec == nil {
		return nil, errors.MissingSite()
	}

	resp, err := inv.Do(ctx, api.Get(api.RealmSite, rec.UUID, BindingsPath(env), nil))
	if err != nil {
		if errors.IsSessionOrConnection(err) {
			return nil, err
		}
		r.Log.Debug("bindings request for %s/%s failed: %v", rec.Name, env, err)
		notFound := errors.EnvNotFound(env)
		notFound.Cause = err
		return nil, notFound
	}

	obj, ok := resp.Payload().(map[string]any)
	if !ok {
		r.Log.Debug("bindings for %s/%s are not an object", rec.Name, env)
		return nil, errors.EnvNotFound(env)
	}

	bindings := site.Bindings(obj)
	if !bindings.Has(env) {
		return nil, errors.EnvNotFound(env)
	}
	return bindings, nil
}

// BindingsPath is the site-realm path of an environment's bindings.
func BindingsPath(env string) string {
	return "environments/" + env + "/bindings"
}


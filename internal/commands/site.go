package commands

import (
	"context"
	"sort"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/dispatch"
	"github.com/rileyhilliard/terminus/internal/output"
)

// Site returns the "site" group. Every action works on the site named by
// --site; some also need --env.
func Site() (*dispatch.Group, error) {
	return dispatch.NewGroup("site",
		dispatch.Action{
			Name:         "info",
			Short:        "Show a site's details",
			Headers:      []string{"Field", "Value"},
			RequiresSite: true,
			Handler:      siteInfo,
		},
		dispatch.Action{
			Name:         "environments",
			Short:        "List a site's environments",
			RequiresSite: true,
			Handler:      siteEnvironments,
		},
		dispatch.Action{
			Name:        "bindings",
			Short:       "Show the bindings of one environment",
			RequiresEnv: true,
			Handler:     siteBindings,
		},
		dispatch.Action{
			Name:        "backups-list",
			Short:       "List the backups of one environment",
			RequiresEnv: true,
			Handler:     siteBackups,
		},
	)
}

// EnvironmentsPath lists a site's environments.
const EnvironmentsPath = "environments"

// BackupsPath is the site-realm path of an environment's backup catalog.
func BackupsPath(env string) string {
	return "environments/" + env + "/backups/catalog"
}

func siteInfo(_ context.Context, call *dispatch.Call) dispatch.Result {
	rec := call.Site()

	fields := make([]string, 0, len(rec.Fields)+1)
	for k := range rec.Fields {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	rows := []map[string]any{{"field": "uuid", "value": rec.UUID}}
	for _, k := range fields {
		rows = append(rows, map[string]any{"field": k, "value": output.Cell(rec.Fields[k])})
	}
	return dispatch.Records(rows)
}

func siteEnvironments(ctx context.Context, call *dispatch.Call) dispatch.Result {
	resp, err := call.Do(ctx, api.Get(api.RealmSite, call.Site().UUID, EnvironmentsPath, nil))
	if err != nil {
		return dispatch.Failure(err)
	}

	envs, ok := resp.Payload().(map[string]any)
	if !ok || len(envs) == 0 {
		return dispatch.Message("No environments found.")
	}
	return dispatch.Records(keyedRows(envs, "name"))
}

func siteBindings(_ context.Context, call *dispatch.Call) dispatch.Result {
	env := call.Env()
	data := call.Inv.Bindings[env]

	switch b := data.(type) {
	case map[string]any:
		if len(b) == 0 {
			return dispatch.Message("No bindings for " + env + ".")
		}
		return dispatch.Records(keyedRows(b, "binding"))
	case []any:
		if len(b) == 0 {
			return dispatch.Message("No bindings for " + env + ".")
		}
		return dispatch.Records(b)
	case nil:
		return dispatch.Message("No bindings for " + env + ".")
	default:
		return dispatch.Records(map[string]any{"environment": env, "value": b})
	}
}

func siteBackups(ctx context.Context, call *dispatch.Call) dispatch.Result {
	env := call.Env()
	resp, err := call.Do(ctx, api.Get(api.RealmSite, call.Site().UUID, BackupsPath(env), nil))
	if err != nil {
		return dispatch.Failure(err)
	}

	catalog, ok := resp.Payload().(map[string]any)
	if !ok || len(catalog) == 0 {
		return dispatch.Message("No backups found for " + env + ".")
	}
	return dispatch.Records(keyedRows(catalog, "id"))
}

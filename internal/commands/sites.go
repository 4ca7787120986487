package commands

import (
	"context"

	"github.com/rileyhilliard/terminus/internal/dispatch"
)

// RefreshFlag forces a refetch of the site list.
const RefreshFlag = "refresh"

// Sites returns the "sites" group.
func Sites() (*dispatch.Group, error) {
	return dispatch.NewGroup("sites",
		dispatch.Action{
			Name:     "show",
			Short:    "List the sites you can access",
			Headers:  []string{"Framework", "Name", "Service Level", "UUID"},
			Switches: []string{RefreshFlag},
			Handler:  showSites,
		},
	)
}

func showSites(ctx context.Context, call *dispatch.Call) dispatch.Result {
	refresh, err := call.Bool(RefreshFlag)
	if err != nil {
		return dispatch.Failure(err)
	}

	sites, err := call.Resolver.FetchSites(ctx, call.Inv, refresh)
	if err != nil {
		return dispatch.Failure(err)
	}
	if len(sites) == 0 {
		return dispatch.Message("You have no sites.")
	}

	rows := make([]map[string]any, 0, len(sites))
	for _, full := range sites.Rows() {
		rows = append(rows, map[string]any{
			"framework":     stringField(full, "framework"),
			"name":          stringField(full, "name"),
			"service_level": stringField(full, "service_level"),
			"uuid":          full["uuid"],
		})
	}
	return dispatch.Records(rows)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

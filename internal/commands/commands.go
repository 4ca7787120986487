// Package commands registers the terminus command groups and their
// actions.
package commands

import (
	"sort"

	"github.com/rileyhilliard/terminus/internal/dispatch"
)

// Groups returns every command group, validated.
func Groups() ([]*dispatch.Group, error) {
	sites, err := Sites()
	if err != nil {
		return nil, err
	}
	site, err := Site()
	if err != nil {
		return nil, err
	}
	return []*dispatch.Group{sites, site}, nil
}

// keyedRows turns a map of objects into rows, adding the map key under
// keyField. Rows are ordered by key. Non-object values are kept under
// "value".
func keyedRows(m map[string]any, keyField string) []map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		row := map[string]any{}
		if obj, ok := m[k].(map[string]any); ok {
			for field, v := range obj {
				row[field] = v
			}
		} else {
			row["value"] = m[k]
		}
		row[keyField] = k
		rows = append(rows, row)
	}
	return rows
}

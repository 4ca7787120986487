// Package site models the sites and environment bindings returned by the API.
package site

import (
	"sort"

	"github.com/google/uuid"
)

// Entry is one value of the site collection as the API returns it with
// hydrated=true. The entry does not carry its own UUID; that is the key it
// is stored under.
type Entry struct {
	Information map[string]any `json:"information" yaml:"information"`
}

// Name returns the site's name, or the empty string when absent.
func (e Entry) Name() string {
	if e.Information == nil {
		return ""
	}
	name, _ := e.Information["name"].(string)
	return name
}

// Collection maps site UUID to Entry. It is replaced as a whole on refresh
// and never edited in place.
type Collection map[string]Entry

// Record is a site resolved from a Collection, with its UUID attached.
type Record struct {
	UUID   string         `json:"site_uuid" yaml:"site_uuid"`
	Name   string         `json:"name" yaml:"name"`
	Fields map[string]any `json:"information,omitempty" yaml:"information,omitempty"`
}

// FindByName returns the record whose name matches exactly. When several
// sites share a name the one with the lowest UUID wins, so repeated lookups
// agree.
func (c Collection) FindByName(name string) (*Record, bool) {
	for _, id := range c.UUIDs() {
		if c[id].Name() == name {
			return c.record(id), true
		}
	}
	return nil, false
}

// Lookup returns the record stored under id.
func (c Collection) Lookup(id string) (*Record, bool) {
	if _, ok := c[id]; !ok {
		return nil, false
	}
	return c.record(id), true
}

func (c Collection) record(id string) *Record {
	entry := c[id]
	fields := make(map[string]any, len(entry.Information))
	for k, v := range entry.Information {
		fields[k] = v
	}
	return &Record{UUID: id, Name: entry.Name(), Fields: fields}
}

// UUIDs returns the collection's keys in sorted order.
func (c Collection) UUIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rows flattens the collection for display: one map per site with its
// uuid added, ordered by name then uuid.
func (c Collection) Rows() []map[string]any {
	ids := c.UUIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return c[ids[i]].Name() < c[ids[j]].Name()
	})

	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		row := make(map[string]any, len(c[id].Information)+1)
		for k, v := range c[id].Information {
			row[k] = v
		}
		row["uuid"] = id
		rows = append(rows, row)
	}
	return rows
}

// IsValidUUID reports whether s is a syntactically valid UUID.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Bindings maps environment name to its binding metadata for one site.
type Bindings map[string]any

// Has reports whether env is bound.
func (b Bindings) Has(env string) bool {
	_, ok := b[env]
	return ok
}

// Environments returns the bound environment names, sorted.
func (b Bindings) Environments() []string {
	envs := make([]string, 0, len(b))
	for env := range b {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	return envs
}

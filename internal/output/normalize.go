package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ValueColumn labels the single column produced for scalar data.
const ValueColumn = "value"

// Normalize flattens data into a header row and string cells.
//
//   - a sequence of objects yields one row per object
//   - a mapping whose values are all objects yields one row per value,
//     ordered by key
//   - any other mapping yields a single row
//   - a sequence of scalars, or a lone scalar, yields a "value" column
//
// Columns are the sorted keys of the first record, followed by keys that
// only later records carry. Data is passed through encoding/json first so
// typed structs and maps behave the same as API payloads.
func Normalize(data any) ([]string, [][]string, error) {
	generic, err := toGeneric(data)
	if err != nil {
		return nil, nil, err
	}

	switch v := generic.(type) {
	case nil:
		return nil, nil, nil
	case []any:
		return normalizeList(v)
	case map[string]any:
		if objects, ok := objectValues(v); ok {
			headers, rows := tabulate(objects)
			return headers, rows, nil
		}
		headers, rows := tabulate([]map[string]any{v})
		return headers, rows, nil
	default:
		return []string{ValueColumn}, [][]string{{Cell(v)}}, nil
	}
}

func normalizeList(items []any) ([]string, [][]string, error) {
	if len(items) == 0 {
		return nil, nil, nil
	}

	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			break
		}
		objects = append(objects, obj)
	}
	if len(objects) == len(items) {
		headers, rows := tabulate(objects)
		return headers, rows, nil
	}
	if len(objects) > 0 {
		return nil, nil, fmt.Errorf("cannot tabulate a list that mixes objects and scalars")
	}

	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{Cell(item)}
	}
	return []string{ValueColumn}, rows, nil
}

// objectValues returns the map's values ordered by key when every value is
// an object.
func objectValues(m map[string]any) ([]map[string]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	keys := sortedKeys(m)
	objects := make([]map[string]any, 0, len(m))
	for _, k := range keys {
		obj, ok := m[k].(map[string]any)
		if !ok {
			return nil, false
		}
		objects = append(objects, obj)
	}
	return objects, true
}

func tabulate(records []map[string]any) ([]string, [][]string) {
	var headers []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = Cell(rec[h])
		}
		rows[i] = row
	}
	return headers, rows
}

// Cell renders one value for a table cell. Nested values become compact
// JSON.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		encoded, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(encoded)
	}
}

// toGeneric converts data into the shapes encoding/json decodes to.
func toGeneric(data any) (any, error) {
	if data == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("cannot render %T: %w", data, err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

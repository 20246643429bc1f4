package query

import (
	"encoding/json"
	"fmt"
)

// Project reshapes serialized items to the requested JSON keys (plus id).
// "-" prefixed keys are dropped instead. With no fields the items are
// returned unchanged.
func Project[T any](items []T, fields []string, idField string) (interface{}, error) {
	include, exclude, err := SplitFields(fields)
	if err != nil {
		return nil, err
	}
	if len(include) == 0 && len(exclude) == 0 {
		return items, nil
	}

	keep := map[string]bool{idField: true}
	for _, f := range include {
		keep[f] = true
	}
	drop := map[string]bool{}
	for _, f := range exclude {
		if f != idField {
			drop[f] = true
		}
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
		for key := range full {
			if (len(include) > 0 && !keep[key]) || drop[key] {
				delete(full, key)
			}
		}
		out = append(out, full)
	}
	return out, nil
}

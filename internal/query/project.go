package query

import (
	"encoding/json"
	"fmt"
)

// Project keeps only the named JSON fields of every element of items.
// An empty field list returns items unchanged.
func Project(items any, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items for projection: %w", err)
	}
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode items for projection: %w", err)
	}

	projected := make([]map[string]json.RawMessage, len(rows))
	for i, row := range rows {
		out := make(map[string]json.RawMessage, len(fields))
		for _, f := range fields {
			if v, ok := row[f]; ok {
				out[f] = v
			}
		}
		projected[i] = out
	}
	return projected, nil
}

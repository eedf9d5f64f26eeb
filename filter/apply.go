package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Apply filters the list stored under key in a response object and returns
// a shallow copy of the response with the filtered list. An empty key picks
// the only list-valued member. The matched count is stored under
// "filtered_count".
func (e *Evaluator) Apply(ctx context.Context, result map[string]any, key string, f Filter) (map[string]any, error) {
	if f == nil {
		return result, nil
	}
	if key == "" {
		var err error
		if key, err = listKey(result); err != nil {
			return nil, err
		}
	}

	raw, ok := result[key]
	if !ok {
		return nil, fmt.Errorf("%w: key '%s' not found", ErrNotAList, key)
	}
	records, err := toRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("key '%s': %w", key, err)
	}

	matches, err := e.Select(ctx, f, records)
	if err != nil {
		return nil, err
	}

	list := make([]any, len(matches))
	for i, r := range matches {
		list[i] = r
	}

	out := maps.Clone(result)
	out[key] = list
	out["filtered_count"] = len(list)
	return out, nil
}

// listKey returns the single member of result holding a list
func listKey(result map[string]any) (string, error) {
	var keys []string
	for k, v := range result {
		if _, ok := v.([]any); ok {
			keys = append(keys, k)
		}
	}
	switch len(keys) {
	case 1:
		return keys[0], nil
	case 0:
		return "", fmt.Errorf("%w: response has no list member", ErrNotAList)
	default:
		slices.Sort(keys)
		return "", fmt.Errorf("%w: response has several list members %v, choose one", ErrNotAList, keys)
	}
}

func toRecords(raw any) ([]Record, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, ErrNotAList
	}

	records := make([]Record, 0, len(list))
	for i, v := range list {
		r, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrNotAList, i, v)
		}
		records = append(records, r)
	}
	return records, nil
}

package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MergeFunc combines the JSON encoding of a store's defaults with a
// persisted record and returns the JSON of the hydrated state.
//
// Both inputs must be JSON objects. An error makes the store fall back to
// its defaults.
type MergeFunc func(defaults, persisted json.RawMessage) (json.RawMessage, error)

var errNotObject = errors.New("not a JSON object")

// ShallowMerge overlays the persisted record's top-level fields onto the
// defaults. Nested objects are replaced wholesale, so a nested field that is
// missing from the record takes its zero value, not its default.
func ShallowMerge(defaults, persisted json.RawMessage) (json.RawMessage, error) {
	base, err := decodeObject(defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	over, err := decodeObject(persisted)
	if err != nil {
		return nil, fmt.Errorf("persisted record: %w", err)
	}
	for k, v := range over {
		base[k] = v
	}
	return json.Marshal(base)
}

// DeepMerge is ShallowMerge applied recursively: where both sides hold an
// object under the same key, the objects are merged instead of replaced.
// Arrays and scalars from the record always replace the default.
func DeepMerge(defaults, persisted json.RawMessage) (json.RawMessage, error) {
	base, err := decodeObject(defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	over, err := decodeObject(persisted)
	if err != nil {
		return nil, fmt.Errorf("persisted record: %w", err)
	}
	merged, err := deepMergeObjects(base, over)
	if err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

func deepMergeObjects(base, over map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	for k, strong := range over {
		weak, ok := base[k]
		if !ok || !isObject(weak) || !isObject(strong) {
			base[k] = strong
			continue
		}
		weakObj, err := decodeObject(weak)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		strongObj, err := decodeObject(strong)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		merged, err := deepMergeObjects(weakObj, strongObj)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		encoded, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		base[k] = encoded
	}
	return base, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if !isObject(raw) {
		return nil, errNotObject
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]json.RawMessage{}
	}
	return obj, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

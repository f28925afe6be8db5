package jsonld

import (
	"encoding/json"
	"reflect"
	"sort"
)

// The processing algorithms operate on generic JSON value trees as produced
// by encoding/json with UseNumber: nil, bool, string, json.Number,
// []interface{}, and map[string]interface{}. Numbers decoded as float64 or
// passed as Go integer types are accepted but never re-encoded; the textual
// form observed on input is the one carried through.

// isScalar reports whether v is a JSON scalar (string, number, or boolean).
func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// asArray wraps v in a single-element slice unless it already is one.
// A nil value yields an empty slice.
func asArray(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	if arr, ok := v.([]interface{}); ok {
		return arr
	}
	return []interface{}{v}
}

// isEmptyObject reports whether v is a JSON object with no entries.
func isEmptyObject(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	return ok && len(obj) == 0
}

// sortedKeys returns the keys of obj in lexicographic order. Key order is
// always normalized: Go map iteration is randomized and the algorithms need
// repeatable behavior even when the caller did not ask for ordered output.
func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// deepCopy clones a JSON value tree. Maps and slices are copied; scalars
// are shared (they are immutable).
func deepCopy(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = deepCopy(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}

// deepEqual compares two JSON value trees structurally. json.Number values
// compare by their textual form.
func deepEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// appendUnique appends v to list unless an equal value is already present.
func appendUnique(list []interface{}, v interface{}) []interface{} {
	for _, existing := range list {
		if deepEqual(existing, v) {
			return list
		}
	}
	return append(list, v)
}

// appendUniqueString appends s to list unless already present.
func appendUniqueString(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// containsString reports whether list contains s.
func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

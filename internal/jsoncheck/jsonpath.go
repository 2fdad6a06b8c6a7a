// Package jsoncheck evaluates JSONPath-style lookups and assertions against
// decoded JSON documents (map[string]any / []any trees).
package jsoncheck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// step is one hop of a compiled path: a map key, or an array index when
// key is empty.
type step struct {
	key   string
	index int
}

// compile turns the part of a path after "$" into steps. Accepted forms are
// ".field", "[n]" and any chain of them; empty ".." hops are ignored.
func compile(path string) ([]step, error) {
	var steps []step
	rest := path
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			n := strings.IndexAny(rest, ".[")
			if n < 0 {
				n = len(rest)
			}
			if n > 0 {
				steps = append(steps, step{key: rest[:n]})
			}
			rest = rest[n:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in %q", path)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("invalid array index in %q: %w", path, err)
			}
			steps = append(steps, step{index: idx})
			rest = rest[end+1:]
		default:
			return nil, fmt.Errorf("unexpected %q in %q", rest[0], path)
		}
	}
	return steps, nil
}

// Get resolves a JSONPath-style expression such as "$", "$.field.nested",
// "$.list[0].name" or "$[1]" against a decoded document. It returns a
// one-element slice on a match and nil when the path does not resolve; an
// error means the expression itself is malformed.
func Get(doc any, path string) ([]any, error) {
	rest, ok := strings.CutPrefix(path, "$")
	if !ok {
		return nil, fmt.Errorf("JSONPath must start with $: %q", path)
	}
	if rest != "" && rest[0] != '.' && rest[0] != '[' {
		rest = "." + rest
	}
	steps, err := compile(rest)
	if err != nil {
		return nil, err
	}

	cur := doc
	for _, st := range steps {
		if st.key != "" {
			obj, _ := cur.(map[string]any)
			v, found := obj[st.key]
			if !found {
				return nil, nil
			}
			cur = v
			continue
		}
		arr, isArr := cur.([]any)
		if !isArr || st.index < 0 || st.index >= len(arr) {
			return nil, nil
		}
		cur = arr[st.index]
	}
	return []any{cur}, nil
}

// Lookup is Get for callers that only need the value. ok is false when the
// path is invalid or does not resolve.
func Lookup(doc any, path string) (any, bool) {
	results, err := Get(doc, path)
	if err != nil || len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// String returns the string at path, or "" when absent or not a string.
func String(doc any, path string) string {
	v, ok := Lookup(doc, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// List returns the array at path. ok is false when absent or not an array.
func List(doc any, path string) ([]any, bool) {
	v, found := Lookup(doc, path)
	if !found {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Parse decodes a JSON byte slice into a generic document.
func Parse(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("response body is not valid JSON: %w", err)
	}
	return doc, nil
}

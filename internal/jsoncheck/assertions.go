package jsoncheck

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// AssertionError reports a document that did not match an expectation.
type AssertionError struct {
	Path string
	Msg  string
}

func (e *AssertionError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("JSONPath %q: %s", e.Path, e.Msg)
}

func failf(path, format string, args ...any) error {
	return &AssertionError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Evaluate checks every path -> expected pair against doc. Paths are
// evaluated in sorted order so the first reported failure is stable.
// An expected value that is a map is treated as a set of operators.
func Evaluate(doc any, assertions map[string]any) error {
	paths := make([]string, 0, len(assertions))
	for p := range assertions {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := evaluateOne(doc, path, assertions[path]); err != nil {
			return err
		}
	}
	return nil
}

func evaluateOne(doc any, path string, expected any) error {
	results, err := Get(doc, path)
	if err != nil {
		return failf(path, "invalid JSONPath: %v", err)
	}

	if opMap, ok := expected.(map[string]any); ok {
		return evaluateOperators(path, results, opMap)
	}

	if len(results) == 0 {
		return failf(path, "no match found")
	}
	if !valuesEqual(results[0], expected) {
		return failf(path, "expected %v (%T), got %v (%T)", expected, expected, results[0], results[0])
	}
	return nil
}

func evaluateOperators(path string, results []any, ops map[string]any) error {
	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Strings(names)

	for _, op := range names {
		expected := ops[op]

		if op == "exists" {
			want, ok := expected.(bool)
			if !ok {
				return failf(path, "'exists' operator requires a boolean value")
			}
			if want && len(results) == 0 {
				return failf(path, "expected to exist but no match found")
			}
			if !want && len(results) > 0 {
				return failf(path, "expected not to exist but found %v", results[0])
			}
			continue
		}

		if len(results) == 0 {
			return failf(path, "no match found for '%s' check", op)
		}
		actual := results[0]

		switch op {
		case "eq":
			if !valuesEqual(actual, expected) {
				return failf(path, "expected eq %v, got %v", expected, actual)
			}

		case "ne":
			if valuesEqual(actual, expected) {
				return failf(path, "expected a value other than %v", expected)
			}

		case "gte", "lte":
			a, err := toFloat64(actual)
			if err != nil {
				return failf(path, "'%s' requires numeric actual value: %v", op, err)
			}
			e, err := toFloat64(expected)
			if err != nil {
				return failf(path, "'%s' requires numeric expected value: %v", op, err)
			}
			if op == "gte" && a < e {
				return failf(path, "expected >= %v, got %v", e, a)
			}
			if op == "lte" && a > e {
				return failf(path, "expected <= %v, got %v", e, a)
			}

		case "contains":
			if err := checkContains(path, actual, expected); err != nil {
				return err
			}

		case "regex":
			pattern, ok := expected.(string)
			if !ok {
				return failf(path, "'regex' operator requires a string pattern")
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return failf(path, "invalid regex pattern %q: %v", pattern, err)
			}
			s := fmt.Sprintf("%v", actual)
			if !re.MatchString(s) {
				return failf(path, "value %q does not match regex %q", s, pattern)
			}

		case "type":
			want, ok := expected.(string)
			if !ok {
				return failf(path, "'type' operator requires a string value")
			}
			if got := TypeName(actual); got != want {
				return failf(path, "expected type %s, got %s", want, got)
			}

		case "len":
			n, err := toFloat64(expected)
			if err != nil {
				return failf(path, "'len' requires a numeric value: %v", err)
			}
			got, ok := lengthOf(actual)
			if !ok {
				return failf(path, "'len' requires an array, object or string, got %s", TypeName(actual))
			}
			if float64(got) != n {
				return failf(path, "expected length %v, got %d", n, got)
			}

		case "in":
			options, ok := expected.([]any)
			if !ok {
				return failf(path, "'in' operator requires a list value")
			}
			found := false
			for _, opt := range options {
				if valuesEqual(actual, opt) {
					found = true
					break
				}
			}
			if !found {
				return failf(path, "value %v is not one of %v", actual, options)
			}

		default:
			return failf(path, "unknown operator %q", op)
		}
	}
	return nil
}

// checkContains matches a substring for scalars and membership for arrays.
func checkContains(path string, actual, expected any) error {
	if arr, ok := actual.([]any); ok {
		for _, item := range arr {
			if valuesEqual(item, expected) {
				return nil
			}
		}
		return failf(path, "expected array to contain %v", expected)
	}
	a := fmt.Sprintf("%v", actual)
	e := fmt.Sprintf("%v", expected)
	if !strings.Contains(a, e) {
		return failf(path, "expected to contain %q, got %q", e, a)
	}
	return nil
}

// TypeName returns the JSON type of a decoded value: array, object,
// string, number, bool or null.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "bool"
	}
	if _, err := toFloat64(v); err == nil {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	case string:
		return len(t), true
	}
	return 0, false
}

// Missing returns the fields absent from obj, in the order given.
func Missing(obj map[string]any, fields []string) []string {
	var missing []string
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Count returns how many items of list satisfy pred.
func Count(list []any, pred func(map[string]any) bool) int {
	n := 0
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok && pred(obj) {
			n++
		}
	}
	return n
}

// FieldEquals returns a Count predicate matching items whose field equals want.
func FieldEquals(field string, want any) func(map[string]any) bool {
	return func(obj map[string]any) bool {
		v, ok := obj[field]
		return ok && valuesEqual(v, want)
	}
}

// SortedDesc reports whether the objects of list are ordered by key, newest
// first. Values are compared as RFC 3339 timestamps when both parse, and as
// strings otherwise. On failure the index of the first out-of-order item is
// returned.
func SortedDesc(list []any, key string) (bool, int) {
	for i := 1; i < len(list); i++ {
		prev := stringField(list[i-1], key)
		cur := stringField(list[i], key)
		if compareTimestamps(prev, cur) < 0 {
			return false, i
		}
	}
	return true, -1
}

func stringField(item any, key string) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}

func compareTimestamps(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	return strings.Compare(a, b)
}

// valuesEqual compares two values, coercing numeric types. Values must be
// the same kind (both numeric or both non-numeric) to be equal.
func valuesEqual(actual, expected any) bool {
	a, aErr := toFloat64(actual)
	e, eErr := toFloat64(expected)

	if aErr == nil && eErr == nil {
		return a == e
	}
	if (aErr == nil) != (eErr == nil) {
		return false
	}
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

// Equal reports whether two decoded JSON scalars are equal with numeric coercion.
func Equal(a, b any) bool { return valuesEqual(a, b) }

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

package extension

import (
	"fmt"
	"os"
	"strings"

	"github.com/wondertwin-ai/weddingcheck/internal/verifier"
)

// vars builds the template scope for one file run: file variables first,
// then the verifier state, then captures as they happen.
func vars(f *File, st verifier.State) map[string]string {
	out := make(map[string]string, len(f.Variables)+3)
	for k, v := range f.Variables {
		out[k] = v
	}
	out["session_id"] = st.SessionID
	out["user_id"] = st.UserID
	out["wedding_id"] = st.WeddingID
	return out
}

// Expand replaces {{name}} and {{env.NAME}} placeholders in s.
func Expand(s string, vars map[string]string) (string, error) {
	var b strings.Builder
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			return "", fmt.Errorf("unterminated template expression in %q", s)
		}
		end += start

		value, err := resolve(strings.TrimSpace(rest[start+2:end]), vars)
		if err != nil {
			return "", err
		}
		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[end+2:]
	}
}

func resolve(expr string, vars map[string]string) (string, error) {
	if name, ok := strings.CutPrefix(expr, "env."); ok {
		return os.Getenv(name), nil
	}
	if val, ok := vars[expr]; ok {
		return val, nil
	}
	return "", fmt.Errorf("unresolved template expression: %q", expr)
}

// expandValue expands every string inside a decoded JSON or YAML value.
// Map keys are left alone.
func expandValue(v any, vars map[string]string) (any, error) {
	switch t := v.(type) {
	case string:
		return Expand(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			e, err := expandValue(item, vars)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = e
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			e, err := expandValue(item, vars)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	default:
		return v, nil
	}
}

package extension

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/jsoncheck"
	"github.com/wondertwin-ai/weddingcheck/internal/verifier"
)

// Scenarios adapts files into verifier scenarios of the extension family.
// Each step records one result named "<file>: <step>".
func Scenarios(files []*File) []verifier.Scenario {
	out := make([]verifier.Scenario, 0, len(files))
	for _, f := range files {
		out = append(out, verifier.Scenario{
			Name:   f.Name,
			Family: verifier.FamilyExtension,
			Run: func(ctx context.Context, v *verifier.Verifier, rec *verifier.Recorder) {
				run(ctx, f, v, rec)
			},
		})
	}
	return out
}

// run executes every step even after a failure. A failed capture leaves its
// variable unset, so dependent steps fail on template expansion.
func run(ctx context.Context, f *File, v *verifier.Verifier, rec *verifier.Recorder) {
	scope := vars(f, v.State)
	for _, step := range f.Steps {
		name := f.Name + ": " + step.Name
		if err := ctx.Err(); err != nil {
			rec.Failf(name, "not run: %v", err)
			continue
		}

		resp, err := send(ctx, v.API, step.Request, scope)
		if err != nil {
			rec.Error(name, err)
			continue
		}
		if err := capture(resp, step.Capture, scope); err != nil {
			rec.Error(name, err)
			continue
		}
		if err := check(step.Assert, resp, scope); err != nil {
			rec.Error(name, err)
			continue
		}
		rec.Pass(name, fmt.Sprintf("%s %s returned status %d", resp.Method, resp.Path, resp.StatusCode), nil)
	}
}

func send(ctx context.Context, api verifier.API, r Request, scope map[string]string) (*client.Response, error) {
	path, err := Expand(r.Path, scope)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}

	var query url.Values
	if len(r.Query) > 0 {
		query = make(url.Values, len(r.Query))
		for k, raw := range r.Query {
			val, err := Expand(raw, scope)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", k, err)
			}
			query.Set(k, val)
		}
	}

	var header http.Header
	if len(r.Headers) > 0 {
		header = make(http.Header, len(r.Headers))
		for k, raw := range r.Headers {
			val, err := Expand(raw, scope)
			if err != nil {
				return nil, fmt.Errorf("header %q: %w", k, err)
			}
			header.Set(k, val)
		}
	}

	body, err := expandValue(r.Body, scope)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}

	return api.Send(ctx, client.Request{
		Method: strings.ToUpper(r.Method),
		Path:   path,
		Query:  query,
		Header: header,
		Body:   body,
	})
}

// capture stores the first match of each JSONPath in scope.
func capture(resp *client.Response, captures map[string]string, scope map[string]string) error {
	if len(captures) == 0 {
		return nil
	}
	doc, err := resp.JSON()
	if err != nil {
		return &verifier.AssertionError{Msg: "capture: " + err.Error()}
	}
	for _, name := range slices.Sorted(maps.Keys(captures)) {
		matches, err := jsoncheck.Get(doc, captures[name])
		if err != nil {
			return &verifier.AssertionError{Msg: fmt.Sprintf("capture %q: %v", name, err)}
		}
		if len(matches) == 0 {
			return &verifier.AssertionError{Msg: fmt.Sprintf("capture %q: no match for %s", name, captures[name])}
		}
		if s, ok := matches[0].(string); ok {
			scope[name] = s
		} else {
			scope[name] = fmt.Sprint(matches[0])
		}
	}
	return nil
}

func check(a *Assert, resp *client.Response, scope map[string]string) error {
	if a == nil {
		return nil
	}
	if a.Status != 0 && resp.StatusCode != a.Status {
		return assertionf("expected status %d, got %d: %s", a.Status, resp.StatusCode, resp.Snippet())
	}
	if len(a.StatusIn) > 0 && !slices.Contains(a.StatusIn, resp.StatusCode) {
		return assertionf("expected status in %v, got %d: %s", a.StatusIn, resp.StatusCode, resp.Snippet())
	}
	if a.BodyContains != "" {
		want, err := Expand(a.BodyContains, scope)
		if err != nil {
			return fmt.Errorf("body_contains: %w", err)
		}
		if !strings.Contains(string(resp.Body), want) {
			return assertionf("body does not contain %q", want)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(a.Headers)) {
		want, err := Expand(a.Headers[k], scope)
		if err != nil {
			return fmt.Errorf("header %q: %w", k, err)
		}
		if got := resp.Header.Get(k); got != want {
			return assertionf("header %q: expected %q, got %q", k, want, got)
		}
	}
	if len(a.Body) == 0 {
		return nil
	}

	expected, err := expandValue(a.Body, scope)
	if err != nil {
		return fmt.Errorf("body assertion: %w", err)
	}
	doc, err := resp.JSON()
	if err != nil {
		return assertionf("%v", err)
	}
	return jsoncheck.Evaluate(doc, expected.(map[string]any))
}

func assertionf(format string, args ...any) error {
	return &verifier.AssertionError{Msg: fmt.Sprintf(format, args...)}
}

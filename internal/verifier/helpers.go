package verifier

import (
	"context"
	"net/http"
	"slices"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
)

const (
	msgNoSession = "No session_id available for testing"
	msgNoWedding = "No wedding_id available for testing"
)

// requireSession records a failure and returns false when no login succeeded.
func (v *Verifier) requireSession(rec *Recorder, name string) bool {
	if v.State.SessionID == "" {
		rec.Fail(name, msgNoSession)
		return false
	}
	return true
}

// requireWedding records a failure and returns false when no wedding id is known.
func (v *Verifier) requireWedding(rec *Recorder, name string) bool {
	if v.State.WeddingID == "" {
		rec.Fail(name, msgNoWedding)
		return false
	}
	return true
}

// expectStatus fails unless resp carries one of want.
func expectStatus(resp *client.Response, want ...int) error {
	if slices.Contains(want, resp.StatusCode) {
		return nil
	}
	if body := resp.Snippet(); body != "" {
		return assertionf("failed with status %d: %s", resp.StatusCode, body)
	}
	return assertionf("failed with status %d", resp.StatusCode)
}

// decodeObject decodes a JSON object body.
func decodeObject(resp *client.Response) (map[string]any, error) {
	obj, err := resp.Object()
	if err != nil {
		return nil, &AssertionError{Msg: err.Error()}
	}
	return obj, nil
}

// okObject requires a 200 response with a JSON object body.
func okObject(resp *client.Response, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	return decodeObject(resp)
}

// fetchWedding GETs the caller's wedding document.
func (v *Verifier) fetchWedding(ctx context.Context) (map[string]any, error) {
	return okObject(v.API.GetWedding(ctx, v.State.SessionID))
}

// sectionData unwraps a {success, wedding_data} section-update response.
func sectionData(resp *client.Response, err error) (map[string]any, error) {
	obj, err := okObject(resp, err)
	if err != nil {
		return nil, err
	}
	data, ok := obj["wedding_data"].(map[string]any)
	if obj["success"] != true || !ok {
		return nil, assertionf("unexpected response format: %s", resp.Snippet())
	}
	return data, nil
}

// pick copies the listed keys of obj that are present.
func pick(obj map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			out[k] = v
		}
	}
	return out
}

// listField returns obj[key] as a list; absent or non-list values yield nil.
func listField(obj map[string]any, key string) []any {
	l, _ := obj[key].([]any)
	return l
}

// findByField returns the first object in list whose field equals want.
func findByField(list []any, field, want string) (map[string]any, bool) {
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if ok && obj[field] == want {
			return obj, true
		}
	}
	return nil, false
}

func stringOf(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// intOf reads a JSON number decoded by client.Response.JSON.
func intOf(obj map[string]any, key string) (int, bool) {
	switch n := obj[key].(type) {
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// shortID trims long identifiers for result messages.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

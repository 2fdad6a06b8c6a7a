package jsoncheck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	doc, err := Parse([]byte(`{
		"success": true,
		"theme": "boho",
		"total_count": 3,
		"messages": [{"name": "Sarah Johnson"}, {"name": "Michael Chen"}],
		"session_id": "eyJhbGciOi.abc",
		"deleted_at": null
	}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		checks  map[string]any
		wantErr string
	}{
		{name: "equality", checks: map[string]any{"$.success": true, "$.theme": "boho"}},
		{name: "numeric coercion", checks: map[string]any{"$.total_count": 3}},
		{name: "mismatch", checks: map[string]any{"$.theme": "classic"}, wantErr: "expected classic"},
		{name: "no match", checks: map[string]any{"$.nope": 1}, wantErr: "no match found"},
		{name: "number vs string", checks: map[string]any{"$.total_count": "3"}, wantErr: "expected 3"},
		{name: "exists", checks: map[string]any{"$.session_id": map[string]any{"exists": true}}},
		{name: "not exists", checks: map[string]any{"$.error": map[string]any{"exists": false}}},
		{name: "exists violated", checks: map[string]any{"$.theme": map[string]any{"exists": false}}, wantErr: "expected not to exist"},
		{name: "exists needs bool", checks: map[string]any{"$.theme": map[string]any{"exists": "yes"}}, wantErr: "requires a boolean"},
		{name: "ne", checks: map[string]any{"$.theme": map[string]any{"ne": "classic"}}},
		{name: "ne violated", checks: map[string]any{"$.theme": map[string]any{"ne": "boho"}}, wantErr: "other than boho"},
		{name: "gte lte", checks: map[string]any{"$.total_count": map[string]any{"gte": 2, "lte": 3}}},
		{name: "gte violated", checks: map[string]any{"$.total_count": map[string]any{"gte": 4}}, wantErr: "expected >= 4"},
		{name: "lte non numeric", checks: map[string]any{"$.theme": map[string]any{"lte": 4}}, wantErr: "requires numeric actual"},
		{name: "contains substring", checks: map[string]any{"$.session_id": map[string]any{"contains": "abc"}}},
		{name: "contains violated", checks: map[string]any{"$.theme": map[string]any{"contains": "mod"}}, wantErr: "expected to contain"},
		{name: "regex", checks: map[string]any{"$.session_id": map[string]any{"regex": `^eyJ[\w.]+$`}}},
		{name: "regex invalid", checks: map[string]any{"$.theme": map[string]any{"regex": "("}}, wantErr: "invalid regex"},
		{name: "type array", checks: map[string]any{"$.messages": map[string]any{"type": "array"}}},
		{name: "type null", checks: map[string]any{"$.deleted_at": map[string]any{"type": "null"}}},
		{name: "type number", checks: map[string]any{"$.total_count": map[string]any{"type": "number"}}},
		{name: "type violated", checks: map[string]any{"$.theme": map[string]any{"type": "object"}}, wantErr: "expected type object, got string"},
		{name: "len", checks: map[string]any{"$.messages": map[string]any{"len": 2}}},
		{name: "len violated", checks: map[string]any{"$.messages": map[string]any{"len": 3}}, wantErr: "expected length 3, got 2"},
		{name: "len of bool", checks: map[string]any{"$.success": map[string]any{"len": 1}}, wantErr: "requires an array"},
		{name: "in", checks: map[string]any{"$.theme": map[string]any{"in": []any{"classic", "modern", "boho"}}}},
		{name: "in violated", checks: map[string]any{"$.theme": map[string]any{"in": []any{"classic"}}}, wantErr: "is not one of"},
		{name: "unknown operator", checks: map[string]any{"$.theme": map[string]any{"like": "x"}}, wantErr: `unknown operator "like"`},
		{name: "operator without match", checks: map[string]any{"$.nope": map[string]any{"eq": 1}}, wantErr: "no match found for 'eq'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(doc, tt.checks)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ae *AssertionError
			assert.True(t, errors.As(err, &ae))
		})
	}
}

func TestContainsOnArrays(t *testing.T) {
	doc := map[string]any{"themes": []any{"classic", "modern"}}

	assert.NoError(t, Evaluate(doc, map[string]any{"$.themes": map[string]any{"contains": "modern"}}))
	assert.Error(t, Evaluate(doc, map[string]any{"$.themes": map[string]any{"contains": "boho"}}))
}

func TestEvaluateReportsFirstPathInOrder(t *testing.T) {
	err := Evaluate(map[string]any{}, map[string]any{"$.b": 1, "$.a": 1})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "$.a", ae.Path)
}

func TestMissing(t *testing.T) {
	obj := map[string]any{"id": "w1", "theme": "classic", "faqs": []any{}}
	assert.Equal(t, []string{"user_id", "gallery_photos"}, Missing(obj, []string{"id", "user_id", "theme", "gallery_photos", "faqs"}))
	assert.Nil(t, Missing(obj, []string{"id"}))
}

func TestCount(t *testing.T) {
	list := []any{
		map[string]any{"name": "Isabella Rodriguez", "designation": "Maid of Honor"},
		map[string]any{"name": "Ava", "designation": "Bridesmaid"},
		"not an object",
		map[string]any{"name": "Isabella Rodriguez", "designation": "Chief Bridesmaid"},
	}

	assert.Equal(t, 2, Count(list, FieldEquals("name", "Isabella Rodriguez")))
	assert.Equal(t, 1, Count(list, FieldEquals("designation", "Chief Bridesmaid")))
	assert.Equal(t, 0, Count(list, FieldEquals("missing", "x")))
}

func TestSortedDesc(t *testing.T) {
	tests := []struct {
		name   string
		stamps []string
		want   bool
		at     int
	}{
		{name: "empty", stamps: nil, want: true, at: -1},
		{name: "newest first", stamps: []string{"2025-01-02T00:00:00Z", "2025-01-01T23:59:59.5+00:00", "2025-01-01T00:00:00Z"}, want: true, at: -1},
		{name: "equal stamps", stamps: []string{"2025-01-01T00:00:00Z", "2025-01-01T00:00:00Z"}, want: true, at: -1},
		{name: "out of order", stamps: []string{"2025-01-01T00:00:00Z", "2025-01-02T00:00:00Z"}, want: false, at: 1},
		{name: "offsets compared as instants", stamps: []string{"2025-01-01T01:00:00+02:00", "2025-01-01T00:00:00Z"}, want: false, at: 1},
		{name: "string fallback", stamps: []string{"b", "a"}, want: true, at: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := make([]any, 0, len(tt.stamps))
			for _, s := range tt.stamps {
				list = append(list, map[string]any{"created_at": s})
			}
			ok, at := SortedDesc(list, "created_at")
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.at, at)
		})
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "null", TypeName(nil))
	assert.Equal(t, "bool", TypeName(true))
	assert.Equal(t, "number", TypeName(int64(4)))
	assert.Equal(t, "number", TypeName(4.5))
	assert.Equal(t, "object", TypeName(map[string]any{}))
}

func TestEqualNil(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, "<nil>"))
	assert.True(t, Equal(int64(2), 2.0))
}

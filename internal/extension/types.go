// Package extension runs user-authored request/assert scenarios, loaded from
// JSON or YAML files, as additional verifier checks.
package extension

// File is one extension scenario file.
type File struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps"`

	// Path is where the file was loaded from.
	Path string `json:"-" yaml:"-"`
}

// Step is a single request/assert pair.
type Step struct {
	Name    string            `json:"name" yaml:"name"`
	Request Request           `json:"request" yaml:"request"`
	Capture map[string]string `json:"capture,omitempty" yaml:"capture,omitempty"`
	Assert  *Assert           `json:"assert,omitempty" yaml:"assert,omitempty"`
}

// Request is relative to the verifier's base URL.
type Request struct {
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
}

// Assert is the expected outcome of a step. Zero-valued fields are skipped.
type Assert struct {
	Status       int               `json:"status,omitempty" yaml:"status,omitempty"`
	StatusIn     []int             `json:"status_in,omitempty" yaml:"status_in,omitempty"`
	BodyContains string            `json:"body_contains,omitempty" yaml:"body_contains,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         map[string]any    `json:"body,omitempty" yaml:"body,omitempty"`
}

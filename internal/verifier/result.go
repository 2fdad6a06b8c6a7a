package verifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/jsoncheck"
)

// Family groups scenarios for headers and the summary breakdown.
type Family string

const (
	FamilyCore        Family = "core"
	FamilyParty       Family = "party"
	FamilyGuestbook   Family = "guestbook"
	FamilyTheme       Family = "theme"
	FamilyIntegration Family = "integration"
	FamilyExtension   Family = "extension"
)

// Families lists every family in catalog order.
var Families = []Family{FamilyCore, FamilyParty, FamilyGuestbook, FamilyTheme, FamilyIntegration, FamilyExtension}

// Title is the human-readable family heading.
func (f Family) Title() string {
	switch f {
	case FamilyCore:
		return "Core API"
	case FamilyParty:
		return "Wedding Party"
	case FamilyGuestbook:
		return "Guestbook Persistence"
	case FamilyTheme:
		return "Theme Persistence"
	case FamilyIntegration:
		return "Feature Integration"
	case FamilyExtension:
		return "Extensions"
	}
	return string(f)
}

// Result is one recorded check. It is never modified after recording.
type Result struct {
	Name      string `json:"test"`
	Family    Family `json:"family"`
	Passed    bool   `json:"success"`
	Message   string `json:"message"`
	Snapshot  any    `json:"response_data"`
	Timestamp string `json:"timestamp"`
}

// AssertionError reports a response that did not match expectations.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

func assertionf(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// IsAssertion reports whether err is an assertion failure from this package
// or from jsoncheck.
func IsAssertion(err error) bool {
	var ae *AssertionError
	var je *jsoncheck.AssertionError
	return errors.As(err, &ae) || errors.As(err, &je)
}

// describe turns a scenario error into a result message.
func describe(err error) string {
	switch {
	case client.IsTransport(err):
		return "request failed: " + err.Error()
	case IsAssertion(err):
		return err.Error()
	default:
		return "unexpected error: " + err.Error()
	}
}

// Recorder appends results for the scenario currently running.
type Recorder struct {
	v      *Verifier
	family Family
}

// Pass records a passing result. snapshot may be nil.
func (r *Recorder) Pass(name, message string, snapshot any) {
	r.v.record(Result{Name: name, Family: r.family, Passed: true, Message: message, Snapshot: snapshot})
}

// Fail records a failing result.
func (r *Recorder) Fail(name, message string) {
	r.v.record(Result{Name: name, Family: r.family, Message: message})
}

// Failf records a failing result with a formatted message.
func (r *Recorder) Failf(name, format string, args ...any) {
	r.Fail(name, fmt.Sprintf(format, args...))
}

// Error records a failing result classified by the kind of err.
func (r *Recorder) Error(name string, err error) {
	r.Fail(name, describe(err))
}

// Check records a pass with message when err is nil and a failure otherwise.
func (r *Recorder) Check(name string, err error, message string, snapshot any) {
	if err != nil {
		r.Error(name, err)
		return
	}
	r.Pass(name, message, snapshot)
}

// FamilyCount is the per-family breakdown of a summary.
type FamilyCount struct {
	Family Family `json:"family"`
	Passed int    `json:"passed"`
	Total  int    `json:"total"`
}

// Summary aggregates a run's results.
type Summary struct {
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	Families    []FamilyCount `json:"families"`
	FailedTests []Result      `json:"failed_tests"`
}

// OK reports whether at least one check ran and none failed.
func (s *Summary) OK() bool {
	return s.Total > 0 && s.Failed == 0
}

// Family returns the counts for f. The zero value is returned when no result
// of that family was recorded.
func (s *Summary) Family(f Family) FamilyCount {
	for _, fc := range s.Families {
		if fc.Family == f {
			return fc
		}
	}
	return FamilyCount{Family: f}
}

// Summarize computes a Summary over results.
func Summarize(results []Result) *Summary {
	s := &Summary{FailedTests: []Result{}}
	counts := make(map[Family]*FamilyCount)
	for _, r := range results {
		s.Total++
		fc, ok := counts[r.Family]
		if !ok {
			fc = &FamilyCount{Family: r.Family}
			counts[r.Family] = fc
		}
		fc.Total++
		if r.Passed {
			s.Passed++
			fc.Passed++
		} else {
			s.Failed++
			s.FailedTests = append(s.FailedTests, r)
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.Total) * 100
	}

	for _, f := range Families {
		if fc, ok := counts[f]; ok {
			s.Families = append(s.Families, *fc)
			delete(counts, f)
		}
	}
	// Families outside the known set keep first-seen order.
	for _, r := range results {
		if fc, ok := counts[r.Family]; ok {
			s.Families = append(s.Families, *fc)
			delete(counts, r.Family)
		}
	}
	return s
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

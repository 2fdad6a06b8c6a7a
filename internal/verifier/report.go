package verifier

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const rule = "============================================================"

type styles struct {
	pass, fail, header, muted, title lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain}
	}
	// The renderer drops colour by itself when w is not a terminal.
	r := lipgloss.NewRenderer(w)
	return styles{
		pass:   r.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true),
		fail:   r.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true),
		header: r.NewStyle().Foreground(lipgloss.Color("#2196F3")).Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#9e9e9e")),
		title:  r.NewStyle().Bold(true),
	}
}

// Printer writes progress and the final summary to a terminal. It
// implements Observer.
type Printer struct {
	w  io.Writer
	st styles

	mu     sync.Mutex
	family Family
}

// NewPrinter creates a Printer on w. With color false no escape codes are
// emitted.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, st: newStyles(w, color)}
}

// Banner prints the run header.
func (p *Printer) Banner(baseURL, username string) {
	fmt.Fprintln(p.w, p.st.title.Render("Starting Wedding Card Backend API Tests..."))
	fmt.Fprintf(p.w, "Backend URL: %s\n", baseURL)
	fmt.Fprintf(p.w, "Test Credentials: %s\n", username)
	fmt.Fprintln(p.w, rule)
}

// ScenarioStarted prints a family header whenever the family changes.
func (p *Printer) ScenarioStarted(s Scenario) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Family == p.family {
		return
	}
	p.family = s.Family
	fmt.Fprintf(p.w, "\n%s\n", p.st.header.Render(strings.ToUpper(s.Family.Title())))
}

// ResultRecorded prints one PASS or FAIL line.
func (p *Printer) ResultRecorded(r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := p.st.pass.Render("PASS")
	if !r.Passed {
		status = p.st.fail.Render("FAIL")
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", status, r.Name, r.Message)
}

// breakdownFamilies are listed separately after the summary.
var breakdownFamilies = []Family{FamilyGuestbook, FamilyTheme, FamilyIntegration}

// Summary prints counts, the failed tests and the per-family breakdown.
func (p *Printer) Summary(s *Summary) {
	fmt.Fprintf(p.w, "\n%s\n%s\n%s\n", rule, p.st.title.Render("TEST SUMMARY"), rule)
	fmt.Fprintf(p.w, "Total Tests: %d\n", s.Total)
	fmt.Fprintf(p.w, "Passed: %d\n", s.Passed)
	fmt.Fprintf(p.w, "Failed: %d\n", s.Failed)
	fmt.Fprintf(p.w, "Success Rate: %.1f%%\n", s.SuccessRate)

	switch {
	case s.Total == 0:
		fmt.Fprintf(p.w, "\n%s\n", p.st.fail.Render("NO TESTS RAN"))
	case len(s.FailedTests) > 0:
		fmt.Fprintf(p.w, "\n%s\n", p.st.fail.Render("FAILED TESTS:"))
		for _, r := range s.FailedTests {
			fmt.Fprintf(p.w, "  • %s: %s\n", r.Name, r.Message)
		}
	default:
		fmt.Fprintf(p.w, "\n%s\n", p.st.pass.Render("ALL TESTS PASSED!"))
	}

	fmt.Fprintf(p.w, "\n%s\n%s\n%s\n", rule, p.st.title.Render("FEATURE TEST RESULTS"), rule)
	for _, f := range breakdownFamilies {
		fc := s.Family(f)
		fmt.Fprintf(p.w, "%s: %d/%d tests passed\n", f.Title(), fc.Passed, fc.Total)
	}
	if fc := s.Family(FamilyExtension); fc.Total > 0 {
		fmt.Fprintf(p.w, "%s: %d/%d tests passed\n", FamilyExtension.Title(), fc.Passed, fc.Total)
	}
}

// Report is the machine-readable record of one run.
type Report struct {
	RunID      string   `json:"run_id"`
	BaseURL    string   `json:"base_url"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	Summary    *Summary `json:"summary"`
	Results    []Result `json:"results"`
}

// NewReport assembles a report with a fresh run id.
func NewReport(baseURL string, started, finished time.Time, results []Result) *Report {
	if results == nil {
		results = []Result{}
	}
	return &Report{
		RunID:      uuid.NewString(),
		BaseURL:    baseURL,
		StartedAt:  timestamp(started),
		FinishedAt: timestamp(finished),
		Summary:    Summarize(results),
		Results:    results,
	}
}

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

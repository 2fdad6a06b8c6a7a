package verifier_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/weddingcheck/internal/verifier"
)

func TestPrinter_ProgressAndSummary(t *testing.T) {
	var buf bytes.Buffer
	p := verifier.NewPrinter(&buf, false)

	p.Banner("http://localhost:8001/api", "aaaaaa")
	p.ScenarioStarted(verifier.Scenario{Name: "x", Family: verifier.FamilyGuestbook})
	p.ScenarioStarted(verifier.Scenario{Name: "y", Family: verifier.FamilyGuestbook})
	p.ResultRecorded(verifier.Result{Name: "Guestbook Field Exists", Passed: true, Message: "ok"})
	p.ScenarioStarted(verifier.Scenario{Name: "z", Family: verifier.FamilyTheme})
	p.ResultRecorded(verifier.Result{Name: "Theme Update Boho", Message: "nope"})

	p.Summary(verifier.Summarize([]verifier.Result{
		{Name: "Guestbook Field Exists", Family: verifier.FamilyGuestbook, Passed: true, Message: "ok"},
		{Name: "Theme Update Boho", Family: verifier.FamilyTheme, Message: "nope"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Backend URL: http://localhost:8001/api")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("GUESTBOOK PERSISTENCE\n")))
	assert.Contains(t, out, "THEME PERSISTENCE\n")
	assert.Contains(t, out, "PASS Guestbook Field Exists: ok\n")
	assert.Contains(t, out, "FAIL Theme Update Boho: nope\n")
	assert.Contains(t, out, "Total Tests: 2\n")
	assert.Contains(t, out, "Success Rate: 50.0%\n")
	assert.Contains(t, out, "  • Theme Update Boho: nope\n")
	assert.Contains(t, out, "Guestbook Persistence: 1/1 tests passed\n")
	assert.Contains(t, out, "Theme Persistence: 0/1 tests passed\n")
	assert.Contains(t, out, "Feature Integration: 0/0 tests passed\n")
	assert.NotContains(t, out, "Extensions:")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinter_AllPassedAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := verifier.NewPrinter(&buf, true)
	p.Summary(verifier.Summarize([]verifier.Result{{Name: "a", Family: verifier.FamilyCore, Passed: true}}))
	assert.Contains(t, buf.String(), "ALL TESTS PASSED!")
	assert.Contains(t, buf.String(), "Success Rate: 100.0%")

	buf.Reset()
	p.Summary(verifier.Summarize(nil))
	assert.Contains(t, buf.String(), "NO TESTS RAN")
	assert.Contains(t, buf.String(), "Success Rate: 0.0%")
}

func TestReport_WriteFile(t *testing.T) {
	started := time.Date(2025, 8, 15, 15, 0, 0, 0, time.UTC)
	results := []verifier.Result{
		{Name: "Authentication Login", Family: verifier.FamilyCore, Passed: true, Message: "ok",
			Snapshot: map[string]any{"user_id": "user_000001"}, Timestamp: "2025-08-15T15:00:01Z"},
		{Name: "Wedding Data GET", Family: verifier.FamilyCore, Message: "failed with status 503"},
	}
	report := verifier.NewReport("http://localhost/api", started, started.Add(2*time.Second), results)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	_, err = uuid.Parse(got["run_id"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost/api", got["base_url"])
	assert.Equal(t, "2025-08-15T15:00:00Z", got["started_at"])
	assert.Equal(t, "2025-08-15T15:00:02Z", got["finished_at"])

	summary := got["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["total"])
	assert.EqualValues(t, 1, summary["failed"])
	assert.EqualValues(t, 50, summary["success_rate"])

	list := got["results"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "Authentication Login", first["test"])
	assert.Equal(t, true, first["success"])
	assert.Equal(t, map[string]any{"user_id": "user_000001"}, first["response_data"])
}

func TestReport_WriteFileBadPath(t *testing.T) {
	report := verifier.NewReport("", time.Now(), time.Now(), nil)
	err := report.WriteFile(filepath.Join(t.TempDir(), "missing", "report.json"))
	assert.ErrorContains(t, err, "writing report")
	assert.NotNil(t, report.Results)
}

func TestPrinter_ConcurrentCallbacks(t *testing.T) {
	var buf bytes.Buffer
	p := verifier.NewPrinter(&buf, false)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ScenarioStarted(verifier.Scenario{Name: "s", Family: verifier.FamilyTheme})
			p.ResultRecorded(verifier.Result{Name: fmt.Sprintf("result %d", i), Passed: true, Message: "ok"})
		}()
	}
	wg.Wait()

	out := buf.String()
	assert.Equal(t, 20, strings.Count(out, "PASS result "))
	assert.Equal(t, 1, strings.Count(out, strings.ToUpper(verifier.FamilyTheme.Title())))
}

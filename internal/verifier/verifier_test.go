package verifier_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/twin"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/testutil"
	"github.com/wondertwin-ai/weddingcheck/internal/verifier"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testCreds = verifier.Credentials{Username: "aaaaaa", Password: "aaaaaa"}

// startTwin serves a fresh twin seeded with testCreds.
func startTwin(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := twin.New(twin.Options{
		Users: []store.Credentials{{Username: testCreds.Username, Password: testCreds.Password}},
	}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func apiClient(ts *httptest.Server) *client.Client {
	return client.New(ts.URL+"/api", 5*time.Second, nil, client.WithHTTPClient(ts.Client()))
}

func resultNames(results []verifier.Result) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}

func findResult(t *testing.T, results []verifier.Result, name string) verifier.Result {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result named %q in %v", name, resultNames(results))
	return verifier.Result{}
}

var expectedOrder = []string{
	"Authentication Login",
	"Authentication Rejects Bad Credentials",
	"Wedding Data GET",
	"Wedding Data PUT",
	"Data Persistence",
	"FAQ Section Update",
	"Session Management",
	"Profile Without Session",
	"Data Structure",
	"Wedding Party Fields",
	"Add Bridal Party Member",
	"Add Groom Party Member",
	"Add Special Roles Member",
	"Edit Wedding Party Member",
	"Delete Wedding Party Member",
	"Wedding Party Persistence",
	"Guestbook Field Exists",
	"Guestbook Message 1 Creation",
	"Guestbook Message 2 Creation",
	"Guestbook Message Retrieval",
	"Guestbook in Wedding Document",
	"Guestbook Persistence",
	"Guestbook Owner Specific",
	"Guestbook Without Wedding ID",
	"Guestbook Invalid Wedding ID",
	"Guestbook Message Sorting",
	"Current Theme Retrieval",
	"Theme Update Classic",
	"Theme Persistence Verification",
	"Theme Update Modern",
	"Theme Update Boho",
	"Theme Boho Persistence",
	"Invalid Theme Rejection",
	"Theme Without Session",
	"Theme Guestbook Integration",
}

func TestDefaultCatalog_AgainstTwin(t *testing.T) {
	ts := startTwin(t)
	v := verifier.New(apiClient(ts), testCreds, nil)

	summary := v.Run(context.Background(), verifier.DefaultCatalog())
	results := v.Results()

	for _, r := range summary.FailedTests {
		t.Errorf("%s failed: %s", r.Name, r.Message)
	}
	assert.Equal(t, expectedOrder, resultNames(results))
	assert.True(t, summary.OK())
	assert.Equal(t, len(expectedOrder), summary.Total)
	assert.InDelta(t, 100.0, summary.SuccessRate, 0.001)

	assert.Equal(t, verifier.FamilyCount{Family: verifier.FamilyGuestbook, Passed: 10, Total: 10}, summary.Family(verifier.FamilyGuestbook))
	assert.Equal(t, verifier.FamilyCount{Family: verifier.FamilyTheme, Passed: 8, Total: 8}, summary.Family(verifier.FamilyTheme))
	assert.Equal(t, verifier.FamilyCount{Family: verifier.FamilyIntegration, Passed: 1, Total: 1}, summary.Family(verifier.FamilyIntegration))

	st := v.State
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, "user_000001", st.UserID)
	assert.NotEmpty(t, st.WeddingID)
	assert.Equal(t, client.ThemeClassic, st.Theme)
	assert.Len(t, st.MessageIDs, 2)
	assert.Len(t, st.IntegrationMessageIDs, 4)
	assert.Len(t, st.AddedMembers, 3)
	assert.Equal(t, st.AddedMembers[client.BridalParty], st.EditedMemberID)
	assert.Equal(t, st.AddedMembers[client.GroomParty], st.DeletedMemberID)

	for _, r := range results {
		_, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		assert.NoError(t, err, r.Name)
	}
}

func TestDefaultCatalog_SecondRunAgainstSameBackend(t *testing.T) {
	ts := startTwin(t)
	first := verifier.New(apiClient(ts), testCreds, nil).Run(context.Background(), verifier.DefaultCatalog())
	require.True(t, first.OK())

	// A second run starts from the first run's data; id matching keeps it green.
	v := verifier.New(apiClient(ts), testCreds, nil)
	second := v.Run(context.Background(), verifier.DefaultCatalog())
	for _, r := range second.FailedTests {
		t.Errorf("%s failed: %s", r.Name, r.Message)
	}
	assert.True(t, second.OK())
}

func TestRun_WrongPasswordFailsDependents(t *testing.T) {
	ts := startTwin(t)
	v := verifier.New(apiClient(ts), verifier.Credentials{Username: "aaaaaa", Password: "wrong"}, nil)

	summary := v.Run(context.Background(), verifier.DefaultCatalog())
	results := v.Results()

	assert.False(t, summary.OK())
	login := findResult(t, results, "Authentication Login")
	assert.False(t, login.Passed)
	assert.Contains(t, login.Message, "failed with status 401")

	get := findResult(t, results, "Wedding Data GET")
	assert.False(t, get.Passed)
	assert.Equal(t, "No session_id available for testing", get.Message)

	creation := findResult(t, results, "Guestbook Message Creation")
	assert.Equal(t, "No wedding_id available for testing", creation.Message)

	integration := findResult(t, results, "Theme Guestbook Integration")
	assert.Equal(t, "Missing session_id or wedding_id", integration.Message)

	// Checks without prerequisites still run and pass.
	assert.True(t, findResult(t, results, "Profile Without Session").Passed)
	assert.True(t, findResult(t, results, "Guestbook Owner Specific").Passed)
	assert.True(t, findResult(t, results, "Guestbook Without Wedding ID").Passed)
	assert.True(t, findResult(t, results, "Theme Without Session").Passed)
}

func TestRun_FaultInjectedStatus(t *testing.T) {
	ts := startTwin(t)
	admin := testutil.NewAdminClient(testutil.NewTwinClient(t, ts))
	admin.InjectFault("/api/wedding", map[string]any{"status_code": 503}).AssertStatus(http.StatusOK)

	v := verifier.New(apiClient(ts), testCreds, nil)
	v.Run(context.Background(), verifier.DefaultCatalog()[:3])
	results := v.Results()

	assert.True(t, findResult(t, results, "Authentication Login").Passed)
	get := findResult(t, results, "Wedding Data GET")
	assert.False(t, get.Passed)
	assert.True(t, strings.HasPrefix(get.Message, "failed with status 503"), get.Message)
}

func TestRun_TransportFailure(t *testing.T) {
	ts := startTwin(t)
	c := apiClient(ts)
	ts.Close()

	v := verifier.New(c, testCreds, nil)
	summary := v.Run(context.Background(), verifier.DefaultCatalog()[:1])

	require.Equal(t, 1, summary.Total)
	assert.True(t, strings.HasPrefix(summary.FailedTests[0].Message, "request failed: "), summary.FailedTests[0].Message)
}

func TestRun_RecoversPanic(t *testing.T) {
	ran := false
	scenarios := []verifier.Scenario{
		{Name: "Boom", Family: verifier.FamilyCore, Run: func(context.Context, *verifier.Verifier, *verifier.Recorder) {
			panic("kaboom")
		}},
		{Name: "After", Family: verifier.FamilyCore, Run: func(_ context.Context, _ *verifier.Verifier, rec *verifier.Recorder) {
			ran = true
			rec.Pass("After", "still running", nil)
		}},
	}
	v := verifier.New(client.New("http://127.0.0.1:1", time.Second, nil), testCreds, nil)
	summary := v.Run(context.Background(), scenarios)

	assert.True(t, ran)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "scenario panicked: kaboom", summary.FailedTests[0].Message)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := verifier.New(client.New("http://127.0.0.1:1", time.Second, nil), testCreds, nil)
	summary := v.Run(ctx, verifier.DefaultCatalog()[:4])

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Failed)
	for _, r := range summary.FailedTests {
		assert.Equal(t, "not run: context canceled", r.Message)
	}
}

type recordingObserver struct {
	started []string
	results []string
}

func (o *recordingObserver) ScenarioStarted(s verifier.Scenario) { o.started = append(o.started, s.Name) }
func (o *recordingObserver) ResultRecorded(r verifier.Result)    { o.results = append(o.results, r.Name) }

func TestRun_NotifiesObserversAndUsesClock(t *testing.T) {
	fixed := time.Date(2025, 8, 15, 15, 0, 0, 0, time.UTC)
	obs := &recordingObserver{}
	scenarios := []verifier.Scenario{
		{Name: "Two Results", Family: verifier.FamilyGuestbook, Run: func(_ context.Context, _ *verifier.Verifier, rec *verifier.Recorder) {
			rec.Pass("first", "ok", nil)
			rec.Check("second", errors.New("bad"), "unused", nil)
		}},
	}
	v := verifier.New(client.New("http://127.0.0.1:1", time.Second, nil), testCreds, nil,
		verifier.WithObserver(obs), verifier.WithClock(func() time.Time { return fixed }))
	v.Run(context.Background(), scenarios)

	assert.Equal(t, []string{"Two Results"}, obs.started)
	assert.Equal(t, []string{"first", "second"}, obs.results)

	results := v.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "2025-08-15T15:00:00Z", results[0].Timestamp)
	assert.Equal(t, verifier.FamilyGuestbook, results[1].Family)
	assert.Equal(t, "unexpected error: bad", results[1].Message)
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := verifier.Summarize(nil)
		assert.Zero(t, s.Total)
		assert.Zero(t, s.SuccessRate)
		assert.False(t, s.OK())
		assert.Empty(t, s.FailedTests)
	})

	t.Run("mixed", func(t *testing.T) {
		s := verifier.Summarize([]verifier.Result{
			{Name: "a", Family: verifier.FamilyTheme, Passed: true},
			{Name: "b", Family: verifier.FamilyCore, Passed: false, Message: "boom"},
			{Name: "c", Family: verifier.FamilyTheme, Passed: false},
			{Name: "d", Family: "custom", Passed: true},
		})
		assert.Equal(t, 4, s.Total)
		assert.Equal(t, 2, s.Passed)
		assert.Equal(t, 2, s.Failed)
		assert.InDelta(t, 50.0, s.SuccessRate, 0.001)
		assert.False(t, s.OK())
		assert.Equal(t, []verifier.FamilyCount{
			{Family: verifier.FamilyCore, Total: 1},
			{Family: verifier.FamilyTheme, Passed: 1, Total: 2},
			{Family: "custom", Passed: 1, Total: 1},
		}, s.Families)
		assert.Equal(t, verifier.FamilyCount{Family: verifier.FamilyIntegration}, s.Family(verifier.FamilyIntegration))
		require.Len(t, s.FailedTests, 2)
		assert.Equal(t, "b", s.FailedTests[0].Name)
	})
}

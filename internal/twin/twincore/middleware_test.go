package twincore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogRingBuffer(t *testing.T) {
	rl := NewRequestLog(3)
	for i := 0; i < 5; i++ {
		rl.Add(RequestLogEntry{Path: "/" + string(rune('a'+i))})
	}

	entries := rl.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"/c", "/d", "/e"}, []string{entries[0].Path, entries[1].Path, entries[2].Path})

	entries[0].Path = "/mutated"
	assert.Equal(t, "/c", rl.Entries()[0].Path, "Entries returns a copy")

	rl.Clear()
	assert.Empty(t, rl.Entries())
}

func TestFaultRegistry(t *testing.T) {
	fr := NewFaultRegistry()
	fr.Set("/api/wedding", FaultConfig{StatusCode: 500})

	fault := fr.Check("/api/wedding")
	require.NotNil(t, fault)
	assert.Equal(t, 500, fault.StatusCode)
	assert.Equal(t, 1.0, fault.Rate, "zero rate defaults to always")

	assert.Nil(t, fr.Check("/api/wedding/theme"))
	assert.Len(t, fr.All(), 1)

	assert.True(t, fr.Remove("/api/wedding"))
	assert.False(t, fr.Remove("/api/wedding"))
	assert.Nil(t, fr.Check("/api/wedding"))
}

func TestFaultRegistryPrefix(t *testing.T) {
	fr := NewFaultRegistry()
	fr.Set("/api/guestbook/", FaultConfig{StatusCode: 503})

	assert.NotNil(t, fr.Check("/api/guestbook/abc"))
	assert.Nil(t, fr.Check("/api/guestbook"))

	fr.Set("/api/guestbook/abc/", FaultConfig{StatusCode: 504})
	fr.Set("/api/guestbook/abc/exact", FaultConfig{StatusCode: 418})
	assert.Equal(t, 504, fr.Check("/api/guestbook/abc/def").StatusCode, "longest prefix wins")
	assert.Equal(t, 418, fr.Check("/api/guestbook/abc/exact").StatusCode, "exact key wins")

	fr.Reset()
	assert.Nil(t, fr.Check("/api/guestbook/abc"))
}

func TestFaultRegistryRateUsesRoll(t *testing.T) {
	fr := NewFaultRegistry()
	fr.roll = func() float64 { return 0.3 }
	fr.Set("/x", FaultConfig{StatusCode: 500, Rate: 0.5})
	fr.Set("/y", FaultConfig{StatusCode: 500, Rate: 0.2})
	assert.NotNil(t, fr.Check("/x"))
	assert.Nil(t, fr.Check("/y"))
}

func TestRequestLogPartialAndEmptyRing(t *testing.T) {
	rl := NewRequestLog(4)
	rl.Add(RequestLogEntry{Path: "/a"})
	rl.Add(RequestLogEntry{Path: "/b"})
	entries := rl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "/a", entries[0].Path)

	none := NewRequestLog(0)
	none.Add(RequestLogEntry{Path: "/a"})
	assert.Empty(t, none.Entries())
}

func TestFaultRegistryRateNeverFires(t *testing.T) {
	fr := NewFaultRegistry()
	fr.Set("/x", FaultConfig{StatusCode: 500, Rate: 1e-12})
	hits := 0
	for i := 0; i < 100; i++ {
		if fr.Check("/x") != nil {
			hits++
		}
	}
	assert.Zero(t, hits)
}

func newTestMiddleware(cfg *Config) *Middleware {
	return NewMiddleware(NewSettings(*cfg), nil)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestFaultInjection(t *testing.T) {
	mw := newTestMiddleware(&Config{})
	h := mw.FaultInjection(okHandler())

	mw.Faults.Set("/api/wedding", FaultConfig{StatusCode: 502})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/wedding", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"detail":"injected fault","code":502}`, rec.Body.String())

	mw.Faults.Set("/api/profile", FaultConfig{StatusCode: 418, Body: `{"detail":"teapot"}`})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"detail":"teapot"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/other", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFaultInjectionDelayOnly(t *testing.T) {
	mw := newTestMiddleware(&Config{})
	h := mw.FaultInjection(okHandler())
	mw.Faults.Set("/slow", FaultConfig{DelayMS: 20})

	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestLatencyInjection(t *testing.T) {
	mw := newTestMiddleware(&Config{Latency: 20 * time.Millisecond})
	h := mw.LatencyInjection(okHandler())

	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.GreaterOrEqual(t, time.Since(start), 16*time.Millisecond)
}

func TestRequestLogVerboseCapturesHeaders(t *testing.T) {
	mw := newTestMiddleware(&Config{Verbose: true})
	h := mw.RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/guestbook/x", nil)
	req.Header.Set("Accept", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := mw.ReqLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusNotFound, entries[0].StatusCode)
	assert.Equal(t, "application/json", entries[0].Headers["Accept"])
}

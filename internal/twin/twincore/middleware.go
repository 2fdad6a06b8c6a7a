package twincore

import (
	"math/rand/v2"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const requestLogSize = 1000

// Middleware bundles the twin's request log, fault registry and the
// handlers that read the live Settings.
type Middleware struct {
	settings *Settings
	logger   *zap.Logger
	ReqLog   *RequestLog
	Faults   *FaultRegistry
}

func NewMiddleware(settings *Settings, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		settings: settings,
		logger:   logger,
		ReqLog:   NewRequestLog(requestLogSize),
		Faults:   NewFaultRegistry(),
	}
}

// CORS lets the browser frontend call the twin from any origin and answers
// preflight requests directly.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		h.Set("Access-Control-Max-Age", "3600")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// RequestLog records each request after it completes. Headers are kept and
// a debug line is logged only in verbose mode.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		e := RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			StatusCode: status,
			DurationMS: time.Since(start).Milliseconds(),
			RequestID:  chimw.GetReqID(r.Context()),
		}
		if !m.settings.Current().Verbose {
			m.ReqLog.Add(e)
			return
		}
		e.Headers = headerMap(r.Header)
		m.ReqLog.Add(e)
		m.logger.Debug("request",
			zap.String("method", e.Method),
			zap.String("path", e.Path),
			zap.Int("status", e.StatusCode),
			zap.Int64("duration_ms", e.DurationMS),
			zap.String("request_id", e.RequestID),
		)
	})
}

// jitter scales d by a random factor in [0.8, 1.2).
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}

// LatencyInjection sleeps for the configured latency, with jitter, before
// every request.
func (m *Middleware) LatencyInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := m.settings.Current().Latency; d > 0 {
			time.Sleep(jitter(d))
		}
		next.ServeHTTP(w, r)
	})
}

// RandomFailure answers the configured fraction of requests with a 500.
func (m *Middleware) RandomFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rate := m.settings.Current().FailRate
		if rate > 0 && rand.Float64() < rate {
			Error(w, http.StatusInternalServerError, "simulated random failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type injectedFault struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

func writeFault(w http.ResponseWriter, f *FaultConfig) {
	if f.Body == "" {
		JSON(w, f.StatusCode, injectedFault{Detail: "injected fault", Code: f.StatusCode})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.StatusCode)
	_, _ = w.Write([]byte(f.Body))
}

// FaultInjection applies faults registered through /admin/fault. It belongs
// on the /api group only so /admin stays reachable. A fault with a delay and
// no status code only slows the request down.
func (m *Middleware) FaultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := m.Faults.Check(r.URL.Path)
		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if d := f.Delay(); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				return
			}
		}
		if f.StatusCode == 0 {
			next.ServeHTTP(w, r)
			return
		}
		writeFault(w, f)
	})
}

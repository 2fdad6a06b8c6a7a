// Package admin serves the twin's /admin control plane. Tests and the
// verifier's fault checks use it to reset state, load fixtures, inject
// failures, inspect traffic and move the simulated clock.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

// StateStore is the slice of the twin's state the control plane drives.
type StateStore interface {
	Snapshot() any
	LoadState(data []byte) error
	// Reset drops all state and re-seeds the configured users.
	Reset()
}

// ConfigProvider exposes the twin's runtime config.
type ConfigProvider interface {
	GetConfig() map[string]any
	UpdateConfig(updates map[string]any) error
}

type Handler struct {
	state  StateStore
	config ConfigProvider
	mw     *twincore.Middleware
	clock  *store.Clock
}

// NewHandler creates the control plane. clock may be nil, in which case the
// time endpoints report wall time only.
func NewHandler(state StateStore, mw *twincore.Middleware, clock *store.Clock) *Handler {
	return &Handler{state: state, mw: mw, clock: clock}
}

// SetConfigProvider enables GET and PUT /admin/config.
func (h *Handler) SetConfigProvider(cp ConfigProvider) {
	h.config = cp
}

// statusError carries the HTTP status an admin call failed with.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func fail(code int, format string, args ...any) error {
	return &statusError{code: code, msg: fmt.Sprintf(format, args...)}
}

// endpoint is an admin handler that returns its response body or an error.
type endpoint func(r *http.Request) (any, error)

func (e endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := e(r)
	if err == nil {
		twincore.JSON(w, http.StatusOK, body)
		return
	}
	code := http.StatusInternalServerError
	var se *statusError
	if errors.As(err, &se) {
		code = se.code
	}
	twincore.Error(w, code, err.Error())
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", endpoint(h.health))
		r.Method(http.MethodPost, "/reset", endpoint(h.reset))
		r.Method(http.MethodGet, "/state", endpoint(h.getState))
		r.Method(http.MethodPost, "/state", endpoint(h.loadState))
		r.Method(http.MethodPost, "/fault/*", endpoint(h.injectFault))
		r.Method(http.MethodDelete, "/fault/*", endpoint(h.removeFault))
		r.Method(http.MethodGet, "/faults", endpoint(h.listFaults))
		r.Method(http.MethodGet, "/requests", endpoint(h.requests))
		r.Method(http.MethodGet, "/time", endpoint(h.getTime))
		r.Method(http.MethodPost, "/time/advance", endpoint(h.advanceTime))
		r.Method(http.MethodGet, "/config", endpoint(h.getConfig))
		r.Method(http.MethodPut, "/config", endpoint(h.updateConfig))
	})
}

func decode(r *http.Request, v any, what string) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fail(http.StatusBadRequest, "invalid %s: %v", what, err)
	}
	return nil
}

// faultTarget maps the /admin/fault/* wildcard to the request path it
// targets: "api/wedding" becomes "/api/wedding".
func faultTarget(r *http.Request) string {
	return "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}

func status(s string) map[string]string { return map[string]string{"status": s} }

func (h *Handler) health(*http.Request) (any, error) {
	return status("ok"), nil
}

func (h *Handler) reset(*http.Request) (any, error) {
	h.state.Reset()
	h.mw.ReqLog.Clear()
	h.mw.Faults.Reset()
	if h.clock != nil {
		h.clock.Reset()
	}
	return status("reset"), nil
}

func (h *Handler) getState(*http.Request) (any, error) {
	return h.state.Snapshot(), nil
}

func (h *Handler) loadState(r *http.Request) (any, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fail(http.StatusBadRequest, "failed to read body: %v", err)
	}
	if err := h.state.LoadState(data); err != nil {
		return nil, fail(http.StatusBadRequest, "failed to load state: %v", err)
	}
	return status("loaded"), nil
}

func (h *Handler) injectFault(r *http.Request) (any, error) {
	var f twincore.FaultConfig
	if err := decode(r, &f, "fault config"); err != nil {
		return nil, err
	}
	target := faultTarget(r)
	h.mw.Faults.Set(target, f)
	return map[string]any{"status": "injected", "endpoint": target, "fault": f}, nil
}

func (h *Handler) removeFault(r *http.Request) (any, error) {
	target := faultTarget(r)
	if !h.mw.Faults.Remove(target) {
		return nil, fail(http.StatusNotFound, "no fault registered for %s", target)
	}
	return map[string]any{"status": "removed", "endpoint": target}, nil
}

func (h *Handler) listFaults(*http.Request) (any, error) {
	return h.mw.Faults.All(), nil
}

func (h *Handler) requests(*http.Request) (any, error) {
	return h.mw.ReqLog.Entries(), nil
}

func (h *Handler) getTime(*http.Request) (any, error) {
	out := map[string]any{"real": time.Now().Format(time.RFC3339)}
	if h.clock != nil {
		out["simulated"] = h.clock.Now().Format(time.RFC3339)
		out["offset"] = h.clock.Offset().String()
	}
	return out, nil
}

func (h *Handler) advanceTime(r *http.Request) (any, error) {
	if h.clock == nil {
		return nil, fail(http.StatusBadRequest, "simulated clock not configured")
	}
	var req struct {
		Duration string `json:"duration"`
	}
	if err := decode(r, &req, "request"); err != nil {
		return nil, err
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		return nil, fail(http.StatusBadRequest, "invalid duration: %v", err)
	}
	h.clock.Advance(d)
	return map[string]any{
		"status":    "advanced",
		"duration":  d.String(),
		"offset":    h.clock.Offset().String(),
		"simulated": h.clock.Now().Format(time.RFC3339),
	}, nil
}

var errNoConfig = fail(http.StatusNotFound, "config endpoint not available")

func (h *Handler) getConfig(*http.Request) (any, error) {
	if h.config == nil {
		return nil, errNoConfig
	}
	return h.config.GetConfig(), nil
}

func (h *Handler) updateConfig(r *http.Request) (any, error) {
	if h.config == nil {
		return nil, errNoConfig
	}
	var updates map[string]any
	if err := decode(r, &updates, "config"); err != nil {
		return nil, err
	}
	if err := h.config.UpdateConfig(updates); err != nil {
		return nil, fail(http.StatusBadRequest, "%v", err)
	}
	return h.config.GetConfig(), nil
}

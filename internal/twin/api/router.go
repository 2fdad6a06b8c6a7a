// Package api implements the wedding-card backend REST API served by the twin.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler holds all API handler state.
type Handler struct {
	store  *store.MemoryStore
	mw     *twincore.Middleware
	tokens *TokenManager
	logger *zap.Logger
}

// NewHandler creates an API handler.
func NewHandler(s *store.MemoryStore, mw *twincore.Middleware, tokens *TokenManager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: s, mw: mw, tokens: tokens, logger: logger}
}

// Routes mounts the API under /api.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(h.mw.FaultInjection)

		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/logout", h.Logout)
		r.Get("/profile", h.Profile)

		r.Get("/wedding", h.GetWedding)
		r.Put("/wedding", h.UpdateWedding)
		r.Put("/wedding/faq", h.UpdateFAQs)
		r.Put("/wedding/party", h.UpdateParty)
		r.Put("/wedding/theme", h.UpdateTheme)

		r.Post("/guestbook", h.CreateGuestbookMessage)
		r.Get("/guestbook/{weddingID}", h.ListGuestbookMessages)
	})
}

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("invalid request body")

// decodeBody reads a JSON object body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%w: empty body", errBadBody)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// authResult is the caller identified by a session token.
type authResult struct {
	SessionID string
	User      store.User
}

// authenticate resolves a session token. The token must verify and its
// session must still be live in the store. On failure the response is
// written and ok is false.
func (h *Handler) authenticate(w http.ResponseWriter, token string) (authResult, bool) {
	if token == "" {
		twincore.Error(w, http.StatusUnauthorized, "Session ID required")
		return authResult{}, false
	}
	sid, userID, err := h.tokens.Verify(token)
	if err != nil {
		h.logger.Debug("rejected session token", zap.Error(err))
		twincore.Error(w, http.StatusUnauthorized, "Invalid or expired session")
		return authResult{}, false
	}
	sess, ok := h.store.ActiveSession(sid)
	if !ok || sess.UserID != userID {
		twincore.Error(w, http.StatusUnauthorized, "Invalid or expired session")
		return authResult{}, false
	}
	user, ok := h.store.User(userID)
	if !ok {
		twincore.Error(w, http.StatusUnauthorized, "User not found")
		return authResult{}, false
	}
	return authResult{SessionID: sid, User: user}, true
}

// sessionFromBody extracts session_id from a decoded PUT body.
func sessionFromBody(body map[string]json.RawMessage) string {
	raw, ok := body["session_id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

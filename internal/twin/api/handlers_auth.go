package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// issueSession starts a session for u and writes the login response.
func (h *Handler) issueSession(w http.ResponseWriter, u store.User, message string) {
	sess := h.store.CreateSession(u.ID, h.tokens.TTL())
	token, err := h.tokens.Issue(sess)
	if err != nil {
		h.store.Sessions.Delete(sess.ID)
		twincore.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    message,
		"session_id": token,
		"user_id":    u.ID,
		"username":   u.Username,
	})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		twincore.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		twincore.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	u, ok := h.store.Authenticate(req.Username, req.Password)
	if !ok {
		h.logger.Debug("login rejected", zap.String("username", req.Username))
		twincore.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	h.issueSession(w, u, "Login successful")
}

// Register handles POST /api/auth/register and logs the new user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		twincore.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.store.CreateUser(req.Username, req.Password)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		twincore.Error(w, http.StatusBadRequest, "Username already exists")
		return
	case errors.Is(err, store.ErrInvalidUser):
		twincore.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	case err != nil:
		twincore.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.issueSession(w, u, "Registration successful")
}

// Logout handles POST /api/auth/logout. The session travels in the body or
// as a query parameter.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("session_id")
	if token == "" {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := decodeBody(w, r, &req); err == nil {
			token = req.SessionID
		}
	}

	auth, ok := h.authenticate(w, token)
	if !ok {
		return
	}
	h.store.Sessions.Delete(auth.SessionID)
	twincore.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

// Profile handles GET /api/profile?session_id=.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	auth, ok := h.authenticate(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"user_id":    auth.User.ID,
		"username":   auth.User.Username,
		"created_at": auth.User.CreatedAt.UTC().Format(store.TimestampFormat),
	})
}

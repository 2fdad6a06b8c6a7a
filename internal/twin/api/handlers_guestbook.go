package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

type guestbookRequest struct {
	WeddingID    string `json:"wedding_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
}

// CreateGuestbookMessage handles POST /api/guestbook. Guests are anonymous:
// no session is required, only a known wedding_id.
func (h *Handler) CreateGuestbookMessage(w http.ResponseWriter, r *http.Request) {
	var req guestbookRequest
	if err := decodeBody(w, r, &req); err != nil {
		twincore.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.WeddingID = strings.TrimSpace(req.WeddingID)
	req.Name = strings.TrimSpace(req.Name)

	switch {
	case req.WeddingID == "":
		twincore.Error(w, http.StatusBadRequest, "wedding_id is required")
		return
	case req.Name == "":
		twincore.Error(w, http.StatusBadRequest, "name is required")
		return
	case strings.TrimSpace(req.Message) == "":
		twincore.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	msg, err := h.store.AddGuestbookMessage(req.WeddingID, req.Name, req.Relationship, req.Message)
	if errors.Is(err, store.ErrWeddingNotFound) {
		twincore.Error(w, http.StatusNotFound, "Wedding not found")
		return
	}
	if err != nil {
		twincore.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message_id": msg.ID,
		"created_at": msg.CreatedAt,
	})
}

// ListGuestbookMessages handles GET /api/guestbook/{weddingID}. An unknown
// wedding yields an empty list, not an error.
func (h *Handler) ListGuestbookMessages(w http.ResponseWriter, r *http.Request) {
	msgs, _ := h.store.GuestbookMessages(chi.URLParam(r, "weddingID"))
	twincore.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"messages":    msgs,
		"total_count": len(msgs),
	})
}

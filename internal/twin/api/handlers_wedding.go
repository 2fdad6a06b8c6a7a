package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/wondertwin-ai/weddingcheck/internal/twin/store"
	"github.com/wondertwin-ai/weddingcheck/internal/twin/twincore"
)

// errValidation marks a request that decoded but carries bad field values.
var errValidation = errors.New("validation failed")

// readOnlyFields cannot be set through PUT /api/wedding. Guestbook messages
// are only added through POST /api/guestbook.
var readOnlyFields = map[string]bool{
	"id":                 true,
	"user_id":            true,
	"created_at":         true,
	"updated_at":         true,
	"guestbook_messages": true,
	"session_id":         true,
}

// partyLists are the keys accepted by PUT /api/wedding/party.
var partyLists = []string{"bridal_party", "groom_party", "special_roles"}

const invalidThemeMessage = "Invalid theme. Must be one of: classic, modern, boho"

// decodeAuthorizedBody decodes a PUT body and authenticates its session_id.
func (h *Handler) decodeAuthorizedBody(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, authResult, bool) {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		twincore.Error(w, http.StatusBadRequest, err.Error())
		return nil, authResult{}, false
	}
	auth, ok := h.authenticate(w, sessionFromBody(body))
	if !ok {
		return nil, authResult{}, false
	}
	return body, auth, true
}

// writeUpdateError maps an UpdateWedding error onto a response.
func writeUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, errValidation) {
		twincore.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	twincore.Error(w, http.StatusInternalServerError, err.Error())
}

// GetWedding handles GET /api/wedding?session_id=. The document is created
// on first access.
func (h *Handler) GetWedding(w http.ResponseWriter, r *http.Request) {
	auth, ok := h.authenticate(w, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	twincore.JSON(w, http.StatusOK, h.store.WeddingForUser(auth.User.ID))
}

// UpdateWedding handles PUT /api/wedding: a partial merge of the fields
// present in the body. Returns the full updated document.
func (h *Handler) UpdateWedding(w http.ResponseWriter, r *http.Request) {
	body, auth, ok := h.decodeAuthorizedBody(w, r)
	if !ok {
		return
	}

	updated, err := h.store.UpdateWedding(auth.User.ID, func(doc *store.Wedding) error {
		return mergeFields(doc, body)
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	twincore.JSON(w, http.StatusOK, updated)
}

// mergeFields overlays the writable keys of body onto doc.
func mergeFields(doc *store.Wedding, body map[string]json.RawMessage) error {
	current, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding wedding: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(current, &fields); err != nil {
		return fmt.Errorf("decoding wedding: %w", err)
	}

	for k, v := range body {
		if readOnlyFields[k] {
			continue
		}
		if _, known := fields[k]; !known {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding merged wedding: %w", err)
	}
	var next store.Wedding
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	if next.Theme != "" && !store.ValidTheme(next.Theme) {
		return fmt.Errorf("%w: %s", errValidation, invalidThemeMessage)
	}
	for _, list := range [][]store.PartyMember{next.BridalParty, next.GroomParty, next.SpecialRoles} {
		assignMemberIDs(list)
	}
	*doc = next
	return nil
}

// assignMemberIDs gives members without an id a fresh uuid.
func assignMemberIDs(members []store.PartyMember) {
	for i := range members {
		if members[i].ID == "" {
			members[i].ID = uuid.NewString()
		}
	}
}

func writeSectionUpdate(w http.ResponseWriter, message string, doc store.Wedding) {
	twincore.JSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      message,
		"wedding_data": doc,
	})
}

// UpdateFAQs handles PUT /api/wedding/faq, replacing the FAQ list.
func (h *Handler) UpdateFAQs(w http.ResponseWriter, r *http.Request) {
	body, auth, ok := h.decodeAuthorizedBody(w, r)
	if !ok {
		return
	}
	raw, present := body["faqs"]
	if !present {
		twincore.Error(w, http.StatusBadRequest, "faqs is required")
		return
	}
	var faqs []store.FAQ
	if err := json.Unmarshal(raw, &faqs); err != nil {
		twincore.Error(w, http.StatusBadRequest, "faqs must be a list of {question, answer}: "+err.Error())
		return
	}

	updated, err := h.store.UpdateWedding(auth.User.ID, func(doc *store.Wedding) error {
		doc.FAQs = faqs
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	writeSectionUpdate(w, "FAQs updated", updated)
}

// UpdateParty handles PUT /api/wedding/party. Each list present in the body
// replaces the stored list wholesale.
func (h *Handler) UpdateParty(w http.ResponseWriter, r *http.Request) {
	body, auth, ok := h.decodeAuthorizedBody(w, r)
	if !ok {
		return
	}

	lists := make(map[string][]store.PartyMember)
	for _, key := range partyLists {
		raw, present := body[key]
		if !present {
			continue
		}
		var members []store.PartyMember
		if err := json.Unmarshal(raw, &members); err != nil {
			twincore.Error(w, http.StatusBadRequest, key+" must be a list of party members: "+err.Error())
			return
		}
		if members == nil {
			members = []store.PartyMember{}
		}
		assignMemberIDs(members)
		lists[key] = members
	}
	if len(lists) == 0 {
		twincore.Error(w, http.StatusBadRequest, "One of bridal_party, groom_party or special_roles is required")
		return
	}

	updated, err := h.store.UpdateWedding(auth.User.ID, func(doc *store.Wedding) error {
		if m, ok := lists["bridal_party"]; ok {
			doc.BridalParty = m
		}
		if m, ok := lists["groom_party"]; ok {
			doc.GroomParty = m
		}
		if m, ok := lists["special_roles"]; ok {
			doc.SpecialRoles = m
		}
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	writeSectionUpdate(w, "Wedding party updated", updated)
}

// UpdateTheme handles PUT /api/wedding/theme.
func (h *Handler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	body, auth, ok := h.decodeAuthorizedBody(w, r)
	if !ok {
		return
	}
	var theme string
	if raw, present := body["theme"]; present {
		if err := json.Unmarshal(raw, &theme); err != nil {
			twincore.Error(w, http.StatusBadRequest, "theme must be a string")
			return
		}
	}
	if !store.ValidTheme(theme) {
		twincore.Error(w, http.StatusBadRequest, invalidThemeMessage)
		return
	}

	updated, err := h.store.UpdateWedding(auth.User.ID, func(doc *store.Wedding) error {
		doc.Theme = theme
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	writeSectionUpdate(w, "Theme updated to "+theme, updated)
}

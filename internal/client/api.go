package client

import (
	"context"
	"net/http"
	"net/url"
)

// Theme values accepted by the backend.
const (
	ThemeClassic = "classic"
	ThemeModern  = "modern"
	ThemeBoho    = "boho"
)

// Themes lists every accepted theme value.
var Themes = []string{ThemeClassic, ThemeModern, ThemeBoho}

// PartyList names one of the wholesale-replaced party lists.
type PartyList string

const (
	BridalParty  PartyList = "bridal_party"
	GroomParty   PartyList = "groom_party"
	SpecialRoles PartyList = "special_roles"
)

// FAQ is one question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PartyMember is an entry of bridal_party, groom_party, or special_roles.
type PartyMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Image       string `json:"image"`
}

// GuestbookEntry is the body of POST /guestbook. An empty WeddingID is
// omitted from the request entirely.
type GuestbookEntry struct {
	WeddingID    string `json:"wedding_id,omitempty"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, username, password string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Username: username, Password: password})
}

// Profile calls GET /profile?session_id=.
func (c *Client) Profile(ctx context.Context, sessionID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/profile", sessionQuery(sessionID), nil)
}

// GetWedding calls GET /wedding?session_id=.
func (c *Client) GetWedding(ctx context.Context, sessionID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/wedding", sessionQuery(sessionID), nil)
}

// UpdateWedding calls PUT /wedding with a partial document. fields is not modified.
func (c *Client) UpdateWedding(ctx context.Context, sessionID string, fields map[string]any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, "/wedding", nil, withSession(sessionID, fields))
}

// UpdateFAQs calls PUT /wedding/faq, replacing the FAQ list.
func (c *Client) UpdateFAQs(ctx context.Context, sessionID string, faqs []FAQ) (*Response, error) {
	if faqs == nil {
		faqs = []FAQ{}
	}
	return c.Do(ctx, http.MethodPut, "/wedding/faq", nil, withSession(sessionID, map[string]any{"faqs": faqs}))
}

// UpdateParty calls PUT /wedding/party, replacing one party list wholesale.
// Members are passed through as-is so entries read from GET /wedding keep
// every field the backend returned.
func (c *Client) UpdateParty(ctx context.Context, sessionID string, list PartyList, members []any) (*Response, error) {
	if members == nil {
		members = []any{}
	}
	return c.Do(ctx, http.MethodPut, "/wedding/party", nil, withSession(sessionID, map[string]any{string(list): members}))
}

// UpdateTheme calls PUT /wedding/theme. An empty sessionID omits the field.
func (c *Client) UpdateTheme(ctx context.Context, sessionID, theme string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, "/wedding/theme", nil, withSession(sessionID, map[string]any{"theme": theme}))
}

// PostGuestbook calls POST /guestbook. No session is needed: guests are anonymous.
func (c *Client) PostGuestbook(ctx context.Context, entry GuestbookEntry) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/guestbook", nil, entry)
}

// ListGuestbook calls GET /guestbook/{wedding_id}.
func (c *Client) ListGuestbook(ctx context.Context, weddingID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/guestbook/"+url.PathEscape(weddingID), nil, nil)
}

// withSession copies fields and adds session_id when non-empty.
func withSession(sessionID string, fields map[string]any) map[string]any {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	return body
}

package store

import "time"

// Theme values the twin accepts.
const (
	ThemeClassic = "classic"
	ThemeModern  = "modern"
	ThemeBoho    = "boho"
)

// ValidTheme reports whether theme is one of the accepted values.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeClassic, ThemeModern, ThemeBoho:
		return true
	}
	return false
}

// TimestampFormat is the fixed-width UTC layout used for created_at and
// updated_at, so string order equals chronological order.
const TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

// User is an account that can log in and own one wedding document.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a live login. Tokens handed to clients reference it by ID.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FAQ is one question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PartyMember is an entry of bridal_party, groom_party or special_roles.
type PartyMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Image       string `json:"image"`
}

// GuestbookMessage is a message left by an anonymous guest.
type GuestbookMessage struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

// Wedding is the single document a user owns. Every list is always
// serialized, empty lists as [].
type Wedding struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	CoupleName1       string             `json:"couple_name_1"`
	CoupleName2       string             `json:"couple_name_2"`
	WeddingDate       string             `json:"wedding_date"`
	VenueName         string             `json:"venue_name"`
	VenueLocation     string             `json:"venue_location"`
	TheirStory        string             `json:"their_story"`
	StoryTimeline     []map[string]any   `json:"story_timeline"`
	ScheduleEvents    []map[string]any   `json:"schedule_events"`
	GalleryPhotos     []map[string]any   `json:"gallery_photos"`
	BridalParty       []PartyMember      `json:"bridal_party"`
	GroomParty        []PartyMember      `json:"groom_party"`
	SpecialRoles      []PartyMember      `json:"special_roles"`
	RegistryItems     []map[string]any   `json:"registry_items"`
	FAQs              []FAQ              `json:"faqs"`
	GuestbookMessages []GuestbookMessage `json:"guestbook_messages"`
	Theme             string             `json:"theme"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

// Normalize replaces nil lists with empty ones and fills the default theme.
func (w *Wedding) Normalize() {
	if w.StoryTimeline == nil {
		w.StoryTimeline = []map[string]any{}
	}
	if w.ScheduleEvents == nil {
		w.ScheduleEvents = []map[string]any{}
	}
	if w.GalleryPhotos == nil {
		w.GalleryPhotos = []map[string]any{}
	}
	if w.BridalParty == nil {
		w.BridalParty = []PartyMember{}
	}
	if w.GroomParty == nil {
		w.GroomParty = []PartyMember{}
	}
	if w.SpecialRoles == nil {
		w.SpecialRoles = []PartyMember{}
	}
	if w.RegistryItems == nil {
		w.RegistryItems = []map[string]any{}
	}
	if w.FAQs == nil {
		w.FAQs = []FAQ{}
	}
	if w.GuestbookMessages == nil {
		w.GuestbookMessages = []GuestbookMessage{}
	}
	if w.Theme == "" {
		w.Theme = ThemeClassic
	}
}

// Clone returns a copy whose slices can be modified without touching w.
// Nested maps inside the free-form lists are shared.
func (w Wedding) Clone() Wedding {
	out := w
	out.StoryTimeline = append([]map[string]any(nil), w.StoryTimeline...)
	out.ScheduleEvents = append([]map[string]any(nil), w.ScheduleEvents...)
	out.GalleryPhotos = append([]map[string]any(nil), w.GalleryPhotos...)
	out.BridalParty = append([]PartyMember(nil), w.BridalParty...)
	out.GroomParty = append([]PartyMember(nil), w.GroomParty...)
	out.SpecialRoles = append([]PartyMember(nil), w.SpecialRoles...)
	out.RegistryItems = append([]map[string]any(nil), w.RegistryItems...)
	out.FAQs = append([]FAQ(nil), w.FAQs...)
	out.GuestbookMessages = append([]GuestbookMessage(nil), w.GuestbookMessages...)
	out.Normalize()
	return out
}

package verifier

import "github.com/wondertwin-ai/weddingcheck/internal/client"

// requiredWeddingFields must be present on every GET /wedding response.
var requiredWeddingFields = []string{
	"id", "user_id", "couple_name_1", "couple_name_2",
	"wedding_date", "venue_name", "venue_location",
	"story_timeline", "schedule_events", "gallery_photos",
	"bridal_party", "groom_party", "registry_items", "faqs", "theme",
}

// documentSections are the content sections stored in the single document.
var documentSections = []string{
	"couple_name_1", "couple_name_2", "wedding_date", "venue_name", "venue_location",
	"story_timeline", "schedule_events", "gallery_photos", "bridal_party",
	"groom_party", "special_roles", "registry_items", "faqs", "theme",
}

var partyLists = []client.PartyList{client.BridalParty, client.GroomParty, client.SpecialRoles}

var guestbookMessageFields = []string{"id", "name", "relationship", "message", "created_at"}

func weddingUpdate() map[string]any {
	return map[string]any{
		"couple_name_1":  "Emily",
		"couple_name_2":  "James",
		"wedding_date":   "2025-08-15",
		"venue_name":     "Rosewood Manor",
		"venue_location": "Rosewood Manor • Sonoma County, California",
		"their_story": "Our love story began at a bookstore cafe where we both reached for the same novel. " +
			"What started as a conversation about literature blossomed into a beautiful romance filled with shared adventures and dreams.",
		"theme": client.ThemeModern,
		"story_timeline": []map[string]any{
			{
				"year":        "2020",
				"title":       "First Meeting",
				"description": "We met at Powell's Books in Portland during a rainy afternoon, both reaching for the same copy of 'The Seven Husbands of Evelyn Hugo'.",
				"image":       "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=600&h=400&fit=crop",
			},
			{
				"year":        "2022",
				"title":       "First Trip Together",
				"description": "Our first adventure together was a road trip along the Pacific Coast Highway, creating memories that would last a lifetime.",
				"image":       "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=600&h=400&fit=crop",
			},
		},
		"schedule_events": []map[string]any{
			{
				"time":        "3:00 PM",
				"title":       "Wedding Ceremony",
				"description": "Join us as we exchange vows in the beautiful garden pavilion surrounded by blooming roses.",
				"location":    "Rose Garden Pavilion",
				"duration":    "45 minutes",
				"highlight":   true,
			},
			{
				"time":        "4:00 PM",
				"title":       "Cocktail Reception",
				"description": "Celebrate with signature cocktails and hors d'oeuvres on the vineyard terrace.",
				"location":    "Vineyard Terrace",
				"duration":    "90 minutes",
				"highlight":   false,
			},
		},
		"faqs": []client.FAQ{
			{Question: "What is the dress code?", Answer: "We're requesting cocktail attire. Think elegant and comfortable for an outdoor garden setting."},
			{Question: "Will transportation be provided?", Answer: "We'll have shuttle service from the main hotel to the venue starting at 2:30 PM."},
		},
	}
}

var sectionFAQs = []client.FAQ{
	{Question: "What time should guests arrive?", Answer: "Please arrive by 2:45 PM to allow time for seating before the 3:00 PM ceremony."},
	{Question: "Is there parking available?", Answer: "Yes, complimentary valet parking is available at the venue entrance."},
	{Question: "Can children attend?", Answer: "We love your little ones, but we've planned an adults-only celebration to allow everyone to relax and enjoy the evening."},
}

// newMember describes a party member a scenario adds. The id is assigned at
// run time.
type newMember struct {
	label  string // persistence check label
	list   client.PartyList
	member client.PartyMember
}

func photo(id string) string {
	return "https://images.unsplash.com/" + id + "?w=300&h=300&fit=crop"
}

var (
	bridalMember = newMember{
		label: "Isabella (Bridal Party)",
		list:  client.BridalParty,
		member: client.PartyMember{
			Name:        "Isabella Rodriguez",
			Designation: "Maid of Honor",
			Role:        "Best Friend",
			Description: "Emily's college roommate and closest confidante who has been there through every milestone.",
			Photo:       photo("photo-1494790108755-2616b612b789"),
			Image:       photo("photo-1494790108755-2616b612b789"),
		},
	}
	groomMember = newMember{
		label: "Marcus (Groom Party)",
		list:  client.GroomParty,
		member: client.PartyMember{
			Name:        "Marcus Thompson",
			Designation: "Best Man",
			Role:        "Brother",
			Description: "James's younger brother and adventure partner who shares his love for hiking and photography.",
			Photo:       photo("photo-1507003211169-0a1dd7228f2d"),
			Image:       photo("photo-1507003211169-0a1dd7228f2d"),
		},
	}
	specialMember = newMember{
		label: "Lily (Special Roles)",
		list:  client.SpecialRoles,
		member: client.PartyMember{
			Name:        "Lily Chen",
			Designation: "Flower Girl",
			Role:        "Niece",
			Description: "Emily's adorable 7-year-old niece who will sprinkle rose petals down the aisle with the biggest smile.",
			Photo:       photo("photo-1544005313-94ddf0286df2"),
			Image:       photo("photo-1544005313-94ddf0286df2"),
		},
	}
)

const (
	editedDesignation = "Chief Bridesmaid"
	editedPrefix      = "Updated: "
)

// guestbookGreetings are posted by the creation scenario, in order.
var guestbookGreetings = []struct {
	entry    client.GuestbookEntry
	contains string
}{
	{
		entry: client.GuestbookEntry{
			Name:         "Sarah Johnson",
			Relationship: "Best Friend",
			Message:      "Wishing you both a lifetime of happiness! 💕",
		},
		contains: "lifetime of happiness",
	},
	{
		entry: client.GuestbookEntry{
			Name:         "Michael Chen",
			Relationship: "College Friend",
			Message:      "So excited to celebrate this special day with you! 🎉",
		},
		contains: "excited to celebrate",
	},
}

const (
	unknownListWeddingID = "invalid-wedding-id-12345"
	unknownPostWeddingID = "invalid-wedding-id-xyz"
	invalidTheme         = "invalid_theme"
)

// probeEntry is the anonymous message used by the negative guestbook checks.
func probeEntry(weddingID string) client.GuestbookEntry {
	return client.GuestbookEntry{
		WeddingID:    weddingID,
		Name:         "Test User",
		Relationship: "Friend",
		Message:      "Test message",
	}
}

var integrationThemes = []string{client.ThemeClassic, client.ThemeModern, client.ThemeBoho, client.ThemeClassic}

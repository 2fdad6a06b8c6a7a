package verifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
)

func integrationScenarios() []Scenario {
	return []Scenario{
		{Name: "Theme Guestbook Integration", Family: FamilyIntegration, Run: checkThemeGuestbookIntegration},
	}
}

func integrationEntry(weddingID, theme string) client.GuestbookEntry {
	return client.GuestbookEntry{
		WeddingID:    weddingID,
		Name:         "Integration Tester " + titleCase(theme),
		Relationship: "Test Friend",
		Message:      fmt.Sprintf("Testing integration with %s theme! 🎨", theme),
	}
}

// checkThemeGuestbookIntegration interleaves theme changes with guestbook
// posts and requires neither kind of write to clobber the other.
func checkThemeGuestbookIntegration(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Theme Guestbook Integration"
	if v.State.SessionID == "" || v.State.WeddingID == "" {
		rec.Fail(name, "Missing session_id or wedding_id")
		return
	}

	v.State.IntegrationMessageIDs = v.State.IntegrationMessageIDs[:0]
	for i, theme := range integrationThemes {
		if err := v.setTheme(ctx, theme); err != nil {
			rec.Failf(name, "Theme change %d to %s failed: %s", i+1, theme, describe(err))
			return
		}
		obj, err := okObject(v.API.PostGuestbook(ctx, integrationEntry(v.State.WeddingID, theme)))
		if err != nil {
			rec.Failf(name, "Guestbook post after %s theme failed: %s", theme, describe(err))
			return
		}
		id := stringOf(obj, "message_id")
		if id == "" {
			rec.Failf(name, "Guestbook post after %s theme returned no message_id", theme)
			return
		}
		v.State.IntegrationMessageIDs = append(v.State.IntegrationMessageIDs, id)
	}

	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	final := integrationThemes[len(integrationThemes)-1]
	if got := stringOf(doc, "theme"); got != final {
		rec.Failf(name, "Final theme is %s, expected %s", got, final)
		return
	}
	msgs := listField(doc, "guestbook_messages")
	var missing []string
	for _, id := range v.State.IntegrationMessageIDs {
		if _, ok := findByField(msgs, "id", id); !ok {
			missing = append(missing, shortID(id))
		}
	}
	if len(missing) > 0 {
		rec.Failf(name, "Integration messages missing after theme changes: %s", strings.Join(missing, ", "))
		return
	}
	rec.Pass(name, fmt.Sprintf("Theme changes and %d guestbook posts coexist. Final theme: %s",
		len(v.State.IntegrationMessageIDs), final), map[string]any{
		"theme":           final,
		"guestbook_count": len(msgs),
	})
}

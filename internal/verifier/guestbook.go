package verifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wondertwin-ai/weddingcheck/internal/jsoncheck"
)

func guestbookScenarios() []Scenario {
	return []Scenario{
		{Name: "Guestbook Field Exists", Family: FamilyGuestbook, Run: checkGuestbookField},
		{Name: "Guestbook Message Creation", Family: FamilyGuestbook, Run: checkGuestbookCreation},
		{Name: "Guestbook Message Retrieval", Family: FamilyGuestbook, Run: checkGuestbookRetrieval},
		{Name: "Guestbook in Wedding Document", Family: FamilyGuestbook, Run: checkGuestbookInDocument},
		{Name: "Guestbook Persistence", Family: FamilyGuestbook, Run: checkGuestbookPersistence},
		{Name: "Guestbook Owner Specific", Family: FamilyGuestbook, Run: checkGuestbookOwnerSpecific},
		{Name: "Guestbook Without Wedding ID", Family: FamilyGuestbook, Run: checkGuestbookWithoutWedding},
		{Name: "Guestbook Invalid Wedding ID", Family: FamilyGuestbook, Run: checkGuestbookInvalidWedding},
		{Name: "Guestbook Message Sorting", Family: FamilyGuestbook, Run: checkGuestbookSorting},
	}
}

// listMessages reads the public guestbook of weddingID.
func (v *Verifier) listMessages(ctx context.Context, weddingID string) ([]any, error) {
	obj, err := okObject(v.API.ListGuestbook(ctx, weddingID))
	if err != nil {
		return nil, err
	}
	msgs, ok := obj["messages"].([]any)
	if obj["success"] != true || !ok {
		return nil, assertionf("unexpected response format: %v", pick(obj, "success", "total_count"))
	}
	return msgs, nil
}

// findMessage locates the i-th greeting of this run by message id, falling
// back to the guest name when the post returned no id.
func (v *Verifier) findMessage(msgs []any, i int) map[string]any {
	if i < len(v.State.MessageIDs) && v.State.MessageIDs[i] != "" {
		m, _ := findByField(msgs, "id", v.State.MessageIDs[i])
		return m
	}
	m, _ := findByField(msgs, "name", guestbookGreetings[i].entry.Name)
	return m
}

func checkGuestbookField(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Field Exists"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	val, ok := doc["guestbook_messages"]
	if !ok {
		rec.Fail(name, "guestbook_messages field missing from wedding data")
		return
	}
	if t := jsoncheck.TypeName(val); t != "array" {
		rec.Failf(name, "guestbook_messages should be a list, got %s", t)
		return
	}
	rec.Pass(name, fmt.Sprintf("guestbook_messages field exists with %d messages", len(val.([]any))), nil)
}

func checkGuestbookCreation(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Message Creation"
	if !v.requireWedding(rec, name) {
		return
	}
	v.State.MessageIDs = v.State.MessageIDs[:0]
	for i, g := range guestbookGreetings {
		label := fmt.Sprintf("Guestbook Message %d Creation", i+1)
		entry := g.entry
		entry.WeddingID = v.State.WeddingID

		obj, err := okObject(v.API.PostGuestbook(ctx, entry))
		id := stringOf(obj, "message_id")
		v.State.MessageIDs = append(v.State.MessageIDs, id)
		switch {
		case err != nil:
			rec.Error(label, err)
		case obj["success"] != true || id == "":
			rec.Failf(label, "Invalid response format: %v", pick(obj, "success", "message_id"))
		default:
			rec.Pass(label, fmt.Sprintf("Message from %s created successfully. ID: %s", entry.Name, shortID(id)),
				pick(obj, "message_id", "created_at"))
		}
	}
}

func checkGuestbookRetrieval(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Message Retrieval"
	if !v.requireWedding(rec, name) {
		return
	}
	msgs, err := v.listMessages(ctx, v.State.WeddingID)
	if err != nil {
		rec.Error(name, err)
		return
	}
	var missing []string
	for i, g := range guestbookGreetings {
		m := v.findMessage(msgs, i)
		if m == nil || !strings.Contains(stringOf(m, "message"), g.contains) {
			missing = append(missing, g.entry.Name)
		}
	}
	if len(missing) > 0 {
		rec.Failf(name, "Messages not found or incorrect: %v (retrieved %d messages)", missing, len(msgs))
		return
	}
	rec.Pass(name, fmt.Sprintf("Retrieved %d messages including both test messages", len(msgs)), nil)
}

func checkGuestbookInDocument(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook in Wedding Document"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	msgs := listField(doc, "guestbook_messages")
	if len(msgs) == 0 {
		rec.Fail(name, "No guestbook messages in wedding document")
		return
	}
	for i, item := range msgs {
		m, ok := item.(map[string]any)
		if !ok {
			rec.Failf(name, "Guestbook message %d is not an object", i)
			return
		}
		if missing := jsoncheck.Missing(m, guestbookMessageFields); len(missing) > 0 {
			rec.Failf(name, "Message structure invalid. Missing fields: %v", missing)
			return
		}
	}
	for i, g := range guestbookGreetings {
		if v.findMessage(msgs, i) == nil {
			rec.Failf(name, "Message from %s missing from wedding document", g.entry.Name)
			return
		}
	}
	rec.Pass(name, fmt.Sprintf("Found %d messages in wedding document with correct structure", len(msgs)), nil)
}

func checkGuestbookPersistence(ctx context.Context, v *Verifier, rec *Recorder) {
	const (
		name  = "Guestbook Persistence"
		reads = 3
	)
	if !v.requireWedding(rec, name) {
		return
	}
	counts := make([]int, 0, reads)
	for n := 1; n <= reads; n++ {
		msgs, err := v.listMessages(ctx, v.State.WeddingID)
		if err != nil {
			rec.Failf(name, "Read %d failed: %s", n, describe(err))
			return
		}
		for i, g := range guestbookGreetings {
			if v.findMessage(msgs, i) == nil {
				rec.Failf(name, "Message from %s missing on read %d", g.entry.Name, n)
				return
			}
		}
		counts = append(counts, len(msgs))
	}
	for _, c := range counts[1:] {
		if c != counts[0] {
			rec.Failf(name, "Message count changed between reads: %v", counts)
			return
		}
	}
	rec.Pass(name, fmt.Sprintf("Messages persisted across %d reads (%d messages)", reads, counts[0]), nil)
}

func checkGuestbookOwnerSpecific(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Owner Specific"
	msgs, err := v.listMessages(ctx, unknownListWeddingID)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if len(msgs) != 0 {
		rec.Failf(name, "Unknown wedding_id returned %d messages", len(msgs))
		return
	}
	rec.Pass(name, "Unknown wedding_id returns no messages", nil)
}

func checkGuestbookWithoutWedding(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Without Wedding ID"
	resp, err := v.API.PostGuestbook(ctx, probeEntry(""))
	if err != nil {
		rec.Error(name, err)
		return
	}
	if resp.StatusCode != http.StatusBadRequest {
		rec.Failf(name, "Expected 400 but got %d", resp.StatusCode)
		return
	}
	rec.Pass(name, "Properly rejected message without wedding_id", nil)
}

func checkGuestbookInvalidWedding(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Invalid Wedding ID"
	resp, err := v.API.PostGuestbook(ctx, probeEntry(unknownPostWeddingID))
	if err != nil {
		rec.Error(name, err)
		return
	}
	if resp.StatusCode != http.StatusNotFound {
		rec.Failf(name, "Expected 404 but got %d", resp.StatusCode)
		return
	}
	rec.Pass(name, "Properly rejected message with invalid wedding_id", nil)
}

func checkGuestbookSorting(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Guestbook Message Sorting"
	if !v.requireWedding(rec, name) {
		return
	}
	msgs, err := v.listMessages(ctx, v.State.WeddingID)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if len(msgs) < 2 {
		rec.Pass(name, "Not enough messages to verify sorting", nil)
		return
	}
	if ok, bad := jsoncheck.SortedDesc(msgs, "created_at"); !ok {
		rec.Failf(name, "Messages not sorted newest first: message %d is newer than message %d", bad, bad-1)
		return
	}
	rec.Pass(name, fmt.Sprintf("%d messages sorted newest first", len(msgs)), nil)
}

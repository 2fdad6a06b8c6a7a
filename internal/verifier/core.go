package verifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/jsoncheck"
)

func coreScenarios() []Scenario {
	return []Scenario{
		{Name: "Authentication Login", Family: FamilyCore, Run: checkLogin},
		{Name: "Authentication Rejects Bad Credentials", Family: FamilyCore, Run: checkBadCredentials},
		{Name: "Wedding Data GET", Family: FamilyCore, Run: checkWeddingGet},
		{Name: "Wedding Data PUT", Family: FamilyCore, Run: checkWeddingPut},
		{Name: "Data Persistence", Family: FamilyCore, Run: checkDataPersistence},
		{Name: "FAQ Section Update", Family: FamilyCore, Run: checkFAQUpdate},
		{Name: "Session Management", Family: FamilyCore, Run: checkSessionManagement},
		{Name: "Profile Without Session", Family: FamilyCore, Run: checkProfileWithoutSession},
		{Name: "Data Structure", Family: FamilyCore, Run: checkDataStructure},
	}
}

func checkLogin(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Authentication Login"
	obj, err := okObject(v.API.Login(ctx, v.Creds.Username, v.Creds.Password))
	if err != nil {
		rec.Error(name, err)
		return
	}
	sid, uid := stringOf(obj, "session_id"), fmt.Sprint(obj["user_id"])
	if obj["success"] != true || sid == "" || obj["user_id"] == nil || uid == "" {
		rec.Failf(name, "Login response missing required fields: %v", pick(obj, "success", "user_id", "message"))
		return
	}
	v.State.SessionID = sid
	v.State.UserID = uid
	rec.Pass(name, "Login successful, session_id: "+shortID(sid), pick(obj, "success", "user_id", "username"))
}

func checkBadCredentials(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Authentication Rejects Bad Credentials"
	resp, err := v.API.Login(ctx, v.Creds.Username, v.Creds.Password+"-not-the-password")
	if err != nil {
		rec.Error(name, err)
		return
	}
	if err := expectStatus(resp, http.StatusBadRequest, http.StatusUnauthorized); err != nil {
		rec.Error(name, err)
		return
	}
	if obj, err := resp.Object(); err == nil && stringOf(obj, "session_id") != "" {
		rec.Fail(name, "Rejected login still returned a session_id")
		return
	}
	rec.Pass(name, fmt.Sprintf("Wrong password rejected with status %d", resp.StatusCode), nil)
}

func checkWeddingGet(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Wedding Data GET"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if missing := jsoncheck.Missing(doc, requiredWeddingFields); len(missing) > 0 {
		rec.Failf(name, "Missing required fields: %v", missing)
		return
	}
	id := fmt.Sprint(doc["id"])
	if doc["id"] == nil || id == "" {
		rec.Fail(name, "Wedding id is null or empty")
		return
	}
	v.State.WeddingID = id
	rec.Pass(name, "Retrieved wedding data successfully. Wedding ID: "+id,
		pick(doc, "id", "couple_name_1", "couple_name_2", "theme"))
}

// matchesUpdate fails on the first of the names and theme written by the PUT
// that doc does not carry.
func matchesUpdate(doc map[string]any) error {
	return jsoncheck.Evaluate(doc, map[string]any{
		"$.couple_name_1": "Emily",
		"$.couple_name_2": "James",
		"$.theme":         client.ThemeModern,
	})
}

func checkWeddingPut(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Wedding Data PUT"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := okObject(v.API.UpdateWedding(ctx, v.State.SessionID, weddingUpdate()))
	if err != nil {
		rec.Error(name, err)
		return
	}
	if err := matchesUpdate(doc); err != nil {
		rec.Failf(name, "Update didn't persist correctly: %v", err)
		return
	}
	v.State.Theme = client.ThemeModern
	rec.Pass(name, "Wedding data updated successfully",
		pick(doc, "couple_name_1", "couple_name_2", "theme", "updated_at"))
}

func checkDataPersistence(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Data Persistence"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if err := matchesUpdate(doc); err != nil {
		rec.Failf(name, "Data didn't persist: names=%v/%v, theme=%v",
			doc["couple_name_1"], doc["couple_name_2"], doc["theme"])
		return
	}
	rec.Pass(name, "Data changes persisted correctly", nil)
}

func checkFAQUpdate(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "FAQ Section Update"
	if !v.requireSession(rec, name) {
		return
	}
	data, err := sectionData(v.API.UpdateFAQs(ctx, v.State.SessionID, sectionFAQs))
	if err != nil {
		rec.Error(name, err)
		return
	}
	faqs := listField(data, "faqs")
	if len(faqs) != len(sectionFAQs) || jsoncheck.String(data, "$.faqs[0].question") != sectionFAQs[0].Question {
		rec.Failf(name, "FAQ update didn't work correctly: %v", faqs)
		return
	}
	rec.Pass(name, fmt.Sprintf("FAQ section updated successfully with %d questions", len(faqs)), nil)
}

func checkSessionManagement(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Session Management"
	if !v.requireSession(rec, name) {
		return
	}
	obj, err := okObject(v.API.Profile(ctx, v.State.SessionID))
	if err != nil {
		rec.Error(name, err)
		return
	}
	if got := stringOf(obj, "username"); got != v.Creds.Username {
		rec.Failf(name, "Session returned wrong user: %q", got)
		return
	}
	rec.Pass(name, "Session working correctly for user: "+v.Creds.Username, pick(obj, "username"))
}

func checkProfileWithoutSession(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Profile Without Session"
	resp, err := v.API.Profile(ctx, "")
	if err != nil {
		rec.Error(name, err)
		return
	}
	if err := expectStatus(resp, http.StatusBadRequest, http.StatusUnauthorized); err != nil {
		rec.Failf(name, "Profile should require session_id but got status: %d", resp.StatusCode)
		return
	}
	rec.Pass(name, fmt.Sprintf("Profile properly rejected without session_id (status: %d)", resp.StatusCode), nil)
}

func checkDataStructure(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Data Structure"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if missing := jsoncheck.Missing(doc, documentSections); len(missing) > 0 {
		rec.Failf(name, "Missing sections: %v", missing)
		return
	}
	rec.Pass(name, fmt.Sprintf("All %d sections present in single document", len(documentSections)), nil)
}

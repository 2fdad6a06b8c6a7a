package verifier

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
	"github.com/wondertwin-ai/weddingcheck/internal/jsoncheck"
)

func partyScenarios() []Scenario {
	return []Scenario{
		{Name: "Wedding Party Fields", Family: FamilyParty, Run: checkPartyFields},
		addMemberScenario("Add Bridal Party Member", bridalMember),
		addMemberScenario("Add Groom Party Member", groomMember),
		addMemberScenario("Add Special Roles Member", specialMember),
		{Name: "Edit Wedding Party Member", Family: FamilyParty, Run: checkEditMember},
		{Name: "Delete Wedding Party Member", Family: FamilyParty, Run: checkDeleteMember},
		{Name: "Wedding Party Persistence", Family: FamilyParty, Run: checkPartyPersistence},
	}
}

// listLabel is the human form of a party list key.
func listLabel(list client.PartyList) string {
	return strings.ReplaceAll(string(list), "_", " ")
}

// findMember locates a member by id, or by name when no id is known.
func findMember(members []any, id, name string) (map[string]any, int) {
	for i, item := range members {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id != "" && m["id"] == id {
			return m, i
		}
		if id == "" && m["name"] == name {
			return m, i
		}
	}
	return nil, -1
}

func checkPartyFields(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Wedding Party Fields"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}

	types := make(map[string]string, len(partyLists))
	var missing, wrong []string
	for _, list := range partyLists {
		val, ok := doc[string(list)]
		if !ok {
			missing = append(missing, string(list))
			continue
		}
		types[string(list)] = jsoncheck.TypeName(val)
		if types[string(list)] != "array" {
			wrong = append(wrong, string(list))
		}
	}
	switch {
	case len(missing) > 0:
		rec.Failf(name, "Missing wedding party fields: %v", missing)
	case len(wrong) > 0:
		rec.Failf(name, "Wedding party fields have wrong types: %v", types)
	default:
		rec.Pass(name, fmt.Sprintf("All wedding party fields exist as lists: %v", types), nil)
	}
}

// addMemberScenario appends nm to its list with a fresh id and confirms the
// id appears exactly once in the returned list.
func addMemberScenario(name string, nm newMember) Scenario {
	return Scenario{Name: name, Family: FamilyParty, Run: func(ctx context.Context, v *Verifier, rec *Recorder) {
		if !v.requireSession(rec, name) {
			return
		}
		doc, err := v.fetchWedding(ctx)
		if err != nil {
			rec.Failf(name, "Failed to get current wedding data: %s", describe(err))
			return
		}

		member := nm.member
		member.ID = uuid.NewString()
		members := append(slices.Clone(listField(doc, string(nm.list))), member)

		data, err := sectionData(v.API.UpdateParty(ctx, v.State.SessionID, nm.list, members))
		if err != nil {
			rec.Error(name, err)
			return
		}
		updated := listField(data, string(nm.list))
		if n := jsoncheck.Count(updated, jsoncheck.FieldEquals("id", member.ID)); n != 1 {
			rec.Failf(name, "Member %s found %d times in updated %s", member.Name, n, listLabel(nm.list))
			return
		}
		got, _ := findMember(updated, member.ID, "")
		if got["designation"] != member.Designation || got["name"] != member.Name {
			rec.Failf(name, "Member stored with wrong fields: %v", pick(got, "name", "designation"))
			return
		}
		v.State.AddedMembers[nm.list] = member.ID
		rec.Pass(name, fmt.Sprintf("Successfully added %s as %s. Total %s: %d",
			member.Name, member.Designation, listLabel(nm.list), len(updated)), pick(got, "id", "name", "designation"))
	}}
}

func checkEditMember(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Edit Wedding Party Member"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Failf(name, "Failed to get current wedding data: %s", describe(err))
		return
	}
	members := slices.Clone(listField(doc, string(client.BridalParty)))
	if len(members) == 0 {
		rec.Fail(name, "No bridal party members to edit")
		return
	}

	original, ok := members[0].(map[string]any)
	if !ok {
		rec.Fail(name, "First bridal party entry is not an object")
		return
	}
	edited := maps.Clone(original)
	edited["description"] = editedPrefix + stringOf(original, "description")
	edited["designation"] = editedDesignation
	members[0] = edited

	data, err := sectionData(v.API.UpdateParty(ctx, v.State.SessionID, client.BridalParty, members))
	if err != nil {
		rec.Error(name, err)
		return
	}
	updated := listField(data, string(client.BridalParty))
	got, _ := findMember(updated, stringOf(original, "id"), stringOf(original, "name"))
	if got == nil {
		rec.Fail(name, "Edited member missing from bridal party response")
		return
	}
	if got["designation"] != editedDesignation || !strings.HasPrefix(stringOf(got, "description"), strings.TrimSpace(editedPrefix)) {
		rec.Failf(name, "Edit didn't persist correctly: %v", pick(got, "name", "designation", "description"))
		return
	}
	v.State.EditedMemberID = stringOf(got, "id")
	rec.Pass(name, fmt.Sprintf("Successfully edited member: %s - %s", stringOf(got, "name"), editedDesignation),
		pick(got, "id", "name", "designation"))
}

func checkDeleteMember(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Delete Wedding Party Member"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Failf(name, "Failed to get current wedding data: %s", describe(err))
		return
	}
	members := listField(doc, string(client.GroomParty))
	if len(members) == 0 {
		rec.Fail(name, "No groom party members to delete")
		return
	}

	target, _ := members[0].(map[string]any)
	targetID, targetName := stringOf(target, "id"), stringOf(target, "name")
	if targetName == "" {
		targetName = "Unknown"
	}
	remaining := slices.Clone(members[1:])

	data, err := sectionData(v.API.UpdateParty(ctx, v.State.SessionID, client.GroomParty, remaining))
	if err != nil {
		rec.Error(name, err)
		return
	}
	updated := listField(data, string(client.GroomParty))
	_, still := findMember(updated, targetID, targetName)
	if len(updated) != len(members)-1 || still >= 0 {
		rec.Failf(name, "Delete didn't work correctly. Count: %d → %d, Still exists: %t",
			len(members), len(updated), still >= 0)
		return
	}
	v.State.DeletedMemberID = targetID
	rec.Pass(name, fmt.Sprintf("Successfully deleted %s. Count: %d → %d", targetName, len(members), len(updated)), nil)
}

func checkPartyPersistence(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Wedding Party Persistence"
	if !v.requireSession(rec, name) {
		return
	}
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}

	type check struct {
		label string
		ok    bool
	}
	var checks []check
	for _, nm := range []newMember{bridalMember, groomMember, specialMember} {
		m, _ := findMember(listField(doc, string(nm.list)), v.State.AddedMembers[nm.list], nm.member.Name)
		checks = append(checks, check{nm.label, m != nil})
	}
	edited, _ := findMember(listField(doc, string(client.BridalParty)), v.State.EditedMemberID, "")
	if v.State.EditedMemberID == "" {
		edited, _ = findByField(listField(doc, string(client.BridalParty)), "designation", editedDesignation)
	}
	checks = append(checks, check{"Chief Bridesmaid Edit", edited != nil && edited["designation"] == editedDesignation})

	passed := 0
	detail := make(map[string]bool, len(checks))
	for _, c := range checks {
		detail[c.label] = c.ok
		if c.ok {
			passed++
		}
	}
	// When the groom member added earlier was first in its list the delete
	// check removed it, so one miss is tolerated.
	if passed >= len(checks)-1 {
		rec.Pass(name, fmt.Sprintf("Wedding party data persisted correctly. Checks passed: %d/%d", passed, len(checks)), detail)
		return
	}
	rec.Failf(name, "Wedding party data didn't persist correctly. Checks: %v", detail)
}

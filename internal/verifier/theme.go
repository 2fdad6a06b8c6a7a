package verifier

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
)

func themeScenarios() []Scenario {
	return []Scenario{
		{Name: "Current Theme Retrieval", Family: FamilyTheme, Run: checkCurrentTheme},
		themeUpdateScenario("Theme Update Classic", client.ThemeClassic, false),
		{Name: "Theme Persistence Verification", Family: FamilyTheme, Run: checkThemePersistence},
		themeUpdateScenario("Theme Update Modern", client.ThemeModern, false),
		themeUpdateScenario("Theme Update Boho", client.ThemeBoho, true),
		{Name: "Invalid Theme Rejection", Family: FamilyTheme, Run: checkInvalidTheme},
		{Name: "Theme Without Session", Family: FamilyTheme, Run: checkThemeWithoutSession},
	}
}

// currentTheme reads the persisted theme.
func (v *Verifier) currentTheme(ctx context.Context) (string, error) {
	doc, err := v.fetchWedding(ctx)
	if err != nil {
		return "", err
	}
	return stringOf(doc, "theme"), nil
}

// setTheme PUTs theme and requires the response document to carry it.
func (v *Verifier) setTheme(ctx context.Context, theme string) error {
	data, err := sectionData(v.API.UpdateTheme(ctx, v.State.SessionID, theme))
	if err != nil {
		return err
	}
	if got := stringOf(data, "theme"); got != theme {
		return assertionf("Theme not updated correctly. Expected: %s, Got: %s", theme, got)
	}
	v.State.Theme = theme
	return nil
}

func checkCurrentTheme(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Current Theme Retrieval"
	if !v.requireSession(rec, name) {
		return
	}
	theme, err := v.currentTheme(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if !slices.Contains(client.Themes, theme) {
		rec.Failf(name, "Invalid theme value: %q", theme)
		return
	}
	v.State.Theme = theme
	rec.Pass(name, "Current theme: "+theme, map[string]any{"theme": theme})
}

// themeUpdateScenario sets theme. With verify it also re-reads the document
// and records a separate persistence result.
func themeUpdateScenario(name, theme string, verify bool) Scenario {
	return Scenario{Name: name, Family: FamilyTheme, Run: func(ctx context.Context, v *Verifier, rec *Recorder) {
		if !v.requireSession(rec, name) {
			return
		}
		if err := v.setTheme(ctx, theme); err != nil {
			rec.Error(name, err)
			return
		}
		rec.Pass(name, "Theme successfully updated to "+theme, map[string]any{"theme": theme})
		if !verify {
			return
		}

		persisted := fmt.Sprintf("Theme %s Persistence", titleCase(theme))
		got, err := v.currentTheme(ctx)
		switch {
		case err != nil:
			rec.Error(persisted, err)
		case got != theme:
			rec.Failf(persisted, "Theme did not persist. Expected: %s, Got: %s", theme, got)
		default:
			rec.Pass(persisted, "Theme "+theme+" persisted correctly", nil)
		}
	}}
}

func checkThemePersistence(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Theme Persistence Verification"
	if !v.requireSession(rec, name) {
		return
	}
	got, err := v.currentTheme(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if got != client.ThemeClassic {
		rec.Failf(name, "Theme did not persist. Expected: %s, Got: %s", client.ThemeClassic, got)
		return
	}
	rec.Pass(name, "Theme change persisted correctly: "+got, nil)
}

// checkInvalidTheme accepts any 4xx. A 200 is tolerated only when the stored
// theme is unchanged afterwards.
func checkInvalidTheme(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Invalid Theme Rejection"
	if !v.requireSession(rec, name) {
		return
	}
	before, err := v.currentTheme(ctx)
	if err != nil {
		rec.Error(name, err)
		return
	}
	resp, err := v.API.UpdateTheme(ctx, v.State.SessionID, invalidTheme)
	if err != nil {
		rec.Error(name, err)
		return
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		rec.Pass(name, fmt.Sprintf("Properly rejected invalid theme with status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusOK:
		after, err := v.currentTheme(ctx)
		if err != nil {
			rec.Error(name, err)
			return
		}
		if after != before {
			rec.Failf(name, "Invalid theme was accepted: stored theme changed from %s to %s", before, after)
			return
		}
		rec.Pass(name, "Invalid theme ignored; stored theme unchanged: "+after, nil)
	default:
		rec.Failf(name, "Unexpected status %d for invalid theme", resp.StatusCode)
	}
}

func checkThemeWithoutSession(ctx context.Context, v *Verifier, rec *Recorder) {
	const name = "Theme Without Session"
	resp, err := v.API.UpdateTheme(ctx, "", client.ThemeClassic)
	if err != nil {
		rec.Error(name, err)
		return
	}
	if err := expectStatus(resp, http.StatusBadRequest, http.StatusUnauthorized); err != nil {
		rec.Failf(name, "Should require session_id but got status: %d", resp.StatusCode)
		return
	}
	rec.Pass(name, fmt.Sprintf("Properly rejected theme update without session (status: %d)", resp.StatusCode), nil)
}

// titleCase upper-cases the first rune of s.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

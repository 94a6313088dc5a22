package validation

import (
	"errors"
	"strings"
	"testing"
)

func imageSchema() Schema {
	return Schema{
		PassMarker: "VALIDATION: PASS",
		BoolMarkers: map[string]string{
			FieldIntegrated: "LOGO_INTEGRATED: YES",
		},
		Labels:          []string{"FEEDBACK"},
		RemediationWhen: FieldIntegrated,
		Remediation:     "IMPORTANT: Logo not properly integrated. Revert to the input logo as the base image.",
	}
}

func overlaySchema() Schema {
	return Schema{
		PassMarker: "VALIDATION: APPROVED",
		BoolMarkers: map[string]string{
			FieldCorrect: "TEXT_CORRECT: YES",
			FieldClear:   "TEXT_CLEAR: YES",
		},
		Labels: []string{"FOUND_TEXT", "SPECIFIC_FIX", "VALIDATION"},
	}
}

func TestParseConservativeDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "no markers at all", raw: "the poster looks quite nice overall"},
		{name: "explicit fail", raw: "VALIDATION: FAIL\nFEEDBACK: headline too long"},
		{name: "garbage bytes", raw: "\x00\xffVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw, imageSchema())
			if res.Passed {
				t.Errorf("Passed = true for %q, want false", tt.raw)
			}
			if res.Fields == nil {
				t.Error("Fields map is nil, want empty map")
			}
		})
	}
}

func TestParsePassMarkerCaseInsensitive(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "exact marker", raw: "VALIDATION: PASS\nFEEDBACK: good", want: true},
		{name: "lowercase response", raw: "validation: pass", want: true},
		{name: "mixed case", raw: "Validation: Pass, nice work", want: true},
		{name: "marker embedded in prose", raw: "My verdict is VALIDATION: PASS because it fits", want: true},
		{name: "fail verdict", raw: "VALIDATION: FAIL", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw, imageSchema())
			if res.Passed != tt.want {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.want)
			}
		})
	}
}

func TestParseFieldExtraction(t *testing.T) {
	raw := `TEXT_CORRECT: NO
TEXT_CLEAR: YES
FOUND_TEXT: GRAND OPENING
  join us friday
SPECIFIC_FIX: Change "GRAND OPENING" to "SPRING SALE"
VALIDATION: REJECTED`

	res := Parse(raw, overlaySchema())

	if res.Passed {
		t.Error("Passed = true, want false")
	}
	if res.Correct {
		t.Error("Correct = true, want false")
	}
	if !res.Clear {
		t.Error("Clear = false, want true")
	}

	wantFound := "GRAND OPENING\n  join us friday"
	if got := res.Fields["FOUND_TEXT"]; got != wantFound {
		t.Errorf("FOUND_TEXT = %q, want %q", got, wantFound)
	}
	wantFix := `Change "GRAND OPENING" to "SPRING SALE"`
	if got := res.Fields["SPECIFIC_FIX"]; got != wantFix {
		t.Errorf("SPECIFIC_FIX = %q, want %q", got, wantFix)
	}
}

func TestParseFieldRunsToEndWhenLastLabel(t *testing.T) {
	raw := "VALIDATION: APPROVED\nSPECIFIC_FIX: No changes needed"
	res := Parse(raw, overlaySchema())
	if got := res.Fields["SPECIFIC_FIX"]; got != "No changes needed" {
		t.Errorf("SPECIFIC_FIX = %q, want %q", got, "No changes needed")
	}
	if !res.Passed {
		t.Error("Passed = false, want true")
	}
}

func TestParseMissingFieldAbsent(t *testing.T) {
	res := Parse("VALIDATION: APPROVED", overlaySchema())
	if _, ok := res.Fields["FOUND_TEXT"]; ok {
		t.Error("FOUND_TEXT present, want absent")
	}
}

// Pass/fail comes from the headline marker alone; a missing integration
// sub-field appends the remediation note without flipping the verdict.
func TestParseRemediationAdvisory(t *testing.T) {
	raw := "VALIDATION: PASS\nLOGO_INTEGRATED: NO\nFEEDBACK: colors are fine"
	res := Parse(raw, imageSchema())

	if !res.Passed {
		t.Error("Passed = false, want true (integration is advisory)")
	}
	if res.Integrated {
		t.Error("Integrated = true, want false")
	}
	if n := strings.Count(res.RawFeedback, "Logo not properly integrated"); n != 1 {
		t.Errorf("remediation note appears %d times, want exactly 1", n)
	}
}

// The corrective directive must survive field extraction: the FEEDBACK
// field is cut out before the note is appended to the raw text, so
// Feedback has to re-attach it.
func TestFeedbackCarriesRemediation(t *testing.T) {
	raw := "VALIDATION: FAIL\nLOGO_INTEGRATED: NO\nFEEDBACK: no logo anywhere"
	res := Parse(raw, imageSchema())

	fb := res.Feedback("FEEDBACK")
	if !strings.Contains(fb, "no logo anywhere") {
		t.Errorf("Feedback = %q, want the extracted field", fb)
	}
	if n := strings.Count(fb, "Logo not properly integrated"); n != 1 {
		t.Errorf("remediation note appears %d times in Feedback, want exactly 1", n)
	}

	// The raw fallback already carries the note; no double append.
	if n := strings.Count(res.Feedback("MISSING"), "Logo not properly integrated"); n != 1 {
		t.Errorf("remediation note appears %d times in raw fallback, want exactly 1", n)
	}
}

func TestParseRemediationNotAppendedWhenIntegrated(t *testing.T) {
	raw := "VALIDATION: PASS\nLOGO_INTEGRATED: YES\nFEEDBACK: looks great"
	res := Parse(raw, imageSchema())
	if strings.Contains(res.RawFeedback, "Logo not properly integrated") {
		t.Error("remediation note appended despite integrated logo")
	}
	if res.RawFeedback != raw {
		t.Errorf("RawFeedback = %q, want original response", res.RawFeedback)
	}
}

func TestRejected(t *testing.T) {
	res := Rejected(errors.New("connection refused"))
	if res.Passed {
		t.Error("Passed = true, want false")
	}
	if !strings.Contains(res.RawFeedback, "connection refused") {
		t.Errorf("RawFeedback = %q, want it to carry the cause", res.RawFeedback)
	}
}

func TestFeedbackPrefersExtractedField(t *testing.T) {
	raw := "VALIDATION: REJECTED\nSPECIFIC_FIX: Sharpen the headline text"
	res := Parse(raw, overlaySchema())

	if got := res.Feedback("SPECIFIC_FIX"); got != "Sharpen the headline text" {
		t.Errorf("Feedback = %q, want the extracted fix", got)
	}
	if got := res.Feedback("FOUND_TEXT"); got != res.RawFeedback {
		t.Errorf("Feedback for missing field = %q, want raw feedback", got)
	}
}

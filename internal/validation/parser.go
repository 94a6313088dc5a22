// Package validation parses free-form validator responses into structured results.
// Validator collaborators answer in loosely formatted prose with labeled markers
// (e.g. "VALIDATION: PASS"). The parser isolates that textual matching behind one
// component so the rest of the engine never inspects raw model output.
package validation

import (
	"fmt"
	"strings"
)

// Result is the structured outcome of one validation attempt.
// Missing or unparsable markers resolve to conservative defaults: a response
// that cannot be understood is treated as a rejection, never as an error.
type Result struct {
	// Passed reports whether the headline pass marker was present.
	Passed bool
	// Integrated reports the logo-integration sub-check (image loop).
	Integrated bool
	// Correct reports the text-correctness sub-check (overlay loop).
	Correct bool
	// Clear reports the text-clarity sub-check (overlay loop).
	Clear bool
	// RawFeedback is the full response text, plus the remediation note when
	// the schema's gating sub-check resolved to false.
	RawFeedback string
	// Remediation is the corrective directive triggered by a failed gating
	// sub-check, empty otherwise. Feedback always carries it so the
	// directive survives field extraction into retry prompts.
	Remediation string
	// Fields holds the extracted labeled sections, keyed by label.
	Fields map[string]string
}

// Feedback returns the most specific feedback available for retry prompts:
// the schema's preferred field if extracted, otherwise the raw response.
// The remediation note, when set, is appended either way.
func (r Result) Feedback(preferred string) string {
	fb := r.RawFeedback
	if v, ok := r.Fields[preferred]; ok && v != "" {
		fb = v
	}
	if r.Remediation != "" && !strings.Contains(fb, r.Remediation) {
		fb += "\n\n" + r.Remediation
	}
	return fb
}

// Bool field keys understood by Schema.BoolMarkers.
const (
	FieldIntegrated = "integrated"
	FieldCorrect    = "correct"
	FieldClear      = "clear"
)

// Schema declares the markers and labels for one validation loop's response
// format. Lookup is case-insensitive containment; extraction runs label to
// next known label in declared order.
type Schema struct {
	// PassMarker is the exact token whose presence means the attempt passed,
	// e.g. "VALIDATION: PASS".
	PassMarker string
	// BoolMarkers maps a bool field key (FieldIntegrated, FieldCorrect,
	// FieldClear) to the token whose presence sets it true.
	BoolMarkers map[string]string
	// Labels lists the multi-value field labels in the order they appear in
	// the response format, e.g. ["FEEDBACK"] or ["FOUND_TEXT", "SPECIFIC_FIX",
	// "VALIDATION"]. A field's value runs from its label to the next label
	// found, or end of text.
	Labels []string
	// RemediationWhen names the bool field that gates the remediation note.
	RemediationWhen string
	// Remediation is appended to RawFeedback exactly once when the gating
	// field resolves to false, so retry prompts always carry an explicit
	// corrective directive.
	Remediation string
}

// Parse turns a raw validator response into a Result. It is total: any input,
// including the empty string, yields a well-formed Result with conservative
// defaults. Absence of an expected marker is data, not an error.
func Parse(raw string, s Schema) Result {
	upper := strings.ToUpper(raw)

	res := Result{
		RawFeedback: raw,
		Fields:      make(map[string]string),
	}

	if s.PassMarker != "" {
		res.Passed = strings.Contains(upper, strings.ToUpper(s.PassMarker))
	}

	bools := map[string]bool{}
	for key, marker := range s.BoolMarkers {
		bools[key] = strings.Contains(upper, strings.ToUpper(marker))
	}
	res.Integrated = bools[FieldIntegrated]
	res.Correct = bools[FieldCorrect]
	res.Clear = bools[FieldClear]

	for _, label := range s.Labels {
		if v, ok := extractField(raw, upper, label, s.Labels); ok {
			res.Fields[label] = v
		}
	}

	if s.Remediation != "" && s.RemediationWhen != "" && !bools[s.RemediationWhen] {
		res.RawFeedback = raw + "\n\n" + s.Remediation
		res.Remediation = s.Remediation
	}

	return res
}

// Rejected builds the automatic rejection result used when a validation
// collaborator call itself fails. The failure becomes loop-local state so the
// normal retry loop decides what happens next.
func Rejected(err error) Result {
	return Result{
		RawFeedback: fmt.Sprintf("Validation failed due to error: %v", err),
		Fields:      make(map[string]string),
	}
}

// extractField locates "LABEL:" case-insensitively and returns the trimmed
// text up to the next known label or end of input.
func extractField(raw, upper, label string, known []string) (string, bool) {
	token := strings.ToUpper(label) + ":"
	start := strings.Index(upper, token)
	if start < 0 {
		return "", false
	}
	start += len(token)

	end := len(raw)
	for _, other := range known {
		if strings.EqualFold(other, label) {
			continue
		}
		otherToken := strings.ToUpper(other) + ":"
		if idx := strings.Index(upper[start:], otherToken); idx >= 0 && start+idx < end {
			end = start + idx
		}
	}

	return strings.TrimSpace(raw[start:end]), true
}

package stages

import "github.com/posterforge/posterforge/internal/validation"

// Field labels used by the validation response formats.
const (
	labelFeedback    = "FEEDBACK"
	labelFoundText   = "FOUND_TEXT"
	labelSpecificFix = "SPECIFIC_FIX"
	labelValidation  = "VALIDATION"
)

// logoRemediation is appended to image-validation feedback when the logo is
// missing from the generated poster. It redirects the next attempt back to
// the input image as its base.
const logoRemediation = "IMPORTANT: Logo not properly integrated. Must revert to the input image as base."

func textSchema() validation.Schema {
	return validation.Schema{
		PassMarker: "VALIDATION: PASS",
		Labels:     []string{labelFeedback},
	}
}

func imageSchema() validation.Schema {
	return validation.Schema{
		PassMarker: "VALIDATION: PASS",
		BoolMarkers: map[string]string{
			validation.FieldIntegrated: "LOGO_INTEGRATED: YES",
		},
		Labels:          []string{labelFeedback},
		RemediationWhen: validation.FieldIntegrated,
		Remediation:     logoRemediation,
	}
}

func overlaySchema() validation.Schema {
	return validation.Schema{
		PassMarker: "VALIDATION: APPROVED",
		BoolMarkers: map[string]string{
			validation.FieldCorrect: "TEXT_CORRECT: YES",
			validation.FieldClear:   "TEXT_CLEAR: YES",
		},
		Labels: []string{labelFoundText, labelSpecificFix, labelValidation},
	}
}

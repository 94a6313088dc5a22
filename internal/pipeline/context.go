// Package pipeline implements the stage-orchestration engine: a directed
// graph of stages with conditional routing, bounded retry loops, best-so-far
// candidate tracking, and an event stream for observers.
package pipeline

import (
	"github.com/posterforge/posterforge/internal/validation"
)

// Loop names used by the candidate tracker and the attempt recorders.
const (
	LoopText    = "text"
	LoopImage   = "image"
	LoopOverlay = "overlay"
)

// Context is the single mutable record threaded through every stage of a run.
// Exactly one run owns a Context; stages mutate it in place and observers
// (TUI, history store) only ever see copies carried by events.
type Context struct {
	// Inputs, resolved by the load_input stage.
	InputText      string
	InputTextPath  string
	InputImagePath string

	// PlanningOutput is the design plan produced by the planning stage.
	PlanningOutput string

	// Text loop.
	GeneratedText  string
	TextAttempts   int
	BestText       string
	TextValidation validation.Result

	// Image loop. CurrentImage is the latest synthesized poster image path;
	// BestImage is the non-downgrade candidate.
	CurrentImage    string
	ImageAttempts   int
	BestImage       string
	ImageValidation validation.Result

	// Overlay loop. OverlayImage is empty when the latest render failed.
	OverlayImage      string
	OverlayAttempts   int
	OverlayValidation validation.Result

	// EditorAvailable reports whether the image-edit capability probed
	// reachable at startup. When false, image generation degrades to
	// reusing the input image.
	EditorAvailable bool

	// Final artifact locations, set by save_output.
	FinalPosterPath string
	FinalTextPath   string
}

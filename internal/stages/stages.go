// Package stages implements the poster pipeline: ten concrete stages wired
// into a graph with three bounded validation loops (copy, image, overlay).
package stages

import (
	"context"
	"time"

	"github.com/posterforge/posterforge/internal/artifacts"
	"github.com/posterforge/posterforge/internal/pipeline"
)

// Stage names, in workflow order.
const (
	StageLoadInput         = "load_input"
	StagePlanning          = "planning"
	StageTextGeneration    = "text_generation"
	StageTextValidation    = "text_validation"
	StageImageGeneration   = "image_generation"
	StageImageValidation   = "image_validation"
	StageSegmentation      = "segmentation"
	StageOverlayRender     = "overlay_render"
	StageOverlayValidation = "overlay_validation"
	StageSaveOutput        = "save_output"
)

// TextGenerator produces poster copy and reviews it. Implemented by api.Client.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string, timeout time.Duration) (string, error)
}

// VisionValidator answers questions about images. Implemented by api.Client.
type VisionValidator interface {
	ValidateVision(ctx context.Context, instructions string, imagePaths []string, timeout time.Duration) (string, error)
}

// ImageEditor synthesizes poster backgrounds. Implemented by api.Sidecar.
// Available reports whether the capability probed reachable; when false the
// image stage degrades to the input image instead of calling Edit.
type ImageEditor interface {
	Available() bool
	Edit(ctx context.Context, baseImagePath, prompt, outPath string) error
}

// OverlayRenderer renders text onto a poster image. Implemented by api.Sidecar.
type OverlayRenderer interface {
	RenderOverlay(ctx context.Context, baseImagePath, text, layout, outPath string) error
}

// AttemptRecorder receives one record per validated loop attempt, for the
// run history store. A nil recorder is valid.
type AttemptRecorder interface {
	RecordAttempt(loop string, attempt int, passed bool, feedback string)
}

// Config holds the per-run knobs for the stage set.
type Config struct {
	MaxTextAttempts    int
	MaxImageAttempts   int
	MaxOverlayAttempts int

	InputTextPath  string
	InputImagePath string

	GenerateTimeout time.Duration
	ValidateTimeout time.Duration
	EditTimeout     time.Duration
	RenderTimeout   time.Duration
}

// Stages bundles the collaborators and stores a pipeline run needs.
type Stages struct {
	cfg     Config
	gen     TextGenerator
	vision  VisionValidator
	editor  ImageEditor
	overlay OverlayRenderer
	store   *artifacts.Store
	tracker *pipeline.Tracker

	recorder AttemptRecorder
	events   *pipeline.Emitter
}

// Option configures optional observers on a stage set.
type Option func(*Stages)

// WithRecorder attaches a per-attempt recorder.
func WithRecorder(r AttemptRecorder) Option {
	return func(s *Stages) { s.recorder = r }
}

// WithEmitter attaches the engine event emitter so stages can report
// attempt outcomes.
func WithEmitter(e *pipeline.Emitter) Option {
	return func(s *Stages) { s.events = e }
}

// New creates the stage set. gen, vision, and store are required; editor and
// overlay may be nil, in which case their stages degrade.
func New(cfg Config, gen TextGenerator, vision VisionValidator, editor ImageEditor, overlay OverlayRenderer, store *artifacts.Store, opts ...Option) *Stages {
	s := &Stages{
		cfg:     cfg,
		gen:     gen,
		vision:  vision,
		editor:  editor,
		overlay: overlay,
		store:   store,
		tracker: pipeline.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tracker exposes the candidate tracker, mainly for tests and the manifest.
func (s *Stages) Tracker() *pipeline.Tracker {
	return s.tracker
}

// recordAttempt forwards one validated attempt to the recorder and emitter.
func (s *Stages) recordAttempt(loop string, attempt, max int, passed bool, feedback string) {
	if s.recorder != nil {
		s.recorder.RecordAttempt(loop, attempt, passed, feedback)
	}
	s.events.Emit(pipeline.Event{
		Type:    pipeline.EventAttemptRecorded,
		Loop:    loop,
		Attempt: attempt,
		Passed:  passed,
		Message: excerpt(feedback),
	})
	if !passed && attempt >= max {
		s.events.Emit(pipeline.Event{
			Type:    pipeline.EventRetriesExhausted,
			Loop:    loop,
			Attempt: attempt,
		})
	}
}

func excerpt(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package stages

import (
	"context"
	"errors"

	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/validation"
)

// OverlayRender draws the poster copy onto the best background. A render
// failure stays loop-local: the attempt is left without an image and the
// validation stage records the rejection, so the save stage can still fall
// back to the text-free poster.
func (s *Stages) OverlayRender(ctx context.Context, pc *pipeline.Context) error {
	pc.OverlayAttempts++
	attempt := pc.OverlayAttempts

	base := pc.BestImage
	if base == "" {
		base = pc.CurrentImage
	}
	if base == "" {
		pc.OverlayImage = ""
		return nil
	}

	text := pc.BestText
	if text == "" {
		text = pc.GeneratedText
	}

	layout := pc.PlanningOutput
	if attempt > 1 {
		if fix := pc.OverlayValidation.Feedback(labelSpecificFix); fix != "" {
			layout += "\n\nPREVIOUS ATTEMPT FIX:\n" + fix
		}
	}

	out := s.store.OverlayAttemptPath(attempt)
	if s.overlay == nil {
		pc.OverlayImage = ""
		return nil
	}

	renderCtx := ctx
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}
	if err := s.overlay.RenderOverlay(renderCtx, base, text, layout, out); err != nil {
		pc.OverlayImage = ""
		return nil
	}

	pc.OverlayImage = out
	s.tracker.Seed(pipeline.LoopOverlay, out, attempt)
	return nil
}

// OverlayValidation checks the rendered text with the vision model. When the
// render itself produced no image the attempt is rejected without a model
// call; validator failures also map to rejection.
func (s *Stages) OverlayValidation(ctx context.Context, pc *pipeline.Context) error {
	var res validation.Result
	if pc.OverlayImage == "" {
		res = validation.Rejected(errors.New("overlay render produced no image"))
	} else {
		expected := pc.BestText
		if expected == "" {
			expected = pc.GeneratedText
		}
		raw, err := s.vision.ValidateVision(ctx, overlayValidationPrompt(expected), []string{pc.OverlayImage}, s.cfg.ValidateTimeout)
		if err != nil {
			res = validation.Rejected(err)
		} else {
			res = validation.Parse(raw, overlaySchema())
		}
	}

	pc.OverlayValidation = res
	if pc.OverlayImage != "" {
		s.tracker.Record(pipeline.LoopOverlay, pc.OverlayImage, pc.OverlayAttempts, res.Passed)
	}

	s.recordAttempt(pipeline.LoopOverlay, pc.OverlayAttempts, s.cfg.MaxOverlayAttempts, res.Passed, res.RawFeedback)
	return nil
}

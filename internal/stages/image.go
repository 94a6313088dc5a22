package stages

import (
	"context"
	"fmt"

	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/validation"
)

// ImageGeneration synthesizes one poster background attempt. When the edit
// capability is unavailable the stage degrades to the input image. The base
// image is the input logo on the first attempt and again whenever the last
// validation reported the logo missing; otherwise it iterates on the current
// image.
func (s *Stages) ImageGeneration(ctx context.Context, pc *pipeline.Context) error {
	pc.ImageAttempts++
	attempt := pc.ImageAttempts

	if !pc.EditorAvailable {
		pc.CurrentImage = pc.InputImagePath
		s.tracker.Seed(pipeline.LoopImage, pc.CurrentImage, attempt)
		if pc.BestImage == "" {
			pc.BestImage = pc.CurrentImage
		}
		return nil
	}

	base := pc.InputImagePath
	if attempt > 1 && pc.ImageValidation.Integrated && pc.CurrentImage != "" {
		base = pc.CurrentImage
	}

	feedback := ""
	if attempt > 1 {
		feedback = pc.ImageValidation.Feedback(labelFeedback)
	}

	editCtx := ctx
	if s.cfg.EditTimeout > 0 {
		var cancel context.CancelFunc
		editCtx, cancel = context.WithTimeout(ctx, s.cfg.EditTimeout)
		defer cancel()
	}

	out := s.store.ImageAttemptPath(attempt)
	if err := s.editor.Edit(editCtx, base, imageEditPrompt(pc.PlanningOutput, feedback), out); err != nil {
		return fmt.Errorf("image generation attempt %d: %w", attempt, err)
	}

	pc.CurrentImage = out
	s.tracker.Seed(pipeline.LoopImage, out, attempt)
	if pc.BestImage == "" {
		pc.BestImage = out
	}
	return nil
}

// ImageValidation asks the vision model to compare the generated poster
// against the logo and the plan. Logo integration is advisory: a missing
// logo appends the remediation note to feedback without flipping the pass
// flag. A validator failure maps to a rejection.
func (s *Stages) ImageValidation(ctx context.Context, pc *pipeline.Context) error {
	raw, err := s.vision.ValidateVision(ctx,
		imageValidationPrompt(pc.PlanningOutput, pc.InputText),
		[]string{pc.InputImagePath, pc.CurrentImage},
		s.cfg.ValidateTimeout)

	var res validation.Result
	if err != nil {
		res = validation.Rejected(err)
	} else {
		res = validation.Parse(raw, imageSchema())
	}

	pc.ImageValidation = res
	s.tracker.Record(pipeline.LoopImage, pc.CurrentImage, pc.ImageAttempts, res.Passed)
	if best, ok := s.tracker.Best(pipeline.LoopImage); ok {
		pc.BestImage = best.Value
	}

	s.recordAttempt(pipeline.LoopImage, pc.ImageAttempts, s.cfg.MaxImageAttempts, res.Passed, res.RawFeedback)
	return nil
}

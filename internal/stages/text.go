package stages

import (
	"context"
	"fmt"

	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/validation"
)

// TextGeneration produces one attempt at the poster copy. The first attempt
// seeds the best-text fallback unconditionally; later attempts carry the
// previous validation feedback in the prompt.
func (s *Stages) TextGeneration(ctx context.Context, pc *pipeline.Context) error {
	pc.TextAttempts++
	attempt := pc.TextAttempts

	feedback := ""
	if attempt > 1 {
		feedback = pc.TextValidation.Feedback(labelFeedback)
	}

	text, err := s.gen.Generate(ctx, copywriterSystem, textGenerationPrompt(pc.PlanningOutput, pc.InputText, feedback), s.cfg.GenerateTimeout)
	if err != nil {
		return fmt.Errorf("text generation attempt %d: %w", attempt, err)
	}

	if _, err := s.store.SaveTextAttempt(attempt, text); err != nil {
		return err
	}

	pc.GeneratedText = text
	s.tracker.Seed(pipeline.LoopText, text, attempt)
	if pc.BestText == "" {
		pc.BestText = text
	}
	return nil
}

// TextValidation reviews the generated copy against the plan. A validator
// failure becomes a rejection, never an abort: the retry loop owns recovery.
func (s *Stages) TextValidation(ctx context.Context, pc *pipeline.Context) error {
	raw, err := s.gen.Generate(ctx, validatorSystem, textValidationPrompt(pc.PlanningOutput, pc.GeneratedText), s.cfg.ValidateTimeout)

	var res validation.Result
	if err != nil {
		res = validation.Rejected(err)
	} else {
		res = validation.Parse(raw, textSchema())
	}

	pc.TextValidation = res
	s.tracker.Record(pipeline.LoopText, pc.GeneratedText, pc.TextAttempts, res.Passed)
	if res.Passed {
		pc.BestText = pc.GeneratedText
	}

	s.recordAttempt(pipeline.LoopText, pc.TextAttempts, s.cfg.MaxTextAttempts, res.Passed, res.RawFeedback)
	return nil
}

package stages

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/validation"
)

// LoadInput reads the input text and verifies the input image exists.
// A missing input is a fatal precondition failure.
func (s *Stages) LoadInput(ctx context.Context, pc *pipeline.Context) error {
	data, err := os.ReadFile(s.cfg.InputTextPath)
	if err != nil {
		return fmt.Errorf("input text file not found: %w", err)
	}
	if _, err := os.Stat(s.cfg.InputImagePath); err != nil {
		return fmt.Errorf("input image file not found: %w", err)
	}

	pc.InputText = strings.TrimSpace(string(data))
	pc.InputTextPath = s.cfg.InputTextPath
	pc.InputImagePath = s.cfg.InputImagePath
	pc.TextAttempts = 0
	pc.ImageAttempts = 0
	pc.OverlayAttempts = 0
	pc.TextValidation = validation.Result{}
	pc.ImageValidation = validation.Result{}
	pc.OverlayValidation = validation.Result{}
	pc.EditorAvailable = s.editor != nil && s.editor.Available()

	return s.store.EnsureDirs()
}

// Planning asks the vision model for the poster design plan, grounded in the
// logo image and the input text. The plan is persisted once per run.
func (s *Stages) Planning(ctx context.Context, pc *pipeline.Context) error {
	prompt := plannerSystem + "\n\n" + planningPrompt(pc.InputText)
	plan, err := s.vision.ValidateVision(ctx, prompt, []string{pc.InputImagePath}, s.cfg.ValidateTimeout)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	if _, err := s.store.SavePlanning(plan); err != nil {
		return err
	}
	pc.PlanningOutput = plan
	return nil
}

// Segmentation is a declared pass-through, kept as a named node so the
// workflow shape matches the full design even while the stage does nothing.
func (s *Stages) Segmentation(ctx context.Context, pc *pipeline.Context) error {
	return nil
}

package stages

import (
	"context"
	"errors"
	"os"

	"github.com/posterforge/posterforge/internal/pipeline"
)

// SaveOutput copies the best available artifacts to the output directory.
// The poster source falls back overlay -> best image -> current image, the
// copy falls back best text -> generated text, so an exhausted loop still
// yields a result.
func (s *Stages) SaveOutput(ctx context.Context, pc *pipeline.Context) error {
	poster := ""
	if best, ok := s.tracker.Best(pipeline.LoopOverlay); ok && fileExists(best.Value) {
		poster = best.Value
	}
	if poster == "" && pc.OverlayImage != "" && fileExists(pc.OverlayImage) {
		poster = pc.OverlayImage
	}
	if poster == "" && pc.BestImage != "" && fileExists(pc.BestImage) {
		poster = pc.BestImage
	}
	if poster == "" && pc.CurrentImage != "" && fileExists(pc.CurrentImage) {
		poster = pc.CurrentImage
	}
	if poster == "" {
		return errors.New("no poster image available to save")
	}

	posterPath, err := s.store.SaveFinalPoster(poster)
	if err != nil {
		return err
	}
	pc.FinalPosterPath = posterPath

	text := pc.BestText
	if text == "" {
		text = pc.GeneratedText
	}
	textPath, err := s.store.SaveFinalText(text)
	if err != nil {
		return err
	}
	pc.FinalTextPath = textPath
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

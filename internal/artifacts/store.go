// Package artifacts persists per-attempt intermediate files and the final
// poster outputs for a run.
package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store writes run artifacts under two directories: intermediates (one file
// per attempt, kept for debugging and the history trail) and final outputs.
type Store struct {
	IntermediateDir string
	OutputDir       string
}

// NewStore creates a store rooted at the given directories.
func NewStore(intermediateDir, outputDir string) *Store {
	return &Store{IntermediateDir: intermediateDir, OutputDir: outputDir}
}

// EnsureDirs creates both directories.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.IntermediateDir, s.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create artifact dir %s: %w", dir, err)
		}
	}
	return nil
}

// SavePlanning writes the design plan once per run.
func (s *Store) SavePlanning(plan string) (string, error) {
	path := filepath.Join(s.IntermediateDir, "planning.txt")
	if err := os.WriteFile(path, []byte(plan), 0644); err != nil {
		return "", fmt.Errorf("save planning output: %w", err)
	}
	return path, nil
}

// SaveTextAttempt writes one text-generation attempt.
func (s *Store) SaveTextAttempt(attempt int, text string) (string, error) {
	path := filepath.Join(s.IntermediateDir, fmt.Sprintf("text_attempt%d.txt", attempt))
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("save text attempt %d: %w", attempt, err)
	}
	return path, nil
}

// ImageAttemptPath returns where one image-generation attempt is written.
// The image editor writes the file itself; the store only names it.
func (s *Store) ImageAttemptPath(attempt int) string {
	return filepath.Join(s.IntermediateDir, fmt.Sprintf("image_attempt%d.png", attempt))
}

// OverlayAttemptPath returns where one overlay-render attempt is written.
func (s *Store) OverlayAttemptPath(attempt int) string {
	return filepath.Join(s.IntermediateDir, fmt.Sprintf("overlay_attempt%d.png", attempt))
}

// SaveFinalPoster copies the chosen poster image to <output>/poster.png.
func (s *Store) SaveFinalPoster(src string) (string, error) {
	dst := filepath.Join(s.OutputDir, "poster.png")
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("save final poster: %w", err)
	}
	return dst, nil
}

// SaveFinalText writes the chosen poster copy to <output>/text.txt.
func (s *Store) SaveFinalText(text string) (string, error) {
	dst := filepath.Join(s.OutputDir, "text.txt")
	if err := os.WriteFile(dst, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("save final text: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// Manifest summarizes a completed run. It is written next to the outputs as
// run.yaml so the result is inspectable without the history database.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Input struct {
		Text  string `yaml:"text"`
		Image string `yaml:"image"`
	} `yaml:"input"`

	Attempts struct {
		Text    int `yaml:"text"`
		Image   int `yaml:"image"`
		Overlay int `yaml:"overlay"`
	} `yaml:"attempts"`

	Passed struct {
		Text    bool `yaml:"text"`
		Image   bool `yaml:"image"`
		Overlay bool `yaml:"overlay"`
	} `yaml:"passed"`

	Tokens struct {
		Input  int64   `yaml:"input"`
		Output int64   `yaml:"output"`
		CostUS float64 `yaml:"cost_usd"`
	} `yaml:"tokens"`

	Outputs struct {
		Poster string `yaml:"poster"`
		Text   string `yaml:"text"`
	} `yaml:"outputs"`
}

// WriteManifest serializes the manifest to <output>/run.yaml.
func (s *Store) WriteManifest(m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal run manifest: %w", err)
	}
	path := filepath.Join(s.OutputDir, "run.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run manifest: %w", err)
	}
	return nil
}

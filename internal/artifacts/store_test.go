package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "intermediate"), filepath.Join(dir, "output"))
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSavePlanning(t *testing.T) {
	s := newTestStore(t)

	path, err := s.SavePlanning("COLOR PALETTE: blue and gold")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "planning.txt" {
		t.Errorf("path = %s, want planning.txt", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "COLOR PALETTE: blue and gold" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveTextAttemptNumbersFiles(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 3; i++ {
		if _, err := s.SaveTextAttempt(i, "draft"); err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i <= 3; i++ {
		name := filepath.Join(s.IntermediateDir, "text_attempt"+string(rune('0'+i))+".txt")
		if _, err := os.Stat(name); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestAttemptPathsDistinct(t *testing.T) {
	s := newTestStore(t)

	if s.ImageAttemptPath(1) == s.ImageAttemptPath(2) {
		t.Error("image attempt paths collide")
	}
	if s.ImageAttemptPath(1) == s.OverlayAttemptPath(1) {
		t.Error("image and overlay attempt paths collide")
	}
}

func TestSaveFinalPosterCopies(t *testing.T) {
	s := newTestStore(t)

	src := filepath.Join(s.IntermediateDir, "best.png")
	if err := os.WriteFile(src, []byte("image-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	dst, err := s.SaveFinalPoster(src)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dst) != "poster.png" {
		t.Errorf("dst = %s, want poster.png", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("copied content = %q", data)
	}
}

func TestSaveFinalPosterMissingSource(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveFinalPoster(filepath.Join(s.IntermediateDir, "nope.png")); err == nil {
		t.Error("SaveFinalPoster() = nil for missing source")
	}
}

func TestWriteManifest(t *testing.T) {
	s := newTestStore(t)

	var m Manifest
	m.RunID = "run-1"
	m.StartedAt = time.Now().Add(-time.Minute)
	m.FinishedAt = time.Now()
	m.Attempts.Text = 2
	m.Passed.Text = true
	m.Outputs.Poster = "poster.png"

	if err := s.WriteManifest(m); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(s.OutputDir, "run.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"run_id: run-1", "text: 2", "poster: poster.png"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("manifest missing %q:\n%s", want, data)
		}
	}
}

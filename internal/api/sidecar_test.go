package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSidecarProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewSidecar(srv.URL, time.Second)
	if !s.Probe(context.Background()) {
		t.Error("Probe() = false against a healthy server")
	}
	if !s.Available() {
		t.Error("Available() = false after a successful probe")
	}
}

func TestSidecarProbeUnreachable(t *testing.T) {
	s := NewSidecar("http://127.0.0.1:1", 200*time.Millisecond)
	if s.Probe(context.Background()) {
		t.Error("Probe() = true against a dead endpoint")
	}
	if s.Available() {
		t.Error("Available() = true after a failed probe")
	}
}

func TestSidecarEditWritesImage(t *testing.T) {
	want := []byte("png-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/edit" {
			http.NotFound(w, r)
			return
		}
		var req editRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Prompt == "" {
			http.Error(w, "missing prompt", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(imageResponse{
			Image: base64.StdEncoding.EncodeToString(want),
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	base := filepath.Join(dir, "base.png")
	if err := os.WriteFile(base, []byte("base"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")

	s := NewSidecar(srv.URL, time.Second)
	if err := s.Edit(context.Background(), base, "add a sunset", out); err != nil {
		t.Fatalf("Edit() = %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("output image = %q, want %q", got, want)
	}
}

func TestSidecarEditErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSidecar(srv.URL, time.Second)
	err := s.Edit(context.Background(), "nonexistent.png", "prompt", filepath.Join(t.TempDir(), "out.png"))

	var cerr *CollaboratorError
	if !errors.As(err, &cerr) {
		t.Fatalf("Edit() = %T, want *CollaboratorError", err)
	}
	if cerr.Kind != KindTransport {
		t.Errorf("Kind = %s, want %s", cerr.Kind, KindTransport)
	}
}

func TestSidecarOverlayRenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(imageResponse{Error: "font missing"})
	}))
	defer srv.Close()

	s := NewSidecar(srv.URL, time.Second)
	err := s.RenderOverlay(context.Background(), "base.png", "HELLO", "centered", filepath.Join(t.TempDir(), "out.png"))

	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("RenderOverlay() = %T, want *RenderError", err)
	}
}

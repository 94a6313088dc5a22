package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Sidecar is the HTTP client for the local image service: a diffusion
// image-edit endpoint and a text-overlay endpoint. The service is optional;
// an unreachable sidecar at startup marks the edit capability unavailable
// and the pipeline degrades instead of aborting.
type Sidecar struct {
	baseURL string
	client  *http.Client

	mu        sync.RWMutex
	available bool
}

// NewSidecar creates a sidecar client. The timeout applies per request.
func NewSidecar(baseURL string, timeout time.Duration) *Sidecar {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Sidecar{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Probe checks the sidecar's health endpoint and records availability.
// Probe never returns an error: an unreachable sidecar is a degraded mode,
// not a failure.
func (s *Sidecar) Probe(ctx context.Context) bool {
	ok := false
	if s.baseURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/healthz", nil)
		if err == nil {
			resp, err := s.client.Do(req)
			if err == nil {
				resp.Body.Close()
				ok = resp.StatusCode == http.StatusOK
			}
		}
	}

	s.mu.Lock()
	s.available = ok
	s.mu.Unlock()
	return ok
}

// Available reports the result of the last Probe.
func (s *Sidecar) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

type editRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type overlayRequest struct {
	Image  string `json:"image"`
	Text   string `json:"text"`
	Layout string `json:"layout"`
}

type imageResponse struct {
	Image string `json:"image"`
	Error string `json:"error,omitempty"`
}

// Edit sends the base image and an edit prompt to the diffusion endpoint and
// writes the returned image to outPath. Failures are *CollaboratorError.
func (s *Sidecar) Edit(ctx context.Context, baseImagePath, prompt, outPath string) error {
	body, err := s.post(ctx, "/v1/edit", editRequest{
		Image:  mustEncodeFile(baseImagePath),
		Prompt: prompt,
	})
	if err != nil {
		return wrapSidecarErr("edit", ctx, err)
	}
	if err := writeImageResponse(body, outPath); err != nil {
		return &CollaboratorError{Kind: KindModel, Op: "edit", Err: err}
	}
	return nil
}

// RenderOverlay sends the base image plus the text and layout instructions to the
// overlay endpoint and writes the rendered poster to outPath. Failures are
// *RenderError and stay loop-local.
func (s *Sidecar) RenderOverlay(ctx context.Context, baseImagePath, text, layout, outPath string) error {
	body, err := s.post(ctx, "/v1/overlay", overlayRequest{
		Image:  mustEncodeFile(baseImagePath),
		Text:   text,
		Layout: layout,
	})
	if err != nil {
		return &RenderError{Op: "overlay", Err: err}
	}
	if err := writeImageResponse(body, outPath); err != nil {
		return &RenderError{Op: "overlay", Err: err}
	}
	return nil
}

// post sends a JSON request and returns the response body. Non-2xx statuses
// are errors carrying the body excerpt.
func (s *Sidecar) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if s.baseURL == "" {
		return nil, errors.New("sidecar base URL is not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sidecar returned %d: %s", resp.StatusCode, excerpt(body))
	}
	return body, nil
}

// excerpt trims a response body for error messages.
func excerpt(body []byte) string {
	const max = 256
	s := string(body)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return strings.TrimSpace(s)
}

// writeImageResponse decodes the sidecar's JSON image payload to a file.
func writeImageResponse(body []byte, outPath string) error {
	var ir imageResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return fmt.Errorf("decode sidecar response: %w", err)
	}
	if ir.Error != "" {
		return fmt.Errorf("sidecar reported: %s", ir.Error)
	}
	img, err := base64.StdEncoding.DecodeString(ir.Image)
	if err != nil {
		return fmt.Errorf("decode image payload: %w", err)
	}
	return os.WriteFile(outPath, img, 0644)
}

// mustEncodeFile base64-encodes a file, or returns empty on read failure so
// the sidecar reports the missing image in its own error.
func mustEncodeFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func wrapSidecarErr(op string, ctx context.Context, err error) error {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CollaboratorError{Kind: kind, Op: op, Err: err}
}

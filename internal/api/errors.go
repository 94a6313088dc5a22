package api

import "fmt"

// ErrorKind classifies a collaborator failure so the orchestration layer can
// decide retryability per loop without string matching.
type ErrorKind string

const (
	// KindTransport covers network and HTTP-level failures.
	KindTransport ErrorKind = "transport"
	// KindModel covers failures reported by the model or service itself.
	KindModel ErrorKind = "model"
	// KindTimeout covers deadline expiry on a collaborator call.
	KindTimeout ErrorKind = "timeout"
)

// CollaboratorError is the failure type returned by every LLM and editor
// adapter call.
type CollaboratorError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// RenderError is the failure type for text-overlay rendering. It is distinct
// from CollaboratorError because render failures stay loop-local: the overlay
// loop records a rejection and retries instead of aborting the run.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: render failure: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

package pipeline

import "context"

// StageFunc is the unit of work in the graph. It mutates the pipeline
// Context in place and returns an error only for fatal conditions: a
// returned error aborts the run. Loop-local failures (a validation
// rejection, an exhausted retry budget) are recorded in the Context and
// routed around, never returned.
type StageFunc func(ctx context.Context, pc *Context) error

// Stage is a named node in the graph.
type Stage struct {
	Name string
	Run  StageFunc
}

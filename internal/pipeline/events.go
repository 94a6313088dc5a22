package pipeline

import "time"

// EventType is the kind of engine event.
type EventType string

const (
	// EventStageStarted indicates a stage began executing.
	EventStageStarted EventType = "stage_started"
	// EventStageCompleted indicates a stage finished without a fatal error.
	EventStageCompleted EventType = "stage_completed"
	// EventStageFailed indicates a stage returned a fatal error; the run aborts.
	EventStageFailed EventType = "stage_failed"
	// EventAttemptRecorded indicates one validated loop attempt.
	EventAttemptRecorded EventType = "attempt_recorded"
	// EventRetry indicates a router sent the run back into its loop.
	EventRetry EventType = "retry"
	// EventRetriesExhausted indicates a loop spent its budget without a pass.
	EventRetriesExhausted EventType = "retries_exhausted"
	// EventRunCompleted indicates the run reached the terminal stage.
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed indicates the run aborted with an error.
	EventRunFailed EventType = "run_failed"
)

// Event is one observation emitted by the engine. Events feed the TUI,
// the headless printer, and the run history store; they never carry the
// live Context.
type Event struct {
	Type EventType
	// Stage is the stage name, or the router name for routing events.
	Stage string
	// Loop names the retry loop for attempt and routing events.
	Loop string
	// Attempt is the 1-based attempt number for attempt events.
	Attempt int
	// Passed reports the validation outcome for attempt events.
	Passed bool
	// Message provides extra context (feedback excerpt, decision).
	Message string
	// Err carries the failure for stage_failed and run_failed.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emitter fans engine events out to at most one consumer over a buffered
// channel. A nil Emitter is valid and drops everything, so library callers
// that don't care about events pass nothing.
type Emitter struct {
	ch chan Event
}

// NewEmitter creates an emitter with the given channel buffer.
func NewEmitter(buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 64
	}
	return &Emitter{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the event stream.
func (e *Emitter) Events() <-chan Event {
	if e == nil {
		return nil
	}
	return e.ch
}

// Emit sends an event without blocking the run. If the consumer has fallen
// behind the buffer the event is dropped; the engine never stalls on a
// slow observer.
func (e *Emitter) Emit(ev Event) {
	if e == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case e.ch <- ev:
	default:
	}
}

// Close ends the stream. Call only after Run has returned.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	close(e.ch)
}

package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one pipeline run in the history store.
type Run struct {
	ID             string
	InputTextPath  string
	InputImagePath string
	Status         string
	PosterPath     string
	TextPath       string
	InputTokens    int64
	OutputTokens   int64
	Cost           float64
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Attempt is one validated loop attempt in the history store.
type Attempt struct {
	RunID      string
	Loop       string
	Attempt    int
	Passed     bool
	Feedback   string
	RecordedAt time.Time
}

// CreateRun inserts a new run and returns its generated ID.
func (db *DB) CreateRun(inputTextPath, inputImagePath string) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO runs (id, input_text_path, input_image_path, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, inputTextPath, inputImagePath, RunStatusRunning, formatTime(time.Now()))
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run.
func (db *DB) FinishRun(id, status, posterPath, textPath string, inputTokens, outputTokens int64, cost float64) error {
	_, err := db.Exec(`
		UPDATE runs
		SET status = ?, poster_path = ?, text_path = ?,
		    input_tokens = ?, output_tokens = ?, cost = ?, finished_at = ?
		WHERE id = ?
	`, status, posterPath, textPath, inputTokens, outputTokens, cost, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

// RecordAttempt inserts one loop attempt for a run.
func (db *DB) RecordAttempt(runID, loop string, attempt int, passed bool, feedback string) error {
	passedInt := 0
	if passed {
		passedInt = 1
	}
	_, err := db.Exec(`
		INSERT INTO attempts (run_id, loop, attempt, passed, feedback, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, loop, attempt, passedInt, feedback, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, input_text_path, input_image_path, status,
		       COALESCE(poster_path, ''), COALESCE(text_path, ''),
		       input_tokens, output_tokens, cost, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.InputTextPath, &r.InputImagePath, &r.Status,
			&r.PosterPath, &r.TextPath,
			&r.InputTokens, &r.OutputTokens, &r.Cost, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := parseTime(startedAt); err == nil {
			r.StartedAt = t
		}
		r.FinishedAt = parseNullableTime(finishedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Attempts returns all recorded attempts for a run, in insertion order.
func (db *DB) Attempts(runID string) ([]Attempt, error) {
	rows, err := db.Query(`
		SELECT run_id, loop, attempt, passed, COALESCE(feedback, ''), recorded_at
		FROM attempts
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var passed int
		var recordedAt string
		if err := rows.Scan(&a.RunID, &a.Loop, &a.Attempt, &passed, &a.Feedback, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Passed = passed != 0
		if t, err := parseTime(recordedAt); err == nil {
			a.RecordedAt = t
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// RunRecorder adapts the database to the per-attempt recorder the stage set
// accepts. Recording is best-effort: a failed insert never disturbs the run.
type RunRecorder struct {
	DB    *DB
	RunID string
}

// RecordAttempt implements the stages.AttemptRecorder interface.
func (r *RunRecorder) RecordAttempt(loop string, attempt int, passed bool, feedback string) {
	if r == nil || r.DB == nil {
		return
	}
	_ = r.DB.RecordAttempt(r.RunID, loop, attempt, passed, feedback)
}

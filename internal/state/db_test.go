package state

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Errorf("second Migrate() = %v", err)
	}
}

func TestCreateAndFinishRun(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun("input.txt", "input.png")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty run ID")
	}

	if err := db.FinishRun(id, RunStatusCompleted, "out/poster.png", "out/text.txt", 1200, 400, 0.012); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns returned %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Status != RunStatusCompleted {
		t.Errorf("run = %+v", r)
	}
	if r.PosterPath != "out/poster.png" || r.InputTokens != 1200 {
		t.Errorf("run fields = %+v", r)
	}
	if r.FinishedAt == nil {
		t.Error("FinishedAt not recorded")
	}
}

func TestRecordAndListAttempts(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateRun("input.txt", "input.png")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.RecordAttempt(id, "text", 1, false, "headline too long"); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordAttempt(id, "text", 2, true, "good"); err != nil {
		t.Fatal(err)
	}

	attempts, err := db.Attempts(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}
	if attempts[0].Passed || !attempts[1].Passed {
		t.Errorf("attempt outcomes = %v/%v, want fail then pass", attempts[0].Passed, attempts[1].Passed)
	}
	if attempts[1].Loop != "text" || attempts[1].Attempt != 2 {
		t.Errorf("attempt = %+v", attempts[1])
	}
}

func TestRunRecorderNilSafe(t *testing.T) {
	var r *RunRecorder
	r.RecordAttempt("text", 1, true, "ok")
}

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterforge/posterforge/internal/pipeline"
)

func testApp() *App {
	return New([]string{"load_input", "text_validation", "save_output"})
}

func TestStageTransitions(t *testing.T) {
	a := testApp()

	a.Update(PipelineEventMsg{Event: pipeline.Event{Type: pipeline.EventStageStarted, Stage: "load_input"}})
	if a.stages[0].status != stageRunning {
		t.Errorf("status = %v, want running", a.stages[0].status)
	}

	a.Update(PipelineEventMsg{Event: pipeline.Event{Type: pipeline.EventStageCompleted, Stage: "load_input"}})
	if a.stages[0].status != stageDone {
		t.Errorf("status = %v, want done", a.stages[0].status)
	}
}

func TestAttemptCounterShownInView(t *testing.T) {
	a := testApp()

	a.Update(PipelineEventMsg{Event: pipeline.Event{
		Type:    pipeline.EventAttemptRecorded,
		Loop:    pipeline.LoopText,
		Attempt: 2,
	}})

	view := a.View()
	if !strings.Contains(view, "attempt 2") {
		t.Errorf("view does not show the attempt counter:\n%s", view)
	}
}

func TestRunDoneShowsOutputs(t *testing.T) {
	a := testApp()

	a.Update(RunDoneMsg{Success: true, PosterPath: "out/poster.png", TextPath: "out/text.txt"})

	view := a.View()
	if !strings.Contains(view, "out/poster.png") || !strings.Contains(view, "run complete") {
		t.Errorf("done view missing outputs:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	a := testApp()

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("no command returned for quit key")
	}
}

// Package tui provides the live run view for posterforge.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/posterforge/posterforge/internal/pipeline"
)

// PipelineEventMsg wraps an engine event for the TUI.
type PipelineEventMsg struct {
	Event pipeline.Event
}

// RunDoneMsg signals that the pipeline run has finished.
type RunDoneMsg struct {
	Success    bool
	Message    string
	PosterPath string
	TextPath   string
}

// TokenUpdateMsg carries the latest token usage totals.
type TokenUpdateMsg struct {
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

type stageStatus int

const (
	stagePending stageStatus = iota
	stageRunning
	stageDone
	stageFailed
)

type stageRow struct {
	name   string
	status stageStatus
}

type loopStats struct {
	attempts int
	passed   bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// App is the bubbletea model for a pipeline run.
type App struct {
	spinner spinner.Model
	stages  []stageRow
	loops   map[string]*loopStats
	logs    []string

	inputTokens  int64
	outputTokens int64
	cost         float64

	done    bool
	success bool
	message string
	poster  string
	text    string

	quitting bool
	width    int
}

// New creates the run view with the given stage names, in execution order.
func New(stageNames []string) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	rows := make([]stageRow, len(stageNames))
	for i, name := range stageNames {
		rows[i] = stageRow{name: name}
	}

	return &App{
		spinner: sp,
		stages:  rows,
		loops: map[string]*loopStats{
			pipeline.LoopText:    {},
			pipeline.LoopImage:   {},
			pipeline.LoopOverlay: {},
		},
	}
}

// NewProgram wraps the app in a tea.Program with the standard options.
func NewProgram(app *App) *tea.Program {
	return tea.NewProgram(app, tea.WithAltScreen())
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "enter":
			if a.done {
				a.quitting = true
				return a, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case PipelineEventMsg:
		a.handleEvent(msg.Event)

	case TokenUpdateMsg:
		a.inputTokens = msg.InputTokens
		a.outputTokens = msg.OutputTokens
		a.cost = msg.Cost

	case RunDoneMsg:
		a.done = true
		a.success = msg.Success
		a.message = msg.Message
		a.poster = msg.PosterPath
		a.text = msg.TextPath
	}

	return a, nil
}

func (a *App) handleEvent(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventStageStarted:
		a.setStage(ev.Stage, stageRunning)
	case pipeline.EventStageCompleted:
		a.setStage(ev.Stage, stageDone)
	case pipeline.EventStageFailed:
		a.setStage(ev.Stage, stageFailed)
		if ev.Err != nil {
			a.log(fmt.Sprintf("%s: %v", ev.Stage, ev.Err))
		}
	case pipeline.EventAttemptRecorded:
		if ls, ok := a.loops[ev.Loop]; ok {
			ls.attempts = ev.Attempt
			ls.passed = ev.Passed
		}
		outcome := "rejected"
		if ev.Passed {
			outcome = "passed"
		}
		a.log(fmt.Sprintf("%s attempt %d %s", ev.Loop, ev.Attempt, outcome))
	case pipeline.EventRetriesExhausted:
		a.log(fmt.Sprintf("%s attempts exhausted, continuing with best candidate", ev.Loop))
	}
}

func (a *App) setStage(name string, status stageStatus) {
	for i := range a.stages {
		if a.stages[i].name == name {
			a.stages[i].status = status
			return
		}
	}
}

func (a *App) log(line string) {
	a.logs = append(a.logs, time.Now().Format("15:04:05")+" "+line)
	const keep = 8
	if len(a.logs) > keep {
		a.logs = a.logs[len(a.logs)-keep:]
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("posterforge") + "\n\n")

	for _, row := range a.stages {
		var marker string
		switch row.status {
		case stageDone:
			marker = doneStyle.Render("✓")
		case stageFailed:
			marker = failStyle.Render("✗")
		case stageRunning:
			marker = a.spinner.View()
		default:
			marker = pendingStyle.Render("·")
		}
		line := fmt.Sprintf(" %s %s", marker, row.name)
		if stats := a.loopFor(row.name); stats != nil && stats.attempts > 0 {
			line += pendingStyle.Render(fmt.Sprintf("  (attempt %d)", stats.attempts))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(" tokens: %d in / %d out  cost: $%.4f\n", a.inputTokens, a.outputTokens, a.cost))

	if len(a.logs) > 0 {
		b.WriteString("\n")
		for _, l := range a.logs {
			b.WriteString(pendingStyle.Render(" "+l) + "\n")
		}
	}

	if a.done {
		b.WriteString("\n")
		if a.success {
			b.WriteString(doneStyle.Render(" run complete") + "\n")
			if a.poster != "" {
				b.WriteString(fmt.Sprintf("   poster: %s\n", a.poster))
			}
			if a.text != "" {
				b.WriteString(fmt.Sprintf("   text:   %s\n", a.text))
			}
		} else {
			b.WriteString(failStyle.Render(" run failed: "+a.message) + "\n")
		}
		b.WriteString(footerStyle.Render("\n press enter or q to exit"))
	} else {
		b.WriteString(footerStyle.Render("\n press q to abort"))
	}

	return b.String()
}

func (a *App) loopFor(stage string) *loopStats {
	switch stage {
	case "text_validation":
		return a.loops[pipeline.LoopText]
	case "image_validation":
		return a.loops[pipeline.LoopImage]
	case "overlay_validation":
		return a.loops[pipeline.LoopOverlay]
	}
	return nil
}

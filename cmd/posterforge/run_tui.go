package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterforge/posterforge/internal/api"
	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/tui"
)

// runWithTUI executes the graph behind the interactive run view.
func runWithTUI(ctx context.Context, graph *pipeline.Graph, pc *pipeline.Context, emitter *pipeline.Emitter, tracker *api.TokenTracker) (retErr error) {
	// Suppress log output while the TUI is active (it corrupts the display)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in runWithTUI: %v", r)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tui.NewProgram(tui.New(stageNames()))

	go forwardEventsToTUI(program, emitter.Events())

	// Poll token totals; the run itself never pushes usage to the view.
	tokenDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-tokenDone:
				return
			case <-ticker.C:
				in, out := tracker.Total()
				program.Send(tui.TokenUpdateMsg{
					InputTokens:  in,
					OutputTokens: out,
					Cost:         tracker.Cost(),
				})
			}
		}
	}()

	runDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				runDone <- fmt.Errorf("PANIC in pipeline run: %v", r)
			}
		}()
		runDone <- graph.Run(ctx, pc, emitter)
	}()

	tuiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	select {
	case err := <-runDone:
		close(tokenDone)
		in, out := tracker.Total()
		program.Send(tui.TokenUpdateMsg{InputTokens: in, OutputTokens: out, Cost: tracker.Cost()})

		msg := tui.RunDoneMsg{Success: err == nil, PosterPath: pc.FinalPosterPath, TextPath: pc.FinalTextPath}
		if err != nil {
			msg.Message = err.Error()
		}
		program.Send(msg)

		// Leave the result on screen until the user dismisses it.
		<-tuiDone
		emitter.Close()
		return err

	case err := <-tuiDone:
		// User quit mid-run. Cancel the run, wait for it to unwind (the
		// run goroutine is the only emitter, so closing before it returns
		// would race), then close the stream so the forwarder drains out.
		close(tokenDone)
		cancel()
		<-runDone
		emitter.Close()
		return err
	}
}

// forwardEventsToTUI converts engine events to TUI messages.
func forwardEventsToTUI(program *tea.Program, events <-chan pipeline.Event) {
	for event := range events {
		program.Send(tui.PipelineEventMsg{Event: event})
	}
}

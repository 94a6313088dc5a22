package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/posterforge/posterforge/internal/api"
	"github.com/posterforge/posterforge/internal/artifacts"
	"github.com/posterforge/posterforge/internal/config"
	"github.com/posterforge/posterforge/internal/pipeline"
	"github.com/posterforge/posterforge/internal/signals"
	"github.com/posterforge/posterforge/internal/stages"
	"github.com/posterforge/posterforge/internal/state"
)

var (
	runConfigPath      string
	runHeadless        bool
	runInputText       string
	runInputImage      string
	runOutputDir       string
	runIntermediateDir string
	runProjectDB       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a poster from the configured inputs",
	Long: `Run the full poster pipeline.

Reads the text brief and logo image, plans the design, generates and
validates the copy, the background image, and the text overlay, then
writes poster.png, text.txt, and run.yaml to the output directory.

The run can be stopped from another terminal with 'posterforge stop'.

Examples:
  posterforge run
  posterforge run --headless
  posterforge run --input-text brief.txt --input-image logo.png`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Load configuration from a specific file")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Print events to stdout instead of the TUI")
	runCmd.Flags().StringVar(&runInputText, "input-text", "", "Path to the text brief (overrides config)")
	runCmd.Flags().StringVar(&runInputImage, "input-image", "", "Path to the logo image (overrides config)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Directory for final outputs (overrides config)")
	runCmd.Flags().StringVar(&runIntermediateDir, "intermediate-dir", "", "Directory for per-attempt intermediates (overrides config)")
	runCmd.Flags().BoolVar(&runProjectDB, "project-db", false, "Record history in .posterforge/history.db instead of the user-wide store")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Stop-file watcher: 'posterforge stop' from another terminal cancels
	// the run at the next stage boundary.
	watcher, err := signals.New(".")
	if err != nil {
		return fmt.Errorf("setting up signal watcher: %w", err)
	}
	defer watcher.Close()
	watcher.Clear()
	go watcher.CancelOnStop(cancel, 0)

	dbPath := state.GlobalDBPath()
	if runProjectDB {
		dbPath = state.ProjectDBPath(".")
	}
	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating history database: %w", err)
	}

	runID, err := db.CreateRun(cfg.Paths.InputText, cfg.Paths.InputImage)
	if err != nil {
		return err
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		VisionModel:   anthropic.Model(cfg.Anthropic.VisionModel),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Bedrock.Enabled,
		AWSRegion:     cfg.Bedrock.Region,
		AWSProfile:    cfg.Bedrock.Profile,
	})
	if err != nil {
		return err
	}

	sidecar := api.NewSidecar(cfg.Editor.BaseURL, cfg.Editor.Timeout)
	sidecar.Probe(ctx)

	store := artifacts.NewStore(cfg.Paths.IntermediateDir, cfg.Paths.OutputDir)
	emitter := pipeline.NewEmitter(256)

	st := stages.New(stages.Config{
		MaxTextAttempts:    cfg.Attempts.Text,
		MaxImageAttempts:   cfg.Attempts.Image,
		MaxOverlayAttempts: cfg.Attempts.Overlay,
		InputTextPath:      cfg.Paths.InputText,
		InputImagePath:     cfg.Paths.InputImage,
		GenerateTimeout:    cfg.Timeouts.Generate,
		ValidateTimeout:    cfg.Timeouts.Validate,
		EditTimeout:        cfg.Timeouts.Edit,
		RenderTimeout:      cfg.Timeouts.Render,
	}, client, client, sidecar, sidecar, store,
		stages.WithRecorder(&state.RunRecorder{DB: db, RunID: runID}),
		stages.WithEmitter(emitter),
	)

	graph, err := st.Graph()
	if err != nil {
		return err
	}

	pc := &pipeline.Context{}
	started := time.Now()

	var runErr error
	if runHeadless {
		runErr = runHeadlessMode(ctx, graph, pc, emitter)
	} else {
		runErr = runWithTUI(ctx, graph, pc, emitter, client.Tracker())
	}

	status := state.RunStatusCompleted
	if runErr != nil {
		status = state.RunStatusFailed
	}
	inTok, outTok := client.Tracker().Total()
	if err := db.FinishRun(runID, status, pc.FinalPosterPath, pc.FinalTextPath, inTok, outTok, client.Tracker().Cost()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: recording run outcome: %v\n", err)
	}

	if runErr != nil {
		return runErr
	}

	if err := writeManifest(store, cfg, pc, runID, started, inTok, outTok, client.Tracker().Cost()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if runHeadless {
		fmt.Printf("\nPoster: %s\nText:   %s\n", pc.FinalPosterPath, pc.FinalTextPath)
	}
	return nil
}

// loadRunConfig loads configuration and applies the run command's flag
// overrides.
func loadRunConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if runConfigPath != "" {
		cfg, err = config.LoadFromPath(runConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if runInputText != "" {
		cfg.Paths.InputText = runInputText
	}
	if runInputImage != "" {
		cfg.Paths.InputImage = runInputImage
	}
	if runOutputDir != "" {
		cfg.Paths.OutputDir = runOutputDir
	}
	if runIntermediateDir != "" {
		cfg.Paths.IntermediateDir = runIntermediateDir
	}
	return cfg, nil
}

// runHeadlessMode executes the graph while printing events to stdout.
func runHeadlessMode(ctx context.Context, graph *pipeline.Graph, pc *pipeline.Context, emitter *pipeline.Emitter) error {
	verbose := os.Getenv("POSTERFORGE_DEBUG") != ""

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for ev := range emitter.Events() {
			printEvent(ev, verbose)
		}
	}()

	err := graph.Run(ctx, pc, emitter)
	emitter.Close()
	<-printerDone
	return err
}

func printEvent(ev pipeline.Event, verbose bool) {
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case pipeline.EventStageStarted:
		fmt.Printf("%s > %s\n", ts, ev.Stage)
	case pipeline.EventStageCompleted:
		if verbose {
			fmt.Printf("%s   %s done\n", ts, ev.Stage)
		}
	case pipeline.EventStageFailed:
		fmt.Printf("%s ! %s failed: %v\n", ts, ev.Stage, ev.Err)
	case pipeline.EventAttemptRecorded:
		outcome := "rejected"
		if ev.Passed {
			outcome = "passed"
		}
		fmt.Printf("%s   %s attempt %d %s\n", ts, ev.Loop, ev.Attempt, outcome)
		if verbose && ev.Message != "" {
			fmt.Printf("%s     %s\n", ts, ev.Message)
		}
	case pipeline.EventRetriesExhausted:
		fmt.Printf("%s   %s attempts exhausted, continuing with best candidate\n", ts, ev.Loop)
	case pipeline.EventRunCompleted:
		fmt.Printf("%s = run complete\n", ts)
	case pipeline.EventRunFailed:
		fmt.Printf("%s = run failed: %v\n", ts, ev.Err)
	}
}

// stageNames returns the pipeline stages in execution order, for the TUI.
func stageNames() []string {
	return []string{
		stages.StageLoadInput,
		stages.StagePlanning,
		stages.StageTextGeneration,
		stages.StageTextValidation,
		stages.StageImageGeneration,
		stages.StageImageValidation,
		stages.StageSegmentation,
		stages.StageOverlayRender,
		stages.StageOverlayValidation,
		stages.StageSaveOutput,
	}
}

// writeManifest records the run summary next to the outputs.
func writeManifest(store *artifacts.Store, cfg *config.Config, pc *pipeline.Context, runID string, started time.Time, inTok, outTok int64, cost float64) error {
	m := artifacts.Manifest{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	m.Input.Text = cfg.Paths.InputText
	m.Input.Image = cfg.Paths.InputImage
	m.Attempts.Text = pc.TextAttempts
	m.Attempts.Image = pc.ImageAttempts
	m.Attempts.Overlay = pc.OverlayAttempts
	m.Passed.Text = pc.TextValidation.Passed
	m.Passed.Image = pc.ImageValidation.Passed
	m.Passed.Overlay = pc.OverlayValidation.Passed
	m.Tokens.Input = inTok
	m.Tokens.Output = outTok
	m.Tokens.CostUS = cost
	m.Outputs.Poster = pc.FinalPosterPath
	m.Outputs.Text = pc.FinalTextPath
	return store.WriteManifest(m)
}

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/posterforge/posterforge/internal/state"
)

var (
	historyLimit     int
	historyProjectDB bool
	historyPurge     time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past pipeline runs",
	Long: `Show the run history.

Without arguments, lists recent runs. With a run ID, shows every
validated loop attempt recorded for that run.

Examples:
  posterforge history
  posterforge history --limit 50
  posterforge history 2f1c9e9a-...
  posterforge history --purge 720h   # delete runs older than 30 days`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().BoolVar(&historyProjectDB, "project-db", false, "Read .posterforge/history.db instead of the user-wide store")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete runs older than this duration and exit")
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := state.GlobalDBPath()
	if historyProjectDB {
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

	if historyPurge > 0 {
		count, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d run(s) older than %s\n", count, historyPurge)
		return nil
	}

	if len(args) == 1 {
		return showAttempts(db, args[0])
	}
	return listRuns(db)
}

func listRuns(db *state.DB) error {
	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s", r.StartedAt.Local().Format("2006-01-02 15:04"), shortID(r.ID), statusColored(r.Status))
		if r.Status == state.RunStatusCompleted {
			fmt.Printf("  %s", r.PosterPath)
		}
		if r.InputTokens > 0 || r.OutputTokens > 0 {
			fmt.Printf("  (%d in / %d out, $%.4f)", r.InputTokens, r.OutputTokens, r.Cost)
		}
		fmt.Println()
	}
	return nil
}

func showAttempts(db *state.DB, runID string) error {
	attempts, err := db.Attempts(runID)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		fmt.Printf("No attempts recorded for run %s\n", runID)
		return nil
	}

	for _, a := range attempts {
		outcome := color.RedString("rejected")
		if a.Passed {
			outcome = color.GreenString("passed")
		}
		fmt.Printf("%s  %-7s attempt %d  %s\n", a.RecordedAt.Local().Format("15:04:05"), a.Loop, a.Attempt, outcome)
		if !a.Passed && a.Feedback != "" {
			fmt.Printf("          %s\n", a.Feedback)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusColored(status string) string {
	switch status {
	case state.RunStatusCompleted:
		return color.GreenString(status)
	case state.RunStatusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

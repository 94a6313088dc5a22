package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/posterforge/posterforge/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a pipeline run in this project",
	Long: `Signal the running pipeline in the current project to stop.

The run checks for the stop signal between stages and cancels cleanly;
the run history records it as failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := signals.New(".")
		if err != nil {
			return fmt.Errorf("opening signal directory: %w", err)
		}
		defer w.Close()

		if err := w.SendStop(); err != nil {
			return fmt.Errorf("sending stop signal: %w", err)
		}
		fmt.Println("Stop signal sent. The run will cancel at the next stage boundary.")
		return nil
	},
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "posterforge",
	Short: "Poster generation pipeline",
	Long: `Posterforge turns a text brief and a logo image into a finished poster.

A run walks a fixed pipeline: plan the design, write the copy, synthesize
the background image, and render the text overlay. Each creative step is
reviewed by a vision model and retried with the reviewer's feedback, up to
a configured attempt budget; when the budget runs out the run continues
with the best candidate seen so far, so a run always produces an output.

Inputs default to input/input.txt and input/input.png; finished posters
land in output/ with per-attempt intermediates kept for inspection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

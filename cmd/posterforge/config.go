package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/posterforge/posterforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show resolved configuration",
	Long: `Display the configuration posterforge would use for a run.

Without arguments, displays all resolved values. With one argument,
displays the value for that key.

Configuration is read from ~/.config/posterforge/config.yaml, overridden
by .posterforge.yaml in the project, overridden by environment variables.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 1 {
			displayConfigKey(cfg, args[0])
			return
		}
		displayAllConfig(cfg)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", orDefault(cfg.Anthropic.Model))
	fmt.Printf("anthropic.vision_model: %s\n", orDefault(cfg.Anthropic.VisionModel))
	fmt.Printf("attempts.text: %d\n", cfg.Attempts.Text)
	fmt.Printf("attempts.image: %d\n", cfg.Attempts.Image)
	fmt.Printf("attempts.overlay: %d\n", cfg.Attempts.Overlay)
	fmt.Printf("editor.base_url: %s\n", cfg.Editor.BaseURL)
	fmt.Printf("editor.timeout: %s\n", cfg.Editor.Timeout)
	fmt.Printf("paths.input_text: %s\n", cfg.Paths.InputText)
	fmt.Printf("paths.input_image: %s\n", cfg.Paths.InputImage)
	fmt.Printf("paths.output_dir: %s\n", cfg.Paths.OutputDir)
	fmt.Printf("paths.intermediate_dir: %s\n", cfg.Paths.IntermediateDir)
	fmt.Printf("timeouts.generate: %s\n", cfg.Timeouts.Generate)
	fmt.Printf("timeouts.validate: %s\n", cfg.Timeouts.Validate)
	fmt.Printf("timeouts.edit: %s\n", cfg.Timeouts.Edit)
	fmt.Printf("timeouts.render: %s\n", cfg.Timeouts.Render)
	fmt.Printf("bedrock.enabled: %t\n", cfg.Bedrock.Enabled)
	fmt.Printf("bedrock.region: %s\n", orDefault(cfg.Bedrock.Region))
	fmt.Printf("bedrock.profile: %s\n", orDefault(cfg.Bedrock.Profile))
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
	fmt.Println()
	fmt.Printf("user config:    %s\n", config.GetUserConfigPath())
	project := config.GetProjectConfigPath()
	if project == "" {
		project = "(none)"
	}
	fmt.Printf("project config: %s\n", project)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.model":
		return orDefault(cfg.Anthropic.Model), nil
	case "anthropic.vision_model":
		return orDefault(cfg.Anthropic.VisionModel), nil
	case "attempts.text":
		return strconv.Itoa(cfg.Attempts.Text), nil
	case "attempts.image":
		return strconv.Itoa(cfg.Attempts.Image), nil
	case "attempts.overlay":
		return strconv.Itoa(cfg.Attempts.Overlay), nil
	case "editor.base_url":
		return cfg.Editor.BaseURL, nil
	case "editor.timeout":
		return cfg.Editor.Timeout.String(), nil
	case "paths.input_text":
		return cfg.Paths.InputText, nil
	case "paths.input_image":
		return cfg.Paths.InputImage, nil
	case "paths.output_dir":
		return cfg.Paths.OutputDir, nil
	case "paths.intermediate_dir":
		return cfg.Paths.IntermediateDir, nil
	case "timeouts.generate":
		return cfg.Timeouts.Generate.String(), nil
	case "timeouts.validate":
		return cfg.Timeouts.Validate.String(), nil
	case "timeouts.edit":
		return cfg.Timeouts.Edit.String(), nil
	case "timeouts.render":
		return cfg.Timeouts.Render.String(), nil
	case "bedrock.enabled":
		return strconv.FormatBool(cfg.Bedrock.Enabled), nil
	case "bedrock.region":
		return orDefault(cfg.Bedrock.Region), nil
	case "bedrock.profile":
		return orDefault(cfg.Bedrock.Profile), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

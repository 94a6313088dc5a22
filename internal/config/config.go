// Package config handles configuration loading for posterforge.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for posterforge.
type Config struct {
	Attempts  AttemptsConfig  `mapstructure:"attempts"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Editor    EditorConfig    `mapstructure:"editor"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Bedrock   BedrockConfig   `mapstructure:"bedrock"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AttemptsConfig bounds the three validation loops.
type AttemptsConfig struct {
	Text    int `mapstructure:"text"`
	Image   int `mapstructure:"image"`
	Overlay int `mapstructure:"overlay"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	VisionModel string `mapstructure:"vision_model"`
}

// EditorConfig holds the image-edit sidecar settings.
type EditorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PathsConfig holds the input and output locations.
type PathsConfig struct {
	InputText       string `mapstructure:"input_text"`
	InputImage      string `mapstructure:"input_image"`
	OutputDir       string `mapstructure:"output_dir"`
	IntermediateDir string `mapstructure:"intermediate_dir"`
}

// TimeoutsConfig holds per-collaborator-call timeouts.
type TimeoutsConfig struct {
	Generate time.Duration `mapstructure:"generate"`
	Validate time.Duration `mapstructure:"validate"`
	Edit     time.Duration `mapstructure:"edit"`
	Render   time.Duration `mapstructure:"render"`
}

// BedrockConfig holds AWS Bedrock settings.
type BedrockConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.posterforge.yaml in current directory or parent)
// 3. User config (~/.config/posterforge/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence over user config.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("attempts.text", 3)
	v.SetDefault("attempts.image", 3)
	v.SetDefault("attempts.overlay", 3)

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.vision_model", "")

	v.SetDefault("editor.base_url", "http://127.0.0.1:8750")
	v.SetDefault("editor.timeout", "120s")

	v.SetDefault("paths.input_text", "input/input.txt")
	v.SetDefault("paths.input_image", "input/input.png")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.intermediate_dir", "intermediate")

	v.SetDefault("timeouts.generate", "60s")
	v.SetDefault("timeouts.validate", "60s")
	v.SetDefault("timeouts.edit", "180s")
	v.SetDefault("timeouts.render", "60s")

	v.SetDefault("bedrock.enabled", false)
	v.SetDefault("bedrock.region", "")
	v.SetDefault("bedrock.profile", "")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for posterforge.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "posterforge")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "posterforge")
	}
	return filepath.Join(home, ".config", "posterforge")
}

// findProjectConfig searches for .posterforge.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".posterforge.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Attempts: AttemptsConfig{Text: 3, Image: 3, Overlay: 3},
		Editor: EditorConfig{
			BaseURL: "http://127.0.0.1:8750",
			Timeout: 120 * time.Second,
		},
		Paths: PathsConfig{
			InputText:       "input/input.txt",
			InputImage:      "input/input.png",
			OutputDir:       "output",
			IntermediateDir: "intermediate",
		},
		Timeouts: TimeoutsConfig{
			Generate: 60 * time.Second,
			Validate: 60 * time.Second,
			Edit:     180 * time.Second,
			Render:   60 * time.Second,
		},
		TUI: TUIConfig{RefreshRate: 100 * time.Millisecond},
	}
}

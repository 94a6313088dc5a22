package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a posterforge project",
	Long: `Initialize a directory for use with posterforge.

This command sets up everything needed for a run:
  - Creates the input/, output/, and intermediate/ directories
  - Creates the .posterforge directory (run history, stop signals)
  - Writes a .posterforge.yaml configuration template
  - Checks that ANTHROPIC_API_KEY is set

The directory argument is optional and defaults to the current directory.

Examples:
  posterforge init              # Initialize current directory
  posterforge init ./myposter   # Initialize specific directory
  posterforge init --force      # Reinitialize even if already set up`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing posterforge in %s...\n\n", absPath)

	forgeDir := filepath.Join(absPath, ".posterforge")
	if _, err := os.Stat(forgeDir); err == nil && !initForce {
		fmt.Println("Directory already initialized. Use --force to reinitialize.")
		return nil
	}

	dirs := []string{
		forgeDir,
		filepath.Join(forgeDir, "signals"),
		filepath.Join(absPath, "input"),
		filepath.Join(absPath, "output"),
		filepath.Join(absPath, "intermediate"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	printStatus("✓", "Created project directories", color.FgGreen)

	if err := createProjectConfig(absPath); err != nil {
		return fmt.Errorf("creating project config: %w", err)
	}
	printStatus("✓", "Created .posterforge.yaml template", color.FgGreen)

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	fmt.Printf("\n%s Posterforge initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if apiKey == "" {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Add your inputs:")
	fmt.Println("     input/input.txt   # the poster brief")
	fmt.Println("     input/input.png   # the logo image")
	fmt.Println()
	fmt.Println("  3. Generate a poster:")
	fmt.Println("     posterforge run")

	return nil
}

// createProjectConfig writes the .posterforge.yaml template. An existing
// file is never overwritten.
func createProjectConfig(repoPath string) error {
	configPath := filepath.Join(repoPath, ".posterforge.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	template := `# Posterforge Project Configuration
# This file overrides defaults from ~/.config/posterforge/config.yaml

# attempts:
#   text: 3
#   image: 3
#   overlay: 3

# anthropic:
#   model: claude-sonnet-4-20250514
#   vision_model: claude-sonnet-4-20250514

# editor:
#   base_url: http://127.0.0.1:8750
#   timeout: 120s

# paths:
#   input_text: input/input.txt
#   input_image: input/input.png
#   output_dir: output
#   intermediate_dir: intermediate

# timeouts:
#   generate: 60s
#   validate: 60s
#   edit: 180s
#   render: 60s

# bedrock:
#   enabled: false
#   region: us-west-2
`

	return os.WriteFile(configPath, []byte(template), 0644)
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

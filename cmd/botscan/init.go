package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nobushige/botscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/seeds.yaml
var seedsTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new botscan seeds file",
		Long: `Initialize creates a new seeds.yaml file listing the seed accounts
whose follower lists are crawled.

The generated file includes:
- A starter set of platform seed accounts
- Commented examples for adding category groups
- Documentation of the file format

Examples:
  # Create seeds.yaml in the XDG config directory (default)
  botscan init

  # Create the seeds file at a specific path
  botscan init -o myseeds.yaml

  # Force overwrite existing file
  botscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file path for the seeds file (default: XDG config dir)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing seeds file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = config.DefaultSeedsFile()
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("seeds file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := seedsTemplate.ReadFile("templates/seeds.yaml")
	if err != nil {
		return fmt.Errorf("failed to read seeds template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write seeds file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write seeds file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created seeds file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to add seed accounts, then run:")
	fmt.Fprintln(cmd.OutOrStdout(), "  botscan collect")

	return nil
}

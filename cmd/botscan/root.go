// Package main provides the entry point for the botscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for botscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "botscan",
		Short: "Crawl-and-score bot detection for social graphs",
		Long: `botscan finds likely bot accounts by crawling the follower lists of
trusted seed accounts and scoring every discovered account against
behavioral heuristics: follow ratios, account age vs. volume, handle
patterns, posting cadence, and profile completeness.

Credentials are read from the BSKY_IDENTIFIER and BSKY_APP_PASSWORD
environment variables. Crawl progress and results are stored in SQLite
so interrupted runs can resume with --resume.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", "", "Directory for the SQLite database (default: XDG data dir)")

	// Add subcommands
	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nobushige/botscan/internal/config"
	"github.com/nobushige/botscan/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics and top-scoring accounts",
		Long: `Stats summarizes the local database: how many accounts the crawl has
discovered, how many were flagged as candidates, how many have a full
analysis result, and the highest-scoring accounts found so far.

Examples:
  # Summary plus the ten highest-scoring analyzed accounts
  botscan stats

  # Show the top 25 instead
  botscan stats --top 25

  # Machine-readable output
  botscan stats --json`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().Int("top", 10,
		"Number of top-scoring analyzed accounts to list (0 disables)")
	cmd.Flags().BoolP("json", "j", false,
		"Output statistics as JSON")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := applyGlobalFlags(cmd, cfg); err != nil {
		return err
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger, cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck // Best effort log file close

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	topReports, err := db.TopResults(ctx, top)
	if err != nil {
		return fmt.Errorf("failed to read top results: %w", err)
	}

	if asJSON {
		out := struct {
			TotalUsers     int     `json:"total_users"`
			CandidateUsers int     `json:"candidate_users"`
			AnalyzedUsers  int     `json:"analyzed_users"`
			AverageScore   float64 `json:"average_score"`
		}{
			TotalUsers:     stats.TotalUsers,
			CandidateUsers: stats.CandidateUsers,
			AnalyzedUsers:  stats.AnalyzedUsers,
			AverageScore:   stats.AverageScore,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		if len(topReports) > 0 {
			w := report.NewFullJSONWriter(os.Stdout, getVersion(), report.WithPrettyPrint())
			if _, err := w.WriteBatch(topReports); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Println("Database statistics")
	fmt.Printf("  Accounts discovered: %d\n", stats.TotalUsers)
	fmt.Printf("  Crawl candidates:    %d\n", stats.CandidateUsers)
	fmt.Printf("  Analyzed:            %d\n", stats.AnalyzedUsers)
	if stats.AnalyzedUsers > 0 {
		fmt.Printf("  Average score:       %.2f\n", stats.AverageScore)
	}

	if len(topReports) > 0 {
		fmt.Printf("\nTop %d accounts by score:\n", len(topReports))
		w := report.NewSimpleWriter(os.Stdout)
		if _, err := w.WriteBatch(topReports); err != nil {
			return err
		}
	} else if stats.AnalyzedUsers == 0 && stats.TotalUsers > 0 {
		fmt.Println("\nNo analysis results yet. Run `botscan analyze`.")
	}

	return nil
}

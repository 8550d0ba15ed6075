package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/nobushige/botscan/internal/config"
	"github.com/nobushige/botscan/internal/database"
	"github.com/nobushige/botscan/internal/detector"
	"github.com/nobushige/botscan/internal/llm"
	"github.com/nobushige/botscan/internal/model"
	"github.com/nobushige/botscan/internal/pipeline"
	"github.com/nobushige/botscan/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [handle...]",
		Short: "Run the deep analysis on stored or named accounts",
		Long: `Analyze fetches each account's full profile and recent posts and runs
the complete analyzer suite: follow graph, posting pattern (posting
rate, sleep gaps, interval regularity, bursts, repost ratio), and text
content (near-duplicate detection, vocabulary diversity, template
phrasing). Results are written to the bot_detection_results table.

Without arguments, accounts discovered by collect that have not been
analyzed yet are processed. Set OPENAI_API_KEY to add the optional
language-model verdict to each report.

Examples:
  # Analyze everything the crawl found that is still unanalyzed
  botscan analyze

  # Analyze specific accounts
  botscan analyze alice.bsky.social bob.bsky.social

  # Re-analyze every stored account, eight at a time
  botscan analyze --all --concurrency 8

  # Only the accounts the crawl flagged as candidates, as Markdown
  botscan analyze --candidates --markdown -o report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().Bool("all", false,
		"Analyze every stored account, including already-analyzed ones")
	cmd.Flags().Bool("candidates", false,
		"Analyze only accounts the crawl flagged as candidates")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Number of accounts analyzed in parallel")
	cmd.Flags().IntP("post-limit", "p", config.DefaultPostLimit,
		"Recent posts fetched per account")
	cmd.Flags().String("llm-model", "",
		"Language-model classifier model name (default: provider default)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg.LoadCredentials()
	if err := cfg.ValidateCredentials(); err != nil {
		return err
	}

	logger, cleanup, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck // Best effort log file close

	ctx, cancel := signalContext(logger)
	defer cancel()

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	candidatesOnly, err := cmd.Flags().GetBool("candidates")
	if err != nil {
		return err
	}

	return runAnalyze(ctx, cfg, args, all, candidatesOnly, logger)
}

// buildAnalyzeConfig creates a Config from cobra command flags.
func buildAnalyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := applyGlobalFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.PostLimit, err = cmd.Flags().GetInt("post-limit")
	if err != nil {
		return nil, err
	}

	cfg.LLMModel, err = cmd.Flags().GetString("llm-model")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runAnalyze executes the analysis run.
func runAnalyze(ctx context.Context, cfg *config.Config, args []string, all, candidatesOnly bool, logger *slog.Logger) error {
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	handles, err := selectHandles(ctx, db, args, all, candidatesOnly)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		fmt.Println("Nothing to analyze. Run `botscan collect` first, or name accounts explicitly.")
		return nil
	}

	client, err := newAuthenticatedClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var classifier llm.Classifier
	if cfg.OpenAIKey != "" {
		opts := []llm.OpenAIOption{}
		if cfg.LLMModel != "" {
			opts = append(opts, llm.WithOpenAIModel(cfg.LLMModel))
		}
		classifier = llm.NewOpenAIClassifier(cfg.OpenAIKey, opts...)
		logger.Info("language-model classifier enabled")
	}

	det := detector.NewDetector()

	factory := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewFetchStep(client,
			pipeline.WithFetchPostLimit(cfg.PostLimit),
			pipeline.WithFetchLogger(logger),
		))
		if classifier != nil {
			p.AddStep(pipeline.NewClassifyStep(classifier, pipeline.WithClassifyLogger(logger)))
		}
		p.AddSteps(
			pipeline.NewDetectStep(det),
			pipeline.NewPersistStep(db, pipeline.WithPersistLogger(logger)),
		)
		return p
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Printf("Analyzing %d accounts (concurrency: %d)...\n", len(handles), cfg.Concurrency)
	startTime := time.Now()

	analyses, err := bp.ProcessBatch(ctx, handles)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	elapsed := time.Since(startTime).Round(time.Millisecond)
	fmt.Printf("Analysis completed in %s\n", elapsed)

	reports := make([]*model.AccountReport, 0, len(analyses))
	failed := 0
	for _, a := range analyses {
		if a == nil || a.Report == nil {
			failed++
			continue
		}
		reports = append(reports, a.Report)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d account(s) could not be analyzed (see log)\n", failed)
	}

	// Highest scores first.
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].OverallScore > reports[j].OverallScore
	})

	return outputReports(cfg, reports)
}

// selectHandles determines which accounts to analyze.
func selectHandles(ctx context.Context, db *database.BotDB, args []string, all, candidatesOnly bool) ([]string, error) {
	switch {
	case len(args) > 0:
		return args, nil
	case candidatesOnly:
		return db.CandidateHandles(ctx)
	case all:
		return db.AllHandles(ctx)
	default:
		return db.UnanalyzedHandles(ctx)
	}
}

// outputReports writes the reports in the requested format.
func outputReports(cfg *config.Config, reports []*model.AccountReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if len(reports) == 1 {
		_, err := w.Write(reports[0])
		return err
	}
	_, err := w.WriteBatch(reports)
	return err
}

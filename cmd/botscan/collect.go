package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nobushige/botscan/internal/config"
	"github.com/nobushige/botscan/internal/crawler"
	"github.com/nobushige/botscan/internal/detector"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Crawl seed followers and collect bot candidates",
		Long: `Collect walks the follower lists of the configured seed accounts,
scores every newly discovered account against the crawl heuristics, and
stores the results. The run stops when the candidate target is reached
or all seeds are exhausted.

Progress is checkpointed after every seed and every batch of accounts,
so an interrupted run resumes with --resume without re-fetching anything
already scored.

Examples:
  # Crawl until 300 candidates are collected
  botscan collect

  # Resume an interrupted run
  botscan collect --resume

  # Smaller, faster run with a custom seeds file
  botscan collect --seeds ./seeds.yaml --target 50 --limit 50

  # Expose Prometheus metrics while crawling
  botscan collect --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: runCollectCmd,
	}

	cmd.Flags().StringP("seeds", "s", "",
		"Seeds YAML file path (default: seeds.yaml in XDG config dir)")
	cmd.Flags().IntP("target", "t", config.DefaultTargetCount,
		"Stop after this many candidates are found")
	cmd.Flags().IntP("limit", "l", config.DefaultFollowerLimit,
		"Follower fetch limit per seed")
	cmd.Flags().DurationP("delay", "d", config.DefaultDelay,
		"Politeness delay between processed accounts")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Accounts between mid-seed checkpoint saves")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume from the previous checkpoint")
	cmd.Flags().String("checkpoint", "",
		"Checkpoint file path (default: progress.json in the data dir)")
	cmd.Flags().String("metrics-addr", "",
		"Listen address for the Prometheus metrics endpoint (e.g. :9090); empty disables it")

	return cmd
}

// runCollectCmd executes the collect command.
func runCollectCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCollectConfig(cmd)
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

	return runCollect(ctx, cfg, logger)
}

// buildCollectConfig creates a Config from cobra command flags.
func buildCollectConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := applyGlobalFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error

	cfg.SeedsFile, err = cmd.Flags().GetString("seeds")
	if err != nil {
		return nil, err
	}
	if cfg.SeedsFile == "" {
		cfg.SeedsFile = config.DefaultSeedsFile()
	}

	cfg.TargetCount, err = cmd.Flags().GetInt("target")
	if err != nil {
		return nil, err
	}

	cfg.FollowerLimit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch-size")
	if err != nil {
		return nil, err
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return nil, err
	}

	checkpoint, err := cmd.Flags().GetString("checkpoint")
	if err != nil {
		return nil, err
	}
	if checkpoint != "" {
		cfg.CheckpointPath = checkpoint
	}

	cfg.MetricsAddr, err = cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCollect executes the crawl.
func runCollect(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seedFile, err := config.LoadSeedsFile(cfg.SeedsFile)
	if err != nil {
		if errors.Is(err, config.ErrSeedsNotFound) {
			return fmt.Errorf("seeds file not found: %s (run `botscan init` to create one)", cfg.SeedsFile)
		}
		return fmt.Errorf("failed to load seeds file: %w", err)
	}
	seeds, err := seedFile.Flatten()
	if err != nil {
		return fmt.Errorf("seeds file %s: %w", cfg.SeedsFile, err)
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := newAuthenticatedClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	metrics := crawler.NewMetrics()
	if cfg.MetricsAddr != "" {
		startMetricsServer(cfg.MetricsAddr, metrics, logger)
	}

	walker, err := crawler.NewWalker(
		client,
		db,
		detector.NewScorer(),
		crawler.NewCheckpointStore(cfg.CheckpointPath, logger),
		crawler.Config{
			Seeds:         seeds,
			TargetCount:   cfg.TargetCount,
			FollowerLimit: cfg.FollowerLimit,
			Delay:         cfg.Delay,
			BatchSize:     cfg.BatchSize,
			Resume:        cfg.Resume,
		},
		crawler.WithLogger(logger),
		crawler.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Crawling %d seeds (target: %d candidates)...\n", len(seeds), cfg.TargetCount)
	startTime := time.Now()

	cp, err := walker.Run(ctx)
	elapsed := time.Since(startTime).Round(time.Second)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Printf("\nInterrupted after %s. Progress saved; rerun with --resume.\n", elapsed)
			printCrawlSummary(cp)
			return nil
		}
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("\nCrawl finished in %s.\n", elapsed)
	printCrawlSummary(cp)
	return nil
}

// printCrawlSummary prints the final crawl progress.
func printCrawlSummary(cp *crawler.Checkpoint) {
	if cp == nil {
		return
	}
	fmt.Printf("  Seeds completed:  %d\n", len(cp.SeedsCompleted))
	fmt.Printf("  Candidates found: %d / %d\n", cp.CandidatesFound, cp.TargetCount)
}

// startMetricsServer exposes the crawl metrics registry over HTTP.
// The server runs for the lifetime of the process; errors are logged,
// not fatal, because metrics are an observation aid, not a dependency.
func startMetricsServer(addr string, metrics *crawler.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err.Error())
		}
	}()
}

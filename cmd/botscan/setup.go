package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nobushige/botscan/internal/bsky"
	"github.com/nobushige/botscan/internal/config"
	"github.com/nobushige/botscan/internal/database"
	"github.com/nobushige/botscan/internal/log"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// applyGlobalFlags copies the root command's persistent flags into the config.
// Overriding the data directory also relocates the paths derived from it.
func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) error {
	cfg.Verbose = getVerboseFlag(cmd)

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
		cfg.CheckpointPath = filepath.Join(dbDir, "progress.json")
		cfg.LogFile = filepath.Join(dbDir, "botscan.log")
	}
	return nil
}

// setupLogger creates the sanitizing dual-output logger and installs it as
// the default. The returned cleanup closes the log file.
func setupLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	// The log file lives next to the database.
	if err := os.MkdirAll(cfg.DBDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger, cleanup := log.NewDualLogger(cfg.LogFile, cfg.Verbose)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// openDatabase opens the SQLite store in the configured directory.
func openDatabase(cfg *config.Config, logger *slog.Logger) (*database.BotDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "dir", cfg.DBDir)
	return db, nil
}

// newAuthenticatedClient creates a graph API client and opens a session.
func newAuthenticatedClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bsky.HTTPClient, error) {
	client, err := bsky.NewHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if err := client.Authenticate(ctx, cfg.Identifier, cfg.AppPassword); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	logger.Info("session established", "identifier", cfg.Identifier)

	return client, nil
}

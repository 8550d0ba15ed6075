package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nobushige/botscan/internal/bsky"
	"github.com/nobushige/botscan/internal/detector"
	"github.com/nobushige/botscan/internal/model"
)

// SeedState names a state of the per-seed crawl state machine.
type SeedState string

// Walker states. Each seed moves PENDING -> FETCHING_FOLLOWERS ->
// SCORING_BATCH -> SEED_DONE; the run ends in RUN_COMPLETE when the target
// is reached or the seed list is exhausted.
const (
	StatePending           SeedState = "PENDING"
	StateFetchingFollowers SeedState = "FETCHING_FOLLOWERS"
	StateScoringBatch      SeedState = "SCORING_BATCH"
	StateSeedDone          SeedState = "SEED_DONE"
	StateRunComplete       SeedState = "RUN_COMPLETE"
)

// GraphClient is the subset of the graph API the walker needs.
type GraphClient interface {
	GetProfile(ctx context.Context, handle string) (*model.Profile, error)
	GetFollowers(ctx context.Context, handle string, limit int) ([]model.Profile, error)
}

// Store is the subset of the persistent store the walker needs.
type Store interface {
	UpsertUser(ctx context.Context, profile *model.Profile, breakdown *model.ScoreBreakdown) error
	AllHandles(ctx context.Context) ([]string, error)
}

// Config holds the run parameters of a crawl.
type Config struct {
	// Seeds is the ordered list of seed handles to expand.
	Seeds []string

	// TargetCount stops the run once this many candidates are found.
	TargetCount int

	// FollowerLimit is the per-seed follower fetch limit.
	FollowerLimit int

	// Delay is the politeness pause between processed accounts and
	// between seeds. It is a scheduling policy, not a correctness
	// mechanism.
	Delay time.Duration

	// BatchSize is the number of accounts processed within a seed
	// between checkpoint saves, bounding replay cost after a crash.
	BatchSize int

	// Resume loads the previous checkpoint instead of starting fresh.
	Resume bool
}

// Validate checks the config for usable values.
func (c Config) Validate() error {
	if len(c.Seeds) == 0 {
		return errors.New("crawler: no seed accounts")
	}
	if c.TargetCount <= 0 {
		return errors.New("crawler: target count must be positive")
	}
	if c.FollowerLimit <= 0 {
		return errors.New("crawler: follower limit must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("crawler: batch size must be positive")
	}
	return nil
}

// Walker performs the breadth-first crawl: one seed at a time, one
// follower fetch at a time, one scoring pass at a time. The sequential
// shape is a deliberate policy to respect the graph API's rate limits.
type Walker struct {
	client      GraphClient
	store       Store
	scorer      *detector.Scorer
	ledger      *Ledger
	checkpoints *CheckpointStore
	metrics     *Metrics
	logger      *slog.Logger
	cfg         Config

	state SeedState
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithLogger sets the walker's logger.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithMetrics attaches crawl metrics. A nil Metrics is safe and records
// nothing.
func WithMetrics(m *Metrics) WalkerOption {
	return func(w *Walker) {
		w.metrics = m
	}
}

// NewWalker creates a Walker over the given client, store, and scorer.
func NewWalker(client GraphClient, store Store, scorer *detector.Scorer, checkpoints *CheckpointStore, cfg Config, opts ...WalkerOption) (*Walker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Walker{
		client:      client,
		store:       store,
		scorer:      scorer,
		ledger:      NewLedger(),
		checkpoints: checkpoints,
		logger:      slog.Default(),
		cfg:         cfg,
		state:       StatePending,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// State returns the walker's current state.
func (w *Walker) State() SeedState {
	return w.state
}

// Run executes the crawl until the candidate target is reached, the seed
// list is exhausted, or the context is canceled. The returned checkpoint
// reflects the final progress; it is also saved to disk.
//
// Cancellation is cooperative and coarse-grained: the in-flight account
// finishes and the checkpoint is saved before Run returns.
func (w *Walker) Run(ctx context.Context) (*Checkpoint, error) {
	handles, err := w.store.AllHandles(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawler: preload ledger: %w", err)
	}
	w.ledger.Preload(handles)

	cp := &Checkpoint{TargetCount: w.cfg.TargetCount}
	if w.cfg.Resume {
		loaded, err := w.checkpoints.Load()
		if err != nil {
			return nil, fmt.Errorf("crawler: load checkpoint: %w", err)
		}
		if loaded != nil {
			cp = loaded
			w.logger.Info("resuming crawl",
				"seed_index", cp.SeedIndex,
				"candidates_found", cp.CandidatesFound,
				"target", cp.TargetCount)
		}
	}

	// A resumed run whose goal was already met issues no network calls.
	if cp.Complete() {
		w.state = StateRunComplete
		return cp, nil
	}

	for cp.SeedIndex < len(w.cfg.Seeds) {
		if err := ctx.Err(); err != nil {
			w.saveCheckpoint(cp)
			return cp, err
		}

		seed := w.cfg.Seeds[cp.SeedIndex]
		done, err := w.processSeed(ctx, seed, cp)
		if err != nil {
			w.saveCheckpoint(cp)
			return cp, err
		}

		if done {
			// Target reached mid-seed: the seed was only partially
			// expanded, so it is not recorded as completed and
			// SeedIndex still points at it.
			w.saveCheckpoint(cp)
			break
		}

		w.state = StateSeedDone
		cp.SeedsCompleted = append(cp.SeedsCompleted, seed)
		cp.SeedIndex++
		w.saveCheckpoint(cp)

		if cp.Complete() {
			break
		}

		if cp.SeedIndex < len(w.cfg.Seeds) {
			if err := w.pause(ctx); err != nil {
				return cp, err
			}
		}
	}

	w.state = StateRunComplete
	w.logger.Info("crawl complete",
		"seeds_completed", len(cp.SeedsCompleted),
		"candidates_found", cp.CandidatesFound,
		"target", cp.TargetCount)
	return cp, nil
}

// processSeed expands one seed. It returns true when the candidate target
// was reached mid-seed. Fetch failures abandon the seed with a log entry;
// only authentication failures and context cancellation abort the run.
func (w *Walker) processSeed(ctx context.Context, seed string, cp *Checkpoint) (bool, error) {
	w.state = StateFetchingFollowers
	w.logger.Info("expanding seed", "seed", seed, "seed_index", cp.SeedIndex)

	w.metrics.IncRequest("get_followers")
	followers, err := w.client.GetFollowers(ctx, seed, w.cfg.FollowerLimit)
	if err != nil {
		if errors.Is(err, bsky.ErrAuth) || ctx.Err() != nil {
			return false, err
		}
		// Transient failure survived the client's bounded retries:
		// abandon the seed and keep the run alive.
		w.metrics.IncSeedAbandoned()
		w.metrics.IncError("seed_fetch")
		w.logger.Warn("abandoning seed after fetch failure",
			"seed", seed,
			"error", err.Error())
		return false, nil
	}

	w.state = StateScoringBatch
	processed := 0

	for _, follower := range followers {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		handle := follower.Handle
		if handle == "" || handle == seed {
			continue
		}

		// Ledger check comes before any per-handle network call.
		if w.ledger.ShouldSkip(handle) {
			continue
		}

		if err := w.pause(ctx); err != nil {
			return false, err
		}

		w.metrics.IncRequest("get_profile")
		profile, err := w.client.GetProfile(ctx, handle)
		if err != nil {
			if errors.Is(err, bsky.ErrAuth) || ctx.Err() != nil {
				return false, err
			}
			// A single bad account never fails the seed.
			w.metrics.IncError("profile_fetch")
			w.logger.Warn("skipping account after profile fetch failure",
				"handle", handle,
				"error", err.Error())
			w.ledger.MarkSeen(handle)
			continue
		}

		breakdown := w.scorer.Score(profile, nil, nil)
		w.ledger.MarkSeen(handle)
		w.metrics.IncScored()

		if err := w.store.UpsertUser(ctx, profile, &breakdown); err != nil {
			// Unrecoverable storage errors halt the run.
			return false, fmt.Errorf("crawler: persist %s: %w", handle, err)
		}

		if breakdown.IsCandidate {
			cp.CandidatesFound++
			w.metrics.IncCandidate()
			w.logger.Info("candidate accepted",
				"handle", handle,
				"score", breakdown.OverallScore,
				"reasons", breakdown.Reasons,
				"candidates_found", cp.CandidatesFound)
		}

		processed++
		if processed%w.cfg.BatchSize == 0 {
			w.saveCheckpoint(cp)
		}

		if cp.Complete() {
			return true, nil
		}
	}

	return false, nil
}

// pause sleeps for the politeness delay, aborting early on cancellation.
func (w *Walker) pause(ctx context.Context) error {
	if w.cfg.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(w.cfg.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// saveCheckpoint persists progress, logging instead of failing: losing a
// checkpoint write costs replay time, not data.
func (w *Walker) saveCheckpoint(cp *Checkpoint) {
	if err := w.checkpoints.Save(cp); err != nil {
		w.metrics.IncError("checkpoint")
		w.logger.Error("failed to save checkpoint", "error", err.Error())
	}
}

package crawler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint is the durable crawl progress record. SeedIndex always points
// at the next seed to process, never a completed one; resume begins exactly
// there.
type Checkpoint struct {
	// SeedIndex is the index of the next seed in the ordered seed list.
	SeedIndex int `json:"seed_index"`

	// SeedsCompleted lists the seed handles already fully expanded.
	SeedsCompleted []string `json:"seeds_completed"`

	// CandidatesFound is the running total of accepted candidates.
	CandidatesFound int `json:"candidates_found_count"`

	// TargetCount is the immutable goal for the run.
	TargetCount int `json:"target_count"`

	// UpdatedAt is when the checkpoint was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether the run goal has been reached.
func (c *Checkpoint) Complete() bool {
	return c.TargetCount > 0 && c.CandidatesFound >= c.TargetCount
}

// CheckpointStore persists the checkpoint as a single JSON file,
// overwritten wholesale on every save.
type CheckpointStore struct {
	path   string
	logger *slog.Logger
}

// NewCheckpointStore creates a store writing to the given file path.
func NewCheckpointStore(path string, logger *slog.Logger) *CheckpointStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckpointStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the checkpoint from disk. A missing file returns nil, nil.
// A file that cannot be read or parsed also returns nil, nil with a
// warning: losing progress is recoverable because the store-level ledger
// stratum still prevents re-scoring persisted accounts, so a bad
// checkpoint must never abort a resume.
func (s *CheckpointStore) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("checkpoint unreadable, starting fresh",
			"path", s.path,
			"error", err.Error())
		return nil, nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("checkpoint unreadable, starting fresh",
			"path", s.path,
			"error", err.Error())
		return nil, nil
	}

	return &cp, nil
}

// Save atomically replaces the on-disk checkpoint. The record is written
// to a temp file in the same directory and renamed into place, so a crash
// mid-write can never leave a half-written checkpoint behind.
func (s *CheckpointStore) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}

	return nil
}

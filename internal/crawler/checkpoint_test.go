package crawler

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCheckpointStore_roundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewCheckpointStore(path, testLogger())

	cp := &Checkpoint{
		SeedIndex:       3,
		SeedsCompleted:  []string{"a.example.com", "b.example.com", "c.example.com"},
		CandidatesFound: 42,
		TargetCount:     300,
	}
	if err := store.Save(cp); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil after Save")
	}
	if got.SeedIndex != 3 || got.CandidatesFound != 42 || got.TargetCount != 300 {
		t.Errorf("Load() = %+v, want saved values", got)
	}
	if len(got.SeedsCompleted) != 3 {
		t.Errorf("SeedsCompleted = %v, want 3 seeds", got.SeedsCompleted)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on save")
	}
}

func TestCheckpointStore_Load_missingFile(t *testing.T) {
	t.Parallel()

	store := NewCheckpointStore(filepath.Join(t.TempDir(), "progress.json"), testLogger())

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v, want nil for a missing file", got)
	}
}

func TestCheckpointStore_Load_corruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	store := NewCheckpointStore(path, testLogger())

	// A corrupt checkpoint is a fresh start, never a fatal error.
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for corrupt file", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v, want nil for corrupt file", got)
	}
}

func TestCheckpointStore_Load_unreadablePath(t *testing.T) {
	t.Parallel()

	// A directory occupying the checkpoint path makes the read itself
	// fail. Like a corrupt file, that is a fresh start, never a fatal
	// error: the store-level ledger still prevents rework.
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.Mkdir(path, 0750); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	store := NewCheckpointStore(path, testLogger())

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for unreadable path", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v, want nil for unreadable path", got)
	}
}

func TestCheckpointStore_Save_overwritesWholesale(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	store := NewCheckpointStore(path, testLogger())

	if err := store.Save(&Checkpoint{SeedIndex: 1, TargetCount: 10}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(&Checkpoint{SeedIndex: 2, TargetCount: 10}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SeedIndex != 2 {
		t.Errorf("SeedIndex = %d, want 2 (latest save wins)", got.SeedIndex)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("checkpoint dir has %d entries, want only the checkpoint", len(entries))
	}
}

func TestCheckpoint_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cp   Checkpoint
		want bool
	}{
		{name: "target reached", cp: Checkpoint{CandidatesFound: 300, TargetCount: 300}, want: true},
		{name: "target exceeded", cp: Checkpoint{CandidatesFound: 301, TargetCount: 300}, want: true},
		{name: "below target", cp: Checkpoint{CandidatesFound: 299, TargetCount: 300}, want: false},
		{name: "zero target never completes", cp: Checkpoint{CandidatesFound: 5, TargetCount: 0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.cp.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

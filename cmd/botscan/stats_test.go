package main

import (
	"testing"
)

// TestNewStatsCmd tests the stats command creation.
func TestNewStatsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewStatsCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "stats" {
			t.Errorf("expected use 'stats', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has top flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("top")
		if flag == nil {
			t.Fatal("expected top flag")
		}
		if flag.DefValue != "10" {
			t.Errorf("expected default '10', got %q", flag.DefValue)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// TestRunStatsCmdEmptyDatabase runs the stats command against a fresh
// database directory.
func TestRunStatsCmdEmptyDatabase(t *testing.T) {
	tmpDir := t.TempDir()

	root := NewRootCmd()
	root.SetArgs([]string{"stats", "--db-dir", tmpDir})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, analysis *Analysis) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, analysis *Analysis) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, analysis)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "first"},
			&mockStep{name: "second"},
			&mockStep{name: "third"},
		)

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		for _, name := range []string{"fetch", "detect", "persist"} {
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *Analysis) error {
					executionOrder = append(executionOrder, name)
					return nil
				},
			})
		}

		analysis := NewAnalysis("alice.bsky.social")
		if err := p.Execute(context.Background(), analysis); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		expected := []string{"fetch", "detect", "persist"}
		if len(executionOrder) != len(expected) {
			t.Fatalf("executed %d steps, want %d", len(executionOrder), len(expected))
		}
		for i, name := range executionOrder {
			if name != expected[i] {
				t.Errorf("execution order[%d] = %q, want %q", i, name, expected[i])
			}
		}
		if len(analysis.PerformedSteps) != 3 {
			t.Errorf("PerformedSteps = %v, want 3 entries", analysis.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "failing",
			doFunc: func(_ context.Context, _ *Analysis) error {
				return errors.New("step exploded")
			},
		}
		never := &mockStep{name: "never"}

		p := New()
		p.AddSteps(failing, never)

		analysis := NewAnalysis("alice.bsky.social")
		err := p.Execute(context.Background(), analysis)
		if err == nil {
			t.Fatal("Execute() = nil, want error")
		}
		if never.callCount != 0 {
			t.Errorf("step after failure ran %d times, want 0", never.callCount)
		}
		if analysis.Err == nil {
			t.Error("analysis.Err not recorded")
		}
	})

	t.Run("continues after error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "failing",
			doFunc: func(_ context.Context, _ *Analysis) error {
				return errors.New("step exploded")
			},
		}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		analysis := NewAnalysis("alice.bsky.social")
		if err := p.Execute(context.Background(), analysis); err != nil {
			t.Fatalf("Execute() error = %v with continueOnError", err)
		}
		if after.callCount != 1 {
			t.Errorf("step after failure ran %d times, want 1", after.callCount)
		}
		if analysis.Err == nil {
			t.Error("analysis.Err not recorded")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		err := p.Execute(ctx, NewAnalysis("alice.bsky.social"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Execute() error = %v, want context.Canceled", err)
		}
		if step.callCount != 0 {
			t.Errorf("step ran %d times after cancellation, want 0", step.callCount)
		}
	})
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("analyzes all accounts and keeps order", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "noop"})
			return p
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))

		handles := []string{"a.bsky.social", "b.bsky.social", "c.bsky.social"}
		results, err := bp.ProcessBatch(context.Background(), handles)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}

		if len(results) != len(handles) {
			t.Fatalf("got %d results, want %d", len(results), len(handles))
		}
		for i, r := range results {
			if r == nil {
				t.Fatalf("results[%d] = nil", i)
			}
			if r.Handle != handles[i] {
				t.Errorf("results[%d].Handle = %q, want %q", i, r.Handle, handles[i])
			}
		}
	})

	t.Run("one failed account does not fail the batch", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "flaky",
				doFunc: func(_ context.Context, a *Analysis) error {
					if a.Handle == "bad.bsky.social" {
						return errors.New("fetch failed")
					}
					return nil
				},
			})
			return p
		}

		bp := NewBatchProcessor(factory)

		handles := []string{"good.bsky.social", "bad.bsky.social", "also-good.bsky.social"}
		results, err := bp.ProcessBatch(context.Background(), handles)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}

		if results[1].Err == nil {
			t.Error("failed account's analysis carries no error")
		}
		if results[0].Err != nil || results[2].Err != nil {
			t.Error("healthy accounts carry errors")
		}
	})

	t.Run("callback receives every analysis", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "noop"})
			return p
		}

		bp := NewBatchProcessor(factory, WithConcurrency(1))

		var mu sync.Mutex
		seen := make(map[string]bool)

		handles := []string{"a.bsky.social", "b.bsky.social"}
		err := bp.ProcessBatchWithCallback(context.Background(), handles, func(a *Analysis, _ int) {
			mu.Lock()
			seen[a.Handle] = true
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("ProcessBatchWithCallback() error = %v", err)
		}

		for _, h := range handles {
			if !seen[h] {
				t.Errorf("callback never saw %q", h)
			}
		}
	})
}

package bsky

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicy_do(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    RetryPolicy
		failures  int
		failWith  error
		wantCalls int
		wantErr   error
	}{
		{
			name:      "succeeds first try",
			policy:    RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond},
			failures:  0,
			wantCalls: 1,
		},
		{
			name:      "recovers from transient failures",
			policy:    RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond},
			failures:  2,
			failWith:  ErrNetwork,
			wantCalls: 3,
		},
		{
			name:      "exhausts attempts",
			policy:    RetryPolicy{MaxAttempts: 2, InitialBackoff: time.Millisecond},
			failures:  5,
			failWith:  ErrRateLimited,
			wantCalls: 2,
			wantErr:   ErrRateLimited,
		},
		{
			name:      "fatal error stops immediately",
			policy:    RetryPolicy{MaxAttempts: 4, InitialBackoff: time.Millisecond},
			failures:  5,
			failWith:  ErrAuth,
			wantCalls: 1,
			wantErr:   ErrAuth,
		},
		{
			name:      "zero attempts still runs once",
			policy:    RetryPolicy{},
			failures:  0,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := tt.policy.do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return fmt.Errorf("attempt %d: %w", calls, tt.failWith)
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("fn called %d times, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("do() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("do() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_do_contextCancelsBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	policy := RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Hour}
	err := policy.do(ctx, func() error {
		cancel()
		return ErrNetwork
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("do() error = %v, want context.Canceled", err)
	}
}

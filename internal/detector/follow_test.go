package detector

import (
	"testing"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

func TestAnalyzeFollow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		profile     model.Profile
		wantScore   float64
		wantReasons int
	}{
		{
			name: "normal account",
			profile: model.Profile{
				FollowingCount: 150,
				FollowersCount: 200,
			},
			wantScore:   0.0,
			wantReasons: 0,
		},
		{
			name: "aggressive follower",
			profile: model.Profile{
				FollowingCount: 3000,
				FollowersCount: 100,
			},
			// Ratio 30 (+0.4), following over 1000 (+0.3), round
			// following count (+0.1).
			wantScore:   0.8,
			wantReasons: 3,
		},
		{
			name: "zero followers on old account",
			profile: model.Profile{
				FollowingCount: 10,
				FollowersCount: 0,
				CreatedAt:      now.Add(-365 * 24 * time.Hour),
			},
			// Infinite ratio (+0.4), zero followers established (+0.2).
			wantScore:   0.6,
			wantReasons: 2,
		},
		{
			name: "zero followers on brand new account",
			profile: model.Profile{
				FollowingCount: 10,
				FollowersCount: 0,
				CreatedAt:      now.Add(-5 * 24 * time.Hour),
			},
			// Infinite ratio (+0.4), new account leniency (+0.1).
			wantScore:   0.5,
			wantReasons: 2,
		},
		{
			name: "score caps at one",
			profile: model.Profile{
				FollowingCount: 5000,
				FollowersCount: 0,
			},
			// inf ratio (+0.4), very high following (+0.3), round
			// following (+0.1), zero followers unknown age (+0.2):
			// raw 1.0, capped.
			wantScore:   1.0,
			wantReasons: 4,
		},
		{
			name:    "empty account",
			profile: model.Profile{},
			// Zero followers with unknown age still counts as
			// established (+0.2); the ratio stays 0 with nothing
			// followed.
			wantScore:   0.2,
			wantReasons: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := analyzeFollow(&tt.profile, now)
			if diff := got.Score - tt.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Score = %v, want %v (reasons: %v)", got.Score, tt.wantScore, got.Reasons)
			}
			if len(got.Reasons) != tt.wantReasons {
				t.Errorf("len(Reasons) = %d, want %d (%v)", len(got.Reasons), tt.wantReasons, got.Reasons)
			}
		})
	}
}

func TestAnalyzeFollow_confidence(t *testing.T) {
	t.Parallel()

	now := time.Now()

	active := analyzeFollow(&model.Profile{FollowingCount: 10, FollowersCount: 10}, now)
	if active.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9 with observed counts", active.Confidence)
	}

	empty := analyzeFollow(&model.Profile{}, now)
	if empty.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5 with no counts", empty.Confidence)
	}
}

func TestSuspiciousRoundNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count int
		want  bool
	}{
		{count: 0, want: false},
		{count: 50, want: false},
		{count: 100, want: false},
		{count: 500, want: true},
		{count: 1000, want: true},
		{count: 2500, want: true},
		{count: 1234, want: false},
		{count: 10000, want: true},
	}

	for _, tt := range tests {
		if got := suspiciousRoundNumber(tt.count); got != tt.want {
			t.Errorf("suspiciousRoundNumber(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

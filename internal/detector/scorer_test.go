package detector

import (
	"reflect"
	"testing"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

var scoreNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	return NewScorer(WithClock(func() time.Time { return scoreNow }))
}

func TestScorer_Score(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		profile       model.Profile
		wantScore     float64
		wantCandidate bool
		wantReasons   int
	}{
		{
			name: "obvious bot profile",
			profile: model.Profile{
				Handle:         "user12345678",
				FollowingCount: 625,
				FollowersCount: 50,
			},
			// ratio 12.5 with 625 following (+0.4), suspicious handle
			// (+0.3), no bio or avatar (+0.2).
			wantScore:     0.9,
			wantCandidate: true,
			wantReasons:   3,
		},
		{
			name: "normal human profile",
			profile: model.Profile{
				Handle:         "alice_writes",
				FollowingCount: 20,
				FollowersCount: 200,
				PostsCount:     10,
				Description:    "poet",
				HasAvatar:      true,
				CreatedAt:      scoreNow.Add(-400 * 24 * time.Hour),
			},
			wantScore:     0.0,
			wantCandidate: false,
			wantReasons:   0,
		},
		{
			name: "new prolific account",
			profile: model.Profile{
				Handle:         "fresh.example.com",
				FollowingCount: 10,
				FollowersCount: 100,
				PostsCount:     600,
				Description:    "hi",
				HasAvatar:      true,
				CreatedAt:      scoreNow.Add(-10 * 24 * time.Hour),
			},
			// New account with many posts (+0.4); 600 posts over 10 days
			// is 60/day, below the cadence threshold.
			wantScore:     0.4,
			wantCandidate: false,
			wantReasons:   1,
		},
		{
			name: "moderate follow ratio",
			profile: model.Profile{
				Handle:         "mid.example.com",
				FollowingCount: 700,
				FollowersCount: 100,
				Description:    "around",
				HasAvatar:      true,
			},
			wantScore:     0.2,
			wantCandidate: false,
			wantReasons:   1,
		},
		{
			name: "zero followers with large history",
			profile: model.Profile{
				Handle:         "shouty.example.com",
				FollowingCount: 400,
				FollowersCount: 0,
				PostsCount:     150,
				Description:    "posting",
				HasAvatar:      true,
			},
			wantScore:     0.3,
			wantCandidate: false,
			wantReasons:   1,
		},
		{
			name: "unknown age skips age rules",
			profile: model.Profile{
				Handle:         "ageless.example.com",
				FollowingCount: 1,
				FollowersCount: 1,
				PostsCount:     100000,
				Description:    "old timer",
				HasAvatar:      true,
			},
			wantScore:     0.0,
			wantCandidate: false,
			wantReasons:   0,
		},
	}

	scorer := newTestScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scorer.Score(&tt.profile, nil, nil)

			if diff := got.OverallScore - tt.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("OverallScore = %v, want %v (reasons: %v)", got.OverallScore, tt.wantScore, got.Reasons)
			}
			if got.IsCandidate != tt.wantCandidate {
				t.Errorf("IsCandidate = %v, want %v", got.IsCandidate, tt.wantCandidate)
			}
			if len(got.Reasons) != tt.wantReasons {
				t.Errorf("len(Reasons) = %d, want %d (%v)", len(got.Reasons), tt.wantReasons, got.Reasons)
			}
		})
	}
}

func TestScorer_Score_zeroScoreMeansNoReasons(t *testing.T) {
	t.Parallel()

	profiles := []model.Profile{
		{Handle: "a.example.com", FollowingCount: 625, FollowersCount: 50},
		{Handle: "b.example.com", Description: "x", HasAvatar: true, FollowersCount: 10},
		{Handle: "user99999999", FollowersCount: 1},
		{Handle: "c.example.com", FollowersCount: 0, PostsCount: 5000},
		{Handle: "d.example.com", Description: "y", HasAvatar: true, FollowingCount: 3, FollowersCount: 900},
	}

	scorer := newTestScorer()
	for _, p := range profiles {
		got := scorer.Score(&p, nil, nil)
		if (got.OverallScore == 0) != (len(got.Reasons) == 0) {
			t.Errorf("profile %s: score %v with %d reasons violates the zero-iff-empty invariant",
				p.Handle, got.OverallScore, len(got.Reasons))
		}
	}
}

func TestScorer_Score_zeroFollowerExcludesRatioRules(t *testing.T) {
	t.Parallel()

	// Huge following with zero followers: only the zero-follower rule and
	// the unrelated profile rules may fire, never a ratio rule.
	profile := model.Profile{
		Handle:         "lonely.example.com",
		FollowingCount: 9000,
		FollowersCount: 0,
		PostsCount:     500,
		Description:    "bio",
		HasAvatar:      true,
	}

	got := newTestScorer().Score(&profile, nil, nil)
	if got.OverallScore != 0.3 {
		t.Errorf("OverallScore = %v, want 0.3 (reasons: %v)", got.OverallScore, got.Reasons)
	}
	if len(got.Reasons) != 1 || got.Reasons[0] != "Zero followers despite many posts" {
		t.Errorf("Reasons = %v, want only the zero-follower rule", got.Reasons)
	}
}

func TestScorer_Score_highAndModerateRatioMutuallyExclusive(t *testing.T) {
	t.Parallel()

	// Ratio 20 with high following fires only the high-ratio rule.
	high := model.Profile{
		Handle:         "ratio.example.com",
		FollowingCount: 2000,
		FollowersCount: 100,
		Description:    "x",
		HasAvatar:      true,
	}

	got := newTestScorer().Score(&high, nil, nil)
	if got.OverallScore != 0.4 || len(got.Reasons) != 1 {
		t.Errorf("Score = %v %v, want exactly the high-ratio rule", got.OverallScore, got.Reasons)
	}
}

func TestScorer_Score_idempotent(t *testing.T) {
	t.Parallel()

	profile := model.Profile{
		Handle:         "user12345678",
		FollowingCount: 625,
		FollowersCount: 50,
	}

	scorer := newTestScorer()
	first := scorer.Score(&profile, nil, nil)
	second := scorer.Score(&profile, nil, nil)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring the same profile twice differed:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestScorer_Score_classifierContribution(t *testing.T) {
	t.Parallel()

	profile := model.Profile{
		Handle:         "borderline.example.com",
		FollowingCount: 700,
		FollowersCount: 100,
		Description:    "bio",
		HasAvatar:      true,
	}
	scorer := newTestScorer()

	without := scorer.Score(&profile, nil, nil)
	if without.IsCandidate {
		t.Fatalf("profile unexpectedly a candidate without classifier: %+v", without)
	}

	verdict := &model.LLMResult{Verdict: "bot", Confidence: 0.9}
	with := scorer.Score(&profile, nil, verdict)

	want := without.OverallScore + 0.4*0.9
	if diff := with.OverallScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallScore with classifier = %v, want %v", with.OverallScore, want)
	}
	if !with.IsCandidate {
		t.Error("IsCandidate = false, want true after classifier contribution")
	}

	human := scorer.Score(&profile, nil, &model.LLMResult{Verdict: "human", Confidence: 0.9})
	if human.OverallScore != without.OverallScore {
		t.Errorf("human verdict changed the score: %v != %v", human.OverallScore, without.OverallScore)
	}
}

func TestScorer_Score_repetitivePosts(t *testing.T) {
	t.Parallel()

	profile := model.Profile{
		Handle:         "parrot.example.com",
		FollowingCount: 10,
		FollowersCount: 100,
		Description:    "bio",
		HasAvatar:      true,
	}
	posts := []model.Post{
		{URI: "at://1", Text: "Buy now and save big"},
		{URI: "at://2", Text: "Buy now and save big"},
		{URI: "at://3", Text: "Buy now and save big"},
		{URI: "at://4", Text: "something else entirely"},
	}

	got := newTestScorer().Score(&profile, posts, nil)
	if got.OverallScore != 0.3 || len(got.Reasons) != 1 {
		t.Errorf("Score = %v %v, want the repetition rule only", got.OverallScore, got.Reasons)
	}
}

package detector

import (
	"fmt"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// llmBotWeight scales an external classifier's bot verdict into an
// additive contribution alongside the heuristic rules.
const llmBotWeight = 0.4

// Scorer is the crawl-phase probability aggregator. It runs the signal
// extractors in a fixed order, sums their contributions without clamping,
// and flags the account as a candidate at model.CandidateThreshold.
//
// Design decision: the signal list is fixed at construction and evaluated
// in order so that triggered reasons are reproducible; scoring the same
// snapshot twice yields an identical breakdown.
type Scorer struct {
	signals []Signal
	now     func() time.Time
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithClock overrides the time source used for age-based rules. Tests use
// this to pin scoring to a fixed instant.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a Scorer with the full rule set in evaluation order.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		signals: []Signal{
			followRatioSignal{},
			ageVolumeSignal{},
			handleSignal{},
			cadenceSignal{},
			completenessSignal{},
			zeroFollowerSignal{},
			repetitionSignal{},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates a profile snapshot. Posts and assessment are optional:
// nil posts skip the text extractor, and a nil assessment skips the
// classifier contribution.
func (s *Scorer) Score(profile *model.Profile, posts []model.Post, assessment *model.LLMResult) model.ScoreBreakdown {
	in := Input{
		Profile: profile,
		Posts:   posts,
		Now:     s.now(),
	}

	breakdown := model.ScoreBreakdown{
		Reasons: []string{},
	}
	for _, sig := range s.signals {
		for _, c := range sig.Evaluate(in) {
			breakdown.OverallScore += c.Weight
			breakdown.Reasons = append(breakdown.Reasons, c.Reason)
		}
	}

	if assessment != nil && assessment.Verdict == "bot" {
		contribution := llmBotWeight * assessment.Confidence
		if contribution > 0 {
			breakdown.OverallScore += contribution
			breakdown.Reasons = append(breakdown.Reasons,
				fmt.Sprintf("Classifier verdict: bot (confidence %.0f%%)", assessment.Confidence*100))
		}
	}

	breakdown.IsCandidate = breakdown.OverallScore >= model.CandidateThreshold
	return breakdown
}

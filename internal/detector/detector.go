package detector

import (
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// Sub-analysis weights for the overall analyze-phase score. They sum to
// 1.0; each sub-score is already capped at 1.0, so the weighted overall
// score stays in [0,1] before any classifier contribution.
const (
	followWeight  = 0.33
	patternWeight = 0.33
	textWeight    = 0.34
)

// Detector runs the deep per-account analysis: follow graph, posting
// pattern, and text content sub-analyses combined into a weighted overall
// score, plus an optional external classifier verdict added on top.
type Detector struct {
	now func() time.Time
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorClock overrides the time source, for deterministic tests.
func WithDetectorClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a Detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Analyze produces the full report for one account. Posts may be empty, in
// which case the pattern and text sub-analyses return neutral scores. The
// assessment is optional and contributes additively when its verdict is
// "bot".
func (d *Detector) Analyze(profile *model.Profile, posts []model.Post, assessment *model.LLMResult) *model.AccountReport {
	now := d.now()

	follow := analyzeFollow(profile, now)
	pattern := analyzePattern(posts)
	text := analyzeText(posts)

	overall := follow.Score*followWeight + pattern.Score*patternWeight + text.Score*textWeight

	confidences := []float64{follow.Confidence, pattern.Confidence, text.Confidence}

	report := &model.AccountReport{
		Handle:       profile.Handle,
		Follow:       follow,
		Pattern:      pattern,
		Text:         text,
		OverallScore: overall,
		AnalyzedAt:   now,
	}

	if assessment != nil {
		report.LLM = assessment
		if assessment.Verdict == "bot" {
			report.OverallScore += llmBotWeight * assessment.Confidence
		}
		confidences = append(confidences, assessment.Confidence)
	}

	total := 0.0
	for _, c := range confidences {
		total += c
	}
	report.Confidence = total / float64(len(confidences))

	report.IsCandidate = report.OverallScore >= model.CandidateThreshold
	report.Summary = model.Summary(report.OverallScore)
	report.Recommendation = model.Recommendation(report.OverallScore)

	return report
}

package model

// Candidate score thresholds. The overall score is additive and uncapped,
// so values above 1.0 are possible and simply mean very high confidence.
const (
	// CandidateThreshold is the minimum overall score for an account to be
	// flagged as a bot candidate.
	CandidateThreshold = 0.5

	// HighConfidenceThreshold and friends bucket the overall score into
	// the qualitative labels used in reports and stored summaries.
	HighConfidenceThreshold     = 0.8
	ModerateConfidenceThreshold = 0.6
	LowConfidenceThreshold      = 0.4
)

// ScoreBreakdown is the outcome of scoring one account.
//
// Reasons holds one human-readable entry per triggered heuristic, in
// evaluation order. Reasons is empty exactly when OverallScore is zero.
type ScoreBreakdown struct {
	// OverallScore is the additive sum of all triggered heuristic weights.
	// It is not clamped; scores above 1.0 indicate multiple strong signals.
	OverallScore float64 `json:"overall_score"`

	// Reasons lists the triggered heuristics in evaluation order.
	Reasons []string `json:"reasons"`

	// IsCandidate is true when OverallScore >= CandidateThreshold.
	IsCandidate bool `json:"is_candidate"`
}

// Label returns the qualitative confidence label for an overall score.
func Label(score float64) string {
	switch {
	case score >= HighConfidenceThreshold:
		return "high"
	case score >= ModerateConfidenceThreshold:
		return "moderate"
	case score >= LowConfidenceThreshold:
		return "low"
	default:
		return "very low"
	}
}

// Summary returns a one-line qualitative summary for an overall score.
func Summary(score float64) string {
	switch {
	case score >= HighConfidenceThreshold:
		return "High confidence bot account - multiple strong indicators"
	case score >= ModerateConfidenceThreshold:
		return "Moderate confidence bot account - several suspicious patterns"
	case score >= LowConfidenceThreshold:
		return "Low confidence - some automated behavior detected"
	default:
		return "Very low confidence - likely human account"
	}
}

// Recommendation returns a suggested action for an overall score.
func Recommendation(score float64) string {
	switch {
	case score >= HighConfidenceThreshold:
		return "Strong candidate for review; consider blocking"
	case score >= ModerateConfidenceThreshold:
		return "Review account activity manually"
	case score >= LowConfidenceThreshold:
		return "Monitor for further automated behavior"
	default:
		return "No action needed"
	}
}

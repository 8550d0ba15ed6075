package model

import "time"

// FollowResult is the follow-graph sub-analysis of a full account report.
type FollowResult struct {
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// PatternResult is the posting-pattern sub-analysis of a full account report.
type PatternResult struct {
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
	Confidence  float64  `json:"confidence"`
	PostsPerDay float64  `json:"posts_per_day"`
}

// TextResult is the text-content sub-analysis of a full account report.
type TextResult struct {
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// LLMResult is the optional language-model assessment of an account.
type LLMResult struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Model      string  `json:"model"`
}

// AccountReport is the full analysis of one account: the weighted combination
// of the follow, pattern, and text sub-analyses, plus the optional LLM
// assessment. It maps one-to-one onto a bot_detection_results row.
type AccountReport struct {
	Handle string `json:"handle"`

	// OverallScore is the weighted sum of the sub-scores plus any additive
	// LLM contribution. Unlike the sub-scores it is not capped.
	OverallScore float64 `json:"overall_score"`

	// IsCandidate is true when OverallScore >= CandidateThreshold.
	IsCandidate bool `json:"is_candidate"`

	Follow  FollowResult  `json:"follow"`
	Pattern PatternResult `json:"pattern"`
	Text    TextResult    `json:"text"`
	LLM     *LLMResult    `json:"llm,omitempty"`

	// Confidence is the mean of the sub-analysis confidences.
	Confidence float64 `json:"confidence"`

	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Reasons returns all triggered reasons across the sub-analyses, in
// follow, pattern, text order.
func (r *AccountReport) Reasons() []string {
	reasons := make([]string, 0, len(r.Follow.Reasons)+len(r.Pattern.Reasons)+len(r.Text.Reasons))
	reasons = append(reasons, r.Follow.Reasons...)
	reasons = append(reasons, r.Pattern.Reasons...)
	reasons = append(reasons, r.Text.Reasons...)
	return reasons
}

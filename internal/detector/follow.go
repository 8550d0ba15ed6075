package detector

import (
	"fmt"
	"math"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// Analyze-phase follow thresholds. These are looser than the crawl-phase
// filter because the sub-score is capped at 1.0 and weighted into the
// overall score rather than summed raw.
const (
	analyzeHighRatio       = 5.0
	analyzeElevatedRatio   = 2.0
	analyzeVeryHighFollows = 1000
	analyzeHighFollows     = 500
	analyzeNewAccountDays  = 30
)

// analyzeFollow scores an account's follow-graph shape. The returned score
// is capped at 1.0; confidence is high when real counts were observed.
func analyzeFollow(profile *model.Profile, now time.Time) model.FollowResult {
	followers := profile.FollowersCount
	following := profile.FollowingCount

	var ratio float64
	switch {
	case followers == 0 && following > 0:
		ratio = math.Inf(1)
	case followers == 0:
		ratio = 0
	default:
		ratio = float64(following) / float64(followers)
	}

	score := 0.0
	var reasons []string

	switch {
	case ratio > analyzeHighRatio:
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("High follow ratio (%.1f:1)", ratio))
	case ratio > analyzeElevatedRatio:
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Elevated follow ratio (%.1f:1)", ratio))
	}

	switch {
	case following > analyzeVeryHighFollows:
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("Following %d accounts (very high)", following))
	case following > analyzeHighFollows:
		score += 0.1
		reasons = append(reasons, fmt.Sprintf("Following %d accounts (high)", following))
	}

	if suspiciousRoundNumber(following) {
		score += 0.1
		reasons = append(reasons, "Following count is suspiciously round")
	}
	if suspiciousRoundNumber(followers) {
		score += 0.05
		reasons = append(reasons, "Follower count is suspiciously round")
	}

	if followers == 0 {
		age, known := profile.AgeDays(now)
		switch {
		case !known || age > analyzeNewAccountDays:
			score += 0.2
			reasons = append(reasons, "Zero followers on established account")
		case following > 0:
			score += 0.1
			reasons = append(reasons, "Zero followers but actively following")
		}
	}

	if score > 1.0 {
		score = 1.0
	}

	confidence := 0.5
	if followers > 0 || following > 0 {
		confidence = 0.9
	}

	return model.FollowResult{
		Score:      score,
		Reasons:    reasons,
		Confidence: confidence,
	}
}

// suspiciousRoundNumber reports whether a count looks artificially round.
// Small numbers are often round naturally and never count.
func suspiciousRoundNumber(count int) bool {
	if count < 100 {
		return false
	}
	if count >= 1000 && count%1000 == 0 {
		return true
	}
	if count >= 500 && count%500 == 0 {
		return true
	}
	return false
}

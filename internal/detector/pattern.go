package detector

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// Posting-pattern thresholds, anchored in typical human behavior.
const (
	maxHumanPostsPerHour = 20
	maxHumanPostsPerDay  = 100.0
	elevatedPostsPerDay  = 50.0
	minSleepHours        = 4
	highRepostRatio      = 0.8

	// regularIntervalCV is the coefficient of variation below which
	// posting gaps count as machine-regular.
	regularIntervalCV = 0.1

	// minGapsForRegularity is the minimum number of gaps needed before
	// interval regularity is judged at all.
	minGapsForRegularity = 5

	// patternConfidentMinPosts is the post count above which the
	// pattern sub-score is considered well-grounded.
	patternConfidentMinPosts = 10
)

// analyzePattern scores an account's posting rhythm: frequency, sleep
// pattern, interval regularity, repost ratio, and burst behavior. With no
// posts the result is neutral (0.5) at low confidence.
func analyzePattern(posts []model.Post) model.PatternResult {
	if len(posts) == 0 {
		return model.PatternResult{
			Score:      0.5,
			Confidence: 0.5,
		}
	}

	perDay := postsPerDay(posts)
	gaps := timeGapsHours(posts)
	repostRatio := repostRatio(posts)

	score := 0.0
	var reasons []string

	switch {
	case perDay > maxHumanPostsPerDay:
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("Very high posting rate (%.1f posts/day)", perDay))
	case perDay > elevatedPostsPerDay:
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("High posting rate (%.1f posts/day)", perDay))
	}

	if sleep := longestInactiveHours(posts); sleep < minSleepHours {
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("No clear sleep pattern (max %dh inactive)", sleep))
	}

	if hasRegularIntervals(gaps) {
		score += 0.3
		reasons = append(reasons, "Posts at suspiciously regular intervals")
	}

	if repostRatio > highRepostRatio {
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Very high repost ratio (%.0f%%)", repostRatio*100))
	}

	if hasBurstPosting(posts) {
		score += 0.2
		reasons = append(reasons, "Detected burst posting behavior")
	}

	if score > 1.0 {
		score = 1.0
	}

	confidence := 0.5
	if len(posts) >= patternConfidentMinPosts {
		confidence = 0.8
	}

	return model.PatternResult{
		Score:       score,
		Reasons:     reasons,
		Confidence:  confidence,
		PostsPerDay: perDay,
	}
}

// postsPerDay averages the feed over the span between its oldest and newest
// post, inclusive of both end days.
func postsPerDay(posts []model.Post) float64 {
	var minT, maxT time.Time
	counted := 0
	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			continue
		}
		if counted == 0 || p.CreatedAt.Before(minT) {
			minT = p.CreatedAt
		}
		if counted == 0 || p.CreatedAt.After(maxT) {
			maxT = p.CreatedAt
		}
		counted++
	}
	if counted == 0 {
		return 0.0
	}

	days := int(maxT.Sub(minT).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return float64(len(posts)) / float64(days)
}

// timeGapsHours returns the gaps between consecutive posts in hours,
// oldest first.
func timeGapsHours(posts []model.Post) []float64 {
	timed := make([]time.Time, 0, len(posts))
	for _, p := range posts {
		if !p.CreatedAt.IsZero() {
			timed = append(timed, p.CreatedAt)
		}
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].Before(timed[j]) })

	gaps := make([]float64, 0, len(timed))
	for i := 1; i < len(timed); i++ {
		gaps = append(gaps, timed[i].Sub(timed[i-1]).Hours())
	}
	return gaps
}

func repostRatio(posts []model.Post) float64 {
	if len(posts) == 0 {
		return 0.0
	}
	reposts := 0
	for _, p := range posts {
		if p.IsRepost {
			reposts++
		}
	}
	return float64(reposts) / float64(len(posts))
}

// longestInactiveHours finds the longest consecutive run of clock hours
// (0-23, wrapping past midnight) in which the account never posts. An
// account posting around the clock has no sleep window.
func longestInactiveHours(posts []model.Post) int {
	var active [24]bool
	any := false
	for _, p := range posts {
		if !p.CreatedAt.IsZero() {
			active[p.CreatedAt.Hour()] = true
			any = true
		}
	}
	if !any {
		return 24
	}

	maxInactive := 0
	current := 0
	for i := 0; i < 48; i++ {
		if !active[i%24] {
			current++
			if current > maxInactive {
				maxInactive = current
			}
		} else {
			current = 0
		}
	}
	if maxInactive > 24 {
		maxInactive = 24
	}
	return maxInactive
}

// hasRegularIntervals reports whether posting gaps are suspiciously
// uniform: coefficient of variation below regularIntervalCV over at least
// minGapsForRegularity gaps.
func hasRegularIntervals(gaps []float64) bool {
	if len(gaps) < minGapsForRegularity {
		return false
	}

	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	if mean <= 0 {
		return false
	}

	variance := 0.0
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(gaps) - 1)

	return math.Sqrt(variance)/mean < regularIntervalCV
}

// hasBurstPosting reports whether any single clock hour holds more posts
// than a human plausibly writes.
func hasBurstPosting(posts []model.Post) bool {
	if len(posts) < 10 {
		return false
	}

	perHour := make(map[time.Time]int)
	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			continue
		}
		perHour[p.CreatedAt.Truncate(time.Hour)]++
	}
	for _, n := range perHour {
		if n > maxHumanPostsPerHour {
			return true
		}
	}
	return false
}

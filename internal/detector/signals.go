package detector

import "fmt"

// Crawl-phase rule constants. Weights are additive; the sum is deliberately
// not capped, so multiple strong signals push the score past 1.0.
const (
	highRatioThreshold     = 10.0
	highRatioMinFollowing  = 500
	moderateRatioLow       = 5.0
	moderateRatioHigh      = 10.0
	newAccountMaxAgeDays   = 30
	newAccountMinPosts     = 500
	hyperactivePostsPerDay = 150.0
	zeroFollowerMinPosts   = 100
)

// followRatioSignal evaluates the two follow-ratio rules. The high-ratio
// rule is checked first and the moderate-ratio rule is skipped when it
// fired: an account triggers at most one of the two. Both rules are skipped
// entirely for zero-follower accounts, which the zero-follower rule covers.
type followRatioSignal struct{}

func (followRatioSignal) Name() string { return "follow-ratio" }

func (followRatioSignal) Evaluate(in Input) []Contribution {
	ratio, ok := in.Profile.FollowRatio()
	if !ok {
		return nil
	}

	if ratio > highRatioThreshold && in.Profile.FollowingCount > highRatioMinFollowing {
		return []Contribution{{
			Weight: 0.4,
			Reason: fmt.Sprintf("High follow ratio (%.1f:1) with %d following", ratio, in.Profile.FollowingCount),
		}}
	}
	if ratio >= moderateRatioLow && ratio <= moderateRatioHigh {
		return []Contribution{{
			Weight: 0.2,
			Reason: fmt.Sprintf("Elevated follow ratio (%.1f:1)", ratio),
		}}
	}
	return nil
}

// ageVolumeSignal flags accounts created less than 30 days ago that have
// already accumulated more than 500 posts. Unknown creation time skips the
// rule.
type ageVolumeSignal struct{}

func (ageVolumeSignal) Name() string { return "age-volume" }

func (ageVolumeSignal) Evaluate(in Input) []Contribution {
	age, ok := in.Profile.AgeDays(in.Now)
	if !ok || age == 0 {
		return nil
	}
	if age < newAccountMaxAgeDays && in.Profile.PostsCount > newAccountMinPosts {
		return []Contribution{{
			Weight: 0.4,
			Reason: fmt.Sprintf("New account (%d days) with %d posts", age, in.Profile.PostsCount),
		}}
	}
	return nil
}

// cadenceSignal flags a lifetime posting rate above 150 posts per day.
// Unknown or zero age skips the rule.
type cadenceSignal struct{}

func (cadenceSignal) Name() string { return "cadence" }

func (cadenceSignal) Evaluate(in Input) []Contribution {
	age, ok := in.Profile.AgeDays(in.Now)
	if !ok || age == 0 {
		return nil
	}
	perDay := float64(in.Profile.PostsCount) / float64(age)
	if perDay > hyperactivePostsPerDay {
		return []Contribution{{
			Weight: 0.3,
			Reason: fmt.Sprintf("Very high posting rate: %.1f posts/day", perDay),
		}}
	}
	return nil
}

// completenessSignal flags accounts with neither a bio nor an avatar.
type completenessSignal struct{}

func (completenessSignal) Name() string { return "profile-completeness" }

func (completenessSignal) Evaluate(in Input) []Contribution {
	if in.Profile.HasProfileInfo() {
		return nil
	}
	return []Contribution{{
		Weight: 0.2,
		Reason: "No bio or avatar",
	}}
}

// zeroFollowerSignal flags accounts with no followers at all despite a
// substantial post history. This is the only rule that fires for
// zero-follower accounts; the ratio rules skip them.
type zeroFollowerSignal struct{}

func (zeroFollowerSignal) Name() string { return "zero-follower" }

func (zeroFollowerSignal) Evaluate(in Input) []Contribution {
	if in.Profile.FollowersCount != 0 || in.Profile.PostsCount <= zeroFollowerMinPosts {
		return nil
	}
	return []Contribution{{
		Weight: 0.3,
		Reason: "Zero followers despite many posts",
	}}
}

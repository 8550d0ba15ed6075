package model

import "time"

// Profile is a snapshot of one account at fetch time.
//
// Profiles are constructed by the graph API client from raw network data and
// validated at that boundary, so downstream consumers never see partially
// shaped records. A Profile is immutable once constructed: the crawl walker
// owns it for the duration of scoring, then hands it to the database for
// durable ownership.
type Profile struct {
	// Handle is the stable unique identifier of the account.
	// It is the primary key across all stores.
	Handle string `json:"handle"`

	// DisplayName is the user-chosen display name, if any.
	DisplayName string `json:"display_name,omitempty"`

	// Description is the profile bio. Empty means the account has no bio.
	Description string `json:"description,omitempty"`

	// FollowingCount is the number of accounts this account follows.
	FollowingCount int `json:"following_count"`

	// FollowersCount is the number of accounts following this account.
	FollowersCount int `json:"followers_count"`

	// PostsCount is the total number of posts the account has made.
	PostsCount int `json:"posts_count"`

	// CreatedAt is when the account was created.
	// The zero value means the creation time is unknown; age-based
	// heuristics must skip rather than guess.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// HasAvatar reports whether the account has set an avatar image.
	HasAvatar bool `json:"has_avatar"`

	// ReplyPct, RepostPct, and OriginalPct are the fractions of recent
	// activity by kind. They sum to approximately 1.0 when posts were
	// observed, and are all zero when no posts were observed.
	ReplyPct    float64 `json:"reply_pct"`
	RepostPct   float64 `json:"repost_pct"`
	OriginalPct float64 `json:"original_pct"`
}

// FollowRatio returns the following/followers ratio.
// The second return value is false when FollowersCount is zero, in which
// case ratio-based heuristics must be skipped in favor of the dedicated
// zero-follower rule.
func (p *Profile) FollowRatio() (float64, bool) {
	if p.FollowersCount == 0 {
		return 0, false
	}
	return float64(p.FollowingCount) / float64(p.FollowersCount), true
}

// AgeDays returns the account age in whole days relative to now.
// The second return value is false when the creation time is unknown.
func (p *Profile) AgeDays(now time.Time) (int, bool) {
	if p.CreatedAt.IsZero() {
		return 0, false
	}
	days := int(now.Sub(p.CreatedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// HasProfileInfo reports whether the account has either a bio or an avatar.
// Accounts with neither are considered to have a minimal profile.
func (p *Profile) HasProfileInfo() bool {
	return p.Description != "" || p.HasAvatar
}

package model

import "time"

// Post is a single post observed in an account's recent feed.
type Post struct {
	// URI uniquely identifies the post on the network.
	URI string `json:"uri"`

	// Text is the post body. Empty for reposts without commentary.
	Text string `json:"text"`

	// CreatedAt is when the post was published.
	CreatedAt time.Time `json:"created_at"`

	// IsRepost is true when the post is a repost of another account's post.
	IsRepost bool `json:"is_repost"`

	// IsReply is true when the post is a reply to another post.
	IsReply bool `json:"is_reply"`
}

// ActivityBreakdown computes the reply/repost/original fractions for a set
// of posts. All three fractions are zero when posts is empty; otherwise they
// sum to 1.0 within floating point error.
func ActivityBreakdown(posts []Post) (replyPct, repostPct, originalPct float64) {
	if len(posts) == 0 {
		return 0, 0, 0
	}

	var replies, reposts, originals int
	for _, p := range posts {
		switch {
		case p.IsRepost:
			reposts++
		case p.IsReply:
			replies++
		default:
			originals++
		}
	}

	total := float64(len(posts))
	return float64(replies) / total, float64(reposts) / total, float64(originals) / total
}

// OriginalPosts filters posts down to original content: not reposts, not
// replies, and with non-empty text. Text heuristics only operate on
// original content because reposted text says nothing about the account's
// own writing.
func OriginalPosts(posts []Post) []Post {
	originals := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.IsRepost || p.IsReply {
			continue
		}
		if p.Text == "" {
			continue
		}
		originals = append(originals, p)
	}
	return originals
}

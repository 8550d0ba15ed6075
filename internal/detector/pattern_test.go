package detector

import (
	"math"
	"testing"
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// postsAt builds one post per timestamp.
func postsAt(times ...time.Time) []model.Post {
	posts := make([]model.Post, len(times))
	for i, ts := range times {
		posts[i] = model.Post{URI: "at://post", Text: "text", CreatedAt: ts}
	}
	return posts
}

func TestAnalyzePattern_noPosts(t *testing.T) {
	t.Parallel()

	got := analyzePattern(nil)
	if got.Score != 0.5 {
		t.Errorf("Score = %v, want neutral 0.5", got.Score)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
	if len(got.Reasons) != 0 {
		t.Errorf("Reasons = %v, want none", got.Reasons)
	}
}

func TestAnalyzePattern_humanRhythm(t *testing.T) {
	t.Parallel()

	// A handful of posts spread over a week, daytime hours only.
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	posts := postsAt(
		base,
		base.Add(26*time.Hour),
		base.Add(55*time.Hour),
		base.Add(80*time.Hour),
		base.Add(121*time.Hour),
		base.Add(150*time.Hour),
	)

	got := analyzePattern(posts)
	if got.Score != 0.0 {
		t.Errorf("Score = %v, want 0 (reasons: %v)", got.Score, got.Reasons)
	}
}

func TestAnalyzePattern_regularIntervals(t *testing.T) {
	t.Parallel()

	// Posts exactly every 6 hours: zero variance in gaps.
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 8)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * 6 * time.Hour)
	}

	got := analyzePattern(postsAt(times...))

	found := false
	for _, r := range got.Reasons {
		if r == "Posts at suspiciously regular intervals" {
			found = true
		}
	}
	if !found {
		t.Errorf("regular-interval reason missing: %v", got.Reasons)
	}
}

func TestAnalyzePattern_highRepostRatio(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	posts := make([]model.Post, 10)
	for i := range posts {
		posts[i] = model.Post{
			CreatedAt: base.Add(time.Duration(i) * 27 * time.Hour),
			IsRepost:  i != 0,
		}
	}

	got := analyzePattern(posts)

	found := false
	for _, r := range got.Reasons {
		if r == "Very high repost ratio (90%)" {
			found = true
		}
	}
	if !found {
		t.Errorf("repost-ratio reason missing: %v", got.Reasons)
	}
	if got.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8 with %d posts", got.Confidence, len(posts))
	}
}

func TestAnalyzePattern_burstPosting(t *testing.T) {
	t.Parallel()

	// 25 posts inside a single clock hour.
	base := time.Date(2026, 2, 1, 14, 0, 0, 0, time.UTC)
	times := make([]time.Time, 25)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * 2 * time.Minute)
	}

	got := analyzePattern(postsAt(times...))

	found := false
	for _, r := range got.Reasons {
		if r == "Detected burst posting behavior" {
			found = true
		}
	}
	if !found {
		t.Errorf("burst reason missing: %v", got.Reasons)
	}
}

func TestPostsPerDay(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// 10 posts over a 90-hour span: 3 whole days plus one, so 4 days.
	times := make([]time.Time, 10)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * 10 * time.Hour)
	}

	got := postsPerDay(postsAt(times...))
	if math.Abs(got-2.5) > 1e-9 {
		t.Errorf("postsPerDay() = %v, want 2.5", got)
	}

	if got := postsPerDay(nil); got != 0.0 {
		t.Errorf("postsPerDay(nil) = %v, want 0", got)
	}
}

func TestLongestInactiveHours(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// Posts only between 08:00 and 20:00: inactive 21:00 through 07:00,
	// an 11-hour window wrapping midnight.
	var times []time.Time
	for hour := 8; hour <= 20; hour++ {
		times = append(times, base.Add(time.Duration(hour)*time.Hour))
	}

	if got := longestInactiveHours(postsAt(times...)); got != 11 {
		t.Errorf("longestInactiveHours() = %d, want 11", got)
	}

	// Around-the-clock posting leaves no inactive window.
	times = times[:0]
	for hour := 0; hour < 24; hour++ {
		times = append(times, base.Add(time.Duration(hour)*time.Hour))
	}
	if got := longestInactiveHours(postsAt(times...)); got != 0 {
		t.Errorf("longestInactiveHours(always on) = %d, want 0", got)
	}
}

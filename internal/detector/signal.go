package detector

import (
	"time"

	"github.com/nobushige/botscan/internal/model"
)

// Input is the snapshot a signal evaluates. Posts may be nil; signals that
// need posts return no contributions when they are absent. Now anchors
// age-based rules so scoring is deterministic and testable.
type Input struct {
	Profile *model.Profile
	Posts   []model.Post
	Now     time.Time
}

// Contribution is one triggered heuristic: its additive weight and the
// human-readable rationale recorded in the score breakdown.
type Contribution struct {
	Weight float64
	Reason string
}

// Signal is a single pure scoring heuristic. Evaluate returns the
// contributions the input triggers, or nil when the rule does not fire or
// cannot be evaluated (missing fields degrade to a skipped rule, never an
// error).
type Signal interface {
	// Name identifies the signal in logs.
	Name() string

	// Evaluate inspects the input and returns triggered contributions.
	Evaluate(in Input) []Contribution
}

// Package llm integrates an optional language-model content classifier.
// The classifier reads a sample of an account's posts and judges whether
// the writing looks automated; its verdict feeds the scoring as one more
// additive signal. Detection works fully without it.
package llm

import (
	"context"
	"errors"

	"github.com/nobushige/botscan/internal/model"
)

var (
	// ErrNoSamples is returned when there is no text to assess.
	ErrNoSamples = errors.New("llm: no text samples to assess")

	// ErrProvider is returned when the provider request or its response
	// parsing fails.
	ErrProvider = errors.New("llm: provider request failed")
)

// Verdict values a classifier may return.
const (
	VerdictBot       = "bot"
	VerdictHuman     = "human"
	VerdictUncertain = "uncertain"
)

// Classifier assesses whether text samples read as machine-generated.
type Classifier interface {
	// Assess judges the given post texts and returns a verdict with a
	// confidence in [0,1] and a short reasoning string.
	Assess(ctx context.Context, samples []string) (*model.LLMResult, error)
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoCredentials is returned when the API identifier or app password
	// is missing. Both are required to open a session with the graph API.
	ErrNoCredentials = errors.New("missing credentials: set BSKY_IDENTIFIER and BSKY_APP_PASSWORD")

	// ErrInvalidTargetCount is returned when the candidate target is not positive.
	// A target of zero would complete the run before it starts.
	ErrInvalidTargetCount = errors.New("invalid target count: must be positive")

	// ErrInvalidFollowerLimit is returned when the per-seed follower fetch
	// limit is not positive.
	ErrInvalidFollowerLimit = errors.New("invalid follower limit: must be positive")

	// ErrInvalidBatchSize is returned when the checkpoint batch size is not
	// positive. A batch size of zero would never trigger mid-seed checkpoints.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the analysis concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

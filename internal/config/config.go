package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are tuned to the graph API's public rate limits; the crawl
// is deliberately slow and sequential.
const (
	// DefaultTargetCount is the number of bot candidates a crawl tries to
	// collect before stopping. 300 gives a workable review queue without
	// days of crawling.
	DefaultTargetCount = 300

	// DefaultFollowerLimit is the per-seed follower fetch limit. Bot
	// followers cluster near the top of popular accounts' follower lists,
	// so 100 per seed finds plenty while keeping API usage modest.
	DefaultFollowerLimit = 100

	// DefaultDelay is the politeness pause between processed accounts and
	// between seeds. One second keeps the crawl well inside the API's
	// rate limits even with the per-account profile fetch.
	DefaultDelay = 1 * time.Second

	// DefaultBatchSize is the number of accounts processed within a seed
	// between checkpoint saves. A crash replays at most this many accounts
	// of the current seed; the dedup ledger makes the replay cheap.
	DefaultBatchSize = 10

	// DefaultConcurrency is the number of parallel account analyses in the
	// analyze command. The API's rate limits bite well before CPU does.
	DefaultConcurrency = 4

	// DefaultPostLimit is the number of recent posts fetched per account
	// during analysis.
	DefaultPostLimit = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "botscan"

	// EnvIdentifier is the environment variable holding the API identifier
	// (handle or email) used to open a session.
	EnvIdentifier = "BSKY_IDENTIFIER"

	// EnvAppPassword is the environment variable holding the app password.
	// App passwords are revocable per-application credentials; the account
	// password itself is never used.
	EnvAppPassword = "BSKY_APP_PASSWORD" //nolint:gosec // env var name, not a credential

	// EnvOpenAIKey is the environment variable holding the optional OpenAI
	// API key. When unset, the language-model classifier is disabled and
	// detection runs on heuristics alone.
	EnvOpenAIKey = "OPENAI_API_KEY" //nolint:gosec // env var name, not a credential
)

// Config holds all configuration options for botscan.
// This struct is populated from CLI flags and environment variables and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Identifier is the handle or email used to authenticate with the
	// graph API. Read from BSKY_IDENTIFIER.
	Identifier string

	// AppPassword is the revocable app password paired with Identifier.
	// Read from BSKY_APP_PASSWORD, never from a flag, so it cannot leak
	// into shell history or process listings.
	AppPassword string

	// SeedsFile is the path to the YAML seeds file. When empty, the
	// default seeds file in the XDG config directory is used.
	SeedsFile string

	// TargetCount stops the crawl once this many candidates are found.
	TargetCount int

	// FollowerLimit is the per-seed follower fetch limit.
	FollowerLimit int

	// Delay is the politeness pause between processed accounts and
	// between seeds. It is a scheduling policy, not a correctness
	// mechanism.
	Delay time.Duration

	// BatchSize is the number of accounts processed within a seed
	// between checkpoint saves.
	BatchSize int

	// Resume loads the previous checkpoint instead of starting fresh.
	Resume bool

	// Concurrency is the number of parallel account analyses in the
	// analyze command.
	Concurrency int

	// PostLimit is the number of recent posts fetched per account during
	// analysis.
	PostLimit int

	// DBDir is the directory path for the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/botscan on Linux).
	DBDir string

	// CheckpointPath is the path of the crawl progress checkpoint file.
	// Defaults to progress.json inside DBDir.
	CheckpointPath string

	// LogFile is the path of the JSON log file. Log output always also
	// goes to stderr as text.
	LogFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// MetricsAddr is the listen address for the optional Prometheus
	// metrics endpoint (e.g. ":9090"). Empty disables the endpoint.
	MetricsAddr string

	// OpenAIKey enables the optional language-model classifier when set.
	// Read from OPENAI_API_KEY.
	OpenAIKey string

	// LLMModel selects the classifier model. Only used when OpenAIKey is set.
	LLMModel string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., target count,
// delay). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		TargetCount:    DefaultTargetCount,
		FollowerLimit:  DefaultFollowerLimit,
		Delay:          DefaultDelay,
		BatchSize:      DefaultBatchSize,
		Concurrency:    DefaultConcurrency,
		PostLimit:      DefaultPostLimit,
		DBDir:          XDGDataDir(),
		CheckpointPath: filepath.Join(XDGDataDir(), "progress.json"),
		LogFile:        filepath.Join(XDGDataDir(), "botscan.log"),
	}
}

// LoadCredentials reads the API credentials and the optional classifier
// key from the environment.
func (c *Config) LoadCredentials() {
	c.Identifier = os.Getenv(EnvIdentifier)
	c.AppPassword = os.Getenv(EnvAppPassword)
	c.OpenAIKey = os.Getenv(EnvOpenAIKey)
}

// XDGDataDir returns the XDG data directory for botscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/botscan
// On macOS: ~/Library/Application Support/botscan
// On Windows: %LOCALAPPDATA%\botscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for botscan.
// On Linux: ~/.config/botscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for botscan.
// On Linux: ~/.cache/botscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultSeedsFile returns the default seeds file path in the XDG config
// directory.
func DefaultSeedsFile() string {
	return filepath.Join(XDGConfigDir(), "seeds.yaml")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.TargetCount <= 0 {
		return ErrInvalidTargetCount
	}
	if c.FollowerLimit <= 0 {
		return ErrInvalidFollowerLimit
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateCredentials checks that the API credentials are present.
// Commands that talk to the graph API call this in addition to Validate.
func (c *Config) ValidateCredentials() error {
	if c.Identifier == "" || c.AppPassword == "" {
		return ErrNoCredentials
	}
	return nil
}

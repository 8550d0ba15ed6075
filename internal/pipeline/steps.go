package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nobushige/botscan/internal/bsky"
	"github.com/nobushige/botscan/internal/detector"
	"github.com/nobushige/botscan/internal/llm"
	"github.com/nobushige/botscan/internal/model"
)

// DefaultPostLimit is the number of recent posts fetched for analysis.
// The pattern and text sub-analyses stabilize well before this many posts.
const DefaultPostLimit = 50

// minClassifierPosts is the minimum number of original posts required
// before the language-model classifier is consulted. Below this, the
// verdict would rest on too little text to be worth the call.
const minClassifierPosts = 3

// FetchStep retrieves the account's full profile and recent posts.
// This step is the foundation: every later step works on its output.
type FetchStep struct {
	// client is the authenticated graph API client.
	client bsky.Client

	// postLimit caps the number of recent posts fetched.
	postLimit int

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchPostLimit sets the number of recent posts to fetch.
func WithFetchPostLimit(limit int) FetchStepOption {
	return func(s *FetchStep) {
		if limit > 0 {
			s.postLimit = limit
		}
	}
}

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new fetch step over the given client.
func NewFetchStep(client bsky.Client, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		client:    client,
		postLimit: DefaultPostLimit,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fetches the profile and recent posts. A profile fetch failure is
// critical; a feed fetch failure is not, because the detection step
// degrades to neutral pattern and text scores without posts.
func (s *FetchStep) Do(ctx context.Context, analysis *Analysis) error {
	profile, err := s.client.GetProfile(ctx, analysis.Handle)
	if err != nil {
		return fmt.Errorf("fetch profile %s: %w", analysis.Handle, err)
	}
	analysis.Profile = profile

	posts, err := s.client.GetRecentPosts(ctx, analysis.Handle, s.postLimit)
	if err != nil {
		if errors.Is(err, bsky.ErrAuth) || ctx.Err() != nil {
			return fmt.Errorf("fetch posts %s: %w", analysis.Handle, err)
		}
		s.logger.Warn("post fetch failed, analyzing profile only",
			"handle", analysis.Handle,
			"error", err,
		)
		return nil
	}
	analysis.Posts = posts

	return nil
}

// ClassifyStep asks the optional language-model classifier for a verdict
// on the account's original post texts.
//
// Design decision: Classification runs before detection because the
// detector folds the verdict into the overall score. The step is entirely
// optional; detection is fully functional without it.
type ClassifyStep struct {
	// classifier judges text samples. Nil disables the step.
	classifier llm.Classifier

	// logger for structured logging.
	logger *slog.Logger
}

// ClassifyStepOption configures a ClassifyStep.
type ClassifyStepOption func(*ClassifyStep)

// WithClassifyLogger sets a custom logger for the classify step.
func WithClassifyLogger(logger *slog.Logger) ClassifyStepOption {
	return func(s *ClassifyStep) {
		s.logger = logger
	}
}

// NewClassifyStep creates a new classification step.
func NewClassifyStep(classifier llm.Classifier, opts ...ClassifyStepOption) *ClassifyStep {
	s := &ClassifyStep{
		classifier: classifier,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do runs the classifier on the account's original posts. Classifier
// failures are never critical: the heuristic analysis stands on its own.
func (s *ClassifyStep) Do(ctx context.Context, analysis *Analysis) error {
	if s.classifier == nil {
		return nil
	}

	originals := model.OriginalPosts(analysis.Posts)
	if len(originals) < minClassifierPosts {
		s.logger.Debug("skipping classifier, too few original posts",
			"handle", analysis.Handle,
			"original_posts", len(originals),
		)
		return nil
	}

	samples := make([]string, len(originals))
	for i, p := range originals {
		samples[i] = p.Text
	}

	result, err := s.classifier.Assess(ctx, samples)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("classifier failed, continuing without verdict",
			"handle", analysis.Handle,
			"error", err,
		)
		return nil
	}

	analysis.Assessment = result
	s.logger.Debug("classifier verdict",
		"handle", analysis.Handle,
		"verdict", result.Verdict,
		"confidence", result.Confidence,
	)

	return nil
}

// DetectStep runs the heuristic sub-analyses and combines them with any
// classifier verdict into the account report.
type DetectStep struct {
	detector *detector.Detector
}

// NewDetectStep creates a new detection step.
func NewDetectStep(d *detector.Detector) *DetectStep {
	return &DetectStep{detector: d}
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do produces the account report from the fetched data.
func (s *DetectStep) Do(_ context.Context, analysis *Analysis) error {
	if analysis.Profile == nil {
		return fmt.Errorf("detect %s: no profile fetched", analysis.Handle)
	}

	analysis.Report = s.detector.Analyze(analysis.Profile, analysis.Posts, analysis.Assessment)
	return nil
}

// ResultStore is the subset of the persistent store the persist step needs.
type ResultStore interface {
	UpsertResult(ctx context.Context, report *model.AccountReport) error
}

// PersistStep writes the finished report to the store.
type PersistStep struct {
	store  ResultStore
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(store ResultStore, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the report. Storage errors are critical: an analysis that
// cannot be recorded is an analysis wasted.
func (s *PersistStep) Do(ctx context.Context, analysis *Analysis) error {
	if analysis.Report == nil {
		s.logger.Debug("skipping persist, no report produced",
			"handle", analysis.Handle,
		)
		return nil
	}

	if err := s.store.UpsertResult(ctx, analysis.Report); err != nil {
		return fmt.Errorf("persist result %s: %w", analysis.Handle, err)
	}

	s.logger.Info("analysis stored",
		"handle", analysis.Handle,
		"overall_score", analysis.Report.OverallScore,
		"is_candidate", analysis.Report.IsCandidate,
	)
	return nil
}

// DefaultPipeline creates a pipeline with the standard analysis steps:
// fetch, classify (when a classifier is given), detect, persist.
//
// Design decision: We provide a default pipeline because most callers want
// the full sequence, it reduces boilerplate in the CLI, and it ensures
// consistent ordering.
func DefaultPipeline(client bsky.Client, classifier llm.Classifier, d *detector.Detector, store ResultStore, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddStep(NewFetchStep(client, WithFetchLogger(p.logger)))
	if classifier != nil {
		p.AddStep(NewClassifyStep(classifier, WithClassifyLogger(p.logger)))
	}
	p.AddSteps(
		NewDetectStep(d),
		NewPersistStep(store, WithPersistLogger(p.logger)),
	)

	return p
}

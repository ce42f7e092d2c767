package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"distill/internal/artifacts"
	"distill/internal/config"
	"distill/internal/extract"
	"distill/internal/generate"
	"distill/internal/layers"
	"distill/internal/ledger"
	"distill/internal/logging"
	"distill/internal/notifications"
	"distill/internal/services"
	"distill/internal/state"
)

// Request is one distillation job.
type Request struct {
	Source      string
	Focus       string
	FinalFormat string
}

// Result summarizes a finished run.
type Result struct {
	RunID     string
	Title     string
	InputType string
	Slug      string
	Artifacts []string
	Duration  time.Duration
}

// Runner wires the node graph and drives one run end to end, recording
// the outcome in the ledger and publishing notifications.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor extract.Service
	generator layers.Generator
	writer    artifacts.Writer
	store     *ledger.Store
	notifier  notifications.Service
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	newRunID  func() string
}

// Option customizes runner construction. Tests inject fakes.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithExtractor overrides the extraction service.
func WithExtractor(service extract.Service) Option {
	return func(r *Runner) {
		if service != nil {
			r.extractor = service
		}
	}
}

// WithGenerator overrides the generation client.
func WithGenerator(gen layers.Generator) Option {
	return func(r *Runner) {
		if gen != nil {
			r.generator = gen
		}
	}
}

// WithArtifactWriter overrides the artifact writer.
func WithArtifactWriter(writer artifacts.Writer) Option {
	return func(r *Runner) {
		if writer != nil {
			r.writer = writer
		}
	}
}

// WithLedger attaches the run-history store.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// WithClock pins the run timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSleeper overrides the retry wait used by the engine.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithRunIDSource overrides run ID generation.
func WithRunIDSource(newRunID func() string) Option {
	return func(r *Runner) {
		if newRunID != nil {
			r.newRunID = newRunID
		}
	}
}

// NewRunner builds a runner from configuration. Production collaborators
// are constructed from cfg unless overridden by options.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewNop(),
		extractor: extract.NewExtractor(
			extract.WithRequestTimeout(time.Duration(cfg.Extraction.RequestTimeout)*time.Second),
			extract.WithUserAgent(cfg.Extraction.UserAgent),
			extract.WithMaxBodyKiB(cfg.Extraction.MaxBodyKiB),
			extract.WithMaxPDFPages(cfg.Extraction.MaxPDFPages),
		),
		generator: generate.NewClient(generate.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}),
		writer:   artifacts.FileWriter{},
		notifier: notifications.NewService(cfg),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one distillation end to end.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	runID := r.newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	st := state.New(runID, req.Source,
		state.WithFocus(req.Focus),
		state.WithFinalFormat(req.FinalFormat))

	if r.store != nil {
		if err := r.store.Create(ctx, runID, req.Source); err != nil {
			return nil, err
		}
	}
	if err := r.notifier.NotifyRunStarted(ctx, req.Source); err != nil {
		logger.Warn("run-started notification failed", logging.Error(err))
	}

	started := r.now()
	logger.Info("run started", logging.String("source", req.Source))

	// Flow and node loggers derive run_id and node from the context.
	runErr := r.buildFlow(r.logger).Run(ctx, st)
	if runErr == nil {
		runErr = st.VerifySingleAssignment()
	}
	duration := r.now().Sub(started)

	if runErr != nil {
		logger.Error("run failed", logging.Error(runErr), logging.Duration("duration", duration))
		if r.store != nil {
			if err := r.store.Fail(ctx, runID, string(st.InputType()),
				services.Message(runErr), st.SavedPaths()); err != nil {
				logger.Warn("ledger update failed", logging.Error(err))
			}
		}
		if err := r.notifier.NotifyError(ctx, runErr, "distill run"); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
		return nil, runErr
	}

	doc := st.Document()
	result := &Result{
		RunID:     runID,
		Title:     doc.Title,
		InputType: string(st.InputType()),
		Slug:      st.Slug(),
		Artifacts: st.SavedPaths(),
		Duration:  duration,
	}
	logger.Info("run completed",
		logging.String("title", result.Title),
		logging.Int("artifacts", len(result.Artifacts)),
		logging.Bool("degraded", doc.Degraded),
		logging.Duration("duration", duration))

	if r.store != nil {
		if err := r.store.Complete(ctx, runID, result.InputType, result.Slug, result.Artifacts); err != nil {
			logger.Warn("ledger update failed", logging.Error(err))
		}
	}
	if err := r.notifier.NotifyRunCompleted(ctx, result.Title, len(result.Artifacts), duration); err != nil {
		logger.Warn("run-completed notification failed", logging.Error(err))
	}
	return result, nil
}

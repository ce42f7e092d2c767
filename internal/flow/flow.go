package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"distill/internal/logging"
	"distill/internal/services"
	"distill/internal/state"
)

const defaultMaxSteps = 64

// Flow is a directed graph of stages with a designated start. Stages are
// registered implicitly through Route; the engine walks the graph one
// stage at a time, selecting successors by outcome label.
type Flow struct {
	start        Stage
	routes       map[string]map[Outcome]Stage
	stages       map[string]Stage
	logger       *slog.Logger
	sleep        func(ctx context.Context, d time.Duration) error
	maxSteps     int
	batchWorkers int
}

// Option adjusts flow construction.
type Option func(*Flow)

// WithLogger attaches a logger for per-stage progress events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSleeper overrides the retry wait. Tests inject a recording fake.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Flow) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// WithMaxSteps bounds the number of stage transitions in one run.
func WithMaxSteps(n int) Option {
	return func(f *Flow) {
		if n > 0 {
			f.maxSteps = n
		}
	}
}

// WithBatchWorkers caps concurrent ExecuteItem calls inside batch stages.
func WithBatchWorkers(n int) Option {
	return func(f *Flow) {
		if n > 0 {
			f.batchWorkers = n
		}
	}
}

// New builds a flow starting at the given stage.
func New(start Stage, opts ...Option) *Flow {
	f := &Flow{
		start:        start,
		routes:       make(map[string]map[Outcome]Stage),
		stages:       make(map[string]Stage),
		logger:       logging.NewNop(),
		sleep:        contextSleep,
		maxSteps:     defaultMaxSteps,
		batchWorkers: 1,
	}
	if start != nil {
		f.stages[start.Name()] = start
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Route registers an edge: when from finishes with the given outcome,
// control passes to to.
func (f *Flow) Route(from Stage, outcome Outcome, to Stage) *Flow {
	if from == nil || to == nil {
		return f
	}
	f.stages[from.Name()] = from
	f.stages[to.Name()] = to
	edges, ok := f.routes[from.Name()]
	if !ok {
		edges = make(map[Outcome]Stage)
		f.routes[from.Name()] = edges
	}
	edges[outcome.orDefault()] = to
	return f
}

// Validate rejects graphs the run loop cannot work with: a missing
// start stage, any cycle reachable from it, or a routed stage the start
// can never reach.
func (f *Flow) Validate() error {
	if f.start == nil {
		return services.Wrap(services.ErrValidation, "", "flow", "start stage not set", nil)
	}
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	colors := make(map[string]int)
	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case visiting:
			return services.Wrap(services.ErrValidation, name, "flow", "cycle detected", nil)
		case done:
			return nil
		}
		colors[name] = visiting
		for _, next := range f.routes[name] {
			if err := visit(next.Name()); err != nil {
				return err
			}
		}
		colors[name] = done
		return nil
	}
	if err := visit(f.start.Name()); err != nil {
		return err
	}
	for name := range f.stages {
		if colors[name] != done {
			return services.Wrap(services.ErrValidation, name, "flow", "stage unreachable from start", nil)
		}
	}
	return nil
}

// Run walks the graph from the start stage until a stage finishes with
// an outcome that has no registered successor, which ends the run
// successfully. Any stage error aborts the run with the stage's
// identity attached.
func (f *Flow) Run(ctx context.Context, st *state.State) error {
	if err := f.Validate(); err != nil {
		return err
	}

	current := f.start
	for step := 0; current != nil; step++ {
		if step >= f.maxSteps {
			return services.Wrap(services.ErrValidation, current.Name(), "flow",
				fmt.Sprintf("exceeded %d steps", f.maxSteps), nil)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		stageCtx := services.WithNode(ctx, current.Name())
		logger := logging.WithContext(stageCtx, f.logger)
		logger.Debug("stage start",
			logging.String(logging.FieldEventType, "node_start"))

		var (
			outcome Outcome
			err     error
		)
		switch node := current.(type) {
		case Node:
			outcome, err = f.runNode(stageCtx, logger, node, st)
		case BatchNode:
			outcome, err = f.runBatch(stageCtx, logger, node, st)
		default:
			err = services.Wrap(services.ErrValidation, current.Name(), "flow",
				"stage implements neither Node nor BatchNode", nil)
		}
		if err != nil {
			logger.Error("stage failed",
				logging.String(logging.FieldEventType, "node_failure"),
				logging.Error(err))
			return err
		}

		outcome = outcome.orDefault()
		next, ok := f.routes[current.Name()][outcome]
		if !ok {
			logger.Debug("flow complete", logging.String("outcome", string(outcome)))
			return nil
		}
		logger.Debug("stage complete",
			logging.String(logging.FieldEventType, "node_complete"),
			logging.String("outcome", string(outcome)),
			logging.String("next", next.Name()))
		current = next
	}
	return nil
}

func (f *Flow) runNode(ctx context.Context, logger *slog.Logger, node Node, st *state.State) (Outcome, error) {
	prepared, err := node.Prepare(ctx, st)
	if err != nil {
		return "", services.Wrap(nil, node.Name(), "prepare", "", err)
	}

	result, err := f.executeWithRetry(ctx, logger, node, prepared)
	if err != nil {
		if fb, ok := node.(Fallbacker); ok {
			logger.Warn("execute exhausted, using fallback", logging.Error(err))
			result, err = fb.Fallback(prepared, err)
			if err != nil {
				return "", services.Wrap(nil, node.Name(), "fallback", "", err)
			}
		} else {
			return "", services.Wrap(nil, node.Name(), "execute", "", err)
		}
	}

	outcome, err := node.Finalize(ctx, st, prepared, result)
	if err != nil {
		return "", services.Wrap(nil, node.Name(), "finalize", "", err)
	}
	return outcome, nil
}

func (f *Flow) executeWithRetry(ctx context.Context, logger *slog.Logger, node Node, prepared any) (any, error) {
	policy := node.RetryPolicy()
	attempts := policy.attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := node.Execute(ctx, prepared)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == attempts {
			break
		}
		logger.Warn("execute failed, retrying",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("wait", policy.Wait),
			logging.Error(err))
		if policy.Wait > 0 {
			if err := f.sleep(ctx, policy.Wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

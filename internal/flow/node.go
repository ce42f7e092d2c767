package flow

import (
	"context"
	"time"

	"distill/internal/state"
)

// Stage is the common surface of every vertex in a flow graph.
type Stage interface {
	Name() string
}

// Node is a unit of work with the three-phase contract.
//
// Prepare reads from shared state and assembles everything the work
// needs. Execute performs the work without touching state; it must be
// idempotent because it is the only phase the engine retries. Finalize
// is the sole mutator: it writes results into state and returns the
// outcome label that picks the successor.
type Node interface {
	Stage
	Prepare(ctx context.Context, st *state.State) (any, error)
	Execute(ctx context.Context, prepared any) (any, error)
	Finalize(ctx context.Context, st *state.State, prepared, result any) (Outcome, error)
	RetryPolicy() RetryPolicy
}

// Fallbacker is implemented by nodes that can supply a degraded result
// after retry exhaustion instead of aborting the run.
type Fallbacker interface {
	Fallback(prepared any, cause error) (any, error)
}

// RetryPolicy governs how the engine retries a node's execute phase.
// MaxAttempts counts the first attempt; Wait is the fixed pause between
// attempts.
type RetryPolicy struct {
	MaxAttempts int
	Wait        time.Duration
}

// NoRetry is the policy for nodes whose execute phase must not repeat.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Item is one unit of a batch node's fan-out, in prepare order.
type Item struct {
	Name    string
	Payload any
}

// BatchNode fans one stage out over an ordered item list. ExecuteItem
// runs per item, possibly concurrently; results are collected by item
// index. FinalizeBatch runs once, sequentially, and is the sole state
// mutator. Batch execute phases are not retried.
type BatchNode interface {
	Stage
	PrepareBatch(ctx context.Context, st *state.State) ([]Item, error)
	ExecuteItem(ctx context.Context, item Item) (any, error)
	FinalizeBatch(ctx context.Context, st *state.State, items []Item, results []any) (Outcome, error)
}

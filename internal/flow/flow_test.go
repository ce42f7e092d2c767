package flow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"distill/internal/flow"
	"distill/internal/state"
)

type stubNode struct {
	name    string
	policy  flow.RetryPolicy
	execute func(ctx context.Context, prepared any) (any, error)
	outcome flow.Outcome
	visits  *[]string
}

func (n *stubNode) Name() string { return n.name }

func (n *stubNode) Prepare(ctx context.Context, st *state.State) (any, error) {
	return nil, nil
}

func (n *stubNode) Execute(ctx context.Context, prepared any) (any, error) {
	if n.execute != nil {
		return n.execute(ctx, prepared)
	}
	return nil, nil
}

func (n *stubNode) Finalize(ctx context.Context, st *state.State, prepared, result any) (flow.Outcome, error) {
	if n.visits != nil {
		*n.visits = append(*n.visits, n.name)
	}
	return n.outcome, nil
}

func (n *stubNode) RetryPolicy() flow.RetryPolicy { return n.policy }

func TestBranchesConvergeOnSharedSuccessor(t *testing.T) {
	var visits []string
	branch := &stubNode{name: "branch", outcome: "left", visits: &visits}
	left := &stubNode{name: "left", visits: &visits}
	right := &stubNode{name: "right", visits: &visits}
	merge := &stubNode{name: "merge", visits: &visits}

	f := flow.New(branch)
	f.Route(branch, "left", left)
	f.Route(branch, "right", right)
	f.Route(left, flow.DefaultOutcome, merge)
	f.Route(right, flow.DefaultOutcome, merge)

	if err := f.Run(context.Background(), state.New("r", "s")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"branch", "left", "merge"}
	if len(visits) != len(want) {
		t.Fatalf("visits = %v, want %v", visits, want)
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Fatalf("visits = %v, want %v", visits, want)
		}
	}
}

func TestRetryWaitsBetweenAttemptsThenAborts(t *testing.T) {
	attempts := 0
	failing := &stubNode{
		name:   "extract",
		policy: flow.RetryPolicy{MaxAttempts: 3, Wait: 2 * time.Second},
		execute: func(ctx context.Context, prepared any) (any, error) {
			attempts++
			return nil, errors.New("backend unavailable")
		},
	}

	var waits []time.Duration
	f := flow.New(failing, flow.WithSleeper(func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}))

	err := f.Run(context.Background(), state.New("r", "s"))
	if err == nil {
		t.Fatal("expected aborted run")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(waits) != 2 {
		t.Fatalf("expected 2 waits, got %v", waits)
	}
	for _, d := range waits {
		if d != 2*time.Second {
			t.Fatalf("expected fixed 2s wait, got %v", d)
		}
	}
	if !strings.Contains(err.Error(), "extract") {
		t.Fatalf("expected node identity in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend unavailable") {
		t.Fatalf("expected cause in error, got %v", err)
	}
}

type fallbackNode struct {
	stubNode
	fallback func(prepared any, cause error) (any, error)
}

func (n *fallbackNode) Fallback(prepared any, cause error) (any, error) {
	return n.fallback(prepared, cause)
}

func TestFallbackAfterExhaustion(t *testing.T) {
	node := &fallbackNode{
		stubNode: stubNode{
			name:   "fetch",
			policy: flow.RetryPolicy{MaxAttempts: 2},
			execute: func(ctx context.Context, prepared any) (any, error) {
				return nil, errors.New("unreachable")
			},
		},
		fallback: func(prepared any, cause error) (any, error) {
			return "degraded", nil
		},
	}
	f := flow.New(node)
	if err := f.Run(context.Background(), state.New("r", "s")); err != nil {
		t.Fatalf("expected fallback to rescue the run, got %v", err)
	}
}

func TestUnregisteredOutcomeEndsRunSuccessfully(t *testing.T) {
	var visits []string
	first := &stubNode{name: "first", outcome: "stop", visits: &visits}
	second := &stubNode{name: "second", visits: &visits}

	f := flow.New(first)
	f.Route(first, flow.DefaultOutcome, second)

	if err := f.Run(context.Background(), state.New("r", "s")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(visits) != 1 || visits[0] != "first" {
		t.Fatalf("expected early stop after first, got %v", visits)
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	a := &stubNode{name: "a"}
	b := &stubNode{name: "b"}
	f := flow.New(a)
	f.Route(a, flow.DefaultOutcome, b)
	f.Route(b, flow.DefaultOutcome, a)

	if err := f.Validate(); err == nil {
		t.Fatal("expected cycle to be rejected")
	}
}

func TestMaxStepsGuard(t *testing.T) {
	// A long linear chain trips the step guard even without a cycle.
	nodes := make([]*stubNode, 6)
	for i := range nodes {
		nodes[i] = &stubNode{name: fmt.Sprintf("n%d", i)}
	}
	f := flow.New(nodes[0], flow.WithMaxSteps(3))
	for i := 0; i < len(nodes)-1; i++ {
		f.Route(nodes[i], flow.DefaultOutcome, nodes[i+1])
	}
	if err := f.Run(context.Background(), state.New("r", "s")); err == nil {
		t.Fatal("expected max-step guard to abort")
	}
}

func TestContextCancellationStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	node := &stubNode{
		name:   "cancelled",
		policy: flow.RetryPolicy{MaxAttempts: 5, Wait: time.Minute},
		execute: func(ctx context.Context, prepared any) (any, error) {
			cancel()
			return nil, errors.New("boom")
		},
	}
	f := flow.New(node)
	err := f.Run(ctx, state.New("r", "s"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

type batchStub struct {
	name     string
	items    []flow.Item
	execute  func(ctx context.Context, item flow.Item) (any, error)
	finished []any
	mu       sync.Mutex
	finalErr error
}

func (b *batchStub) Name() string { return b.name }

func (b *batchStub) PrepareBatch(ctx context.Context, st *state.State) ([]flow.Item, error) {
	return b.items, nil
}

func (b *batchStub) ExecuteItem(ctx context.Context, item flow.Item) (any, error) {
	return b.execute(ctx, item)
}

func (b *batchStub) FinalizeBatch(ctx context.Context, st *state.State, items []flow.Item, results []any) (flow.Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = append([]any(nil), results...)
	return "", b.finalErr
}

func TestBatchResultsKeepItemOrder(t *testing.T) {
	const n = 5
	items := make([]flow.Item, n)
	gates := make([]chan struct{}, n)
	for i := range items {
		items[i] = flow.Item{Name: fmt.Sprintf("item-%d", i), Payload: i}
		gates[i] = make(chan struct{})
	}
	close(gates[n-1])

	// Items complete in reverse order: each waits for its successor.
	batch := &batchStub{
		name:  "save",
		items: items,
		execute: func(ctx context.Context, item flow.Item) (any, error) {
			i := item.Payload.(int)
			<-gates[i]
			if i > 0 {
				close(gates[i-1])
			}
			return fmt.Sprintf("result-%d", i), nil
		},
	}

	f := flow.New(batch, flow.WithBatchWorkers(n))
	if err := f.Run(context.Background(), state.New("r", "s")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(batch.finished) != n {
		t.Fatalf("expected %d results, got %d", n, len(batch.finished))
	}
	for i, got := range batch.finished {
		want := fmt.Sprintf("result-%d", i)
		if got != want {
			t.Fatalf("results[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestBatchItemFailureAborts(t *testing.T) {
	items := []flow.Item{{Name: "ok", Payload: 0}, {Name: "bad", Payload: 1}}
	batch := &batchStub{
		name:  "save",
		items: items,
		execute: func(ctx context.Context, item flow.Item) (any, error) {
			if item.Payload.(int) == 1 {
				return nil, errors.New("disk full")
			}
			return "ok", nil
		},
	}
	f := flow.New(batch, flow.WithBatchWorkers(1))
	err := f.Run(context.Background(), state.New("r", "s"))
	if err == nil {
		t.Fatal("expected batch failure to abort")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected failing item name in error, got %v", err)
	}
	if batch.finished != nil {
		t.Fatal("finalize must not run after an execute failure")
	}
}

func TestValidateRejectsUnreachableStage(t *testing.T) {
	start := &stubNode{name: "start"}
	next := &stubNode{name: "next"}
	orphan := &stubNode{name: "orphan"}
	island := &stubNode{name: "island"}

	f := flow.New(start)
	f.Route(start, flow.DefaultOutcome, next)
	f.Route(orphan, flow.DefaultOutcome, island)

	err := f.Validate()
	if err == nil {
		t.Fatal("expected disconnected stages to be rejected")
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("error = %v", err)
	}
}

// Package fanout runs independent per-item calls against unreliable
// collaborators with bounded parallelism and per-item failure isolation.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/creatorscout/internal/metrics"
)

// ErrPanic marks an outcome whose task panicked.
var ErrPanic = errors.New("task panicked")

// Outcome is the result of one task. Index is the position of its input item.
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

type options struct {
	timeout time.Duration
	op      string
}

// Option configures Run.
type Option func(*options)

// WithTimeout bounds every task individually. A task that times out does
// not cancel its siblings.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithOp labels task metrics with an operation name.
func WithOp(op string) Option {
	return func(o *options) { o.op = op }
}

// Run calls fn for every item with at most min(limit, len(items)) calls in
// flight. Outcomes are returned in completion order; use SortByIndex to
// restore input order. Errors and panics stay confined to their item.
func Run[T, R any](
	ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error), opts ...Option,
) []Outcome[R] {
	if len(items) == 0 {
		return nil
	}
	o := options{op: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	limit = max(1, min(limit, len(items)))

	sem := semaphore.NewWeighted(int64(limit))
	out := make([]Outcome[R], 0, len(items))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(oc Outcome[R]) {
		mu.Lock()
		out = append(out, oc)
		mu.Unlock()
		metrics.FanoutTasksTotal.WithLabelValues(o.op, outcomeLabel(oc.Err)).Inc()
	}

	for i, item := range items {
		wg.Add(1)
		go func(index int, item T) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				record(Outcome[R]{Index: index, Err: err})
				return
			}
			defer sem.Release(1)

			v, err := call(ctx, o.timeout, item, fn)
			record(Outcome[R]{Index: index, Value: v, Err: err})
		}(i, item)
	}
	wg.Wait()
	return out
}

func call[T, R any](
	ctx context.Context, timeout time.Duration, item T, fn func(context.Context, T) (R, error),
) (v R, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx, item)
}

// SortByIndex orders outcomes by their input position in place and returns them.
func SortByIndex[R any](out []Outcome[R]) []Outcome[R] {
	slices.SortFunc(out, func(a, b Outcome[R]) int { return a.Index - b.Index })
	return out
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPanic):
		return "panic"
	default:
		return "error"
	}
}

// Package await turns a single in-flight operation into a blocking call.
//
// An Adapter has exactly one slot: an operation is submitted, runs on its own
// goroutine, and the caller blocks on a channel until it settles. It is a
// sequencing primitive, not a concurrency one: a second submission while the
// slot is taken is rejected instead of queued.
package await

import (
	"context"
	"fmt"

	"github.com/apiarycd/ftpdeploy/internal/errlog"
)

type Adapter struct {
	slot chan struct{}
	log  *errlog.Log
}

// New creates an Adapter recording failures into log. log may be nil.
func New(log *errlog.Log) *Adapter {
	return &Adapter{
		slot: make(chan struct{}, 1),
		log:  log,
	}
}

type outcome[T any] struct {
	value T
	err   error
}

// Wait runs op once and blocks until it returns. The context is handed to op
// but does not cut the wait short.
func Wait[T any](ctx context.Context, a *Adapter, op func(context.Context) (T, error)) (T, error) {
	var zero T

	select {
	case a.slot <- struct{}{}:
	default:
		a.log.Append(ErrBusy)
		return zero, ErrBusy
	}
	defer func() { <-a.slot }()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("%w: %v", ErrPanicked, r)}
			}
		}()

		value, err := op(ctx)
		done <- outcome[T]{value: value, err: err}
	}()

	res := <-done
	if res.err != nil {
		a.log.Append(res.err)
		return zero, res.err
	}

	return res.value, nil
}

// Bool reports whether op succeeded.
func (a *Adapter) Bool(ctx context.Context, op func(context.Context) error) bool {
	_, err := Wait(ctx, a, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return err == nil
}

// Int returns the value produced by op, or -1 on failure.
func (a *Adapter) Int(ctx context.Context, op func(context.Context) (int64, error)) int64 {
	value, err := Wait(ctx, a, op)
	if err != nil {
		return -1
	}

	return value
}

// Pending reports whether an operation currently holds the slot.
func (a *Adapter) Pending() bool {
	return len(a.slot) > 0
}

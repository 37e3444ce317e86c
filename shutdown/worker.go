package shutdown

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// errStopRequested is the cancellation cause when stop is closed.
var errStopRequested = errors.New("stop requested")

type funcWorker struct {
	id string
	fn func(stop <-chan struct{}) error
}

// WorkerFunc adapts a plain function to the Worker interface.
func WorkerFunc(id string, fn func(stop <-chan struct{}) error) Worker {
	return &funcWorker{id: id, fn: fn}
}

func (w *funcWorker) ID() string { return w.id }

func (w *funcWorker) Run(stop <-chan struct{}) error { return w.fn(stop) }

type contextWorker struct {
	id string
	fn func(ctx context.Context) error
}

// ContextWorker adapts a context-driven function to the Worker interface.
// The context is cancelled when stop is closed. Returning context.Canceled
// after a requested stop counts as a clean exit.
func ContextWorker(id string, fn func(ctx context.Context) error) Worker {
	return &contextWorker{id: id, fn: fn}
}

func (w *contextWorker) ID() string { return w.id }

func (w *contextWorker) Run(stop <-chan struct{}) error {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	go func() {
		select {
		case <-stop:
			cancel(errStopRequested)
		case <-ctx.Done():
		}
	}()

	err := w.fn(ctx)
	if errors.Is(err, context.Canceled) && errors.Is(context.Cause(ctx), errStopRequested) {
		return nil
	}
	return err
}

// Group runs fns concurrently as one worker. Stop cancels their shared
// context; the first function to fail cancels the rest, and its error is
// the worker's outcome.
func Group(id string, fns ...func(ctx context.Context) error) Worker {
	return ContextWorker(id, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		for _, fn := range fns {
			g.Go(func() error {
				return fn(gctx)
			})
		}
		return g.Wait()
	})
}

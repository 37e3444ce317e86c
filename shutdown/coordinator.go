package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	kiterrors "github.com/vinayprograms/gracekit/errors"
	"github.com/vinayprograms/gracekit/logging"
)

// resultBuffer sizes the bounded outcome channel that stands in for an
// unbounded one. Early-exiting workers report into it without blocking;
// a sender that finds it full waits until collection drains it, or until
// collected is closed and the outcome is dropped.
const resultBuffer = 64

// Coordinator runs registered workers and stops them all when a signal
// arrives. It serves a single shutdown cycle.
type Coordinator struct {
	config Config
	logger *logging.Logger

	trigger <-chan struct{}
	manual  chan struct{}

	mu      sync.Mutex
	closers []*closer
	state   atomic.Int32

	results   chan outcome
	collected chan struct{}
	done      chan struct{}
	result    *ShutdownResult
}

// NewCoordinator subscribes to the configured signals and returns a
// coordinator ready for registrations. A *SignalError means the
// subscription failed and nothing was started.
func NewCoordinator(config Config) (*Coordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if len(config.Signals) == 0 {
		config.Signals = DefaultSignals()
	}
	if config.Source == nil {
		config.Source = osSignalSource{}
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	trigger, err := listen(config.Source, config.Signals)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		config:    config,
		logger:    logger,
		trigger:   trigger,
		manual:    make(chan struct{}, 1),
		closers:   make([]*closer, 0),
		results:   make(chan outcome, resultBuffer),
		collected: make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Register starts w in its own goroutine and tracks it for shutdown.
// Registrations after shutdown has begun are rejected and w is never run.
func (c *Coordinator) Register(w Worker) *Coordinator {
	id := w.ID()
	if id == "" {
		id = uuid.NewString()
	}

	c.mu.Lock()
	if st := c.State(); st >= StateShuttingDown {
		c.mu.Unlock()
		c.logger.RegistrationRejected(id, st.String())
		return c
	}
	cl := newCloser(id)
	c.closers = append(c.closers, cl)
	registered := len(c.closers)
	c.mu.Unlock()

	go c.run(w, cl)

	c.logger.WorkerStarted(id, registered)
	if c.config.OnRegister != nil {
		c.config.OnRegister(id)
	}
	return c
}

// RegisterFunc is a convenience method for registering a function as a worker.
func (c *Coordinator) RegisterFunc(id string, fn func(stop <-chan struct{}) error) *Coordinator {
	return c.Register(WorkerFunc(id, fn))
}

// Trigger starts shutdown without an OS signal (useful for testing and
// for fatal errors inside the process).
func (c *Coordinator) Trigger() {
	select {
	case c.manual <- struct{}{}:
	default:
	}
}

// Wait blocks until a signal arrives, stops every worker, and returns the
// aggregated errors: one *WorkerError per failed worker in arrival order,
// followed by at most one *TimeoutError. An empty list means a clean
// shutdown. A Coordinator serves one cycle; later calls return
// ErrAlreadyShutdown.
func (c *Coordinator) Wait() []error {
	return c.WaitContext(context.Background())
}

// WaitContext is Wait where cancellation of ctx also starts shutdown.
func (c *Coordinator) WaitContext(ctx context.Context) []error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateWaiting)) {
		return []error{ErrAlreadyShutdown}
	}

	var errs []error
	select {
	case _, ok := <-c.trigger:
		if ok {
			c.logger.SignalReceived("os")
		} else {
			c.logger.Error("signal_channel_closed")
			errs = append(errs, &ChannelError{Op: "receive signal", Err: ErrSignalChannelClosed})
		}
	case <-c.manual:
		c.logger.SignalReceived("manual")
	case <-ctx.Done():
		c.logger.SignalReceived("context")
	}

	return c.shutdown(errs)
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Done returns a channel that is closed when the shutdown cycle is complete.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the joined shutdown errors.
// Only valid after Done() is closed.
func (c *Coordinator) Err() error {
	select {
	case <-c.done:
		return c.result.Err()
	default:
		return nil
	}
}

// Result returns the detailed shutdown result.
// Only valid after Done() is closed.
func (c *Coordinator) Result() *ShutdownResult {
	select {
	case <-c.done:
		return c.result
	default:
		return nil
	}
}

// run executes one worker and reports its outcome exactly once. If
// collection has already ended the outcome is dropped.
func (c *Coordinator) run(w Worker, cl *closer) {
	err := runWorker(w, cl)
	o := outcome{id: cl.id, err: err, at: time.Now()}

	select {
	case c.results <- o:
	case <-c.collected:
	}
}

func runWorker(w Worker, cl *closer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = kiterrors.RecoverPanic(r, kiterrors.WithWorkerID(cl.id))
		}
	}()
	return w.Run(cl.stop)
}

// shutdown broadcasts stop to every worker, then collects outcomes until
// all have reported or the timeout fires, whichever is first.
func (c *Coordinator) shutdown(errs []error) []error {
	c.mu.Lock()
	c.state.Store(int32(StateShuttingDown))
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	cycleID := uuid.NewString()
	logger := c.logger.WithTraceID(cycleID)
	start := time.Now()

	for _, cl := range closers {
		cl.signal()
	}
	logger.StopBroadcast(len(closers), c.config.Timeout)

	result := &ShutdownResult{
		CycleID:    cycleID,
		Registered: len(closers),
		Results:    make([]WorkerResult, 0, len(closers)),
	}

	timer := time.NewTimer(c.config.Timeout)
	defer timer.Stop()

	remaining := len(closers)
collect:
	for remaining > 0 {
		select {
		case o := <-c.results:
			remaining--

			wr := WorkerResult{ID: o.id, Err: o.err}
			if o.at.After(start) {
				wr.Duration = o.at.Sub(start)
			}
			result.Results = append(result.Results, wr)
			if o.err != nil {
				errs = append(errs, &WorkerError{WorkerID: o.id, Err: o.err})
			}

			logger.WorkerExited(o.id, wr.Duration, o.err)
			if c.config.OnProgress != nil {
				c.config.OnProgress(wr)
			}

		case <-timer.C:
			errs = append(errs, &TimeoutError{Remaining: remaining, Timeout: c.config.Timeout})
			result.Stragglers = remaining
			logger.ShutdownTimedOut(remaining, c.config.Timeout)
			break collect
		}
	}
	close(c.collected)

	result.TotalDuration = time.Since(start)
	result.Errors = errs
	c.result = result

	logger.ShutdownComplete(result.TotalDuration, len(errs))
	if c.config.OnComplete != nil {
		c.config.OnComplete(result)
	}

	c.state.Store(int32(StateDone))
	close(c.done)
	return errs
}

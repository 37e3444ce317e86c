package shutdown

import (
	"os"
	"time"

	"github.com/vinayprograms/gracekit/logging"
)

// Worker is implemented by every task registered with a Coordinator.
type Worker interface {
	// ID names the worker in logs and errors. It has no effect on
	// correctness; an empty ID is replaced at registration.
	ID() string

	// Run blocks until stop is closed (or the worker decides to exit on
	// its own), cleans up, and returns. A non-nil error is reported in
	// the aggregated shutdown result.
	Run(stop <-chan struct{}) error
}

// State is the lifecycle position of a Coordinator.
type State int32

const (
	// StateIdle: constructed, signals subscribed, accepting registrations.
	StateIdle State = iota
	// StateWaiting: blocked on the signal trigger.
	StateWaiting
	// StateShuttingDown: stop broadcast sent, collecting outcomes.
	StateShuttingDown
	// StateDone: aggregated result produced. Terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateShuttingDown:
		return "shutting_down"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// WorkerResult contains the outcome of a single worker.
type WorkerResult struct {
	// ID of the worker.
	ID string

	// Duration from the stop broadcast until the outcome arrived.
	// Zero for workers that exited before shutdown began.
	Duration time.Duration

	// Err is the error returned by the worker, if any.
	Err error
}

// ShutdownResult contains the complete result of one shutdown cycle.
type ShutdownResult struct {
	// CycleID identifies the cycle in logs.
	CycleID string

	// Registered is the number of workers the stop broadcast reached.
	Registered int

	// Results for each worker that reported, in arrival order.
	Results []WorkerResult

	// Stragglers is the number of workers that had not reported when
	// the timeout fired.
	Stragglers int

	// TotalDuration of the broadcast-and-collect phase.
	TotalDuration time.Duration

	// Errors is the aggregated list returned by Wait.
	Errors []error
}

// Failed returns true if the cycle produced any error.
func (r *ShutdownResult) Failed() bool {
	return len(r.Errors) > 0
}

// FailedWorkers returns the IDs of workers that reported an error.
func (r *ShutdownResult) FailedWorkers() []string {
	var failed []string
	for _, wr := range r.Results {
		if wr.Err != nil {
			failed = append(failed, wr.ID)
		}
	}
	return failed
}

// Err joins the aggregated errors into one, or returns nil.
func (r *ShutdownResult) Err() error {
	return joinErrors(r.Errors)
}

// Config configures a Coordinator.
type Config struct {
	// Signals that trigger shutdown.
	// Default: DefaultSignals()
	Signals []os.Signal

	// Timeout is the budget for the whole worker cohort, measured from
	// the stop broadcast.
	// Default: 30 seconds
	Timeout time.Duration

	// Logger receives lifecycle events. Nil discards them.
	Logger *logging.Logger

	// Source subscribes to OS signals. Nil uses os/signal.
	Source SignalSource

	// OnRegister is called after each worker is started.
	OnRegister func(id string)

	// OnProgress is called as each worker outcome is collected.
	OnProgress func(result WorkerResult)

	// OnComplete is called once with the final result, before Wait returns.
	OnComplete func(result *ShutdownResult)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Signals: DefaultSignals(),
		Timeout: 30 * time.Second,
	}
}

package shutdown

import (
	"errors"
	"fmt"
	"os"
	"time"

	kiterrors "github.com/vinayprograms/gracekit/errors"
)

// Common errors.
var (
	// ErrAlreadyShutdown indicates Wait was called after the shutdown
	// cycle was consumed.
	ErrAlreadyShutdown error = kiterrors.FromCode(kiterrors.ErrCodeAlreadyShutdown)

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig error = kiterrors.New(kiterrors.ErrCodeInvalidInput, "invalid configuration")

	// ErrSignalChannelClosed indicates the signal trigger closed before
	// any signal arrived.
	ErrSignalChannelClosed = errors.New("signal channel closed unexpectedly")
)

// SignalError reports that the OS signal subscription could not be set up.
// It is only returned by NewCoordinator.
type SignalError struct {
	Signals []os.Signal
	Err     error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("register signals %v: %v", e.Signals, e.Err)
}

func (e *SignalError) Unwrap() error { return e.Err }

// Code implements errors.Coded.
func (e *SignalError) Code() kiterrors.ErrorCode { return kiterrors.ErrCodeSignalRegistration }

// WorkerError reports a worker whose Run returned an error or panicked.
type WorkerError struct {
	WorkerID string
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %s failed to shut down cleanly: %v", e.WorkerID, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// Code implements errors.Coded.
func (e *WorkerError) Code() kiterrors.ErrorCode { return kiterrors.ErrCodeWorkerFailed }

// TimeoutError reports the workers that had not reported when the
// shutdown timeout fired. At most one is produced per cycle and it is
// always the last element of the aggregated list.
type TimeoutError struct {
	Remaining int
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s while waiting for %d workers to close", e.Timeout, e.Remaining)
}

// Code implements errors.Coded.
func (e *TimeoutError) Code() kiterrors.ErrorCode { return kiterrors.ErrCodeTimeout }

// ChannelError reports an internal channel that closed unexpectedly.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Code implements errors.Coded.
func (e *ChannelError) Code() kiterrors.ErrorCode { return kiterrors.ErrCodeChannel }

// Stragglers returns the Remaining count of the TimeoutError in errs,
// or 0 if the cycle did not time out.
func Stragglers(errs []error) int {
	for i := len(errs) - 1; i >= 0; i-- {
		var te *TimeoutError
		if errors.As(errs[i], &te) {
			return te.Remaining
		}
	}
	return 0
}

func joinErrors(errs []error) error {
	return kiterrors.Join(errs...)
}

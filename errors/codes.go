package errors

// ErrorCategory classifies errors by how a caller should react to them.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates a failure tied to one shutdown cycle.
	// Examples: stragglers past the deadline, a cancelled wait.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures that repeat on every attempt.
	// Examples: a worker that fails its cleanup, an invalid signal name.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	// Examples: a closed internal channel, a recovered panic.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for shutdown failure scenarios.
const (
	// Transient errors
	ErrCodeTimeout  ErrorCode = "TIMEOUT"  // Workers did not report before the deadline
	ErrCodeCanceled ErrorCode = "CANCELED" // Wait was cancelled by its context

	// Permanent errors
	ErrCodeWorkerFailed       ErrorCode = "WORKER_FAILED"       // Worker returned an error from Run
	ErrCodeSignalRegistration ErrorCode = "SIGNAL_REGISTRATION" // OS signal subscription failed
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"       // Malformed configuration
	ErrCodeAlreadyShutdown    ErrorCode = "ALREADY_SHUTDOWN"    // Shutdown cycle already consumed

	// Internal errors
	ErrCodeChannel  ErrorCode = "CHANNEL"  // Internal channel closed unexpectedly
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
	ErrCodePanic    ErrorCode = "PANIC"    // Recovered from panic
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeTimeout, ErrCodeCanceled:
		return CategoryTransient

	case ErrCodeWorkerFailed, ErrCodeSignalRegistration, ErrCodeInvalidInput,
		ErrCodeAlreadyShutdown:
		return CategoryPermanent

	case ErrCodeChannel, ErrCodeInternal, ErrCodePanic:
		return CategoryInternal

	default:
		return CategoryInternal
	}
}

var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:            "shutdown timed out",
	ErrCodeCanceled:           "wait canceled",
	ErrCodeWorkerFailed:       "worker failed to shut down cleanly",
	ErrCodeSignalRegistration: "signal registration failed",
	ErrCodeInvalidInput:       "invalid input provided",
	ErrCodeAlreadyShutdown:    "shutdown already initiated",
	ErrCodeChannel:            "internal channel closed",
	ErrCodeInternal:           "internal error",
	ErrCodePanic:              "recovered from panic",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

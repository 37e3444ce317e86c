// Package errors provides the structured error taxonomy used by gracekit.
//
// # Error Categories
//
// Errors are classified into three categories:
//
//   - Transient: tied to one shutdown cycle (stragglers, a cancelled wait)
//   - Permanent: repeat on every attempt (worker cleanup failure, bad config)
//   - Internal: unexpected failures (closed internal channels, panics)
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - TIMEOUT: workers did not report before the shutdown deadline
//   - WORKER_FAILED: a worker returned an error while stopping
//   - SIGNAL_REGISTRATION: the OS signal subscription could not be set up
//   - CHANNEL: an internal channel closed unexpectedly
//   - PANIC: a worker panicked and was recovered
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeInvalidInput, "shutdown timeout must be positive")
//
// Classify an aggregated shutdown result:
//
//	for code, n := range errors.CountByCode(coord.Wait()) {
//	    log.Printf("%s: %d", code, n)
//	}
//
// Code and Category accept any error whose chain contains a value
// implementing Coded, so typed errors defined in other packages classify
// the same way as *Error.
package errors

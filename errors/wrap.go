package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// A coded error keeps its code; context errors map to TIMEOUT or CANCELED;
// anything else becomes INTERNAL.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var kitErr *Error
	if errors.As(err, &kitErr) {
		wrapped := &Error{
			code:      kitErr.code,
			category:  kitErr.category,
			message:   message,
			cause:     err,
			metadata:  kitErr.Metadata(),
			timestamp: kitErr.timestamp,
			workerID:  kitErr.workerID,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if code := Code(err); code != "" {
		return New(code, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// Code extracts the error code from the first coded error in the chain.
// Returns empty string if none is found.
func Code(err error) ErrorCode {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// Category extracts the error category, if available.
// Returns empty string if err carries no code.
func Category(err error) ErrorCategory {
	var kitErr *Error
	if errors.As(err, &kitErr) {
		return kitErr.category
	}
	if code := Code(err); code != "" {
		return code.DefaultCategory()
	}
	return ""
}

// Join combines multiple errors into a single error.
// If all errors are nil, returns nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// CountByCode tallies a list of errors by code. Uncoded errors are
// counted under ErrCodeInternal.
func CountByCode(errs []error) map[ErrorCode]int {
	counts := make(map[ErrorCode]int)
	for _, err := range errs {
		if err == nil {
			continue
		}
		code := Code(err)
		if code == "" {
			code = ErrCodeInternal
		}
		counts[code]++
	}
	return counts
}

// RecoverPanic converts a recovered panic value into a PANIC Error.
// opts are applied after the panic metadata.
func RecoverPanic(recovered interface{}, opts ...Option) *Error {
	if recovered == nil {
		return nil
	}
	var message string
	switch v := recovered.(type) {
	case error:
		message = v.Error()
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", v)
	}
	opts = append([]Option{WithMetadata("panic_value", fmt.Sprintf("%T", recovered))}, opts...)
	return New(ErrCodePanic, message, opts...)
}

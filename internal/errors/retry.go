package errors

import "fmt"

// RetryExhaustedError is returned when every attempt of a retried operation failed.
type RetryExhaustedError struct {
	Op       string
	Attempts int
	Cause    error
}

func (e *RetryExhaustedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: gave up after %d attempts", e.Op, e.Attempts)
	}
	return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Op, e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Cause
}

// NewRetryExhaustedError creates a RetryExhaustedError.
func NewRetryExhaustedError(op string, attempts int, cause error) *RetryExhaustedError {
	return &RetryExhaustedError{Op: op, Attempts: attempts, Cause: cause}
}

package utils

import "errors"

// ErrRetry tells RetryBounded to run another attempt.
var ErrRetry = errors.New("retry")

// ErrRetriesExhausted is returned once the attempt ceiling is reached.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryBounded runs fn up to maxAttempts times. Attempts carry no state
// between each other beyond the attempt counter: fn either returns a value,
// a terminal error, or ErrRetry to draw again.
func RetryBounded[T any](maxAttempts int, fn func(attempt int) (T, error)) (T, error) {
	var zero T

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(attempt)
		if errors.Is(err, ErrRetry) {
			continue
		}

		return v, err
	}

	return zero, ErrRetriesExhausted
}

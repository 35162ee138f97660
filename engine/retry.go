package engine

import (
	"context"
	"time"
)

// RetryPolicy describes an escalating-timeout retry loop with linear
// backoff: attempt N runs under N times the base timeout and is preceded by
// (N-1) times the backoff delay.
type RetryPolicy struct {
	MaxAttempts int
	BaseTimeout time.Duration
	Backoff     time.Duration
}

// Timeout returns the deadline for the given 1-based attempt.
func (p RetryPolicy) Timeout(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.BaseTimeout
}

// Delay returns the pause before the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return time.Duration(attempt-1) * p.Backoff
}

// Do invokes fn with escalating timeouts until it reports success, the
// attempt budget is exhausted, or ctx is cancelled. Reports whether any
// attempt succeeded.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int, timeout time.Duration) bool) bool {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if delay := p.Delay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return false
		}
		if fn(attempt, p.Timeout(attempt)) {
			return true
		}
	}
	return false
}

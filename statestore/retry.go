package statestore

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is the number of write attempts made by
	// SaveWithRetry when RetryPolicy.MaxAttempts is not set
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the sleep after the first failed attempt,
	// doubled after each subsequent one
	DefaultBaseDelay = 100 * time.Millisecond
)

// RetryPolicy says how SaveWithRetry behaves. The zero value means
// DefaultMaxAttempts attempts with DefaultBaseDelay doubling backoff
// and real time.Sleep delays.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep is swappable so tests don't burn real time
	Sleep func(d time.Duration)
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (p RetryPolicy) baseDelay() time.Duration {
	if p.BaseDelay > 0 {
		return p.BaseDelay
	}
	return DefaultBaseDelay
}

func (p RetryPolicy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// SaveWithRetry is Write with bounded retries and exponential backoff,
// for riding out transient failures like momentary locks. It blocks
// the caller for the backoff delays, so don't use it on a
// latency-sensitive path. Returns nil on the first success, or the
// last error once attempts are exhausted.
func (s *Store) SaveWithRetry(name string, doc Doc) error {
	p := s.Retry
	n := p.maxAttempts()
	delay := p.baseDelay()

	var lastErr error
	for attempt := 1; attempt <= n; attempt++ {
		lastErr = s.Write(name, doc)
		if lastErr == nil {
			return nil
		}
		if attempt < n {
			s.logf("statestore: save %s attempt %d/%d failed (%s), retrying in %s\n",
				name, attempt, n, lastErr, delay)
			p.sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("save %s: gave up after %d attempts: %w", name, n, lastErr)
}

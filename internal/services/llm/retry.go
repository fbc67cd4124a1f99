package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// retryPolicy runs an operation up to attempts times with a fixed delay
// between failures.
type retryPolicy struct {
	attempts int
	delay    time.Duration
	sleeper  func(time.Duration)
}

func (p retryPolicy) maxAttempts() int {
	if p.attempts <= 0 {
		return 1
	}
	return p.attempts
}

func (p retryPolicy) run(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	attempts := p.maxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := fn(ctx)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return "", err
		}
		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return "", err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx == nil || ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (p retryPolicy) sleep(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(p.delay)
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay before retrying after the given attempt,
	// counted from zero
	NextDelay(attempt int) time.Duration
	// Reset resets the backoff strategy to initial state
	Reset()
}

// ExponentialBackoff implements exponential backoff with jitter
type ExponentialBackoff struct {
	// BaseDelay is the delay of the first retry
	BaseDelay time.Duration
	// MaxDelay caps the computed delay
	MaxDelay time.Duration
	// Base is the exponential growth factor
	Base float64
	// JitterFraction adds bounded randomness to the delay (0.0 to 1.0)
	JitterFraction float64
}

// DefaultExponentialBackoff returns the backoff used for remote API retries:
// 5s, 10s, 20s, ... capped at 5 minutes with ±30% jitter.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:      5 * time.Second,
		MaxDelay:       300 * time.Second,
		Base:           2.0,
		JitterFraction: 0.3,
	}
}

// NextDelay calculates the delay for the given zero-based attempt index.
// Jitter is applied before the cap, and the result is clamped to zero so a
// defective configuration can never produce a negative wait.
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(eb.BaseDelay) * math.Pow(eb.Base, float64(attempt))

	if eb.JitterFraction > 0 {
		jitter := (rand.Float64()*2 - 1) * eb.JitterFraction
		delay *= 1 + jitter
	}

	if delay > float64(eb.MaxDelay) {
		delay = float64(eb.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Reset resets the backoff to initial state
func (eb *ExponentialBackoff) Reset() {}

// ConstantBackoff implements constant delay backoff
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if cb.Delay < 0 {
		return 0
	}
	return cb.Delay
}

// Reset resets the backoff (no-op for constant backoff)
func (cb *ConstantBackoff) Reset() {}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

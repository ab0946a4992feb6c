package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "scanagram/pkg/errors"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       1 * time.Second,
		Base:           2.0,
		JitterFraction: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{0, 100 * time.Millisecond, "First attempt"},
		{1, 200 * time.Millisecond, "Second attempt"},
		{2, 400 * time.Millisecond, "Third attempt"},
		{3, 800 * time.Millisecond, "Fourth attempt"},
		{4, 1 * time.Second, "Fifth attempt (capped at max)"},
		{10, 1 * time.Second, "Large attempt (still capped)"},
		{-1, 100 * time.Millisecond, "Negative attempt clamped to first"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("Expected delay %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestExponentialBackoffMonotonicGrowth(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:      5 * time.Second,
		MaxDelay:       300 * time.Second,
		Base:           2.0,
		JitterFraction: 0.0,
	}

	if !(backoff.NextDelay(0) < backoff.NextDelay(1) && backoff.NextDelay(1) < backoff.NextDelay(2)) {
		t.Error("Expected delays to grow monotonically without jitter")
	}
}

func TestExponentialBackoffWithJitter(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	delays := make(map[time.Duration]bool)
	for i := 0; i < 10; i++ {
		delay := backoff.NextDelay(1)
		delays[delay] = true

		min := time.Duration(float64(10*time.Second) * 0.7)
		max := time.Duration(float64(10*time.Second) * 1.3)
		if delay < min || delay > max {
			t.Errorf("Expected jittered delay in [%v, %v], got %v", min, max, delay)
		}
	}

	// With jitter, we should get different delays
	if len(delays) < 2 {
		t.Error("Expected multiple different delays with jitter, but got consistent delays")
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustion(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("Expected error when max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", attempts)
	}
	if !IsExhausted(err) {
		t.Errorf("Expected exhaustion error, got: %v", err)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatal("Expected ExhaustedError")
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Expected 3 attempts reported, got %d", exhausted.Attempts)
	}
	if exhausted.Err == nil || exhausted.Err.Error() != "persistent error" {
		t.Errorf("Expected last error to be preserved, got %v", exhausted.Err)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	authError := &errs.Error{
		Type:    errs.ErrorTypeAuth,
		Message: "authentication required",
		Code:    401,
	}

	op := func() error {
		attempts++
		return authError
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	start := time.Now()
	err := Do(op, cfg)
	elapsed := time.Since(start)

	if !errors.Is(err, authError) {
		t.Errorf("Expected auth error, got: %v", err)
	}
	if IsExhausted(err) {
		t.Error("Expected non-retryable failure not to be reported as exhaustion")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for auth error), got %d", attempts)
	}
	if elapsed >= 10*time.Second {
		t.Error("Expected no backoff sleep before a non-retryable error propagates")
	}
}

func TestNonRetryableClassifications(t *testing.T) {
	tests := []struct {
		name      string
		errorType errs.ErrorType
	}{
		{"not found", errs.ErrorTypeNotFound},
		{"private profile", errs.ErrorTypePrivate},
		{"auth", errs.ErrorTypeAuth},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			attempts := 0
			op := func() error {
				attempts++
				return &errs.Error{Type: test.errorType, Message: test.name, Code: 400}
			}

			err := Do(op, &Config{
				MaxAttempts: 3,
				Backoff:     &ConstantBackoff{Delay: time.Millisecond},
				RetryIf:     DefaultRetryIf,
				Context:     context.Background(),
			})

			if err == nil || attempts != 1 {
				t.Errorf("Expected single failing attempt, got %d attempts, err %v", attempts, err)
			}
		})
	}
}

func TestDefaultRetryIfTreatsUnclassifiedAsTransient(t *testing.T) {
	if !DefaultRetryIf(errors.New("something broke")) {
		t.Error("Expected unclassified errors to be retryable")
	}
	if DefaultRetryIf(context.Canceled) {
		t.Error("Expected context cancellation not to be retryable")
	}
	if DefaultRetryIf(nil) {
		t.Error("Expected nil error not to be retryable")
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	op := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 100 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when context cancelled")
	}
	if attempts > 3 {
		t.Errorf("Expected at most 3 attempts before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("transient")
		}
		return "profile-data", nil
	}

	result, err := DoWithResult(op, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	})

	if err != nil {
		t.Errorf("Expected success, got %v", err)
	}
	if result != "profile-data" {
		t.Errorf("Expected result to be returned, got %q", result)
	}
}

func TestRetrierBuilders(t *testing.T) {
	base := NewRetrier(&Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	})

	r := base.WithMaxAttempts(5).WithBackoff(&ConstantBackoff{Delay: 2 * time.Millisecond})
	if r.Config().MaxAttempts != 5 {
		t.Errorf("Expected derived retrier with 5 attempts, got %d", r.Config().MaxAttempts)
	}
	if base.Config().MaxAttempts != 3 {
		t.Error("Expected original retrier to be unchanged")
	}
}

func TestWaitRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Second); err == nil {
		t.Error("Expected Wait to fail on cancelled context")
	}
	if err := Wait(ctx, 0); err != nil {
		t.Errorf("Expected zero delay to succeed regardless of context, got %v", err)
	}
}

func TestParsingErrorsAreRetried(t *testing.T) {
	parseError := &errs.Error{
		Type:    errs.ErrorTypeParsing,
		Message: "failed to parse response",
		Code:    200,
	}

	if !DefaultRetryIf(parseError) {
		t.Fatal("Expected parsing errors to be classified as transient")
	}

	// A malformed body (e.g. an interstitial challenge page) can resolve
	// on a later attempt, so the operation must be reinvoked.
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 2 {
			return parseError
		}
		return nil
	}

	err := Do(op, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	})

	if err != nil {
		t.Errorf("Expected success after retry, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

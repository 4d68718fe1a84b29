package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultActivityRetryPolicy(t *testing.T) {
	t.Parallel()
	policy := DefaultActivityRetryPolicy()

	if policy.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts 3, got %d", policy.MaxAttempts)
	}
	if policy.InitialDelay != 1*time.Second {
		t.Errorf("expected InitialDelay 1s, got %v", policy.InitialDelay)
	}
	if policy.BackoffStrategy != BackoffExponential {
		t.Errorf("expected BackoffExponential, got %v", policy.BackoffStrategy)
	}
}

func TestNoActivityRetryPolicy(t *testing.T) {
	t.Parallel()
	policy := NoActivityRetryPolicy()

	if policy.MaxAttempts != 1 {
		t.Errorf("expected MaxAttempts 1, got %d", policy.MaxAttempts)
	}
}

func TestActivityRetryPolicy_ShouldRetry_Default(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "plain error defaults retryable", err: errors.New("boom"), expected: true},
		{name: "context canceled is terminal", err: context.Canceled, expected: false},
		{name: "deadline exceeded is terminal", err: context.DeadlineExceeded, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			policy := &ActivityRetryPolicy{}
			if got := policy.shouldRetry(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestActivityRetryPolicy_ShouldRetry_Override(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{
		ShouldRetry: func(err error) bool {
			return err.Error() == "retry me"
		},
	}

	if !policy.shouldRetry(errors.New("retry me")) {
		t.Error("expected override to allow retry")
	}
	if policy.shouldRetry(errors.New("not this one")) {
		t.Error("expected override to reject retry")
	}
}

func TestActivityRetryPolicy_GetDelay_Constant(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        1 * time.Second,
		BackoffStrategy: BackoffConstant,
	}

	for _, attempt := range []int{1, 2, 3, 10} {
		if got := policy.GetDelay(attempt); got != 100*time.Millisecond {
			t.Errorf("attempt %d: expected 100ms, got %v", attempt, got)
		}
	}
}

func TestActivityRetryPolicy_GetDelay_Linear(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        1 * time.Second,
		BackoffStrategy: BackoffLinear,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{5, 500 * time.Millisecond},
		{10, 1 * time.Second},
		{20, 1 * time.Second},
	}
	for _, tt := range tests {
		if got := policy.GetDelay(tt.attempt); got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestActivityRetryPolicy_GetDelay_Exponential(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffStrategy: BackoffExponential,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1600 * time.Millisecond},
		{6, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := policy.GetDelay(tt.attempt); got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestActivityRetryPolicy_GetDelay_ZeroAttempt(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{InitialDelay: 100 * time.Millisecond, BackoffStrategy: BackoffExponential}
	if got := policy.GetDelay(0); got != 0 {
		t.Errorf("expected 0 delay for attempt 0, got %v", got)
	}
}

func TestActivityRetryPolicy_Execute_Success(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	err := policy.Execute(context.Background(), func() error {
		attempts++
		return nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestActivityRetryPolicy_Execute_SuccessAfterRetry(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	err := policy.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestActivityRetryPolicy_Execute_MaxAttemptsExceeded(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	err := policy.Execute(context.Background(), func() error {
		attempts++
		return errors.New("persistent error")
	})
	if err == nil {
		t.Error("expected error after max attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestActivityRetryPolicy_Execute_ShouldRetryRejects(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    10 * time.Millisecond,
		BackoffStrategy: BackoffConstant,
		ShouldRetry:     func(err error) bool { return false },
	}

	attempts := 0
	err := policy.Execute(context.Background(), func() error {
		attempts++
		return errors.New("non-retryable")
	})
	if err == nil {
		t.Error("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt (ShouldRetry rejected), got %d", attempts)
	}
}

func TestActivityRetryPolicy_Execute_ContextCancellation(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{MaxAttempts: 5, InitialDelay: 50 * time.Millisecond, BackoffStrategy: BackoffConstant}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := policy.Execute(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	if err == nil {
		t.Error("expected error due to context cancellation")
	}
	if attempts >= 5 {
		t.Errorf("expected fewer than 5 attempts due to cancellation, got %d", attempts)
	}
}

func TestActivityRetryPolicy_Execute_OnRetryCallback(t *testing.T) {
	t.Parallel()
	callbackCalls := 0
	policy := &ActivityRetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    10 * time.Millisecond,
		BackoffStrategy: BackoffConstant,
		OnRetry: func(attempt int, err error) {
			callbackCalls++
			if attempt < 1 || attempt > 2 {
				t.Errorf("unexpected attempt number in callback: %d", attempt)
			}
		},
	}

	attempts := 0
	_ = policy.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("error")
		}
		return nil
	})

	if callbackCalls != 2 {
		t.Errorf("expected 2 callback calls, got %d", callbackCalls)
	}
}

func TestActivityRetryPolicy_Execute_ZeroMaxAttempts(t *testing.T) {
	t.Parallel()
	policy := &ActivityRetryPolicy{MaxAttempts: 0, InitialDelay: 10 * time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	_ = policy.Execute(context.Background(), func() error {
		attempts++
		return nil
	})
	if attempts != 1 {
		t.Errorf("expected 1 attempt with MaxAttempts=0, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "regular error", err: errors.New("some error"), expected: true},
		{name: "context cancelled", err: context.Canceled, expected: false},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

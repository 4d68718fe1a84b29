package gateway

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/worldforge/worldforge/pkg/engine"
)

// callRetryPolicy bounds a single gRPC call's retries, grounded on
// pkg/engine/retry_policy.go's ActivityRetryPolicy but tuned to the
// transport-level retry class (§7 class 1: transient network / remote 5xx).
func callRetryPolicy() *engine.ActivityRetryPolicy {
	return &engine.ActivityRetryPolicy{
		MaxAttempts:     4,
		InitialDelay:    1 * time.Second,
		MaxDelay:        10 * time.Second,
		BackoffStrategy: engine.BackoffExponential,
	}
}

// withBreakerAndRetry runs fn through the named circuit breaker and a
// bounded retry policy, matching spec.md §4.2's "each request passes
// through a circuit breaker and bounded-retry wrapper".
func withBreakerAndRetry(ctx context.Context, breaker *gobreaker.CircuitBreaker, fn func() error) error {
	policy := callRetryPolicy()
	return policy.Execute(ctx, func() error {
		_, err := breaker.Execute(func() (any, error) {
			return nil, fn()
		})
		return err
	})
}

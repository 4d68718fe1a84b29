package worldflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/pkg/engine"
)

func testRetryPolicy() *engine.ActivityRetryPolicy {
	return &engine.ActivityRetryPolicy{
		MaxAttempts:     4,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffStrategy: engine.BackoffExponential,
	}
}

func TestRunActivityWithRetry_TransientRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	result, err := runActivityWithRetryUsing(context.Background(), testRetryPolicy(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", workflowerr.New(workflowerr.Transient, errors.New("connection reset"))
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}

func TestRunActivityWithRetry_ValidationCapsAtThreeAttempts(t *testing.T) {
	attempts := 0
	_, err := runActivityWithRetryUsing(context.Background(), testRetryPolicy(), func(ctx context.Context) (string, error) {
		attempts++
		return "", workflowerr.Newf(workflowerr.Validation, "schema mismatch")
	})
	assert.Error(t, err)
	assert.Equal(t, maxValidationAttempts, attempts)
}

func TestRunActivityWithRetry_PreconditionIsTerminal(t *testing.T) {
	attempts := 0
	_, err := runActivityWithRetryUsing(context.Background(), testRetryPolicy(), func(ctx context.Context) (string, error) {
		attempts++
		return "", workflowerr.New(workflowerr.Precondition, errors.New("unknown world id"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRunActivityWithRetry_CapacityExhaustedIsTerminal(t *testing.T) {
	attempts := 0
	_, err := runActivityWithRetryUsing(context.Background(), testRetryPolicy(), func(ctx context.Context) (string, error) {
		attempts++
		return "", workflowerr.New(workflowerr.CapacityExhausted, errors.New("recursion depth cap"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRunActivityWithRetry_RateLimitedIsTerminalHere(t *testing.T) {
	// RateLimited (a provider's 429) is not retried by the activity retry
	// loop: the first failure ends the activity.
	attempts := 0
	_, err := runActivityWithRetryUsing(context.Background(), testRetryPolicy(), func(ctx context.Context) (string, error) {
		attempts++
		return "", workflowerr.New(workflowerr.RateLimited, errors.New("breaker open"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

// Package worldflow implements the nine world-generation workflow kinds
// (C7 domain layer) on top of pkg/engine's generic scheduler primitives.
package worldflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/pkg/engine"
)

// activityRetryPolicy sets the timing for runActivityWithRetry: spec.md
// §4.7's "initial 1-5s, exponential backoff, max attempts 2-5". The class-
// aware decision of whether to retry at all lives in runActivityWithRetry,
// not here.
func activityRetryPolicy() *engine.ActivityRetryPolicy {
	return &engine.ActivityRetryPolicy{
		MaxAttempts:     4,
		InitialDelay:    2 * time.Second,
		MaxDelay:        20 * time.Second,
		BackoffStrategy: engine.BackoffExponential,
	}
}

// JournalEntry is one durable record of a completed activity's result,
// generalized from the teacher's per-wave ExecutionCheckpoint
// (internal/application/engine/execution_checkpoint.go) to per-activity
// granularity: replaying a workflow function re-invokes the same sequence
// of RunActivity calls and must receive the same results back instead of
// re-invoking the LLM/image API.
type JournalEntry struct {
	InstanceID   string    `json:"instance_id"`
	SequenceNo   int       `json:"sequence_no"`
	ActivityName string    `json:"activity_name"`
	ResultJSON   []byte    `json:"result_json"`
	CreatedAt    time.Time `json:"created_at"`
}

// JournalStore persists journal entries keyed by (instance_id, sequence_no),
// implemented by internal/infrastructure/storage against the document
// store.
type JournalStore interface {
	Get(ctx context.Context, instanceID string, seq int) (*JournalEntry, bool, error)
	Put(ctx context.Context, entry JournalEntry) error
}

// Journal drives one workflow instance's deterministic replay: each call to
// RunActivity advances the instance's sequence counter by one, regardless
// of whether the call is a fresh execution or a cache hit from a prior run
// — this is what keeps replay order stable across crashes.
type Journal struct {
	store      JournalStore
	instanceID string

	mu  sync.Mutex
	seq int
}

// NewJournal creates a Journal for one workflow instance (task id).
func NewJournal(store JournalStore, instanceID string) *Journal {
	return &Journal{store: store, instanceID: instanceID}
}

func (j *Journal) nextSeq() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	seq := j.seq
	j.seq++
	return seq
}

// RunActivity executes fn, retrying under runActivityWithRetry, at most
// once per (instance, sequence) pair as far as the journal is concerned:
// every attempt of a live call happens before the journal records anything,
// so a crash mid-retry simply re-enters the retry loop from attempt one on
// the next run. On replay, a prior result is returned from the journal
// without invoking fn again; workflow code must never branch on whether a
// given call replayed or ran live, or on how many attempts a live call took.
func RunActivity[T any](ctx context.Context, j *Journal, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	seq := j.nextSeq()

	entry, found, err := j.store.Get(ctx, j.instanceID, seq)
	if err != nil {
		return zero, fmt.Errorf("journal lookup for %s#%d: %w", name, seq, err)
	}
	if found {
		var out T
		if err := json.Unmarshal(entry.ResultJSON, &out); err != nil {
			return zero, fmt.Errorf("journal decode for %s#%d: %w", name, seq, err)
		}
		return out, nil
	}

	result, err := runActivityWithRetry(ctx, fn)
	if err != nil {
		return zero, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return zero, fmt.Errorf("journal encode for %s#%d: %w", name, seq, err)
	}

	if err := j.store.Put(ctx, JournalEntry{
		InstanceID:   j.instanceID,
		SequenceNo:   seq,
		ActivityName: name,
		ResultJSON:   data,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return zero, fmt.Errorf("journal write for %s#%d: %w", name, seq, err)
	}

	return result, nil
}

// maxValidationAttempts caps JSON/schema validation failures at the
// initial attempt plus two retries (spec.md §7 class 3), tighter than the
// transient-error cap since a malformed LLM response either self-corrects
// on a quick retry or needs a different prompt, not more waiting.
const maxValidationAttempts = 3

// runActivityWithRetry executes fn under activityRetryPolicy, branching on
// workflowerr.ClassOf(err): Transient errors (including unclassified ones,
// which ClassOf reports as Transient) retry up to the policy's MaxAttempts,
// Validation errors retry up to maxValidationAttempts, and every other
// class (RateLimited, Precondition, CapacityExhausted) is terminal on the
// first failure.
func runActivityWithRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return runActivityWithRetryUsing(ctx, activityRetryPolicy(), fn)
}

// runActivityWithRetryUsing is runActivityWithRetry parameterized on the
// base policy, split out so tests can swap in short delays instead of
// waiting out activityRetryPolicy's production timing.
func runActivityWithRetryUsing[T any](ctx context.Context, base *engine.ActivityRetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero, result T
	validationAttempts := 0

	policy := &engine.ActivityRetryPolicy{
		MaxAttempts:     base.MaxAttempts,
		InitialDelay:    base.InitialDelay,
		MaxDelay:        base.MaxDelay,
		BackoffStrategy: base.BackoffStrategy,
		ShouldRetry: func(err error) bool {
			switch workflowerr.ClassOf(err) {
			case workflowerr.Transient:
				return true
			case workflowerr.Validation:
				validationAttempts++
				return validationAttempts < maxValidationAttempts
			default:
				return false
			}
		},
	}

	err := policy.Execute(ctx, func() error {
		r, err := fn(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}

// RunVoidActivity is RunActivity for activities with no result to persist
// beyond "it happened" — the fact of completion is still journaled so a
// replay doesn't repeat a side effect like a ledger write or a spawn.
func RunVoidActivity(ctx context.Context, j *Journal, name string, fn func(context.Context) error) error {
	_, err := RunActivity[struct{}](ctx, j, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

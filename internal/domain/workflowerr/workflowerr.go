// Package workflowerr classifies activity failures into the five classes
// the orchestrator's retry policy and stage-failure logic key off of.
package workflowerr

import (
	"errors"
	"fmt"
)

// Class is one of the five error classes an activity failure can carry.
type Class string

const (
	// Transient covers network errors, remote 5xx responses and timeouts.
	// Retried with exponential backoff inside the activity.
	Transient Class = "transient"
	// RateLimited covers provider rate limiting and open circuit breakers.
	// Not retried locally; the outer retry policy may try later.
	RateLimited Class = "rate_limited"
	// Validation covers JSON parse failures, schema mismatches and missing
	// response fields. Retried a small, fixed number of times because model
	// non-determinism often passes on retry.
	Validation Class = "validation"
	// Precondition covers missing world parameters, unknown task types and
	// unknown schema names. Never retried; propagated as workflow failure.
	Precondition Class = "precondition"
	// CapacityExhausted covers recursion depth caps and zero-item LLM
	// responses. Not an error in the ordinary sense: callers should treat it
	// as a successful diagnostic result.
	CapacityExhausted Class = "capacity_exhausted"
)

// Classified wraps an error with its class so the retry policy and stage
// logic can branch on it without string-matching the message.
type Classified struct {
	class Class
	err   error
}

// New returns a Classified error of the given class wrapping err.
func New(class Class, err error) *Classified {
	return &Classified{class: class, err: err}
}

// Newf builds a Classified error from a format string, mirroring fmt.Errorf.
func Newf(class Class, format string, args ...any) *Classified {
	return &Classified{class: class, err: fmt.Errorf(format, args...)}
}

func (c *Classified) Error() string {
	if c.err == nil {
		return string(c.class)
	}
	return fmt.Sprintf("%s: %s", c.class, c.err.Error())
}

// Unwrap makes Classified compatible with errors.Is/errors.As.
func (c *Classified) Unwrap() error { return c.err }

// Class returns the error's class.
func (c *Classified) Class() Class { return c.class }

// ClassOf extracts the class of err, defaulting to Transient when err is not
// a Classified error (unknown errors are assumed retryable, matching the
// teacher's IsRetryableError default).
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var c *Classified
	if errors.As(err, &c) {
		return c.Class()
	}
	return Transient
}

// Retryable reports whether the activity's retry policy should attempt err
// again. Only Transient and Validation classes are retried automatically;
// RateLimited, Precondition and CapacityExhausted are not.
func Retryable(err error) bool {
	switch ClassOf(err) {
	case Transient, Validation:
		return true
	default:
		return false
	}
}

// IsDiagnostic reports whether err represents a capacity-exhaustion
// diagnostic rather than a true failure — callers should surface it as a
// successful result carrying an explanatory message, not fail the workflow.
func IsDiagnostic(err error) bool {
	return ClassOf(err) == CapacityExhausted
}

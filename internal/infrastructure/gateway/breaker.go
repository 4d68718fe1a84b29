package gateway

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// breakerRegistry hands out one circuit breaker per logical service name
// (e.g. "character_service", "llm_content"), three states, thresholds per
// spec.md §5: failure threshold 3-5, recovery timeout 30-60s, half-open
// success threshold 2.
type breakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	log      *logger.Logger
}

func newBreakerRegistry(log *logger.Logger) *breakerRegistry {
	return &breakerRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker), log: log}
}

func (r *breakerRegistry) get(name string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2, // half-open success threshold
		Interval:    60 * time.Second,
		Timeout:     45 * time.Second, // recovery timeout
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn("circuit breaker state change", "service", name, "from", from.String(), "to", to.String())
		},
	})
	r.breakers[name] = b
	return b
}

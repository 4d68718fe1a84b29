// Package registry implements the service-discovery half of C2: resolving
// a logical service name to a network address through a Consul-style HTTP
// health endpoint, cached for a fixed TTL both in-process and (optionally)
// in Redis for cross-process sharing.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/worldforge/worldforge/internal/infrastructure/cache"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// healthyInstance is one entry of the Consul health-check response this
// client understands.
type healthyInstance struct {
	Service struct {
		Address string `json:"Address"`
		Port    int    `json:"Port"`
	} `json:"Service"`
}

type cacheEntry struct {
	addr      string
	expiresAt time.Time
}

// Resolver resolves logical service names (e.g. "character-service") to
// "host:port" addresses, TTL-caching results for 30s (spec.md §4.2).
type Resolver struct {
	consulHost string
	consulPort int
	ttl        time.Duration
	http       *http.Client
	redis      *cache.RedisCache // optional, may be nil
	log        *logger.Logger

	mu    sync.Mutex
	local map[string]cacheEntry
}

// New builds a Resolver. redisCache may be nil, in which case only the
// in-process cache is used.
func New(consulHost string, consulPort int, ttl time.Duration, redisCache *cache.RedisCache, log *logger.Logger) *Resolver {
	return &Resolver{
		consulHost: consulHost,
		consulPort: consulPort,
		ttl:        ttl,
		http:       &http.Client{Timeout: 5 * time.Second},
		redis:      redisCache,
		log:        log,
		local:      make(map[string]cacheEntry),
	}
}

// Resolve returns "host:port" for the logical service name. On any
// resolution failure it falls back to "{name}:50051" and logs a warning,
// matching spec.md §4.2/§6.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	if addr, ok := r.fromLocalCache(name); ok {
		return addr
	}
	if r.redis != nil {
		if addr, err := r.redis.Get(ctx, r.redisKey(name)); err == nil && addr != "" {
			r.storeLocal(name, addr)
			return addr
		}
	}

	addr, err := r.resolveFromConsul(ctx, name)
	if err != nil {
		r.log.Warn("service resolution failed, falling back to DNS name", "service", name, "error", err)
		return fmt.Sprintf("%s:50051", name)
	}

	r.storeLocal(name, addr)
	if r.redis != nil {
		_ = r.redis.Set(ctx, r.redisKey(name), addr, r.ttl)
	}
	return addr
}

func (r *Resolver) redisKey(name string) string {
	return "worldforge:registry:" + name
}

func (r *Resolver) fromLocalCache(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.local[name]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.addr, true
}

func (r *Resolver) storeLocal(name, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[name] = cacheEntry{addr: addr, expiresAt: time.Now().Add(r.ttl)}
}

func (r *Resolver) resolveFromConsul(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("http://%s:%d/v1/health/service/%s?passing=true", r.consulHost, r.consulPort, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build registry request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var instances []healthyInstance
	if err := json.NewDecoder(resp.Body).Decode(&instances); err != nil {
		return "", fmt.Errorf("decode registry response: %w", err)
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("no healthy instances for %q", name)
	}

	first := instances[0]
	return fmt.Sprintf("%s:%d", first.Service.Address, first.Service.Port), nil
}

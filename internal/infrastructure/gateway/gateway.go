// Package gateway implements the Service Gateway Client (C2): one struct per
// downstream domain service, each resolving its address via the registry,
// dialing a pooled gRPC channel, and wrapping every call with a circuit
// breaker and bounded retry.
package gateway

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
	"github.com/worldforge/worldforge/internal/infrastructure/registry"
)

// service bundles what every downstream client needs: a resolver to find the
// current address, the pool to dial and gate the call, and a breaker keyed
// by the service's logical name.
type service struct {
	name     string
	resolver *registry.Resolver
	pool     *pool.Pool
	breakers *breakerRegistry
	log      *logger.Logger
}

func newService(name string, resolver *registry.Resolver, p *pool.Pool, breakers *breakerRegistry, log *logger.Logger) *service {
	return &service{name: name, resolver: resolver, pool: p, breakers: breakers, log: log}
}

// conn resolves the service's current address and returns its pooled
// channel.
func (s *service) conn(ctx context.Context) (*grpc.ClientConn, error) {
	addr := s.resolver.Resolve(ctx, s.name)
	return s.pool.GRPCConn(addr)
}

// invoke performs one gRPC call, gated by the gRPC permit of C1 and wrapped
// with the service's circuit breaker and bounded retry.
func (s *service) invoke(ctx context.Context, method string, req, reply any) error {
	if err := s.pool.AcquireGRPC(ctx); err != nil {
		return fmt.Errorf("acquire grpc permit: %w", err)
	}
	defer s.pool.ReleaseGRPC()

	cc, err := s.conn(ctx)
	if err != nil {
		return err
	}

	breaker := s.breakers.get(s.name)
	return withBreakerAndRetry(ctx, breaker, func() error {
		return cc.Invoke(ctx, method, req, reply, grpc.CallContentSubtype(jsonCodec{}.Name()))
	})
}

// Clients bundles the four downstream service clients, constructed once
// from the pool and registry resolver.
type Clients struct {
	World     *WorldClient
	Character *CharacterClient
	Post      *PostClient
	Media     *MediaClient
}

// NewClients builds the four domain service clients sharing one breaker
// registry.
func NewClients(p *pool.Pool, resolver *registry.Resolver, log *logger.Logger) *Clients {
	breakers := newBreakerRegistry(log)
	return &Clients{
		World:     &WorldClient{svc: newService("world-service", resolver, p, breakers, log)},
		Character: &CharacterClient{svc: newService("character-service", resolver, p, breakers, log)},
		Post:      &PostClient{svc: newService("post-service", resolver, p, breakers, log)},
		Media:     &MediaClient{svc: newService("media-service", resolver, p, breakers, log)},
	}
}

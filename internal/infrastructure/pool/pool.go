// Package pool implements the Resource Pool (C1): a process-wide singleton
// created once at worker start and torn down on shutdown, owning every
// shared client the rest of the system builds on top of.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/worldforge/worldforge/internal/config"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// Pool is the Resource Pool (C1). Clients (C2-C4) are constructed on top of
// it and share its connections; the pool never references them back
// (spec.md §9 "cyclic resource ownership").
type Pool struct {
	DB   *bun.DB
	HTTP *http.Client

	LLMPermit  *semaphore.Weighted
	ImagePermit *semaphore.Weighted
	GRPCPermit *semaphore.Weighted
	DBPermit   *semaphore.Weighted

	Schemas *SchemaRegistry

	mu       sync.Mutex
	grpcConns map[string]*grpc.ClientConn
	log      *logger.Logger
}

// New builds the Resource Pool from configuration. The document store
// connection pool is bounded by 2x the DB concurrency permit, matching
// spec.md §4.1.
func New(cfg *config.Config, log *logger.Logger) (*Pool, error) {
	pgConn := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.URL))
	sqlDB := sql.OpenDB(pgConn)
	sqlDB.SetMaxOpenConns(int(cfg.Pool.MaxConcurrentDBOperations) * 2)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConnections)
	sqlDB.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)

	db := bun.NewDB(sqlDB, pgdialect.New())

	return &Pool{
		DB: db,
		HTTP: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		LLMPermit:   semaphore.NewWeighted(cfg.Pool.MaxConcurrentLLMRequests),
		ImagePermit: semaphore.NewWeighted(cfg.Pool.MaxConcurrentImageRequests),
		GRPCPermit:  semaphore.NewWeighted(cfg.Pool.MaxConcurrentGRPCCalls),
		DBPermit:    semaphore.NewWeighted(cfg.Pool.MaxConcurrentDBOperations),
		Schemas:     NewSchemaRegistry(),
		grpcConns:   make(map[string]*grpc.ClientConn),
		log:         log,
	}, nil
}

// GRPCConn lazily dials (and caches) a multiplexed gRPC channel to addr,
// matching the teacher's lazy bun.DB/redis construction idiom.
func (p *Pool) GRPCConn(addr string) (*grpc.ClientConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.grpcConns[addr]; ok {
		return conn, nil
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                20 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial grpc %s: %w", addr, err)
	}
	p.grpcConns[addr] = conn
	return conn, nil
}

// Close shuts down the pool in dependency order: HTTP (idle connections),
// then gRPC channels, then the DB client (spec.md §4.1/§9).
func (p *Pool) Close() error {
	p.HTTP.CloseIdleConnections()

	p.mu.Lock()
	conns := make([]*grpc.ClientConn, 0, len(p.grpcConns))
	for _, c := range p.grpcConns {
		conns = append(conns, c)
	}
	p.grpcConns = make(map[string]*grpc.ClientConn)
	p.mu.Unlock()

	for _, c := range conns {
		if err := c.Close(); err != nil {
			p.log.Warn("failed to close grpc connection", "error", err)
		}
	}

	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}

// AcquireLLM blocks until an LLM permit is available or ctx is done.
func (p *Pool) AcquireLLM(ctx context.Context) error { return p.LLMPermit.Acquire(ctx, 1) }

// ReleaseLLM releases a previously-acquired LLM permit.
func (p *Pool) ReleaseLLM() { p.LLMPermit.Release(1) }

// AcquireImage blocks until an image permit is available or ctx is done.
func (p *Pool) AcquireImage(ctx context.Context) error { return p.ImagePermit.Acquire(ctx, 1) }

// ReleaseImage releases a previously-acquired image permit.
func (p *Pool) ReleaseImage() { p.ImagePermit.Release(1) }

// AcquireGRPC blocks until a gRPC permit is available or ctx is done.
func (p *Pool) AcquireGRPC(ctx context.Context) error { return p.GRPCPermit.Acquire(ctx, 1) }

// ReleaseGRPC releases a previously-acquired gRPC permit.
func (p *Pool) ReleaseGRPC() { p.GRPCPermit.Release(1) }

// AcquireDB blocks until a DB permit is available or ctx is done.
func (p *Pool) AcquireDB(ctx context.Context) error { return p.DBPermit.Acquire(ctx, 1) }

// ReleaseDB releases a previously-acquired DB permit.
func (p *Pool) ReleaseDB() { p.DBPermit.Release(1) }

package storage

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Config is the standalone DB connection configuration for tools (cmd/migrate)
// that need a *bun.DB without building the full Resource Pool. The server
// binary builds its connection through pool.New instead, which applies the
// same pgdriver/bun wiring under the document store's concurrency permits.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	Debug           bool
}

// NewDB opens a *bun.DB against a PostgreSQL DSN, mirroring
// pool.New's connection setup.
func NewDB(cfg *Config) (*bun.DB, error) {
	pgConn := pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))
	sqlDB := sql.OpenDB(pgConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// Close closes db's underlying connection pool.
func Close(db *bun.DB) error {
	return db.Close()
}

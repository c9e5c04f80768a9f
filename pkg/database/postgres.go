package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

const (
	pingAttempts = 5
	pingTimeout  = 5 * time.Second
)

// openSQLDB opens a pool and waits for PostgreSQL to answer. In compose and
// k8s deployments the API often starts before the database accepts
// connections, so the first pings are retried with a doubling backoff.
func openSQLDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err = ping(ctx, conn)
		if err == nil {
			return conn, nil
		}
		if attempt == pingAttempts || ctx.Err() != nil {
			break
		}
		slog.Warn("database not ready, retrying", "db", cfg.DBName, "attempt", attempt, "err", err)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
		}
	}
	_ = conn.Close()
	return nil, fmt.Errorf("ping database %s: %w", cfg.DBName, err)
}

func ping(ctx context.Context, conn *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return conn.PingContext(ctx)
}

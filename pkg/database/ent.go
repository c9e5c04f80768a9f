package database

import (
	"context"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/oilcall_backend/config"
)

// OpenDriver connects to PostgreSQL and wraps the pool in an ent SQL driver.
// Callers build queries with entsql.Dialect(dialect.Postgres).
func OpenDriver(ctx context.Context, cfg config.DatabaseConfig) (*entsql.Driver, error) {
	db, err := openSQLDB(ctx, FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, db), nil
}

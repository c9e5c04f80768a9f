package jobnumber

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SequenceName is created by the schema migration.
const SequenceName = "job_number_seq"

// SequenceCounter draws numbers from a PostgreSQL sequence. nextval is
// non-transactional, so a rolled back booking leaves a gap but never a reuse.
type SequenceCounter struct {
	drv dialect.Driver
}

func NewSequenceCounter(drv dialect.Driver) *SequenceCounter {
	return &SequenceCounter{drv: drv}
}

func (c *SequenceCounter) Next(ctx context.Context) (int64, error) {
	rows := &entsql.Rows{}
	if err := c.drv.Query(ctx, "SELECT nextval($1)", []any{SequenceName}, rows); err != nil {
		return 0, fmt.Errorf("nextval %s: %w", SequenceName, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("nextval %s: %w", SequenceName, err)
		}
		return 0, ErrExhausted
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, fmt.Errorf("scan nextval: %w", err)
	}
	if n <= 0 {
		return 0, ErrExhausted
	}
	return n, nil
}

// Package sqlstore implements store.Store on PostgreSQL using ent's SQL
// builder over a lib/pq connection pool.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Alijeyrad/oilcall_backend/internal/store"
)

type Store struct {
	drv  *entsql.Driver
	conn dialect.ExecQuerier
	inTx bool
}

var _ store.Store = (*Store)(nil)

func New(drv *entsql.Driver) *Store {
	return &Store{drv: drv, conn: drv}
}

func (s *Store) Mechanics() store.MechanicRepo       { return mechanicRepo{s} }
func (s *Store) Managers() store.ManagerRepo         { return managerRepo{s} }
func (s *Store) Schedules() store.ScheduleRepo       { return scheduleRepo{s} }
func (s *Store) Appointments() store.AppointmentRepo { return appointmentRepo{s} }
func (s *Store) TimeEntries() store.TimeEntryRepo    { return timeEntryRepo{s} }
func (s *Store) Customers() store.CustomerRepo       { return customerRepo{s} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &Store{drv: s.drv, conn: tx, inTx: true}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.drv.DB().PingContext(ctx)
}

func (s *Store) Close() error {
	return s.drv.Close()
}

func pg() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

func (s *Store) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := s.conn.Exec(ctx, query, args, &res); err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// execOne runs q and reports store.ErrNotFound when it touched no rows.
func (s *Store) execOne(ctx context.Context, q entsql.Querier) error {
	res, err := s.exec(ctx, q)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) query(ctx context.Context, q entsql.Querier, each func(rows *entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := s.conn.Query(ctx, query, args, rows); err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

func queryAll[T any](ctx context.Context, s *Store, q entsql.Querier, scan func(*entsql.Rows) (T, error)) ([]T, error) {
	var out []T
	err := s.query(ctx, q, func(rows *entsql.Rows) error {
		v, err := scan(rows)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func queryOne[T any](ctx context.Context, s *Store, q entsql.Querier, scan func(*entsql.Rows) (T, error)) (*T, error) {
	all, err := queryAll(ctx, s, q, scan)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, store.ErrNotFound
	}
	return &all[0], nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", store.ErrConflict, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%w: %s", store.ErrNotFound, pqErr.Constraint)
		case "42P01":
			return fmt.Errorf("%w: %s", store.ErrSchemaMissing, pqErr.Message)
		}
	}
	return err
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

func uuidPtr(nu uuid.NullUUID) *uuid.UUID {
	if !nu.Valid {
		return nil
	}
	return &nu.UUID
}

func statusArgs[T ~string](list []T) []any {
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}

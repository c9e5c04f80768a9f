package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Input is the customer snapshot taken from a booking. Empty fields leave
// the stored values alone.
type Input struct {
	Email             string
	Name              string
	Phone             string
	ContactPreference string
	Address           string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Upsert creates the customer keyed by email or refreshes the stored one.
	Upsert(ctx context.Context, in Input) (*model.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, page, perPage int) ([]model.Customer, error)
	WithStore(st store.Store) Service
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type customerService struct {
	st  store.Store
	now func() time.Time
}

func New(st store.Store) Service {
	return &customerService{st: st, now: time.Now}
}

func (s *customerService) WithStore(st store.Store) Service {
	return &customerService{st: st, now: s.now}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *customerService) Upsert(ctx context.Context, in Input) (*model.Customer, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, validation.Field("customer_email", "is required")
	}
	now := s.now()
	next := model.Customer{
		ID:                uuid.Must(uuid.NewV7()),
		Email:             email,
		Name:              strings.TrimSpace(in.Name),
		Phone:             strings.TrimSpace(in.Phone),
		ContactPreference: strings.TrimSpace(in.ContactPreference),
		Address:           strings.TrimSpace(in.Address),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Racing first bookings under one email land on the same row.
	c, err := s.st.Customers().Upsert(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.st.Customers().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context, page, perPage int) ([]model.Customer, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	rows, err := s.st.Customers().List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return rows, nil
}

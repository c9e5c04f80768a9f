package customer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/internal/store/memstore"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

func TestUpsertMergesByEmail(t *testing.T) {
	svc := New(memstore.New())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, Input{
		Email:             "Jo@Example.com ",
		Name:              "Jo Park",
		Phone:             "+12015550123",
		ContactPreference: "sms",
		Address:           "1 Main St",
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if first.Email != "jo@example.com" {
		t.Errorf("Email = %q, want lower-cased", first.Email)
	}

	second, err := svc.Upsert(ctx, Input{Email: "jo@example.com", Name: "Jo Park", Address: "9 Side Rd"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Upsert() created a duplicate customer %s", second.ID)
	}
	if second.Address != "9 Side Rd" {
		t.Errorf("Address = %q, want refreshed", second.Address)
	}
	if second.Phone != "+12015550123" || second.ContactPreference != "sms" {
		t.Errorf("absent fields overwritten: %+v", second)
	}

	list, err := svc.List(ctx, 1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() = %d customers, want 1", len(list))
	}
}

func TestUpsertRequiresEmail(t *testing.T) {
	_, err := New(memstore.New()).Upsert(context.Background(), Input{Name: "x"})
	if !validation.IsValidation(err) {
		t.Errorf("Upsert() error = %v, want validation error", err)
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := New(memstore.New()).Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentFirstBookingsShareCustomer(t *testing.T) {
	st := memstore.New()
	svc := New(st)
	ctx := context.Background()

	const n = 8
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.InTx(ctx, func(ctx context.Context, tx store.Store) error {
				c, err := svc.WithStore(tx).Upsert(ctx, Input{Email: "sam@example.com", Name: "Sam"})
				if err != nil {
					return err
				}
				ids[i] = c.ID
				return nil
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("booking %d: Upsert() error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("booking %d got customer %s, booking 0 got %s", i, ids[i], ids[0])
		}
	}
}

func TestUpsertUnchangedKeepsTimestamp(t *testing.T) {
	svc := New(memstore.New()).(*customerService)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, Input{Email: "lee@example.com", Name: "Lee"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	svc.now = func() time.Time { return first.UpdatedAt.Add(time.Hour) }

	again, err := svc.Upsert(ctx, Input{Email: "lee@example.com"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if again.Name != "Lee" || !again.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("Upsert() with no new fields = %+v, want the stored row unchanged", again)
	}
}

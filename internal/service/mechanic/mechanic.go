package mechanic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	"github.com/Alijeyrad/oilcall_backend/pkg/s3"
	"github.com/Alijeyrad/oilcall_backend/pkg/util/password"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

// MaxPhotoSize bounds profile photo uploads.
const MaxPhotoSize = 5 << 20

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
	IsPublic *bool  `json:"is_public"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
	IsPublic *bool   `json:"is_public"`
}

// Public is the directory view shown to customers.
type Public struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	OilChangeCount int       `json:"oil_change_count"`
}

type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore holds profile photos.
type ObjectStore interface {
	Enabled() bool
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.Mechanic, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.Mechanic, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Mechanic, error)
	List(ctx context.Context) ([]model.Mechanic, error)
	ListPublic(ctx context.Context) ([]Public, error)
	UploadPhoto(ctx context.Context, id uuid.UUID, p Photo) (*model.Mechanic, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type mechanicService struct {
	st      store.Store
	objects ObjectStore
	hasher  *password.Hasher
	logger  *slog.Logger
	now     func() time.Time
}

func New(st store.Store, objects ObjectStore, hasher *password.Hasher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &mechanicService{st: st, objects: objects, hasher: hasher, logger: logger, now: time.Now}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *mechanicService) hash(pw string) (*string, error) {
	h, err := s.hasher.Hash(pw)
	if errors.Is(err, password.ErrTooShort) {
		return nil, validation.Field("password", "must be at least 8")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &h, nil
}

func (s *mechanicService) Create(ctx context.Context, req CreateRequest) (*model.Mechanic, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := s.now()
	m := model.Mechanic{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      strings.TrimSpace(req.Name),
		Email:     optional(strings.ToLower(req.Email)),
		Phone:     optional(req.Phone),
		IsPublic:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.IsPublic != nil {
		m.IsPublic = *req.IsPublic
	}
	if req.Password != "" {
		if m.Email == nil {
			return nil, validation.Field("email", "is required when a password is set")
		}
		h, err := s.hash(req.Password)
		if err != nil {
			return nil, err
		}
		m.PasswordHash = h
	}

	if err := s.st.Mechanics().Create(ctx, &m); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create mechanic: %w", err)
	}
	s.logger.InfoContext(ctx, "mechanic created", "mechanic_id", m.ID)
	return &m, nil
}

func (s *mechanicService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.Mechanic, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	m, err := s.st.Mechanics().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mechanic: %w", err)
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		m.Email = optional(strings.ToLower(*req.Email))
	}
	if req.Phone != nil {
		m.Phone = optional(*req.Phone)
	}
	if req.IsPublic != nil {
		m.IsPublic = *req.IsPublic
	}
	if req.Password != nil {
		if m.Email == nil {
			return nil, validation.Field("email", "is required when a password is set")
		}
		if m.PasswordHash, err = s.hash(*req.Password); err != nil {
			return nil, err
		}
	}
	m.UpdatedAt = s.now()

	if err := s.st.Mechanics().Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update mechanic: %w", err)
	}
	return s.withPhotoURL(ctx, m), nil
}

func (s *mechanicService) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.st.Mechanics().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get mechanic: %w", err)
	}
	if err := s.st.Mechanics().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete mechanic: %w", err)
	}

	if m.PhotoKey != nil {
		s.deleteObject(ctx, *m.PhotoKey)
	}
	s.logger.InfoContext(ctx, "mechanic deleted", "mechanic_id", id)
	return nil
}

// deleteObject removes a stored photo; failures leave an orphan object and
// are only logged.
func (s *mechanicService) deleteObject(ctx context.Context, key string) {
	if s.objects == nil || !s.objects.Enabled() {
		return
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "mechanic: delete photo failed", "key", key, "err", err)
	}
}

func (s *mechanicService) withPhotoURL(ctx context.Context, m *model.Mechanic) *model.Mechanic {
	if m.PhotoKey == nil || s.objects == nil || !s.objects.Enabled() {
		return m
	}
	url, err := s.objects.PresignDownload(ctx, *m.PhotoKey)
	if err != nil {
		s.logger.WarnContext(ctx, "mechanic: presign photo failed", "mechanic_id", m.ID, "err", err)
		return m
	}
	m.PhotoURL = url
	return m
}

func (s *mechanicService) Get(ctx context.Context, id uuid.UUID) (*model.Mechanic, error) {
	m, err := s.st.Mechanics().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mechanic: %w", err)
	}
	return s.withPhotoURL(ctx, m), nil
}

func (s *mechanicService) List(ctx context.Context) ([]model.Mechanic, error) {
	rows, err := s.st.Mechanics().List(ctx, store.MechanicFilter{})
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	for i := range rows {
		s.withPhotoURL(ctx, &rows[i])
	}
	return rows, nil
}

func (s *mechanicService) ListPublic(ctx context.Context) ([]Public, error) {
	rows, err := s.st.Mechanics().List(ctx, store.MechanicFilter{PublicOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list public mechanics: %w", err)
	}
	out := make([]Public, 0, len(rows))
	for i := range rows {
		m := s.withPhotoURL(ctx, &rows[i])
		out = append(out, Public{ID: m.ID, Name: m.Name, PhotoURL: m.PhotoURL, OilChangeCount: m.OilChangeCount})
	}
	return out, nil
}

func (s *mechanicService) UploadPhoto(ctx context.Context, id uuid.UUID, p Photo) (*model.Mechanic, error) {
	if s.objects == nil || !s.objects.Enabled() {
		return nil, ErrPhotoStorage
	}
	if p.Size > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}
	if !strings.HasPrefix(p.ContentType, "image/") {
		return nil, validation.Field("photo", "must be an image")
	}

	m, err := s.st.Mechanics().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mechanic: %w", err)
	}

	key := s3.ObjectKey("mechanics", id, p.Filename)
	if err := s.objects.Upload(ctx, key, p.ContentType, p.Body, p.Size); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	previous := m.PhotoKey
	m.PhotoKey = &key
	m.UpdatedAt = s.now()
	if err := s.st.Mechanics().Update(ctx, m); err != nil {
		s.deleteObject(ctx, key)
		return nil, fmt.Errorf("save photo key: %w", err)
	}
	if previous != nil {
		s.deleteObject(ctx, *previous)
	}
	return s.withPhotoURL(ctx, m), nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/internal/store"
	pasetotoken "github.com/Alijeyrad/oilcall_backend/pkg/paseto"
	"github.com/Alijeyrad/oilcall_backend/pkg/reqctx"
	"github.com/Alijeyrad/oilcall_backend/pkg/util/password"
	"github.com/Alijeyrad/oilcall_backend/pkg/validation"
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockout          = 15 * time.Minute
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=manager mechanic"`
}

type CreateManagerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expires
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// Authenticate verifies an access token against its live session.
	Authenticate(ctx context.Context, accessToken string) (reqctx.Identity, error)
	CreateManager(ctx context.Context, req CreateManagerRequest) (*model.Manager, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Options struct {
	MaxLoginAttempts int
	Lockout          time.Duration
}

type authService struct {
	st       store.Store
	sessions Sessions
	paseto   *pasetotoken.Manager
	hasher   *password.Hasher
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

func New(
	st store.Store,
	sessions Sessions,
	paseto *pasetotoken.Manager,
	hasher *password.Hasher,
	logger *slog.Logger,
	opts Options,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxLoginAttempts <= 0 {
		opts.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if opts.Lockout <= 0 {
		opts.Lockout = defaultLockout
	}
	return &authService{
		st:       st,
		sessions: sessions,
		paseto:   paseto,
		hasher:   hasher,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

// credential is the login material of a manager or mechanic.
type credential struct {
	userID uuid.UUID
	hash   string
}

func (s *authService) lookup(ctx context.Context, role model.Role, email string) (*credential, error) {
	switch role {
	case model.RoleManager:
		m, err := s.st.Managers().GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &credential{userID: m.ID, hash: m.PasswordHash}, nil
	case model.RoleMechanic:
		m, err := s.st.Mechanics().GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if m.PasswordHash == nil {
			return nil, store.ErrNotFound
		}
		return &credential{userID: m.ID, hash: *m.PasswordHash}, nil
	}
	return nil, ErrInvalidRole
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := model.Role(req.Role)
	throttleKey := req.Role + ":" + email

	failures, err := s.sessions.Failures(ctx, throttleKey)
	if err != nil {
		return nil, err
	}
	if failures >= int64(s.opts.MaxLoginAttempts) {
		return nil, ErrAccountLocked
	}

	cred, err := s.lookup(ctx, role, email)
	if errors.Is(err, store.ErrNotFound) {
		s.recordFailedLogin(ctx, throttleKey)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}

	if err := s.hasher.Verify(cred.hash, req.Password); err != nil {
		s.recordFailedLogin(ctx, throttleKey)
		return nil, ErrInvalidCredentials
	}

	if err := s.sessions.ResetFailures(ctx, throttleKey); err != nil {
		s.logger.WarnContext(ctx, "auth: reset login failures", "err", err)
	}
	return s.createSession(ctx, cred.userID, role)
}

// ---------------------------------------------------------------------------
// RefreshTokens
// ---------------------------------------------------------------------------

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := s.paseto.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != pasetotoken.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID || sess.Role != claims.Role {
		return nil, ErrInvalidToken
	}

	if err := s.sessions.Touch(ctx, sess.ID, s.paseto.RefreshTTL()); err != nil {
		return nil, err
	}
	return s.issue(sess.UserID, sess.ID, sess.Role)
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.DebugContext(ctx, "session closed", "session_id", sessionID)
	return nil
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func (s *authService) Authenticate(ctx context.Context, accessToken string) (reqctx.Identity, error) {
	claims, err := s.paseto.Verify(accessToken)
	if err != nil || claims.Type != pasetotoken.TokenTypeAccess {
		return reqctx.Identity{}, ErrInvalidToken
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return reqctx.Identity{}, err
	}
	if sess.UserID != claims.UserID {
		return reqctx.Identity{}, ErrInvalidToken
	}
	return reqctx.Identity{UserID: sess.UserID, SessionID: sess.ID, Role: sess.Role}, nil
}

// ---------------------------------------------------------------------------
// CreateManager
// ---------------------------------------------------------------------------

func (s *authService) CreateManager(ctx context.Context, req CreateManagerRequest) (*model.Manager, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m := model.Manager{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.st.Managers().Create(ctx, &m); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create manager: %w", err)
	}
	s.logger.InfoContext(ctx, "manager created", "manager_id", m.ID)
	return &m, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, role model.Role) (*AuthTokens, error) {
	sess := Session{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Role:      string(role),
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, sess, s.paseto.RefreshTTL()); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "session opened", "user_id", userID, "role", role, "session_id", sess.ID)
	return s.issue(sess.UserID, sess.ID, sess.Role)
}

func (s *authService) issue(userID, sessionID uuid.UUID, role string) (*AuthTokens, error) {
	access, err := s.paseto.IssueAccess(userID, sessionID, role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.paseto.IssueRefresh(userID, sessionID, role)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.paseto.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) recordFailedLogin(ctx context.Context, key string) {
	n, err := s.sessions.RecordFailure(ctx, key, s.opts.Lockout)
	if err != nil {
		s.logger.WarnContext(ctx, "auth: record login failure", "err", err)
		return
	}
	if n == int64(s.opts.MaxLoginAttempts) {
		s.logger.WarnContext(ctx, "auth: login locked", "key", key, "lockout", s.opts.Lockout)
	}
}

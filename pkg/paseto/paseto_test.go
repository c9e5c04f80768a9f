package pasetotoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "oilcall", Audience: "oilcall-api", AccessTTL: time.Minute}, keys)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestIssueVerify(t *testing.T) {
	tests := []struct {
		name string
		keys Keys
	}{
		{name: "v4 local", keys: NewLocalKeys()},
		{name: "v4 public", keys: NewPublicKeys()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, tt.keys)
			uid, sid := uuid.New(), uuid.New()

			tok, err := m.IssueAccess(uid, sid, "mechanic")
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}
			claims, err := m.Verify(tok)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.UserID != uid || claims.SessionID != sid {
				t.Errorf("ids = %v/%v, want %v/%v", claims.UserID, claims.SessionID, uid, sid)
			}
			if claims.Role != "mechanic" || claims.Type != TokenTypeAccess {
				t.Errorf("role/type = %q/%q", claims.Role, claims.Type)
			}
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	other := newTestManager(t, NewLocalKeys())

	foreign, err := other.IssueAccess(uuid.New(), uuid.New(), "manager")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	expiredMgr := newTestManager(t, m.keys)
	expiredMgr.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredMgr.IssueAccess(uuid.New(), uuid.New(), "manager")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	futureMgr := newTestManager(t, m.keys)
	futureMgr.now = func() time.Time { return time.Now().Add(time.Hour) }
	future, err := futureMgr.IssueAccess(uuid.New(), uuid.New(), "manager")
	if err != nil {
		t.Fatalf("IssueAccess() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "v4.local.nope"},
		{name: "other key", token: foreign},
		{name: "expired", token: expired},
		{name: "not yet valid", token: future},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			var invalid ErrInvalidToken
			if !errors.As(err, &invalid) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewValidatesConfig(t *testing.T) {
	keys := NewLocalKeys()
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "mode mismatch", cfg: Config{Mode: ModePublic, Issuer: "i", Audience: "a"}},
		{name: "missing issuer", cfg: Config{Mode: ModeLocal, Audience: "a"}},
		{name: "missing audience", cfg: Config{Mode: ModeLocal, Issuer: "i"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfgErr ErrConfig
			if _, err := New(tt.cfg, keys); !errors.As(err, &cfgErr) {
				t.Errorf("New() error = %v, want ErrConfig", err)
			}
		})
	}
}

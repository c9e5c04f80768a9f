package password

import (
	"errors"
	"strings"
	"testing"
)

// fast keeps argon2 cheap in tests.
var fast = Config{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}

func TestHashFormat(t *testing.T) {
	h := NewHasher(fast)
	hash, err := h.Hash("correcthorsebatterystaple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash() format invalid, got %s", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("Hash() expected 6 parts, got %d", len(parts))
	}
	if !strings.Contains(hash, "m=1024,t=1,p=1") {
		t.Errorf("Hash() did not use configured params: %s", hash)
	}
}

func TestHashRejectsShort(t *testing.T) {
	if _, err := NewHasher(fast).Hash("short"); !errors.Is(err, ErrTooShort) {
		t.Errorf("Hash() error = %v, want ErrTooShort", err)
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher(fast)
	hash, err := h.Hash("mysecretpassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{name: "correct password", hash: hash, password: "mysecretpassword"},
		{name: "wrong password", hash: hash, password: "wrongpassword", wantErr: ErrMismatch},
		{name: "invalid hash format", hash: "notahash", password: "x", wantErr: ErrInvalidHash},
		{name: "bcrypt hash", hash: "$2a$10$abcdefghijklmnopqrstuv", password: "x", wantErr: ErrInvalidHash},
		{name: "wrong version", hash: "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA", password: "x", wantErr: ErrIncompatibleVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(tt.hash, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyAcrossParams(t *testing.T) {
	old := NewHasher(fast)
	hash, _ := old.Hash("mysecretpassword")

	newer := NewHasher(Config{MemoryKiB: 2048, Iterations: 1, Parallelism: 1})
	if err := newer.Verify(hash, "mysecretpassword"); err != nil {
		t.Errorf("Verify() with different params error = %v", err)
	}
	if !newer.NeedsRehash(hash) {
		t.Error("NeedsRehash() = false, want true")
	}
	if old.NeedsRehash(hash) {
		t.Error("NeedsRehash() = true for current params")
	}
}

func TestToParamsDefaults(t *testing.T) {
	p := Config{LowMemoryMode: true}.ToParams()
	if p.Memory != 32*1024 || p.Iterations != 3 || p.KeyLength != 32 {
		t.Errorf("ToParams() = %+v", p)
	}
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{8, 16, 33} {
		pw, err := Generate(n)
		if err != nil {
			t.Fatalf("Generate(%d) error = %v", n, err)
		}
		if len(pw) != n {
			t.Errorf("Generate(%d) length = %d", n, len(pw))
		}
	}
}

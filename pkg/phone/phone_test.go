package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr error
	}{
		{name: "national US", raw: "(201) 555-0123", region: "US", want: "+12015550123"},
		{name: "already international", raw: "+44 121 234 5678", region: "US", want: "+441212345678"},
		{name: "lower case region", raw: "201-555-0123", region: "us", want: "+12015550123"},
		{name: "empty", raw: "  ", region: "US", wantErr: ErrInvalid},
		{name: "letters", raw: "call me", region: "US", wantErr: ErrInvalid},
		{name: "too short", raw: "123", region: "US", wantErr: ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

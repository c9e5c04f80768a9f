package logs

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var info, errs bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	log := slog.New(h).With("job_number", 1001)

	log.Info("booked")
	log.Error("reminder failed")

	if !strings.Contains(info.String(), "booked") || !strings.Contains(info.String(), "reminder failed") {
		t.Errorf("info handler missed records: %q", info.String())
	}
	if strings.Contains(errs.String(), "booked") {
		t.Errorf("error handler received info record: %q", errs.String())
	}
	if !strings.Contains(errs.String(), "job_number=1001") {
		t.Errorf("attrs not propagated: %q", errs.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled on every handler")
	}
}

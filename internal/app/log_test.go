package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDmHandler_Handle(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		runTag  string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			runTag:  "20250310T090000Z",
			level:   slog.LevelInfo,
			message: "job started",
			want:    "2025-03-10T09:30:45Z\tINFO\t20250310T090000Z\tjob started\n",
		},
		{
			name:    "debug level",
			runTag:  "20250310T090000Z",
			level:   slog.LevelDebug,
			message: "folder scanned",
			want:    "2025-03-10T09:30:45Z\tDEBUG\t20250310T090000Z\tfolder scanned\n",
		},
		{
			name:    "with record attrs",
			runTag:  "20250310T090000Z",
			level:   slog.LevelInfo,
			message: "export written",
			attrs:   []slog.Attr{slog.String("artifact", "drive_metadata.csv"), slog.Int("records", 42)},
			want:    "2025-03-10T09:30:45Z\tINFO\t20250310T090000Z\texport written\tartifact=drive_metadata.csv\trecords=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &dmHandler{w: &buf, runTag: tt.runTag}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestDmHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &dmHandler{w: &buf, runTag: "run-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "scheduler")}).(*dmHandler)

	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "processed", 0)
	r.AddAttrs(slog.String("item_id", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=scheduler") {
		t.Errorf("expected pre-set attr component=scheduler, got: %q", got)
	}
	if !strings.Contains(got, "item_id=abc") {
		t.Errorf("expected record attr item_id=abc, got: %q", got)
	}
}

func TestDmHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &dmHandler{w: &buf, runTag: "run-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*dmHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "20250310T090000Z")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}

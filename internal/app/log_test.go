package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInkHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	handler := &inkHandler{w: &buf, opID: "20240115T103000Z-Commit"}
	logger := slog.New(handler)

	logger.Info("version committed", "document", "n1", "bytes", 11)

	line := buf.String()
	fields := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	if len(fields) != 6 {
		t.Fatalf("field count = %d, want 6: %q", len(fields), line)
	}
	if _, err := time.Parse("2006-01-02T15:04:05Z", fields[0]); err != nil {
		t.Errorf("timestamp %q does not parse: %v", fields[0], err)
	}
	if fields[1] != "INFO" {
		t.Errorf("level = %q, want INFO", fields[1])
	}
	if fields[2] != "20240115T103000Z-Commit" {
		t.Errorf("opID = %q, want the operation id", fields[2])
	}
	if fields[3] != "version committed" {
		t.Errorf("message = %q", fields[3])
	}
	if fields[4] != "document=n1" || fields[5] != "bytes=11" {
		t.Errorf("attrs = %q, %q", fields[4], fields[5])
	}
}

func TestInkHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := &inkHandler{w: &buf, opID: "op"}
	derived := base.WithAttrs([]slog.Attr{slog.String("component", "engine")})

	rec := slog.NewRecord(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), slog.LevelWarn, "slow query", 0)
	if err := derived.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if !strings.Contains(buf.String(), "component=engine") {
		t.Errorf("output missing pre-set attr: %q", buf.String())
	}
}

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"bookshelf/internal/logging"
	"bookshelf/internal/services"
)

func TestConsoleFormatIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "gateway")
	logger.Info("call finished", logging.String("provider", "open_library"), logging.Int("status", 200))

	line := buf.String()
	for _, fragment := range []string{"INFO", "gateway: call finished", "provider=open_library", "status=200"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("lookup", logging.String("title", "Atomic Habits"), logging.Error(errors.New("bad thing")))
	if !strings.Contains(buf.String(), `title="Atomic Habits"`) {
		t.Fatalf("expected quoted title, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `error="bad thing"`) {
		t.Fatalf("expected quoted error, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("cache hit", logging.String("key", "dune|frank herbert"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log line: %v (%q)", err, buf.String())
	}
	if payload["level"] != "debug" {
		t.Fatalf("unexpected level %v", payload["level"])
	}
	if payload["key"] != "dune|frank herbert" {
		t.Fatalf("unexpected key %v", payload["key"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts field in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	if logging.ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("expected unknown level to default to info")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "source failed", "source_soft_failure", logging.String(logging.FieldImpact, "description missing"))
	line := buf.String()
	if !strings.Contains(line, "event_type=source_soft_failure") {
		t.Fatalf("expected event type, got %q", line)
	}
	if !strings.Contains(line, "error_hint=") {
		t.Fatalf("expected default error hint, got %q", line)
	}
	if strings.Count(line, "impact=") != 1 || !strings.Contains(line, `impact="description missing"`) {
		t.Fatalf("expected caller impact to be kept, got %q", line)
	}
}

func TestWithContextAddsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(services.WithDomain(context.Background(), "movie"), "run-1")
	logging.WithContext(ctx, logger).Info("batch started")
	line := buf.String()
	if !strings.Contains(line, "domain=movie") || !strings.Contains(line, "correlation_id=run-1") {
		t.Fatalf("expected context fields, got %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}

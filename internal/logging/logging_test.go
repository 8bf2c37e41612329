package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/punchamoorthee/bankcore/internal/config"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "production", LogLevel: "info"})
	log.Info("deposit", "account_id", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("want JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "deposit" || rec["account_id"] != float64(7) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "development", LogLevel: "warn"})
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("level filter not applied: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDAttached(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, &config.Config{Env: "production", LogLevel: "info"})
	ctx := WithRequestID(context.Background(), "req-1")
	log.InfoContext(ctx, "get_account")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["request_id"] != "req-1" {
		t.Fatalf("request_id missing: %v", rec)
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("bare context should have no request id")
	}
}

func TestOpenAppendsToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bank_errors.log")
	cfg := &config.Config{Env: "production", LogLevel: "info", LogFile: path}

	for _, msg := range []string{"first", "second"} {
		log, closeFn, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		log.Error(msg, "err", "disk full")
		if err := closeFn(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"first"`) || !strings.Contains(out, `"msg":"second"`) {
		t.Fatalf("log file missing records: %q", out)
	}
}

func TestOpenWithoutFile(t *testing.T) {
	log, closeFn, err := Open(&config.Config{LogLevel: "info"})
	if err != nil || log == nil {
		t.Fatalf("Open: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
}

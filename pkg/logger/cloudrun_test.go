package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo)).With("request_id", "r1")

	log.Warn("persist failed", "error", errors.New("quota"), "widgets", 3)

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if event["severity"] != "WARNING" || event["message"] != "persist failed" {
		t.Fatalf("unexpected envelope: %v", event)
	}
	data, _ := event["data"].(map[string]any)
	if data["request_id"] != "r1" || data["error"] != "quota" || data["widgets"] != float64(3) {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestCloudRunHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelWarn))
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info record to be filtered, got %q", buf.String())
	}
}

func TestGetSlogLevel(t *testing.T) {
	if getSlogLevel("DEBUG") != slog.LevelDebug || getSlogLevel("warning") != slog.LevelWarn || getSlogLevel("") != slog.LevelInfo {
		t.Fatalf("unexpected level mapping")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", FormatText)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", FormatJSON)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("rendered", "files", 3)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if record["msg"] != "rendered" || record["files"] != float64(3) {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(nil, "loud", FormatText); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New(nil, "info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatJSON, &buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	l := Component(log, "probe")
	l.Debug().Str("url", "https://vimeo.com/1").Msg("probing")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "probe" {
		t.Errorf("Expected component 'probe', got %v", entry["component"])
	}
	if entry["level"] != "debug" {
		t.Errorf("Expected level 'debug', got %v", entry["level"])
	}
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", FormatJSON, &buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered, got %q", buf.String())
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New("loud", FormatJSON, nil); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Error("Expected error for invalid format")
	}
}

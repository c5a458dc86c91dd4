package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hseo/vigil/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerFields(t *testing.T) {
	log := New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"})

	var buf bytes.Buffer
	zl := log.WithFields(map[string]interface{}{
		"job":   "resweep",
		"count": 3,
	}).Zerolog().Output(&buf)

	zl.Info().Msg("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["service"] != "vigil" {
		t.Errorf("Expected service field vigil, got %v", entry["service"])
	}
	if entry["env"] != "development" {
		t.Errorf("Expected env field development, got %v", entry["env"])
	}
	if entry["job"] != "resweep" {
		t.Errorf("Expected job field resweep, got %v", entry["job"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("Expected count field 3, got %v", entry["count"])
	}
	if entry["message"] != "test message" {
		t.Errorf("Expected message field, got %v", entry["message"])
	}
}

func TestLoggerWithError(t *testing.T) {
	log := New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"})

	var buf bytes.Buffer
	zl := log.WithError(errors.New("boom")).Zerolog().Output(&buf)
	zl.Error().Msg("failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["error"] != "boom" {
		t.Errorf("Expected error field boom, got %v", entry["error"])
	}
}

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup_WritesToConfiguredOutput(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
	}{
		{"debug_level", LevelDebug},
		{"info_level", LevelInfo},
		{"warn_level", LevelWarn},
		{"error_level", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: tt.level, Output: buf})

			msg := "message at " + string(tt.level)
			switch tt.level {
			case LevelDebug:
				logger.Debug().Msg(msg)
			case LevelInfo:
				logger.Info().Msg(msg)
			case LevelWarn:
				logger.Warn().Msg(msg)
			case LevelError:
				logger.Error().Msg(msg)
			}

			if !strings.Contains(buf.String(), msg) {
				t.Errorf("Expected output to contain %q, got %q", msg, buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"warning", zerolog.WarnLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if result := parseLevel(tt.input); result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger_AddsComponentField(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("fetch-orchestrator")
	logger.Info().Msg("planned batches")

	output := buf.String()
	if !strings.Contains(output, "fetch-orchestrator") {
		t.Errorf("Expected output to contain component name, got %q", output)
	}
	if !strings.Contains(output, "planned batches") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelWarn, Output: buf})

	logger := NewLogger("fetch")

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Error("Messages below warn level must be filtered out")
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Error("Warn and error messages must pass the filter")
	}
}

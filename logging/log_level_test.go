package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevelString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected zapcore.Level
	}{
		{name: "debug", input: "debug", expected: zapcore.DebugLevel},
		{name: "info", input: "info", expected: zapcore.InfoLevel},
		{name: "warn", input: "warn", expected: zapcore.WarnLevel},
		{name: "warning alias", input: "warning", expected: zapcore.WarnLevel},
		{name: "error", input: "error", expected: zapcore.ErrorLevel},
		{name: "fatal", input: "fatal", expected: zapcore.FatalLevel},
		{name: "uppercase", input: "DEBUG", expected: zapcore.DebugLevel},
		{name: "surrounding whitespace", input: "  info  ", expected: zapcore.InfoLevel},
		{name: "unknown keeps default", input: "verbose", expected: zapcore.InfoLevel},
		{name: "empty keeps default", input: "", expected: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLogLevelString(tt.input, zapcore.InfoLevel)
			if got != tt.expected {
				t.Errorf("ParseLogLevelString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseLogLevelFromEnv(t *testing.T) {
	t.Run("reads env var", func(t *testing.T) {
		t.Setenv("SWARMGEN_TEST_LOG_LEVEL", "error")
		got := ParseLogLevel("SWARMGEN_TEST_LOG_LEVEL", zapcore.InfoLevel)
		if got != zapcore.ErrorLevel {
			t.Errorf("ParseLogLevel() = %v, want error", got)
		}
	})

	t.Run("default when unset", func(t *testing.T) {
		got := ParseLogLevel("SWARMGEN_UNSET_LOG_LEVEL", zapcore.WarnLevel)
		if got != zapcore.WarnLevel {
			t.Errorf("ParseLogLevel() = %v, want warn default", got)
		}
	})
}

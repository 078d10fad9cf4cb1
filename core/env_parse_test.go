package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Run("returns value when set", func(t *testing.T) {
		t.Setenv("SWARMGEN_TEST_VAR", "remotehost")
		if got := GetEnvOrDefault("SWARMGEN_TEST_VAR", "localhost"); got != "remotehost" {
			t.Errorf("GetEnvOrDefault() = %q, want %q", got, "remotehost")
		}
	})

	t.Run("returns default when unset", func(t *testing.T) {
		if got := GetEnvOrDefault("SWARMGEN_UNSET_VAR", "localhost"); got != "localhost" {
			t.Errorf("GetEnvOrDefault() = %q, want %q", got, "localhost")
		}
	})
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true", value: "true", def: false, expected: true},
		{name: "1", value: "1", def: false, expected: true},
		{name: "yes", value: "yes", def: false, expected: true},
		{name: "on with spaces", value: "  on  ", def: false, expected: true},
		{name: "false", value: "false", def: true, expected: false},
		{name: "0", value: "0", def: true, expected: false},
		{name: "garbage keeps default", value: "maybe", def: true, expected: true},
		{name: "empty keeps default", value: "", def: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("SWARMGEN_TEST_BOOL", tt.value)
			}
			if got := ParseBoolEnv("SWARMGEN_TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "duration string", value: "90s", want: 90 * time.Second},
		{name: "compound duration", value: "1h30m", want: 90 * time.Minute},
		{name: "bare number is seconds", value: "90", want: 90 * time.Second},
		{name: "unparseable keeps default", value: "soon", want: 30 * time.Second},
		{name: "negative keeps default", value: "-5s", want: 30 * time.Second},
		{name: "empty keeps default", value: "", want: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("SWARMGEN_TEST_DUR", tt.value)
			}
			if got := ParseDurationEnv("SWARMGEN_TEST_DUR", 30*time.Second); got != tt.want {
				t.Errorf("ParseDurationEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.SwarmHost == "" || cfg.SwarmPort == "" {
		t.Error("host and port should always have defaults")
	}
	if cfg.BaseURL() != "http://"+cfg.SwarmHost+":"+cfg.SwarmPort {
		t.Errorf("BaseURL() = %q, want host:port composition", cfg.BaseURL())
	}
	if cfg.HTTPTimeout <= 0 || cfg.GenerateTimeout <= 0 {
		t.Error("timeouts should default to positive values")
	}
}

// Package core provides shared configuration, error kinds, and small
// utilities used by every swarmgen subcommand.
//
// config.go implements configuration loading from environment variables.
// Values come from three places, lowest to highest precedence:
//  1. compiled-in defaults
//  2. the `default` rule section (host/port only, resolved by the rules package)
//  3. environment variables (optionally loaded from .env by main)
//
// Command-line flags override all of the above and are applied by the cli
// package after LoadConfig returns.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	// DefaultSwarmHost is the backend host when nothing else is configured.
	DefaultSwarmHost = "localhost"

	// DefaultSwarmPort is SwarmUI's stock listen port.
	DefaultSwarmPort = "7801"

	// DefaultHTTPTimeout applies to short request/response calls
	// (session creation, model listing, status).
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultGenerateTimeout applies to the generation call itself, which
	// can run for a long time on slow hardware or large batches.
	DefaultGenerateTimeout = time.Hour

	// DefaultUserAgent identifies this client to the backend.
	DefaultUserAgent = "swarmgen/1.0.0"

	// DefaultLogFile is the log file written next to the working directory.
	DefaultLogFile = "swarmgen.log"
)

// Config holds runtime configuration shared across subcommands.
type Config struct {
	// SwarmHost is the backend server name or IP address.
	SwarmHost string

	// SwarmPort is the port the backend listens on.
	SwarmPort string

	// RulesDir is the directory holding user rule files. Empty means the
	// per-user default (~/.config/swarmgen).
	RulesDir string

	// WildcardDir is the directory wildcard files are loaded from.
	WildcardDir string

	// HTTPTimeout bounds short request/response calls. There is no retry:
	// a timeout is treated the same as an unreachable server.
	HTTPTimeout time.Duration

	// GenerateTimeout bounds a single generation round trip.
	GenerateTimeout time.Duration

	// EnhanceURL is the OpenAI-compatible endpoint used by the enhance
	// subcommand (an LM Studio instance by default).
	EnhanceURL string

	// EnhanceModel is the model the enhance subcommand requests.
	EnhanceModel string

	// ExiftoolPath is the metadata tool binary. Resolved via PATH when
	// left as the bare name.
	ExiftoolPath string

	// LogFile is where structured logs are written.
	LogFile string

	// DevMode switches console logging to the human-readable encoder.
	DevMode bool
}

// LoadConfig builds a Config from environment variables, applying defaults
// for anything unset. It never fails on missing optional values; the only
// error case is an unresolvable home directory when the rules dir needs
// the per-user default.
func LoadConfig() (*Config, error) {
	rulesDir := os.Getenv("SWARMGEN_RULES_DIR")
	if rulesDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("core: cannot resolve home directory for rules dir: %w", err)
		}
		rulesDir = filepath.Join(home, ".config", "swarmgen")
	}

	return &Config{
		SwarmHost:       GetEnvOrDefault("SWARM_HOST", DefaultSwarmHost),
		SwarmPort:       GetEnvOrDefault("SWARM_PORT", DefaultSwarmPort),
		RulesDir:        rulesDir,
		WildcardDir:     GetEnvOrDefault("SWARMGEN_WILDCARD_DIR", "."),
		HTTPTimeout:     ParseDurationEnv("SWARMGEN_HTTP_TIMEOUT", DefaultHTTPTimeout),
		GenerateTimeout: ParseDurationEnv("SWARMGEN_GENERATE_TIMEOUT", DefaultGenerateTimeout),
		EnhanceURL:      GetEnvOrDefault("SWARMGEN_ENHANCE_URL", "http://localhost:1234/v1"),
		EnhanceModel:    GetEnvOrDefault("SWARMGEN_ENHANCE_MODEL", "openai/gpt-oss-20b"),
		ExiftoolPath:    GetEnvOrDefault("SWARMGEN_EXIFTOOL", "exiftool"),
		LogFile:         GetEnvOrDefault("SWARMGEN_LOG_FILE", DefaultLogFile),
		DevMode:         ParseBoolEnv("DEV_MODE", false),
	}, nil
}

// BaseURL returns the backend base URL for the configured host and port.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.SwarmHost, c.SwarmPort)
}

package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvOrDefault returns the named environment variable, or fallback when
// it is unset or empty.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseBoolEnv reads an environment variable as a boolean. "true", "1",
// "yes", and "on" are true; "false", "0", "no", and "off" are false, all
// case-insensitive. Anything else, including unset, yields fallback.
func ParseBoolEnv(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// ParseDurationEnv reads an environment variable as a Go duration string
// ("90s", "1h30m"). A bare number is taken as seconds. fallback is
// returned when the variable is unset, unparseable, or not positive.
func ParseDurationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

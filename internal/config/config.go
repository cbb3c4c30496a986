// Package config reads cardscanner settings from the environment.
// Command line flags take precedence over these values.
package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds the settings shared by the scan, serve and export commands
type Config struct {
	// Endpoint is the analysis endpoint the payload is posted to
	Endpoint string
	// CSRFToken is sent as X-CSRFToken when set
	CSRFToken string
	// CSRFPage is a host page to read the csrfmiddlewaretoken field from
	CSRFPage string
	Timeout  time.Duration

	Port       string
	SessionTTL time.Duration

	SheetID     string
	Credentials string
}

const (
	DefaultEndpoint   = "http://localhost:8000/analyze/"
	DefaultPort       = "8888"
	DefaultTimeout    = 2 * time.Minute
	DefaultSessionTTL = 30 * time.Minute
)

// FromEnv builds a Config from CARDSCANNER_* and Google variables
func FromEnv() Config {
	return Config{
		Endpoint:    getenv("CARDSCANNER_ENDPOINT", DefaultEndpoint),
		CSRFToken:   os.Getenv("CARDSCANNER_CSRF_TOKEN"),
		CSRFPage:    os.Getenv("CARDSCANNER_CSRF_PAGE"),
		Timeout:     getDuration("CARDSCANNER_TIMEOUT", DefaultTimeout),
		Port:        getenv("CARDSCANNER_PORT", DefaultPort),
		SessionTTL:  getDuration("CARDSCANNER_SESSION_TTL", DefaultSessionTTL),
		SheetID:     os.Getenv("GOOGLE_SHEET_ID"),
		Credentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("Ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}

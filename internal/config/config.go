// Package config loads tubetalk's settings from the environment, with a
// .env file as an optional local override source.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting. All values come from TUBETALK_*
// environment variables and carry workable defaults for a local backend.
type Config struct {
	// APIBaseURL is the transcript backend's address.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080" validate:"required,url"`
	// RequestTimeout bounds a single backend request. Transcript extraction
	// for long videos can take a while, so the default is generous.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s" validate:"gt=0"`
	// PollInterval is the readiness polling cadence.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"15s" validate:"gt=0"`
	// PollCeiling bounds total readiness polling per video.
	PollCeiling time.Duration `envconfig:"POLL_CEILING" default:"10m" validate:"gt=0"`
	// LogFile receives diagnostics; the terminal itself belongs to the UI.
	// Empty disables logging.
	LogFile string `envconfig:"LOG_FILE"`
	// PlayerPath is the mpv binary used for timestamp jumps.
	PlayerPath string `envconfig:"PLAYER_PATH" default:"mpv"`
	// RequireAuth makes startup prompt for (and keep) a bearer token, for
	// backends behind an authenticating proxy.
	RequireAuth bool `envconfig:"REQUIRE_AUTH" default:"false"`
}

// Load reads the .env file when present, then the environment, then
// validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; the environment or defaults cover everything.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("tubetalk", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

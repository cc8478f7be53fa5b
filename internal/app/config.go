package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"hireline.db"`

	// TokenSecret signs session tokens. Required.
	TokenSecret string        `env:"TOKEN_SECRET"`
	Issuer      string        `env:"TOKEN_ISSUER" envDefault:"hireline"`
	AccessTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"`
	RefreshTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// FrontendURL is where browser flows land; BackendURL is the public
	// origin of this service, used to build the OAuth redirect URL.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// Dev reports whether the process runs in development mode. Dev mode turns
// off the Secure cookie flag and exposes error detail text.
func (c Config) Dev() bool {
	return c.Env == "dev"
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET is required")
	}
	return cfg, nil
}

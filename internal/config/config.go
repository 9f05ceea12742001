package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from GARDENBOOK_-prefixed environment variables, e.g.
// GARDENBOOK_LISTEN_ADDR or GARDENBOOK_BACKEND_URL.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	BackendURL string `envconfig:"BACKEND_URL" default:"http://127.0.0.1:8090"`
	// AuthCookie names the cookie that carries the backend auth token.
	AuthCookie     string `envconfig:"AUTH_COOKIE" default:"pb_auth"`
	AuthCollection string `envconfig:"AUTH_COLLECTION" default:"users"`
	// SecureCookies should be enabled whenever the UI is served over TLS.
	SecureCookies bool `envconfig:"SECURE_COOKIES" default:"false"`
	// RequireLogin redirects anonymous visitors to /login on write routes.
	RequireLogin bool `envconfig:"REQUIRE_LOGIN" default:"false"`

	// Development backend.
	DevListenAddr string `envconfig:"DEV_LISTEN_ADDR" default:":8090"`
	DBPath        string `envconfig:"DB_PATH" default:"/data/gardenbook.db"`
	PhotoPath     string `envconfig:"PHOTO_LOCAL_PATH" default:"/data/photos"`
	SeedFile      string `envconfig:"SEED_FILE" default:""`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:""`
	TestMode bool   `envconfig:"TEST_MODE" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("GARDENBOOK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("GARDENBOOK_BACKEND_URL must not be empty")
	}
	return &cfg, nil
}

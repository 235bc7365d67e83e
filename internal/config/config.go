// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/labstack/gommon/random"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`

	JWTAccessSecret  string `env:"JWT_SECRET"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// MFAMode selects the second-factor verifier: "static" (accept any
	// well-formed six-digit code) or "totp".
	MFAMode string `env:"MFA_MODE" envDefault:"static"`
}

// Load parses the environment. Missing JWT secrets are generated with a
// logged warning so development servers come up without setup; production
// deployments must set both.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.JWTAccessSecret == "" {
		cfg.JWTAccessSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive restarts")
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = random.String(32)
		log.Printf("WARNING: JWT_REFRESH_SECRET not set, using a generated secret; sessions will not survive restarts")
	}

	return cfg, nil
}

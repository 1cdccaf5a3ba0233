// Package config loads typed configuration from the environment.
//
// It combines github.com/joho/godotenv (optional .env files) with
// github.com/caarlos0/env/v11 (struct tags) and caches every parsed type,
// so each configuration struct is parsed at most once per process:
//
//	type Config struct {
//		Timeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"30m"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// LoadEnv reads the given .env files before the first parse; existing
// environment variables take precedence over file values. Without LoadEnv,
// Load reads ./.env if present.
//
// ResetCache drops cached values, which tests use to parse again after
// changing the environment.
package config

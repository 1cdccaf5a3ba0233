package session

import "time"

// Config holds session configuration.
type Config struct {
	// Timeout is the absolute session lifetime from login or refresh.
	Timeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"30m"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Minute}
}

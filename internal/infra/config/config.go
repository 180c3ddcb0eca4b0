// Package config loads the control engine's operational parameters from
// the environment, following the teacher's pattern of a single struct
// parsed with caarlos0/env, environment-tier default overrides, and a
// dedicated validation pass before the value is ever handed to the rest
// of the application.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"

	"github.com/dpetrov/elevator-cab/internal/constants"
	"github.com/dpetrov/elevator-cab/internal/domain"
)

// Config is every environment-tunable parameter a single cab's process
// needs: its identity and physical bounds, the control engine's timing
// parameters, and the ambient server/observability settings.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`

	CabID    int `env:"CAB_ID" envDefault:"1"`
	MinFloor int `env:"MIN_FLOOR" envDefault:"0"`
	MaxFloor int `env:"MAX_FLOOR" envDefault:"9"`

	Speed              int           `env:"MOTOR_SPEED" envDefault:"300"`
	WaitThreshold      time.Duration `env:"WAIT_THRESHOLD" envDefault:"3s"`
	KeepAlive          time.Duration `env:"KEEP_ALIVE" envDefault:"15s"`
	HeartbeatThreshold time.Duration `env:"HEARTBEAT_THRESHOLD" envDefault:"5s"`
	TransitPerFloor    time.Duration `env:"TRANSIT_PER_FLOOR" envDefault:"500ms"`

	Port        int `env:"PORT" envDefault:"6660"`
	SessionPort int `env:"SESSION_PORT" envDefault:"6661"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath    string `env:"METRICS_PATH" envDefault:"/metrics"`
	HealthEnabled  bool   `env:"HEALTH_ENABLED" envDefault:"true"`
	HealthPath     string `env:"HEALTH_PATH" envDefault:"/healthz"`

	CircuitBreakerMaxFailures   int           `env:"CIRCUIT_BREAKER_MAX_FAILURES" envDefault:"5"`
	CircuitBreakerResetTimeout time.Duration `env:"CIRCUIT_BREAKER_RESET_TIMEOUT" envDefault:"2s"`
	CircuitBreakerHalfOpenLimit int          `env:"CIRCUIT_BREAKER_HALF_OPEN_LIMIT" envDefault:"2"`
}

// InitConfig parses environment variables into a Config, applies
// environment-tier defaults, and validates the result.
func InitConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	applyEnvironmentDefaults(&cfg)

	if err := validateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyEnvironmentDefaults(cfg *Config) {
	switch cfg.Environment {
	case "development", "dev":
		if cfg.LogLevel == "INFO" {
			cfg.LogLevel = "DEBUG"
		}
	case "testing", "test":
		cfg.LogLevel = "WARN"
		cfg.TransitPerFloor = 10 * time.Millisecond
		cfg.WaitThreshold = 100 * time.Millisecond
		cfg.MetricsEnabled = false
	case "production", "prod":
		cfg.LogLevel = "WARN"
	}
}

func (c *Config) Bounds() domain.FloorBounds {
	return domain.FloorBounds{Min: c.MinFloor, Max: c.MaxFloor}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func (c *Config) IsTesting() bool {
	return c.Environment == "testing" || c.Environment == "test"
}

func validateConfiguration(cfg *Config) error {
	if cfg.MinFloor >= cfg.MaxFloor {
		return domain.NewValidationError("min floor must be less than max floor", nil).
			WithContext("min_floor", cfg.MinFloor).
			WithContext("max_floor", cfg.MaxFloor)
	}
	if cfg.MinFloor < constants.MinAllowedFloor {
		return domain.NewValidationError("min floor is below system minimum", nil).
			WithContext("min_floor", cfg.MinFloor).
			WithContext("system_minimum", constants.MinAllowedFloor)
	}
	if cfg.MaxFloor > constants.MaxAllowedFloor {
		return domain.NewValidationError("max floor exceeds system maximum", nil).
			WithContext("max_floor", cfg.MaxFloor).
			WithContext("system_maximum", constants.MaxAllowedFloor)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return domain.NewValidationError("port must be between 1 and 65535", nil).
			WithContext("port", cfg.Port)
	}
	if cfg.SessionPort <= 0 || cfg.SessionPort > 65535 {
		return domain.NewValidationError("session port must be between 1 and 65535", nil).
			WithContext("session_port", cfg.SessionPort)
	}
	if cfg.WaitThreshold <= 0 {
		return domain.NewValidationError("wait threshold must be positive", nil).
			WithContext("wait_threshold", cfg.WaitThreshold)
	}
	if cfg.KeepAlive <= 0 {
		return domain.NewValidationError("keep alive interval must be positive", nil).
			WithContext("keep_alive", cfg.KeepAlive)
	}
	if cfg.Speed <= 0 {
		return domain.NewValidationError("motor speed must be positive", nil).
			WithContext("speed", cfg.Speed)
	}
	if cfg.CircuitBreakerMaxFailures <= 0 || cfg.CircuitBreakerMaxFailures > 100 {
		return domain.NewValidationError("circuit breaker max failures must be between 1 and 100", nil).
			WithContext("max_failures", cfg.CircuitBreakerMaxFailures)
	}
	return nil
}

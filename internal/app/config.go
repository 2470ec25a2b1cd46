package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Constants
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionCookieName = "beschikbaarheid_session"

	// Error messages
	ErrInvalidDateKey = "Invalid date"
	ErrInvalidSlot    = "Invalid slot"
	ErrInvalidFormat  = "Invalid format"
	ErrInvalidRequest = "Invalid request"
	ErrInternalServer = "Internal server error"

	// ICS constants
	ICSProductID = "-//Beschikbaarheid//Tijdsloten//NL"
	ICSTimezone  = "Europe/Amsterdam"
	ICSUIDDomain = "beschikbaarheid"
)

// Config holds all configuration values. Keys are read from config.yaml,
// a .env file and the environment, in increasing priority.
type Config struct {
	Env                  string        `mapstructure:"APP_ENV" validate:"oneof=development production"`
	Port                 int           `mapstructure:"APP_PORT" validate:"min=1,max=65535"`
	LogLevel             string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	SessionTTL           time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	SessionSweepInterval time.Duration `mapstructure:"SESSION_SWEEP_INTERVAL" validate:"gt=0"`
	MaxRequestsPerMin    int           `mapstructure:"MAX_REQUESTS_PER_MIN" validate:"min=1"`
	AllowedOrigins       []string      `mapstructure:"ALLOWED_ORIGINS" validate:"min=1,dive,required"`
	AuthFile             string        `mapstructure:"AUTH_FILE"`
	InitialMonth         string        `mapstructure:"INITIAL_MONTH" validate:"omitempty,datetime=2006-01"`
	ShutdownTimeout      time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

var defaults = map[string]any{
	"APP_ENV":                EnvDevelopment,
	"APP_PORT":               8080,
	"LOG_LEVEL":              "info",
	"SESSION_TTL":            "2h",
	"SESSION_SWEEP_INTERVAL": "5m",
	"MAX_REQUESTS_PER_MIN":   300,
	"ALLOWED_ORIGINS":        "*",
	"AUTH_FILE":              "",
	"INITIAL_MONTH":          "2025-03",
	"SHUTDOWN_TIMEOUT":       "5s",
}

// LoadConfig reads the configuration. configFile may be empty, in which case
// config.yaml is looked up in . and ./config.
func LoadConfig(configFile string) (Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CredentialedOrigins reports whether cross-origin API calls may send the
// session cookie, which is only the case for an explicit origin list.
func (c Config) CredentialedOrigins() bool {
	return len(c.AllowedOrigins) > 0 && !slices.Contains(c.AllowedOrigins, "*")
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Package config loads the relay configuration once at process start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal container images

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIKey         = "OPENWEATHER_API_KEY"
	KeyBaseURL        = "OPENWEATHER_BASE_URL"
	KeyTimeout        = "UPSTREAM_TIMEOUT"
	KeyPort           = "APP_PORT"
	KeyEnv            = "APP_ENV"
	KeyLogLevel       = "LOG_LEVEL"
	KeyTimezone       = "FORECAST_TIMEZONE"
	KeyAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	KeyRequireTLS     = "REQUIRE_TLS"
	KeyOTelEnabled    = "OTEL_ENABLED"
	KeyOTLPEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Default values.
const (
	DefaultBaseURL        = "https://api.openweathermap.org/data/2.5"
	DefaultTimeout        = "10s"
	DefaultPort           = "8000"
	DefaultEnv            = "development"
	DefaultLogLevel       = "info"
	DefaultTimezone       = "UTC"
	DefaultAllowedOrigins = "http://localhost:5173,http://127.0.0.1:5173"
	DefaultOTLPEndpoint   = "localhost:4317"
)

// MinUpstreamTimeout is the smallest accepted UPSTREAM_TIMEOUT.
const MinUpstreamTimeout = 100 * time.Millisecond

// Configuration errors.
var (
	ErrMissingAPIKey   = errors.New(KeyAPIKey + " is not set")
	ErrInvalidTimeout  = fmt.Errorf("%s must be a duration with a unit (e.g. %s) of at least %s", KeyTimeout, DefaultTimeout, MinUpstreamTimeout)
	ErrWildcardOrigin  = errors.New(KeyAllowedOrigins + " must not contain \"*\" because credentials are allowed")
	ErrNoOrigins       = errors.New(KeyAllowedOrigins + " must list at least one origin")
	ErrInvalidTimezone = errors.New(KeyTimezone + " is not a known time zone")
)

// Config is the relay configuration. It is built once by Load and only read
// afterwards.
type Config struct {
	APIKey          string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	Port     string
	Env      string
	LogLevel string

	// Location decides forecast calendar dates.
	Location *time.Location

	AllowedOrigins []string
	RequireTLS     bool

	OTelEnabled  bool
	OTLPEndpoint string
}

// Load reads envFile when it exists, then the process environment, which
// takes precedence. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		APIKey:          strings.TrimSpace(v.GetString(KeyAPIKey)),
		UpstreamBaseURL: strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		Port:            v.GetString(KeyPort),
		Env:             v.GetString(KeyEnv),
		LogLevel:        v.GetString(KeyLogLevel),
		AllowedOrigins:  splitList(v.GetString(KeyAllowedOrigins)),
		RequireTLS:      v.GetBool(KeyRequireTLS),
		OTelEnabled:     v.GetBool(KeyOTelEnabled),
		OTLPEndpoint:    v.GetString(KeyOTLPEndpoint),
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = timeout
	if err := validateOrigins(cfg.AllowedOrigins); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(v.GetString(KeyTimezone))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyEnv, DefaultEnv)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyTimezone, DefaultTimezone)
	v.SetDefault(KeyAllowedOrigins, DefaultAllowedOrigins)
	v.SetDefault(KeyRequireTLS, false)
	v.SetDefault(KeyOTelEnabled, false)
	v.SetDefault(KeyOTLPEndpoint, DefaultOTLPEndpoint)
}

// parseTimeout requires an explicit unit. A bare "10" would otherwise be
// read as nanoseconds and fail every upstream call.
func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if d < MinUpstreamTimeout {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTimeout, d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validateOrigins(origins []string) error {
	if len(origins) == 0 {
		return ErrNoOrigins
	}
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return ErrWildcardOrigin
		}
	}
	return nil
}

// Package config loads service configuration with koanf from, in increasing
// priority: built-in defaults, an optional YAML file, TODOAGENDA_* environment
// variables and command-line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/todoagenda/internal/validation"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TODOAGENDA_SERVER_ADDR.
	EnvPrefix = "TODOAGENDA_"
	// DefaultConfigPath is read when present and --config is not given.
	DefaultConfigPath = "todoagenda.yaml"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Dates    DatesConfig    `koanf:"dates"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string `koanf:"cors_origins"`
	// RateLimit is the number of requests per RateWindow allowed per client IP.
	// Zero disables rate limiting.
	RateLimit  int           `koanf:"rate_limit" validate:"gte=0"`
	RateWindow time.Duration `koanf:"rate_window" validate:"gt=0"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path        string        `koanf:"path" validate:"required"`
	BusyTimeout time.Duration `koanf:"busy_timeout" validate:"gte=0"`
}

// DatesConfig selects how due dates are parsed.
type DatesConfig struct {
	// Strict rejects calendar overflow such as 2024-02-30 instead of rolling it forward.
	Strict bool `koanf:"strict"`
}

// LogConfig configures the global zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// MetricsConfig toggles the Prometheus endpoint and middleware.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{},
			RateLimit:       0,
			RateWindow:      time.Minute,
		},
		Database: DatabaseConfig{
			Path:        "todoApplication.db",
			BusyTimeout: 5 * time.Second,
		},
		Dates: DatesConfig{Strict: false},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"db":           "database.path",
	"strict-dates": "dates.strict",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// NewFlagSet defines the command-line flags. Flag defaults mirror Default.
func NewFlagSet(name string) *pflag.FlagSet {
	def := Default()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file (default "+DefaultConfigPath+" if present)")
	fs.String("addr", def.Server.Addr, "Address to listen on")
	fs.String("db", def.Database.Path, "Path to the SQLite database file")
	fs.Bool("strict-dates", def.Dates.Strict, "Reject due dates that overflow the calendar, such as 2024-02-30")
	fs.String("log-level", def.Log.Level, "Log level: trace, debug, info, warn, error")
	fs.String("log-format", def.Log.Format, "Log format: json or console")
	return fs
}

// Load parses args into fs and builds the layered configuration.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, explicit := configPath(fs)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey(fs)), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validation.Get().Struct(c); err != nil {
		return err
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return errors.New("server.rate_window must be positive when rate limiting is enabled")
	}
	return nil
}

// configPath resolves the config file from --config, then TODOAGENDA_CONFIG,
// then the default path. explicit is false only for the default path.
func configPath(fs *pflag.FlagSet) (path string, explicit bool) {
	if p, _ := fs.GetString("config"); p != "" {
		return p, true
	}
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, true
	}
	return DefaultConfigPath, false
}

// envKey maps TODOAGENDA_SERVER_READ_TIMEOUT to server.read_timeout.
// The first underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == "config" {
		return ""
	}
	return strings.Replace(s, "_", ".", 1)
}

func flagKey(fs *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}

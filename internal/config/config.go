// Package config loads blobrelay settings from flags, environment and
// .env files.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable (BLOBRELAY_DB, ...).
const EnvPrefix = "blobrelay"

// Flag keys shared by flags, viper keys and environment variables.
const (
	KeyDB             = "db"
	KeyAddr           = "addr"
	KeyAllowedOrigins = "allowed-origins"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyEventBuffer    = "event-buffer"
)

// Defaults.
const (
	DefaultDBPath      = "blobrelay.db"
	DefaultAddr        = "127.0.0.1:8501"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultEventBuffer = 16
)

// Config is the resolved process configuration.
type Config struct {
	DBPath         string
	Addr           string
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	EventBuffer    int
}

// LoadDotEnv loads .env and .env.local from the working directory.
// Missing files are not an error and existing variables win.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Loader resolves a Config from flags, environment and defaults, in
// that order of precedence. Each Loader owns its own viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader loads .env files and wires a fresh viper to the environment.
func NewLoader() *Loader {
	LoadDotEnv()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDB, DefaultDBPath)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyEventBuffer, DefaultEventBuffer)

	return &Loader{v: v}
}

// BindFlags binds cmd's flags, including inherited persistent flags.
func (l *Loader) BindFlags(cmd *cobra.Command) error {
	if err := l.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if err := l.v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	return nil
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	conf := &Config{
		DBPath:         l.v.GetString(KeyDB),
		Addr:           l.v.GetString(KeyAddr),
		AllowedOrigins: splitList(l.v.GetString(KeyAllowedOrigins)),
		LogLevel:       strings.ToLower(l.v.GetString(KeyLogLevel)),
		LogFormat:      strings.ToLower(l.v.GetString(KeyLogFormat)),
		EventBuffer:    l.v.GetInt(KeyEventBuffer),
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("invalid config: %s must not be empty", KeyDB)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid config: %s must be text or json, got %q", KeyLogFormat, c.LogFormat)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("invalid config: %s must be positive, got %d", KeyEventBuffer, c.EventBuffer)
	}
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

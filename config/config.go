// Package config loads library settings: logging, the default binary
// stream version and the binding types served by caching codecs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/opendaylight/yangtools-sub038/binfmt"
)

// EnvPrefix prefixes environment overrides, for example
// YANGTOOLS_LOG_LEVEL=debug.
const EnvPrefix = "YANGTOOLS"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Stream StreamConfig `mapstructure:"stream"`
	Codec  CodecConfig  `mapstructure:"codec"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs lists stdout, stderr or file paths.
	Outputs     []string       `mapstructure:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls rotation of file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

type StreamConfig struct {
	// Version names the stream generation written by default.
	Version string `mapstructure:"version"`
}

// WriterVersion returns the configured writer generation. Generations
// which can only be read are refused.
func (s StreamConfig) WriterVersion() (binfmt.Version, error) {
	v, err := binfmt.ParseVersion(s.Version)
	if err != nil {
		return 0, err
	}
	if !v.Writable() {
		return 0, &binfmt.UnsupportedVersionError{Version: uint16(v)}
	}
	return v, nil
}

type CodecConfig struct {
	// CacheTypes lists binding type names served by caching codecs.
	CacheTypes []string `mapstructure:"cache_types"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Stream: StreamConfig{Version: binfmt.DefaultVersion.String()},
	}
}

// Load reads the YAML file at path, when path is not empty, on top of the
// defaults. Environment variables with EnvPrefix override both; "." and
// "-" in keys become "_".
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("stream.version", cfg.Stream.Version)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	if _, err := c.Stream.WriterVersion(); err != nil {
		return fmt.Errorf("invalid stream.version: %w", err)
	}
	return nil
}

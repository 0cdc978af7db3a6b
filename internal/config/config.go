// Package config provides configuration loading from YAML files.
package config

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Library LibraryConfig `yaml:"library"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig represents playback engine configuration.
type EngineConfig struct {
	Tick            time.Duration `yaml:"tick" default:"10ms" validate:"gt=0,lte=1s"`
	MetadataTimeout time.Duration `yaml:"metadata_timeout" default:"2s" validate:"gt=0"`
	// Volume is a pointer so an explicit 0 survives defaulting.
	Volume *float64 `yaml:"volume" default:"1" validate:"required,gte=0,lte=1"`
}

// LibraryConfig represents the music library.
type LibraryConfig struct {
	Dir   string `yaml:"dir" default:"."`
	Watch bool   `yaml:"watch"`
}

// ServerConfig represents HTTP control server configuration.
type ServerConfig struct {
	Addr           string        `yaml:"addr" default:"127.0.0.1:7878" validate:"required"`
	StatusInterval time.Duration `yaml:"status_interval" default:"1s" validate:"gt=0"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" default:"stderr" validate:"oneof=stdout stderr file discard"`
	File       string `yaml:"file" validate:"required_if=Output file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"10" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"28" validate:"gte=0"`
}

// Load loads configuration from a YAML file. A missing file is not an error:
// environment overrides and defaults still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config file")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("CLIMPD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CLIMPD_LIBRARY"); v != "" {
		c.Library.Dir = v
	}
	if v := os.Getenv("CLIMPD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// StartVolume returns the configured initial volume.
func (c *Config) StartVolume() float64 {
	if c.Engine.Volume == nil {
		return 1
	}
	return *c.Engine.Volume
}

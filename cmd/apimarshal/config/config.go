// Package config loads apimarshal settings from a YAML file and
// APIMARSHAL_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPath = "apimarshal.yaml"
	EnvPrefix   = "APIMARSHAL_"
)

type Config struct {
	Endpoint    string            `koanf:"endpoint"`
	Timeout     time.Duration     `koanf:"timeout"`
	Definitions []string          `koanf:"definitions"`
	Headers     map[string]string `koanf:"headers"`
	Exclude     []string          `koanf:"exclude"`
	Tags        []string          `koanf:"tags"`
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
}

type ServerConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

var defaults = map[string]interface{}{
	"timeout":        "30s",
	"server.name":    "apimarshal",
	"server.version": "1.0.0",
	"log.level":      "info",
}

// Load reads path, then lets environment variables override it. A double
// underscore in a variable name separates nested keys, so
// APIMARSHAL_SERVER__NAME sets server.name. A missing file is only an error
// when path is not DefaultPath.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) || path != DefaultPath {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LogLevel parses Log.Level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) Validate() error {
	if len(c.Definitions) == 0 {
		return errors.New("no definitions configured")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	return nil
}

// Package config loads settings for the bufcrypt command.
//
// Sources are applied in order, later ones win: built-in defaults, an
// optional YAML file, then BUFCRYPT_ environment variables
// (BUFCRYPT_SERVER_LISTEN -> server.listen).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cybroslabs/libbufcrypt-go/base"
	"github.com/cybroslabs/libbufcrypt-go/gcm"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "BUFCRYPT_"

var ErrReadBytesNotSupported = errors.New("config: map provider has no byte form")

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

type ServerConfig struct {
	Listen  string `koanf:"listen"`
	Metrics string `koanf:"metrics"` // empty disables the /metrics listener
}

type Config struct {
	Backend   string       `koanf:"backend"`
	Algorithm string       `koanf:"algorithm"`
	Remote    string       `koanf:"remote"` // kms address, seal/open/digest run locally when empty
	Log       LogConfig    `koanf:"log"`
	Server    ServerConfig `koanf:"server"`
}

func defaults() map[string]any {
	return map[string]any{
		"backend":         "auto",
		"algorithm":       "aes256-gcm",
		"remote":          "",
		"log.level":       "info",
		"log.development": false,
		"server.listen":   "127.0.0.1:7443",
		"server.metrics":  "127.0.0.1:9443",
	}
}

type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// Load reads path (skipped when empty) and the environment on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	ret := &Config{}
	if err := k.Unmarshal("", ret); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Config) Validate() error {
	if gcm.ByName(c.Backend) == nil {
		return fmt.Errorf("backend %q: %w", c.Backend, base.ErrInvalidEnum)
	}
	if _, err := base.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", c.Log.Level, base.ErrInvalidEnum)
	}
	return nil
}

// AlgorithmValue returns the parsed algorithm, Validate has to pass first.
func (c *Config) AlgorithmValue() base.Algorithm {
	alg, _ := base.ParseAlgorithm(c.Algorithm)
	return alg
}

func (l LogConfig) Build() (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if l.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

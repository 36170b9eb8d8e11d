// Package config loads service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"anxiety-service/internal/detector"
	"anxiety-service/internal/features"
)

type Config struct {
	// ListenAddr is the local HTTP address the service binds to.
	ListenAddr string `yaml:"listen_addr"`

	// ModelDir, when set, is loaded at startup; the IDE can still send
	// an explicit initialize request to (re)load a directory.
	ModelDir string `yaml:"model_dir"`

	// RedisAddr enables the recent-prediction cache when non-empty.
	RedisAddr string `yaml:"redis_addr"`

	WindowSize      int  `yaml:"window_size"`
	CooldownSeconds int  `yaml:"cooldown_seconds"`
	WatchModelDir   bool `yaml:"watch_model_dir"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8700",
		WindowSize:      features.DefaultWindowSize,
		CooldownSeconds: detector.DefaultCooldownSeconds,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) on top
// of defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if dir := os.Getenv("MODEL_DIR"); dir != "" {
		c.ModelDir = dir
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.RedisAddr = addr
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", c.WindowSize)
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must not be negative, got %d", c.CooldownSeconds)
	}
	return nil
}

// BuildLogger constructs the service logger from the logging section.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if c.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

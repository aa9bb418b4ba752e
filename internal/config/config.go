// Package config loads the serving host configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the serving host.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Models ModelsConfig `yaml:"models"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	HistoryDBPath string `yaml:"history_db_path"`
}

// ModelsConfig locates the artifacts and sets prediction defaults.
type ModelsConfig struct {
	Dir  string `yaml:"dir"`
	TopK int    `yaml:"top_k"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:  ":8080",
			MaxUploadMB: 10,
		},
		Models: ModelsConfig{
			Dir:  "models",
			TopK: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 10
	}
	if cfg.Models.TopK <= 0 {
		cfg.Models.TopK = 3
	}
	return cfg, nil
}

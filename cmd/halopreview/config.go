package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the preview service configuration.
type Config struct {
	Addr         string `yaml:"addr"`
	DB           string `yaml:"db"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	Workers      int    `yaml:"workers"`
	LogLevel     string `yaml:"log_level"`
	MaxSize      int    `yaml:"max_size"`
}

func defaultConfig() Config {
	return Config{
		Addr:         ":8080",
		DB:           "data/assets.db",
		ReadTimeout:  10,
		WriteTimeout: 10,
		Workers:      4,
		LogLevel:     "info",
		MaxSize:      2048,
	}
}

// loadConfig reads path over the defaults, then applies HALO_* environment
// overrides. An empty path skips the file.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	cfg.Addr = getEnv("HALO_ADDR", cfg.Addr)
	cfg.DB = getEnv("HALO_DB", cfg.DB)
	cfg.LogLevel = getEnv("HALO_LOG_LEVEL", cfg.LogLevel)
	cfg.Workers = getEnvAsInt("HALO_WORKERS", cfg.Workers)
	return cfg, nil
}

func (c Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

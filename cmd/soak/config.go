package main

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Config drives one soak run.
type Config struct {
	Iterations  int
	Handles     int
	Seed        int64
	FreeRing    uint64
	LogLevel    string
	MetricsAddr string
}

type fileConfig struct {
	Iterations  int    `toml:"iterations"`
	Handles     int    `toml:"handles"`
	Seed        int64  `toml:"seed"`
	FreeRing    uint64 `toml:"free_ring"`
	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		Iterations: 100000,
		Handles:    64,
		Seed:       1,
		FreeRing:   64,
		LogLevel:   "info",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load soak config")
	}

	if meta.IsDefined("iterations") {
		cfg.Iterations = raw.Iterations
	}
	if meta.IsDefined("handles") {
		cfg.Handles = raw.Handles
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("free_ring") {
		cfg.FreeRing = raw.FreeRing
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Iterations < 0 {
		return errors.Newf("iterations must not be negative, got %d", c.Iterations)
	}
	if c.Handles <= 0 {
		return errors.Newf("handles must be positive, got %d", c.Handles)
	}
	if c.FreeRing == 0 || c.FreeRing&(c.FreeRing-1) != 0 {
		return errors.Newf("free_ring must be a power of two, got %d", c.FreeRing)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"credence/internal/engine"
)

// loadOrDefaultConfig reads a simulation config from a YAML file, applying
// every unset field's default. An empty path returns the defaults unchanged.
func loadOrDefaultConfig(path string) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return engine.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return engine.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the runtime environment shared by the commands. Flags override it.
type Env struct {
	DBPath     string `env:"GHOSTLAP_DB_PATH" envDefault:"ghostlap.db"`
	ConfigPath string `env:"GHOSTLAP_CONFIG"`
	Driver     string `env:"GHOSTLAP_DRIVER" envDefault:"Default"`
	AdminAddr  string `env:"GHOSTLAP_ADMIN_ADDR" envDefault:"localhost:8089"`
	Quiet      bool   `env:"GHOSTLAP_QUIET"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load returns the ghost config named by e.ConfigPath, or the built-in
// defaults when no path is set.
func (e Env) Load() (*GhostConfig, error) {
	if e.ConfigPath == "" {
		return DefaultGhostConfig(), nil
	}
	return LoadGhostConfig(e.ConfigPath)
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DoucheBagMIKE/RacingGameVR/internal/ghost"
	"github.com/DoucheBagMIKE/RacingGameVR/internal/race"
)

// DefaultConfigPath is the path to the canonical ghost defaults file.
const DefaultConfigPath = "config/ghost.defaults.json"

const (
	defaultSamplingInterval = 10 * time.Millisecond
	defaultLapCount         = 3
	defaultCountdown        = race.DefaultCountdown
	defaultRotationBlend    = ghost.BlendSlerp
)

// GhostConfig holds race and ghost tuning. Fields omitted from JSON fall back
// to the defaults returned by the Get* methods, so partial files are safe.
type GhostConfig struct {
	SamplingInterval *string `json:"sampling_interval,omitempty"` // duration string like "10ms"
	LapCount         *int    `json:"lap_count,omitempty"`
	Countdown        *string `json:"countdown,omitempty"` // "0s" skips the start lights
	RotationBlend    *string `json:"rotation_blend,omitempty"`
	GhostEnabled     *bool   `json:"ghost_enabled,omitempty"`
	// GhostFallbackLive races the current attempt's own recording when the
	// track has no best run yet.
	GhostFallbackLive *bool `json:"ghost_fallback_live,omitempty"`
}

func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyGhostConfig returns a GhostConfig with every field unset.
func EmptyGhostConfig() *GhostConfig {
	return &GhostConfig{}
}

// DefaultGhostConfig returns a config with every field populated.
func DefaultGhostConfig() *GhostConfig {
	return &GhostConfig{
		SamplingInterval:  ptrString(defaultSamplingInterval.String()),
		LapCount:          ptrInt(defaultLapCount),
		Countdown:         ptrString(defaultCountdown.String()),
		RotationBlend:     ptrString(string(defaultRotationBlend)),
		GhostEnabled:      ptrBool(true),
		GhostFallbackLive: ptrBool(true),
	}
}

// LoadGhostConfig loads a GhostConfig from a JSON file. The file must have a
// .json extension and be under 1MB.
func LoadGhostConfig(path string) (*GhostConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGhostConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent directories
// so tests can call it from any package. Panics if the file cannot be loaded.
func MustLoadDefaultConfig() *GhostConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadGhostConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that set fields hold usable values.
func (c *GhostConfig) Validate() error {
	if c.SamplingInterval != nil {
		d, err := time.ParseDuration(*c.SamplingInterval)
		if err != nil {
			return fmt.Errorf("invalid sampling_interval '%s': %w", *c.SamplingInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("sampling_interval must be positive, got %s", d)
		}
	}
	if c.LapCount != nil && *c.LapCount < 1 {
		return fmt.Errorf("lap_count must be at least 1, got %d", *c.LapCount)
	}
	if c.Countdown != nil {
		d, err := time.ParseDuration(*c.Countdown)
		if err != nil {
			return fmt.Errorf("invalid countdown '%s': %w", *c.Countdown, err)
		}
		if d < 0 {
			return fmt.Errorf("countdown must be non-negative, got %s", d)
		}
	}
	if c.RotationBlend != nil {
		if _, err := ghost.ParseBlend(*c.RotationBlend); err != nil {
			return fmt.Errorf("invalid rotation_blend: %w", err)
		}
	}
	return nil
}

// GetSamplingInterval returns the recorder sampling interval.
func (c *GhostConfig) GetSamplingInterval() time.Duration {
	if c.SamplingInterval == nil {
		return defaultSamplingInterval
	}
	d, err := time.ParseDuration(*c.SamplingInterval)
	if err != nil || d <= 0 {
		return defaultSamplingInterval
	}
	return d
}

// GetLapCount returns the number of laps per race.
func (c *GhostConfig) GetLapCount() int {
	if c.LapCount == nil || *c.LapCount < 1 {
		return defaultLapCount
	}
	return *c.LapCount
}

// GetCountdown returns the start-light duration. An explicit zero is kept.
func (c *GhostConfig) GetCountdown() time.Duration {
	if c.Countdown == nil {
		return defaultCountdown
	}
	d, err := time.ParseDuration(*c.Countdown)
	if err != nil || d < 0 {
		return defaultCountdown
	}
	return d
}

// GetRotationBlend returns the orientation blend mode.
func (c *GhostConfig) GetRotationBlend() ghost.Blend {
	if c.RotationBlend == nil {
		return defaultRotationBlend
	}
	b, err := ghost.ParseBlend(*c.RotationBlend)
	if err != nil {
		return defaultRotationBlend
	}
	return b
}

// GetGhostEnabled reports whether a ghost should be raced.
func (c *GhostConfig) GetGhostEnabled() bool {
	if c.GhostEnabled == nil {
		return true
	}
	return *c.GhostEnabled
}

// GetGhostFallbackLive reports whether to race the live recording when no best
// run exists.
func (c *GhostConfig) GetGhostFallbackLive() bool {
	if c.GhostFallbackLive == nil {
		return true
	}
	return *c.GhostFallbackLive
}

// RaceConfig builds the race session config for track.
func (c *GhostConfig) RaceConfig(track string) race.Config {
	countdown := c.GetCountdown()
	if countdown == 0 {
		// race.Config treats zero as "use the default"; negative skips.
		countdown = -1
	}
	return race.Config{Track: track, Laps: c.GetLapCount(), Countdown: countdown}
}

// PlayerConfig builds the ghost player config.
func (c *GhostConfig) PlayerConfig() ghost.PlayerConfig {
	return ghost.PlayerConfig{Interval: c.GetSamplingInterval(), Blend: c.GetRotationBlend()}
}

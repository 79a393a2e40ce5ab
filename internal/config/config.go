// Package config loads service configuration from an optional YAML file
// with environment-variable overrides. Analyzer thresholds fall back to
// the per-package defaults when left unset.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mirrorlabs/interview-mirror/pkg/session"
)

// Config is the top-level service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// PipelineConfig overrides individual analyzer thresholds. Zero values
// mean "use the default"; every threshold in the pipeline is positive,
// so zero is never a legitimate override.
type PipelineConfig struct {
	SmoothingMinCutoff float64 `yaml:"smoothing_min_cutoff"`
	SmoothingBeta      float64 `yaml:"smoothing_beta"`

	SlouchThreshold    float64 `yaml:"slouch_threshold"`
	RockThreshold      float64 `yaml:"rock_threshold"`
	EARThreshold       float64 `yaml:"ear_threshold"`
	LipPurseDuration   float64 `yaml:"lip_purse_duration"`
	FaceTouchThreshold float64 `yaml:"face_touch_threshold"`
	ClusterThreshold   float64 `yaml:"cluster_threshold"`
	CheatFlagThreshold int     `yaml:"cheat_flag_threshold"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:     "8080",
			LogLevel: "info",
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if it
// exists), then environment variables. A missing file is not an error;
// a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("CHEAT_FLAG_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("CHEAT_FLAG_THRESHOLD: %w", err)
		}
		cfg.Pipeline.CheatFlagThreshold = n
	}

	return cfg, nil
}

// SessionConfig maps the pipeline overrides onto the analyzer defaults.
func (c Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()

	p := c.Pipeline
	if p.SmoothingMinCutoff > 0 {
		sc.Smoothing.MinCutoff = p.SmoothingMinCutoff
	}
	if p.SmoothingBeta > 0 {
		sc.Smoothing.Beta = p.SmoothingBeta
	}
	if p.SlouchThreshold > 0 {
		sc.Posture.SlouchThreshold = p.SlouchThreshold
	}
	if p.RockThreshold > 0 {
		sc.Posture.RockThreshold = p.RockThreshold
	}
	if p.EARThreshold > 0 {
		sc.Stress.EARThreshold = p.EARThreshold
	}
	if p.LipPurseDuration > 0 {
		sc.Stress.LipPurseDuration = p.LipPurseDuration
	}
	if p.FaceTouchThreshold > 0 {
		sc.Gesture.FaceTouchThreshold = p.FaceTouchThreshold
	}
	if p.ClusterThreshold > 0 {
		sc.Integrity.ClusterThreshold = p.ClusterThreshold
	}
	if p.CheatFlagThreshold > 0 {
		sc.Integrity.CheatFlagThreshold = p.CheatFlagThreshold
	}
	return sc
}

// Package config loads the docgraph YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/validation"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

// Config is the complete configuration
type Config struct {
	Layout  visualization.LayoutConfig `yaml:"layout"`
	Store   StoreConfig                `yaml:"store"`
	UI      UIConfig                   `yaml:"ui"`
	Log     LogConfig                  `yaml:"log"`
	Metrics MetricsConfig              `yaml:"metrics"`
}

// StoreConfig controls the in-memory document store
type StoreConfig struct {
	SeedDocuments int `yaml:"seed_documents"`
	// RandomSeed makes the sample data reproducible; 0 picks a fresh seed
	RandomSeed      uint64              `yaml:"random_seed"`
	SimulateLatency bool                `yaml:"simulate_latency"`
	Latency         documents.Latencies `yaml:"latency"`
}

// UIConfig controls the terminal dashboard
type UIConfig struct {
	FrameInterval  time.Duration `yaml:"frame_interval"`
	RecentCount    int           `yaml:"recent_count"`
	ActivityBuffer int           `yaml:"activity_buffer"`
	MaxTicks       int           `yaml:"max_ticks"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type MetricsConfig struct {
	// Addr serves /metrics and the health endpoints when set, e.g. ":9090"
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Layout: visualization.DefaultLayoutConfig(visualization.Viewport{Width: 800, Height: 600}),
		Store: StoreConfig{
			SeedDocuments:   12,
			SimulateLatency: true,
			Latency:         documents.DefaultLatencies(),
		},
		UI: UIConfig{
			FrameInterval:  16 * time.Millisecond,
			RecentCount:    5,
			ActivityBuffer: 256,
			MaxTicks:       3000,
		},
		Log: LogConfig{
			Level: "info",
			File:  "docgraph.log",
		},
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Write saves cfg as YAML
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// EffectiveLatency is the store latency after SimulateLatency is applied
func (s StoreConfig) EffectiveLatency() documents.Latencies {
	if !s.SimulateLatency {
		return documents.Latencies{}
	}
	return s.Latency
}

func (s StoreConfig) Validate() error {
	return validation.NewConfigValidator("StoreConfig").
		NonNegative("SeedDocuments", s.SeedDocuments).
		NonNegativeDuration("Latency.List", s.Latency.List).
		NonNegativeDuration("Latency.Get", s.Latency.Get).
		NonNegativeDuration("Latency.Add", s.Latency.Add).
		NonNegativeDuration("Latency.Query", s.Latency.Query).
		NonNegativeDuration("Latency.Stats", s.Latency.Stats).
		NonNegativeDuration("Latency.Logs", s.Latency.Logs).
		NonNegativeDuration("Latency.Recalculate", s.Latency.Recalculate).
		MaxDuration("Latency.Recalculate", s.Latency.Recalculate, time.Minute).
		Validate()
}

func (u UIConfig) Validate() error {
	return validation.NewConfigValidator("UIConfig").
		Custom("FrameInterval", func() error {
			if u.FrameInterval < time.Millisecond || u.FrameInterval > time.Second {
				return fmt.Errorf("frame interval %v must be between 1ms and 1s", u.FrameInterval)
			}
			return nil
		}).
		Positive("RecentCount", u.RecentCount).
		Positive("ActivityBuffer", u.ActivityBuffer).
		Positive("MaxTicks", u.MaxTicks).
		Validate()
}

func (l LogConfig) Validate() error {
	return validation.NewConfigValidator("LogConfig").
		OneOf("Level", l.Level, []string{"debug", "info", "warn", "error"}).
		Validate()
}

// Validate checks every section
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Nested("layout", c.Layout).
		Nested("store", c.Store).
		Nested("ui", c.UI).
		Nested("log", c.Log).
		Validate()
}

// LogLevel returns the configured level, or the LOG_LEVEL environment variable when set
func (c *Config) LogLevel() logging.Level {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return logging.ParseLevel(env)
	}
	return logging.ParseLevel(c.Log.Level)
}

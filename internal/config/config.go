// Package config loads the settings for the bagdraw command, layering
// environment variables over an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "bagdraw.yaml"

// DefaultPool is the seven tetrominoes, which is what a bag randomizer is
// usually asked to deal out.
var DefaultPool = []string{"I", "J", "L", "O", "S", "T", "Z"}

// Config brings together every setting for a draw.
type Config struct {
	Bag     BagConfig     `yaml:"bag"`
	Draw    DrawConfig    `yaml:"draw"`
	Logging LoggingConfig `yaml:"logging"`
}

// BagConfig describes the bag that gets built.
type BagConfig struct {
	Pool []string `yaml:"pool" env:"BAGDRAW_POOL" envSeparator:","`
	// Labels maps pool items to the text printed for them. Items without a
	// label are printed as-is.
	Labels map[string]string `yaml:"labels" env:"BAGDRAW_LABELS" envSeparator:"," envKeyValSeparator:"="`
	// Seed of 0 means "seed from the clock".
	Seed int64 `yaml:"seed" env:"BAGDRAW_SEED"`
}

// DrawConfig describes what to do with the bag once it's built.
type DrawConfig struct {
	// Count of 0 means "one full bag".
	Count    int      `yaml:"count" env:"BAGDRAW_COUNT"`
	Peek     int      `yaml:"peek" env:"BAGDRAW_PEEK"`
	Add      []string `yaml:"add" env:"BAGDRAW_ADD" envSeparator:","`
	Remove   []string `yaml:"remove" env:"BAGDRAW_REMOVE" envSeparator:","`
	Snapshot bool     `yaml:"snapshot" env:"BAGDRAW_SNAPSHOT"`

	// EventsFile, when set, gets one line appended per bag event.
	EventsFile string `yaml:"events_file" env:"BAGDRAW_EVENTS_FILE"`
}

// LoggingConfig describes the log format and verbosity.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Load reads the YAML file at path, then applies environment overrides and
// defaults. An empty path falls back to BAGDRAW_CONFIG, then to bagdraw.yaml
// in the working directory; only that last, implicit file is allowed to be
// missing.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("BAGDRAW_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
		explicit = false
	}

	cfg := Config{}
	if err := readYAML(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env vars: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config yaml: %w", err)
	}
	return nil
}

// normalize fills in defaults for every field that wasn't set.
func (c *Config) normalize() {
	if c.Bag.Pool == nil {
		c.Bag.Pool = append([]string(nil), DefaultPool...)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate reports settings that can never produce a draw.
func (c *Config) Validate() error {
	if c.Draw.Count < 0 {
		return fmt.Errorf("draw count must not be negative, got %d", c.Draw.Count)
	}
	if c.Draw.Peek < 0 {
		return fmt.Errorf("peek must not be negative, got %d", c.Draw.Peek)
	}
	return nil
}

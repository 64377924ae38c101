// Package config loads ls-skywatch settings from a YAML file, a .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

type Config struct {
	Observer ObserverConfig                `yaml:"observer"`
	Server   ServerConfig                  `yaml:"server"`
	Storage  StorageConfig                 `yaml:"storage"`
	Refresh  RefreshConfig                 `yaml:"refresh"`
	Horizons HorizonsConfig                `yaml:"horizons"`
	Timezone TimezoneConfig                `yaml:"timezone"`
	Workers  int                           `yaml:"workers"`
	LogLevel string                        `yaml:"log_level"`
	Bodies   map[string]verdict.Conditions `yaml:"bodies"`
}

type ObserverConfig struct {
	Name       string  `yaml:"name"`
	Latitude   float64 `yaml:"latitude"`
	Longitude  float64 `yaml:"longitude"`
	ElevationM float64 `yaml:"elevation_m"`
}

type ServerConfig struct {
	Listen string `yaml:"listen" env:"SKYWATCH_LISTEN"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir" env:"SKYWATCH_DATA_DIR"`
}

type RefreshConfig struct {
	Schedule   string   `yaml:"schedule"`
	Bodies     []string `yaml:"bodies"`
	YearsAhead int      `yaml:"years_ahead"`
}

type HorizonsConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type TimezoneConfig struct {
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key" env:"GOOGLE_TIMEZONE_API_KEY"`
	Timeout   time.Duration `yaml:"timeout"`
	UTCOffset *int          `yaml:"utc_offset_s"` // used when no API key is set
}

// Defaults.
const (
	DefaultListen   = ":8080"
	DefaultDataDir  = "data"
	DefaultSchedule = "0 0 1 1 *" // midnight, January 1st
	DefaultWorkers  = 4
)

// DefaultRefreshBodies are refreshed when the config names none.
var DefaultRefreshBodies = []string{"Mars", "Venus", "Jupiter", "Saturn", "Halley", "Tuttle", "Swift-Tuttle"}

// Load reads .env (if present), then CONFIG_FILE (default config.yaml). A
// missing config file means defaults; an unreadable or invalid one is an
// error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	return LoadFile(configFile)
}

// LoadFile reads a config file, applies env fallbacks and defaults and
// validates the result.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.Server.Listen == "" {
		c.Server.Listen = os.Getenv("SKYWATCH_LISTEN")
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = os.Getenv("SKYWATCH_DATA_DIR")
	}
	if c.Timezone.APIKey == "" {
		c.Timezone.APIKey = os.Getenv("GOOGLE_TIMEZONE_API_KEY")
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("SKYWATCH_LOG_LEVEL")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = DefaultDataDir
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = DefaultSchedule
	}
	if len(c.Refresh.Bodies) == 0 {
		c.Refresh.Bodies = append([]string(nil), DefaultRefreshBodies...)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		return fmt.Errorf("observer latitude %.4f out of range [-90, 90]", c.Observer.Latitude)
	}
	if c.Observer.Longitude < -180 || c.Observer.Longitude > 180 {
		return fmt.Errorf("observer longitude %.4f out of range [-180, 180]", c.Observer.Longitude)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Refresh.YearsAhead < 0 {
		return fmt.Errorf("refresh years_ahead must not be negative, got %d", c.Refresh.YearsAhead)
	}
	if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", c.Refresh.Schedule, err)
	}
	for name, b := range c.Bodies {
		if b.MinAltitudeDeg < -90 || b.MinAltitudeDeg > 90 {
			return fmt.Errorf("body %s: min_altitude %.1f out of range", name, b.MinAltitudeDeg)
		}
		if b.MinElongationDeg < 0 || b.MinElongationDeg > 180 {
			return fmt.Errorf("body %s: min_elongation %.1f out of range", name, b.MinElongationDeg)
		}
	}
	return nil
}

// DefaultObserver returns the configured observer site.
func (c *Config) DefaultObserver() astro.Observer {
	return astro.Observer{
		LatDeg:     c.Observer.Latitude,
		LonDeg:     c.Observer.Longitude,
		ElevationM: c.Observer.ElevationM,
		Name:       c.Observer.Name,
	}
}

// ConditionTable returns the default condition table with the configured
// per-body overrides applied.
func (c *Config) ConditionTable() *verdict.Table {
	t := verdict.DefaultTable()
	for name, cond := range c.Bodies {
		t.Override(name, cond)
	}
	return t
}

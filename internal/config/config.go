// Package config loads layered configuration: defaults from flag
// definitions, then a YAML file, then DECKARD_ environment variables,
// then explicitly set flags. The merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the full runtime configuration.
type Config struct {
	DB       string `koanf:"db" validate:"required"`
	Listen   string `koanf:"listen" validate:"required,hostname_port"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
	// Timezone is the IANA zone used for all calendar-date bucketing
	// (streaks, daily breakdowns). Set it to the learner's zone; a UTC
	// streak breaks at the wrong midnight for everyone west of it.
	Timezone string `koanf:"timezone" validate:"required,timezone"`

	Review ReviewConfig `koanf:"review"`
	Stats  StatsConfig  `koanf:"stats"`
}

// ReviewConfig tunes the scheduling policy.
type ReviewConfig struct {
	// HardIsLapse makes a Hard rating reset repetitions like Again.
	HardIsLapse     bool `koanf:"hard_is_lapse"`
	MaxIntervalDays int  `koanf:"max_interval_days" validate:"min=1"`
}

// StatsConfig tunes the analytics aggregator.
type StatsConfig struct {
	// SecondsPerReview is the fixed study-time estimate per review.
	SecondsPerReview int `koanf:"seconds_per_review" validate:"min=1"`
}

// RegisterFlags defines the command-line flags whose defaults seed the
// configuration.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("db", "deckard.db", "Path to the SQLite database file")
	f.String("listen", "127.0.0.1:8484", "Address the HTTP API listens on")
	f.String("repos_dir", "repos", "Directory git sources are checked out into")
	f.String("timezone", "UTC", "IANA timezone for streak and daily bucketing")
	f.Bool("review.hard_is_lapse", true, "Treat a Hard rating as a lapse")
	f.Int("review.max_interval_days", 365, "Cap on scheduling intervals")
	f.Int("stats.seconds_per_review", 10, "Estimated study seconds per review")
}

// Load merges defaults, the optional YAML file at path, DECKARD_
// environment variables and set flags, then validates the result.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	// DECKARD_REVIEW__HARD_IS_LAPSE -> review.hard_is_lapse
	err := k.Load(env.Provider("DECKARD_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DECKARD_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flag defaults fill the gaps; explicitly set flags win over
	// everything.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

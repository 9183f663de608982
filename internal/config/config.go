// Package config handles gridmove configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/gridmove/internal/logger"
	"github.com/Faultbox/gridmove/pkg/rules"
)

// Config holds all gridmove settings.
type Config struct {
	Map      MapConfig      `yaml:"map"`
	Movement MovementConfig `yaml:"movement"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MapConfig selects the map to load.
type MapConfig struct {
	Path string `yaml:"path"` // .yaml/.yml or .gat
}

// MovementConfig holds the ruleset and mover settings.
type MovementConfig struct {
	Ruleset string  `yaml:"ruleset"` // empty picks the grid's default
	Script  string  `yaml:"script"`  // tengo file for the "script" ruleset
	Corners string  `yaml:"corners"` // strict | ignore
	Size    int     `yaml:"size"`    // footprint edge in cells
	Speed   float64 `yaml:"speed"`   // movement budget in cost units
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Movement: MovementConfig{
			Corners: "strict",
			Size:    1,
			Speed:   6,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be caught by YAML decoding.
func (c *Config) Validate() error {
	var errs []error
	if c.Movement.Size < 1 {
		errs = append(errs, fmt.Errorf("movement.size must be at least 1, got %d", c.Movement.Size))
	}
	if c.Movement.Speed < 0 {
		errs = append(errs, fmt.Errorf("movement.speed must not be negative, got %v", c.Movement.Speed))
	}
	if _, err := rules.ParseCornerRule(c.Movement.Corners); err != nil {
		errs = append(errs, fmt.Errorf("movement.corners: %w", err))
	}
	if c.Movement.Ruleset == "script" && c.Movement.Script == "" {
		errs = append(errs, errors.New("movement.script is required for the script ruleset"))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// RuleOptions converts the movement settings into ruleset options.
func (c *Config) RuleOptions() (rules.Options, error) {
	corners, err := rules.ParseCornerRule(c.Movement.Corners)
	if err != nil {
		return rules.Options{}, err
	}
	return rules.Options{Corners: corners, ScriptPath: c.Movement.Script}, nil
}

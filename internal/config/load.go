package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./gridmove.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "GridMove")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "GridMove")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "gridmove")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "gridmove")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Relative map and script paths in the file are resolved against the file's
// directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if p := file.Map.Path; p != "" && !filepath.IsAbs(p) {
		cfg.Map.Path = filepath.Join(dir, p)
	}
	if p := file.Movement.Script; p != "" && !filepath.IsAbs(p) {
		cfg.Movement.Script = filepath.Join(dir, p)
	}
	return nil
}

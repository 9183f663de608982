package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagMap     = flag.String("map", "", "Map file (.yaml, .yml, .gat or archive.grf#map)")
	flagRuleset = flag.String("ruleset", "", "Movement ruleset (dnd5e, pathfinder, cardinal, uniform, script)")
	flagScript  = flag.String("script", "", "Cost script for the script ruleset")
	flagCorners = flag.String("corners", "", "Diagonal corner rule (strict, ignore)")
	flagSize    = flag.Int("size", 0, "Creature footprint in cells")
	flagSpeed   = flag.Float64("speed", -1, "Movement budget")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments: the command and its operands.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMap != "" {
		cfg.Map.Path = *flagMap
	}
	if *flagRuleset != "" {
		cfg.Movement.Ruleset = *flagRuleset
	}
	if *flagScript != "" {
		cfg.Movement.Script = *flagScript
		if *flagRuleset == "" {
			cfg.Movement.Ruleset = "script"
		}
	}
	if *flagCorners != "" {
		cfg.Movement.Corners = *flagCorners
	}
	if *flagSize > 0 {
		cfg.Movement.Size = *flagSize
	}
	if *flagSpeed >= 0 {
		cfg.Movement.Speed = *flagSpeed
	}
}

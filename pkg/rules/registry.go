package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// ErrUnknownRuleset is returned by New for unregistered names.
var ErrUnknownRuleset = errors.New("unknown ruleset")

// Options configures New.
type Options struct {
	Corners CornerRule
	// ScriptPath is the tengo file used by the "script" ruleset.
	ScriptPath string
}

// Names lists the rulesets New understands.
func Names() []string {
	return []string{"dnd5e", "pathfinder", "cardinal", "uniform", "script"}
}

// Default returns the ruleset name used when none is configured.
func Default(topo grid.Topology) string {
	if _, ok := topo.(*grid.Hex); ok {
		return "uniform"
	}
	return "dnd5e"
}

// New creates the named ruleset over topo. An empty name selects Default.
func New(name string, topo grid.Topology, opts Options) (Ruleset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default(topo)
	}

	switch name {
	case "dnd5e", "5e":
		return DnD5e(topo, opts.Corners), nil
	case "pathfinder", "pf":
		return Pathfinder(topo, opts.Corners), nil
	case "cardinal":
		return Cardinal(topo), nil
	case "uniform":
		return Uniform(topo, opts.Corners), nil
	case "script":
		if opts.ScriptPath == "" {
			return nil, fmt.Errorf("%w: script ruleset needs a script path", ErrScript)
		}
		return LoadScript(opts.ScriptPath, topo, opts.Corners)
	default:
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownRuleset, name, strings.Join(Names(), ", "))
	}
}

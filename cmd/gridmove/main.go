// gridmove plans creature movement on square and hex battle maps.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/gridmove/internal/config"
	"github.com/Faultbox/gridmove/internal/logger"
	"github.com/Faultbox/gridmove/internal/movement"
	"github.com/Faultbox/gridmove/pkg/grid"
	"github.com/Faultbox/gridmove/pkg/mapfile"
	"github.com/Faultbox/gridmove/pkg/rules"
)

var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	a := &app{cfg: cfg, out: os.Stdout, log: logger.Named("cli")}
	if err := a.run(args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `gridmove - grid movement planner

Usage:
  gridmove [flags] <command> [args]

Commands:
  info                     Show map and ruleset information
  path <sx> <sy> <dx> <dy> Plan a move and draw the route
  reach <x> <y>            Draw every cell reachable within -speed
  watch <x> <y>            Redraw reach whenever the map or script changes
  config [save]            Print the effective config, or save it
  help                     Show this help

Flags:
  -config <file>    Config file (default ./gridmove.yaml or user config dir)
  -map <file>       Map file (.yaml, .yml, .gat or archive.grf#map)
  -ruleset <name>   dnd5e, pathfinder, cardinal, uniform or script
  -script <file>    Tengo cost script (implies -ruleset script)
  -corners <rule>   strict or ignore
  -size <n>         Creature size in cells
  -speed <n>        Movement budget
  -debug            Debug logging

Examples:
  gridmove -map cave.yaml info
  gridmove -map cave.yaml -size 2 path 0 0 6 4
  gridmove -map prontera.gat -ruleset pathfinder -speed 6 reach 150 180
  gridmove -map data.grf#izlude info`)
}

// app runs one command against the loaded configuration.
type app struct {
	cfg *config.Config
	out io.Writer
	log *zap.Logger
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "info":
		return a.cmdInfo()
	case "path":
		return a.cmdPath(args)
	case "reach":
		return a.cmdReach(args)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.cmdWatch(ctx, args)
	case "config":
		return a.cmdConfig(args)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// load reads the configured map and builds a planner for it.
func (a *app) load() (*mapfile.Map, *movement.Planner, error) {
	if a.cfg.Map.Path == "" {
		return nil, nil, fmt.Errorf("%w: no map given (use -map or map.path)", errUsage)
	}
	m, err := mapfile.Load(a.cfg.Map.Path)
	if err != nil {
		return nil, nil, err
	}

	opts, err := a.cfg.RuleOptions()
	if err != nil {
		return nil, nil, err
	}
	rs, err := rules.New(a.cfg.Movement.Ruleset, m.Grid, opts)
	if err != nil {
		return nil, nil, err
	}

	a.log.Info("map loaded",
		zap.String("name", m.Name),
		zap.String("kind", string(m.Kind)),
		zap.Int("width", m.Grid.Width()),
		zap.Int("height", m.Grid.Height()),
		zap.String("ruleset", rs.Name()),
	)
	return m, movement.New(m.Grid, rs, nil), nil
}

func (a *app) cmdInfo() error {
	m, p, err := a.load()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Map:     %s\n", m.Name)
	fmt.Fprintf(a.out, "Source:  %s\n", m.Source)
	fmt.Fprintf(a.out, "Kind:    %s\n", m.Kind)
	fmt.Fprintf(a.out, "Size:    %dx%d (%d cells)\n", m.Grid.Width(), m.Grid.Height(), m.Grid.NumVertices())
	fmt.Fprintf(a.out, "Ruleset: %s (min step %g)\n", p.Ruleset().Name(), p.Ruleset().MinCost())
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Cells by terrain:")

	counts := m.Grid.Count()
	terrains := make([]grid.Terrain, 0, len(counts))
	for t := range counts {
		terrains = append(terrains, t)
	}
	sort.Slice(terrains, func(i, j int) bool { return terrains[i] < terrains[j] })
	for _, t := range terrains {
		fmt.Fprintf(a.out, "  %c %-10s %d\n", t.Rune(), t, counts[t])
	}
	return nil
}

func (a *app) cmdPath(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("%w: gridmove path <sx> <sy> <dx> <dy>", errUsage)
	}
	m, p, err := a.load()
	if err != nil {
		return err
	}
	src, err := parseCell(m.Grid, args[0], args[1])
	if err != nil {
		return err
	}
	dst, err := parseCell(m.Grid, args[2], args[3])
	if err != nil {
		return err
	}

	size := a.cfg.Movement.Size
	route, err := p.Path(src, dst, size)
	if err != nil {
		return err
	}
	if !route.Found {
		fmt.Fprintf(a.out, "No path from %s to %s for size %d\n", coords(m.Grid, src), coords(m.Grid, dst), size)
		return nil
	}

	speed := a.cfg.Movement.Speed
	status := "within"
	if route.Cost > speed {
		status = "exceeds"
	}
	fmt.Fprintf(a.out, "Path:   %d steps, weight %g, cost %g (%s speed %g)\n", len(route.Path)-1, route.Weight, route.Cost, status, speed)
	fmt.Fprint(a.out, "Cells: ")
	for _, v := range route.Path {
		fmt.Fprintf(a.out, " %s", coords(m.Grid, v))
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out)

	o := newOverlay(size)
	o.start, o.goal = src, dst
	o.addPath(m.Grid, route.Path)
	return render(a.out, m.Grid, o)
}

func (a *app) cmdReach(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: gridmove reach <x> <y>", errUsage)
	}
	m, p, err := a.load()
	if err != nil {
		return err
	}
	src, err := parseCell(m.Grid, args[0], args[1])
	if err != nil {
		return err
	}
	return a.drawReach(m, p, src)
}

func (a *app) drawReach(m *mapfile.Map, p *movement.Planner, src int) error {
	size, speed := a.cfg.Movement.Size, a.cfg.Movement.Speed
	cells, err := p.Reachable(src, size, speed)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Reach:  %d cells from %s within speed %g (size %d)\n\n", len(cells), coords(m.Grid, src), speed, size)
	o := newOverlay(size)
	o.start = src
	o.addReach(cells)
	return render(a.out, m.Grid, o)
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: gridmove watch <x> <y>", errUsage)
	}
	m, p, err := a.load()
	if err != nil {
		return err
	}
	src, err := parseCell(m.Grid, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.drawReach(m, p, src); err != nil {
		return err
	}

	paths := a.watchPaths()
	w, err := mapfile.NewWatcher(paths...)
	if err != nil {
		return err
	}
	defer w.Close()
	a.log.Info("watching map", zap.Strings("paths", paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			a.log.Info("file changed", zap.String("path", name))
			next, np, err := a.load()
			if err != nil {
				// Editors save in steps; keep the last good map.
				a.log.Warn("reload failed", zap.Error(err))
				continue
			}
			m, p = next, np
			if err := a.drawReach(m, p, src); err != nil {
				a.log.Warn("reach failed", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watch error", zap.Error(err))
		}
	}
}

// watchPaths lists the files a reload depends on: the map, or the archive
// holding it, and the cost script when one is configured.
func (a *app) watchPaths() []string {
	paths := []string{mapfile.SourceFile(a.cfg.Map.Path)}
	if a.cfg.Movement.Ruleset == "script" && a.cfg.Movement.Script != "" {
		paths = append(paths, a.cfg.Movement.Script)
	}
	return paths
}

func (a *app) cmdConfig(args []string) error {
	if len(args) > 0 && args[0] == "save" {
		path, err := a.cfg.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved config to %s\n", path)
		return nil
	}
	if len(args) > 0 {
		return fmt.Errorf("%w: gridmove config [save]", errUsage)
	}

	data, err := a.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = a.out.Write(data)
	return err
}

func parseCell(topo grid.Topology, xs, ys string) (int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, fmt.Errorf("%w: bad x %q", errUsage, xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, fmt.Errorf("%w: bad y %q", errUsage, ys)
	}
	v, ok := topo.Index(x, y)
	if !ok {
		return 0, fmt.Errorf("cell (%d,%d) outside %dx%d map", x, y, topo.Width(), topo.Height())
	}
	return v, nil
}

func coords(topo grid.Topology, v int) string {
	x, y := topo.Coordinates(v)
	return fmt.Sprintf("(%d,%d)", x, y)
}

// Command plumetop runs the plume simulation in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/fallout/audio"
	"github.com/pthm-cable/fallout/config"
	"github.com/pthm-cable/fallout/sim"
	"github.com/pthm-cable/fallout/systems"
	"github.com/pthm-cable/fallout/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	logPath := flag.String("log", "plumetop.log", "Log file (the terminal is used for drawing)")
	explode := flag.String("explode", "", "Comma-separated plant names to release at start")
	fps := flag.Int("fps", 30, "Frames per second")
	quiet := flag.Bool("quiet", false, "Disable the explosion sound")
	flag.Parse()

	if err := run(*configPath, *seed, *logPath, *explode, *fps, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "plumetop:", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, logPath, explode string, fps int, quiet bool) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	world, err := sim.New(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	player := audio.NewPlayer(audio.Config{
		Enabled:    cfg.Audio.Enabled && !quiet,
		SampleRate: cfg.Audio.SampleRate,
		Volume:     cfg.Audio.Volume,
		MaxPowerMW: cfg.Plants.MaxPower,
	}, seed)
	if err := player.Initialize(); err != nil {
		slog.Warn("audio disabled", "error", err)
	}
	defer player.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	app := tui.NewApp(screen, world, systems.NewBackdrop(seed), cfg.Physics.DT, fps)
	app.OnExplode = func(p systems.Plant, emitted int) {
		player.PlayExplosion(p.PowerMW)
		slog.Info("explosion", "plant", p.Name, "emitted", emitted)
	}

	for _, name := range splitNames(explode) {
		i, ok := world.Plants().Find(name)
		if !ok {
			return fmt.Errorf("plant %q: %w", name, sim.ErrNoSuchPlant)
		}
		if err := world.Select(systems.Selected(i)); err != nil {
			return err
		}
		app.Apply(tui.CmdExplode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("plumetop started", "seed", seed, "plants", world.Plants().Len())
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("plumetop stopped", "tick", world.CurrentTick())
	return nil
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

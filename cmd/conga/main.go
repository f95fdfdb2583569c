package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/observability/log"
	"github.com/zeusync/conga/internal/host"
	"github.com/zeusync/conga/internal/injector"
	"github.com/zeusync/conga/internal/terminal"
	"github.com/zeusync/conga/pkg/concurrent"
)

var (
	configPath    = flag.String("config", "", "YAML config file, watched for changes")
	terminalFlag  = flag.Bool("terminal", false, "draw the simulation in the terminal and steer with the arrow keys")
	telemetryAddr = flag.String("telemetry", "", "serve websocket telemetry on this address")
	logLevel      = flag.String("log-level", "", "debug, info, warn or error")
	seed          = flag.Uint64("seed", 0, "scene seed, 0 keeps the configured one")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "conga: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runners := []concurrent.Runner{app.Sim.Run}

	if cfg.Telemetry.Enabled {
		sub, err := app.Hub.Forward(app.Events)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Cancel() }()
		app.Sim.AddSink(app.Hub)
		runners = append(runners, func(ctx context.Context) error {
			return app.Hub.Serve(ctx, cfg.Telemetry.Addr)
		})
	}

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath)
		if err != nil {
			return err
		}
		runners = append(runners, func(ctx context.Context) error {
			return watcher.Run(ctx, func(next *config.Config) {
				if err := applyFlags(next); err != nil {
					app.Logger.Warn("reloaded config rejected", log.Error(err))
					return
				}
				app.Sim.Reload(next)
			}, func(err error) {
				app.Logger.Warn("config reload failed", log.Error(err))
			})
		})
	}

	if cfg.Terminal.Enabled {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		defer screen.Fini()

		viewer := terminal.NewViewer(screen, cfg.View)
		keys := terminal.NewKeys(cfg.Terminal.KeyHold)
		app.Sim.SetControls(keys)
		app.Sim.AddSink(host.SinkFunc(viewer.Draw))
		app.Sim.OnReload(func(next *config.Config) {
			viewer.SetView(next.View)
			keys.SetHold(next.Terminal.KeyHold)
		})
		runners = append(runners,
			func(ctx context.Context) error { return keys.Run(ctx, screen) },
			concurrent.Until(keys.Quit()),
		)
	}

	return concurrent.Run(ctx, runners...)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags lays the command line over cfg. Flags win over the file, also
// across reloads.
func applyFlags(cfg *config.Config) error {
	if *terminalFlag {
		cfg.Terminal.Enabled = true
	}
	if *telemetryAddr != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Addr = *telemetryAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	return cfg.Validate()
}

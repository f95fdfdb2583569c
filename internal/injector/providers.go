// Package injector wires the application graph.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/observability/log"
	"github.com/zeusync/conga/internal/host"
	"github.com/zeusync/conga/internal/server"
)

const maxTelemetryClients = 32

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideHub,
	host.New,
	wire.Struct(new(App), "*"),
)

// App is everything cmd/conga needs to run.
type App struct {
	Config *config.Config
	Logger *log.Logger
	Events bus.EventBus
	Sim    *host.Simulation
	Hub    *server.Hub
}

// ProvideLogger logs JSON to stderr, except in terminal mode where stderr
// shares the screen and logging is discarded.
func ProvideLogger(cfg *config.Config) *log.Logger {
	if cfg.Terminal.Enabled {
		return log.NewNop()
	}
	return log.New(cfg.LogLevel())
}

func ProvideHub(cfg *config.Config, logger log.Log) *server.Hub {
	return server.NewHub(logger.With(log.String("component", "telemetry")), maxTelemetryClients)
}

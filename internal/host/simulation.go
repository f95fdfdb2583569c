// Package host owns the frame loop: it builds the scene, feeds controls in,
// steps the entity manager and hands snapshots to the viewers.
package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/input"
	"github.com/zeusync/conga/internal/core/observability/log"
	"github.com/zeusync/conga/internal/server"
)

// Sink receives a snapshot every few frames. It is called on the frame loop
// and must not block.
type Sink interface {
	Publish(s server.Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(server.Snapshot)

func (f SinkFunc) Publish(s server.Snapshot) { f(s) }

// ControlSource writes the current control state before each frame.
type ControlSource interface {
	Apply(state *input.State)
}

// Simulation is the single owner of all simulation state. Everything except
// Reload must be called from the goroutine running the frame loop.
type Simulation struct {
	logger  log.Log
	events  bus.EventBus
	manager *entity.Manager
	scene   *conga.Scene
	group   *Group
	spawner *Spawner
	input   *input.State
	clock   *Clock

	view       ViewBox
	interval   time.Duration
	every      uint64
	statsEvery uint64

	controls ControlSource
	sinks    []Sink
	onReload []func(*config.Config)

	frame uint64
	time  float64
	tick  entity.TickContext

	mu      sync.Mutex
	pending *config.Config
}

// New builds the scene described by cfg. events may be nil.
func New(cfg *config.Config, logger log.Log, events bus.EventBus) (*Simulation, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	opts := []entity.Option{entity.WithLogger(logger)}
	if events != nil {
		opts = append(opts, entity.WithEventBus(events))
	}
	manager := entity.NewManager(opts...)
	group := NewGroup()

	scene, err := conga.BuildScene(manager, group, cfg.SceneConfig())
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	s := &Simulation{
		logger:  logger,
		events:  events,
		manager: manager,
		scene:   scene,
		group:   group,
		spawner: NewSpawner(manager, group),
		input:   input.NewDefaultState(),
		clock:   NewClock(cfg.Sim.MaxDelta),
	}
	s.configure(cfg)
	return s, nil
}

func (s *Simulation) Manager() *entity.Manager { return s.manager }
func (s *Simulation) Scene() *conga.Scene      { return s.scene }
func (s *Simulation) Input() *input.State      { return s.input }
func (s *Simulation) Events() bus.EventBus     { return s.events }
func (s *Simulation) Frame() uint64            { return s.frame }
func (s *Simulation) Time() float64            { return s.time }
func (s *Simulation) View() ViewBox            { return s.view }

// SetControls sets where control state comes from. nil leaves every control
// released.
func (s *Simulation) SetControls(src ControlSource) {
	s.controls = src
}

func (s *Simulation) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// OnReload registers fn to run on the frame loop after a reloaded config has
// been applied.
func (s *Simulation) OnReload(fn func(*config.Config)) {
	s.onReload = append(s.onReload, fn)
}

// Reload queues cfg for the next frame. It is safe to call from any
// goroutine; only the latest pending config is applied. Scene settings take
// effect on the next start.
func (s *Simulation) Reload(cfg *config.Config) {
	s.mu.Lock()
	s.pending = cfg
	s.mu.Unlock()
}

// Snapshot captures the world as of the last frame.
func (s *Simulation) Snapshot() server.Snapshot {
	return server.Capture(s.frame, s.time, s.manager, s.scene.Chain)
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	s.applyPending()
	if s.controls != nil {
		s.controls.Apply(s.input)
	}

	s.frame++
	s.time += dt
	s.tick = entity.TickContext{
		DeltaTime:  dt,
		Time:       s.time,
		Frame:      s.frame,
		Chain:      s.scene.Chain,
		Visibility: s.view,
		Controls:   s.input,
		Spawner:    s.spawner,
		Events:     s.events,
		Logger:     s.logger,
	}
	s.manager.Update(&s.tick)
	s.input.Update()

	if len(s.sinks) > 0 && s.frame%s.every == 0 {
		snap := s.Snapshot()
		for _, sink := range s.sinks {
			sink.Publish(snap)
		}
	}
	if s.frame%s.statsEvery == 0 {
		s.logger.Debug("frame stats",
			log.Uint64("frame", s.frame),
			log.Float64("time", s.time),
			log.Int("entities", s.manager.Len()),
			log.Int("chain", s.scene.Chain.Len()),
		)
	}
}

// Run steps the simulation at the configured tick rate until ctx is done.
func (s *Simulation) Run(ctx context.Context) error {
	interval := s.interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.clock.Reset()
	s.clock.Tick()
	s.logger.Info("simulation started",
		log.Int("entities", s.manager.Len()),
		log.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped",
				log.Uint64("frame", s.frame),
				log.Float64("time", s.time),
			)
			return nil
		case <-ticker.C:
			s.Step(s.clock.Tick())
			if s.interval != interval {
				interval = s.interval
				ticker.Reset(interval)
			}
		}
	}
}

func (s *Simulation) applyPending() {
	s.mu.Lock()
	cfg := s.pending
	s.pending = nil
	s.mu.Unlock()
	if cfg == nil {
		return
	}

	s.configure(cfg)
	s.logger.SetLevel(cfg.LogLevel())
	for _, fn := range s.onReload {
		fn(cfg)
	}
	s.logger.Info("config reloaded",
		log.String("level", cfg.LogLevel().String()),
		log.Duration("interval", s.interval),
	)
}

func (s *Simulation) configure(cfg *config.Config) {
	s.view = ViewBox(cfg.View)
	s.interval = cfg.FrameInterval()
	s.every = uint64(max(cfg.Telemetry.Every, 1))
	s.statsEvery = uint64(max(cfg.Sim.TickRate, 1)) * 10
	s.clock.SetMaxDelta(cfg.Sim.MaxDelta)
}

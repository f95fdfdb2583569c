package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/geom"
	"github.com/zeusync/conga/internal/core/input"
	"github.com/zeusync/conga/internal/server"
)

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock(0.05)
	c.now = func() time.Time { return now }

	assert.Zero(t, c.Tick(), "first tick has no history")

	now = now.Add(20 * time.Millisecond)
	assert.InDelta(t, 0.02, c.Tick(), 1e-9)

	now = now.Add(2 * time.Second)
	assert.Equal(t, 0.05, c.Tick(), "long frames are clamped")

	now = now.Add(-time.Second)
	assert.Zero(t, c.Tick(), "time going backwards yields zero")

	c.Reset()
	now = now.Add(time.Second)
	assert.Zero(t, c.Tick())
}

func TestViewBox(t *testing.T) {
	v := ViewBox{MinX: -10, MaxX: 10, MinZ: -5, MaxZ: 5}
	assert.True(t, v.Visible(geom.V(0, 100, 0)))
	assert.True(t, v.Visible(geom.V(10, 0, -5)))
	assert.False(t, v.Visible(geom.V(10.1, 0, 0)))
	assert.False(t, v.Visible(geom.V(0, 0, 6)))
}

func TestSpawnerAttachesUnderGroup(t *testing.T) {
	m := entity.NewManager()
	group := NewGroup()
	s := NewSpawner(m, group)

	var attached *entity.Entity
	e := s.Spawn("note", geom.V(1, 2, 3), func(e *entity.Entity) { attached = e })
	assert.Same(t, e, attached)
	assert.Equal(t, geom.V(1, 2, 3), e.Position())
	assert.True(t, group.Contains(e))

	m.RemoveEntity(e)
	assert.Zero(t, group.Len())
}

type holdLeft struct{}

func (holdLeft) Apply(state *input.State) { state.Set(input.Left, true) }

func newSimulation(t *testing.T, animals int) (*Simulation, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Scene.Animals = animals
	cfg.Telemetry.Every = 2
	sim, err := New(cfg, nil, bus.New())
	require.NoError(t, err)
	return sim, cfg
}

func TestStepMovesPlayerAndPublishesSnapshots(t *testing.T) {
	sim, _ := newSimulation(t, 3)
	require.Equal(t, 4, sim.Manager().Len())
	assert.Equal(t, 4, sim.group.Len(), "player and animals hang under the scene group")

	var snaps []server.Snapshot
	sim.AddSink(SinkFunc(func(s server.Snapshot) { snaps = append(snaps, s) }))

	for range 4 {
		sim.Step(0.05)
	}
	assert.Equal(t, uint64(4), sim.Frame())
	assert.InDelta(t, 0.2, sim.Time(), 1e-9)

	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(2), snaps[0].Frame)
	assert.Equal(t, uint64(4), snaps[1].Frame)

	player := sim.Scene().Player
	assert.InDelta(t, 16*0.2, player.Position().Z, 1e-9)
	assert.Equal(t, []string{player.ID()}, snaps[1].Chain)
	assert.Equal(t, server.KindPlayer, snaps[1].Entities[0].Kind)
}

func TestStepAppliesControls(t *testing.T) {
	sim, cfg := newSimulation(t, 0)
	sim.SetControls(holdLeft{})

	sim.Step(0.05)
	assert.True(t, sim.Input().Held(input.Left))
	assert.False(t, sim.Input().JustPressed(input.Left), "cleared at the end of the frame")

	turnSpeed := cfg.Sim.MoveSpeed / cfg.Sim.TurnDivisor
	assert.InDelta(t, turnSpeed*0.05, sim.Scene().Player.Transform().Yaw, 1e-9)
}

func TestReloadAppliesOnNextFrame(t *testing.T) {
	sim, _ := newSimulation(t, 0)

	next := config.Default()
	next.View = config.ViewConfig{MinX: 100, MaxX: 200, MinZ: 100, MaxZ: 200}
	next.Sim.TickRate = 30
	next.Log.Level = "debug"

	var got *config.Config
	sim.OnReload(func(c *config.Config) { got = c })
	sim.Reload(next)
	assert.Nil(t, got, "nothing changes before the next frame")

	sim.Step(0.05)
	require.Same(t, next, got)
	assert.Equal(t, ViewBox(next.View), sim.View())
	assert.Equal(t, time.Second/30, sim.interval)

	player, err := conga.PlayerKey.Get(sim.Scene().Player)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, player.OffscreenTime(), 1e-9, "the new view hides the player")
}

func TestRunStopsWithContext(t *testing.T) {
	sim, _ := newSimulation(t, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, sim.Run(ctx))
	assert.Positive(t, sim.Frame())
}

func TestNewRejectsBadScene(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Herd = nil
	_, err := New(cfg, nil, nil)
	assert.ErrorIs(t, err, conga.ErrEmptyHerd)
}

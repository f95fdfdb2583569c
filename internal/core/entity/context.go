package entity

import (
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/geom"
	"github.com/zeusync/conga/internal/core/observability/log"
)

// Visibility answers whether a world position is currently on screen.
type Visibility interface {
	Visible(p geom.Vec3) bool
}

// Controls is the control-state query read by player-driven components.
type Controls interface {
	Held(name string) bool
	JustPressed(name string) bool
}

// Spawner creates entities on behalf of components. attach runs once on the
// new entity before it joins the next traversal.
type Spawner interface {
	Spawn(name string, at geom.Vec3, attach func(e *Entity)) *Entity
}

// Space is the scene-graph parent an entity's transform hangs under.
type Space interface {
	Attach(e *Entity)
	Detach(e *Entity)
}

// ChainView is the shared ordered chain of entities, head first.
type ChainView interface {
	Len() int
	At(i int) *Entity
	Head() *Entity
	Tail() *Entity
	Append(e *Entity) int
}

// TickContext carries everything a component may read during one frame. The
// host builds it once per frame and hands the same value to every update.
type TickContext struct {
	DeltaTime float64
	Time      float64
	Frame     uint64

	Chain      ChainView
	Visibility Visibility
	Controls   Controls
	Spawner    Spawner
	Events     bus.EventBus
	Logger     log.Log
}

// Visible treats a missing visibility source as "everything is visible".
func (c *TickContext) Visible(p geom.Vec3) bool {
	return c.Visibility == nil || c.Visibility.Visible(p)
}

// Held reads a control, false without a control source.
func (c *TickContext) Held(name string) bool {
	return c.Controls != nil && c.Controls.Held(name)
}

// Log never returns nil.
func (c *TickContext) Log() log.Log {
	if c == nil || c.Logger == nil {
		return log.NewNop()
	}
	return c.Logger
}

// Publish forwards to the event bus when one is attached and logs failures.
func (c *TickContext) Publish(typ, source string, data any) {
	if c == nil || c.Events == nil {
		return
	}
	if err := c.Events.Publish(bus.NewEvent(typ, source, data)); err != nil {
		c.Log().Warn("event handler failed", log.String("type", typ), log.Error(err))
	}
}

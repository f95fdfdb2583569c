package conga

import (
	"github.com/zeusync/conga/internal/core/coroutine"
	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/geom"
)

type NoteConfig struct {
	// Lifetime is the number of updates a note moves before it removes itself.
	Lifetime int
	Speed    float64
	// Rise is the height above the player a note appears at.
	Rise float64
	// Jitter bounds the random sideways drift of the note direction.
	Jitter float64
}

func DefaultNoteConfig() NoteConfig {
	return NoteConfig{Lifetime: 60, Speed: 10, Rise: 5, Jitter: 0.2}
}

// Note drifts upward while fading out for Lifetime updates, then removes its
// own entity on the next one.
type Note struct {
	Direction geom.Vec3
	Hue       float64

	entity  *entity.Entity
	opacity float64
	runner  *coroutine.Scheduler
	drift   *coroutine.Task
}

func NewNote(e *entity.Entity, cfg NoteConfig, direction geom.Vec3, hue float64) *Note {
	n := &Note{
		Direction: direction,
		Hue:       hue,
		entity:    e,
		opacity:   1,
		runner:    coroutine.NewScheduler(),
	}
	n.drift = n.runner.Go(coroutine.Loop(cfg.Lifetime, func(i int, dt float64) {
		transform := e.Transform()
		transform.Position = transform.Position.Add(n.Direction.Scale(dt * cfg.Speed))
		n.opacity = 1 - float64(i)/float64(cfg.Lifetime)
	}))
	return n
}

func (*Note) Tag() entity.Tag { return TagNote }

// Opacity falls from 1 toward 0 over the note's lifetime.
func (n *Note) Opacity() float64 {
	return n.opacity
}

func (n *Note) Update(ctx *entity.TickContext) {
	n.runner.Tick(ctx.DeltaTime)
	if n.drift.Finished() {
		n.entity.Remove()
	}
}

// Package conga implements the chained-follower behaviors: the player at the
// head of the line, the animals that join it and the notes the player emits.
package conga

import (
	"github.com/zeusync/conga/internal/core/entity"
)

const (
	TagBody         entity.Tag = "body"
	TagAnimator     entity.Tag = "animator"
	TagStateDisplay entity.Tag = "state-display"
	TagFollower     entity.Tag = "follower"
	TagPlayer       entity.Tag = "player"
	TagNote         entity.Tag = "note"
)

var (
	BodyKey         = entity.NewKey[*Body](TagBody)
	AnimatorKey     = entity.NewKey[*Animator](TagAnimator)
	StateDisplayKey = entity.NewKey[*StateDisplay](TagStateDisplay)
	FollowerKey     = entity.NewKey[*Follower](TagFollower)
	PlayerKey       = entity.NewKey[*Player](TagPlayer)
	NoteKey         = entity.NewKey[*Note](TagNote)
)

// Body holds the model an entity shows and its interaction radius.
type Body struct {
	Model  string
	Radius float64
}

func (*Body) Tag() entity.Tag { return TagBody }

func (*Body) Update(*entity.TickContext) {}

// radiusOf is the interaction radius of e. Entities in the chain must carry a Body.
func radiusOf(e *entity.Entity) float64 {
	return BodyKey.MustGet(e).Radius
}

// Animator drives the named clip an entity plays. Clip time advances by
// DeltaTime scaled by TimeScale.
type Animator struct {
	TimeScale float64

	clip     string
	clipTime float64
}

func NewAnimator(timeScale float64) *Animator {
	return &Animator{TimeScale: timeScale}
}

func (*Animator) Tag() entity.Tag { return TagAnimator }

// SetAnimation switches clips and rewinds. Setting the running clip is a no-op.
func (a *Animator) SetAnimation(name string) {
	if a.clip == name {
		return
	}
	a.clip = name
	a.clipTime = 0
}

func (a *Animator) Clip() string { return a.clip }

func (a *Animator) ClipTime() float64 { return a.clipTime }

func (a *Animator) Update(ctx *entity.TickContext) {
	if a.clip == "" {
		return
	}
	a.clipTime += ctx.DeltaTime * a.TimeScale
}

// StateDisplay holds the short status label shown next to an entity.
type StateDisplay struct {
	text string
}

func (*StateDisplay) Tag() entity.Tag { return TagStateDisplay }

func (d *StateDisplay) SetText(text string) { d.text = text }

func (d *StateDisplay) Text() string { return d.text }

func (*StateDisplay) Update(*entity.TickContext) {}

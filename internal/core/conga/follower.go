package conga

import (
	"fmt"
	"math"

	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/fsm"
	"github.com/zeusync/conga/internal/core/geom"
	"github.com/zeusync/conga/internal/core/observability/log"
	"github.com/zeusync/conga/pkg/sequence"
)

// Follower states.
const (
	StateIdle       = "idle"
	StateWaitForEnd = "waitForEnd"
	StateGoToLast   = "goToLast"
	StateFollow     = "follow"
)

// Animation clips a follower plays.
const (
	ClipIdle = "Idle"
	ClipJump = "Jump"
	ClipWalk = "Walk"
)

// StateChange is published with bus.TypeCongaState.
type StateChange struct {
	ID   string
	Name string
	From string
	To   string
}

// Joined is published with bus.TypeCongaJoined.
type Joined struct {
	ID     string
	Name   string
	Index  int
	Target int
}

type FollowerConfig struct {
	MoveSpeed float64
}

type transition struct {
	from, to string
}

// Follower waits for the head of the chain to come close, then queues up
// behind the current tail and replays the path of the entity ahead of it.
//
// Once in follow, every tick records one position of the target and consumes
// one, so the history length is fixed at whatever accumulated while walking
// to the end of the line.
type Follower struct {
	entity       *entity.Entity
	moveSpeed    float64
	maxTurnSpeed float64

	machine     *fsm.Machine[*entity.TickContext]
	history     *sequence.Queue[geom.Vec3]
	targetIndex int
	pending     []transition
}

// NewFollower builds the follower of e. e must already carry a Body.
func NewFollower(e *entity.Entity, cfg FollowerConfig) (*Follower, error) {
	if _, err := BodyKey.Get(e); err != nil {
		return nil, fmt.Errorf("follower: %w", err)
	}

	f := &Follower{
		entity:       e,
		moveSpeed:    cfg.MoveSpeed,
		maxTurnSpeed: math.Pi * cfg.MoveSpeed / 4,
		history:      sequence.NewQueue[geom.Vec3](64),
		targetIndex:  -1,
	}

	machine, err := fsm.New[*entity.TickContext](nil, f.states(), StateIdle)
	if err != nil {
		return nil, err
	}
	machine.OnTransition(func(from, to string) {
		f.pending = append(f.pending, transition{from: from, to: to})
	})
	f.machine = machine
	return f, nil
}

func (*Follower) Tag() entity.Tag { return TagFollower }

// State is the current state name.
func (f *Follower) State() string {
	return f.machine.State()
}

// TargetIndex is the chain index being followed, -1 before joining.
func (f *Follower) TargetIndex() int {
	return f.targetIndex
}

// HistoryLen is the number of recorded target positions not yet consumed.
func (f *Follower) HistoryLen() int {
	return f.history.Len()
}

func (f *Follower) Update(ctx *entity.TickContext) {
	f.machine.Update(ctx)
	f.flushTransitions(ctx)

	if display, err := StateDisplayKey.Get(f.entity); err == nil {
		display.SetText(label(f.machine.State(), f.entity.Transform().Yaw))
	}
}

func (f *Follower) states() fsm.States[*entity.TickContext] {
	return fsm.States[*entity.TickContext]{
		StateIdle: {
			Enter: func(*fsm.Machine[*entity.TickContext], *entity.TickContext) {
				f.setAnimation(ClipIdle)
			},
			Update: func(m *fsm.Machine[*entity.TickContext], ctx *entity.TickContext) {
				head := ctx.Chain.Head()
				if head != nil && f.closeTo(head) {
					m.MustTransition(ctx, StateWaitForEnd)
				}
			},
		},
		StateWaitForEnd: {
			Enter: func(*fsm.Machine[*entity.TickContext], *entity.TickContext) {
				f.setAnimation(ClipJump)
			},
			Update: func(m *fsm.Machine[*entity.TickContext], ctx *entity.TickContext) {
				tail := ctx.Chain.Tail()
				if tail == nil {
					return
				}
				f.entity.Transform().AimToward(tail.Position(), f.maxTurnSpeed*ctx.DeltaTime)
				if f.closeTo(tail) {
					m.MustTransition(ctx, StateGoToLast)
				}
			},
		},
		StateGoToLast: {
			Enter: func(_ *fsm.Machine[*entity.TickContext], ctx *entity.TickContext) {
				f.targetIndex = ctx.Chain.Len() - 1
				index := ctx.Chain.Append(f.entity)
				f.setAnimation(ClipWalk)

				ctx.Log().Debug("joined conga line",
					log.String("name", f.entity.Name()),
					log.Int("index", index),
					log.Int("target", f.targetIndex),
				)
				ctx.Publish(bus.TypeCongaJoined, f.entity.Name(), Joined{
					ID:     f.entity.ID(),
					Name:   f.entity.Name(),
					Index:  index,
					Target: f.targetIndex,
				})
			},
			Update: func(m *fsm.Machine[*entity.TickContext], ctx *entity.TickContext) {
				f.record(ctx)

				oldest, ok := f.history.Peek()
				if !ok {
					return
				}
				transform := f.entity.Transform()
				maxVelocity := f.moveSpeed * ctx.DeltaTime
				distance := transform.AimToward(oldest, f.maxTurnSpeed*ctx.DeltaTime)
				transform.MoveForward(math.Min(distance, maxVelocity))
				if distance <= maxVelocity {
					m.MustTransition(ctx, StateFollow)
				}
			},
		},
		StateFollow: {
			Update: func(_ *fsm.Machine[*entity.TickContext], ctx *entity.TickContext) {
				f.record(ctx)

				oldest, ok := f.history.Pop()
				if !ok {
					return
				}
				transform := f.entity.Transform()
				transform.Position = oldest
				if next, ok := f.history.Peek(); ok {
					transform.AimToward(next, f.maxTurnSpeed*ctx.DeltaTime)
				}
			},
		},
	}
}

// record pushes the current position of the followed entity.
func (f *Follower) record(ctx *entity.TickContext) {
	target := ctx.Chain.At(f.targetIndex)
	if target == nil {
		return
	}
	f.history.Push(target.Position())
}

func (f *Follower) closeTo(other *entity.Entity) bool {
	return geom.IsClose(f.entity.Position(), radiusOf(f.entity), other.Position(), radiusOf(other))
}

func (f *Follower) setAnimation(clip string) {
	if animator, err := AnimatorKey.Get(f.entity); err == nil {
		animator.SetAnimation(clip)
	}
}

func (f *Follower) flushTransitions(ctx *entity.TickContext) {
	for _, t := range f.pending {
		ctx.Log().Debug("conga state",
			log.String("name", f.entity.Name()),
			log.String("from", t.from),
			log.String("to", t.to),
		)
		ctx.Publish(bus.TypeCongaState, f.entity.Name(), StateChange{
			ID:   f.entity.ID(),
			Name: f.entity.Name(),
			From: t.from,
			To:   t.to,
		})
	}
	f.pending = f.pending[:0]
}

// label renders "<state>:<yaw in whole degrees>".
func label(state string, yaw float64) string {
	return fmt.Sprintf("%s:%.0f", state, yaw*180/math.Pi)
}

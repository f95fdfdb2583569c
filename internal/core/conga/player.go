package conga

import (
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/conga/internal/core/coroutine"
	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/geom"
	"github.com/zeusync/conga/internal/core/input"
	"github.com/zeusync/conga/internal/core/observability/log"
)

// ClipRun is the clip the player plays for its whole life.
const ClipRun = "Run"

type PlayerConfig struct {
	MoveSpeed float64
	// TurnDivisor scales the turn rate: MoveSpeed / TurnDivisor radians per second.
	TurnDivisor float64
	// MaxTimeOffScreen is how long the player may stay invisible before it is
	// put back at the origin.
	MaxTimeOffScreen float64
	NoteIntervalMin  float64
	NoteIntervalMax  float64
	Note             NoteConfig
	Seed             uint64
}

func DefaultPlayerConfig(moveSpeed float64) PlayerConfig {
	return PlayerConfig{
		MoveSpeed:        moveSpeed,
		TurnDivisor:      4,
		MaxTimeOffScreen: 3,
		NoteIntervalMin:  0.5,
		NoteIntervalMax:  1,
		Note:             DefaultNoteConfig(),
	}
}

// Reset is published with bus.TypePlayerReset.
type Reset struct {
	ID   string
	From geom.Vec3
}

// NoteSpawned is published with bus.TypeNoteSpawned.
type NoteSpawned struct {
	ID string
	At geom.Vec3
}

// Player runs forward at a constant speed and turns with the left and right
// controls. It drops a note every NoteIntervalMin to NoteIntervalMax seconds.
type Player struct {
	entity    *entity.Entity
	cfg       PlayerConfig
	turnSpeed float64

	offscreenTimer float64
	runner         *coroutine.Scheduler
	rng            *rand.Rand
	tick           *entity.TickContext
	notes          int
}

// NewPlayer builds the player of e. e must already carry a Body.
func NewPlayer(e *entity.Entity, cfg PlayerConfig) (*Player, error) {
	if _, err := BodyKey.Get(e); err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	if cfg.TurnDivisor == 0 {
		cfg.TurnDivisor = 4
	}
	if cfg.NoteIntervalMax < cfg.NoteIntervalMin {
		cfg.NoteIntervalMax = cfg.NoteIntervalMin
	}

	p := &Player{
		entity:    e,
		cfg:       cfg,
		turnSpeed: cfg.MoveSpeed / cfg.TurnDivisor,
		runner:    coroutine.NewScheduler(),
		rng:       newRand(e.Name(), cfg.Seed),
	}
	if animator, err := AnimatorKey.Get(e); err == nil {
		animator.SetAnimation(ClipRun)
	}
	p.runner.Go(p.emitNotes())
	return p, nil
}

func (*Player) Tag() entity.Tag { return TagPlayer }

// NotesEmitted counts the notes spawned so far.
func (p *Player) NotesEmitted() int {
	return p.notes
}

// OffscreenTime is the time spent continuously invisible.
func (p *Player) OffscreenTime() float64 {
	return p.offscreenTimer
}

func (p *Player) Update(ctx *entity.TickContext) {
	p.tick = ctx
	p.runner.Tick(ctx.DeltaTime)
	p.tick = nil

	dt := ctx.DeltaTime
	steer := 0.0
	if ctx.Held(input.Left) {
		steer++
	}
	if ctx.Held(input.Right) {
		steer--
	}

	transform := p.entity.Transform()
	transform.Turn(p.turnSpeed * steer * dt)
	transform.MoveForward(p.cfg.MoveSpeed * dt)

	if ctx.Visible(transform.Position) {
		p.offscreenTimer = 0
	} else {
		p.offscreenTimer += dt
		if p.offscreenTimer >= p.cfg.MaxTimeOffScreen {
			from := transform.Position
			transform.Position = geom.Vec3{}
			p.offscreenTimer = 0

			ctx.Log().Info("player back to origin",
				log.String("name", p.entity.Name()),
				log.Float64("x", from.X),
				log.Float64("z", from.Z),
			)
			ctx.Publish(bus.TypePlayerReset, p.entity.Name(), Reset{ID: p.entity.ID(), From: from})
		}
	}

	if display, err := StateDisplayKey.Get(p.entity); err == nil {
		display.SetText(label(string(TagPlayer), transform.Yaw))
	}
}

// emitNotes waits a random interval, spawns a note and repeats. The first
// resumption only starts the first wait.
func (p *Player) emitNotes() coroutine.Sequence {
	primed := false
	return coroutine.Func(func(float64) coroutine.Result {
		if primed {
			p.spawnNote()
		}
		primed = true
		return coroutine.Yield(coroutine.Wait(between(p.rng, p.cfg.NoteIntervalMin, p.cfg.NoteIntervalMax)))
	})
}

func (p *Player) spawnNote() {
	ctx := p.tick
	if ctx == nil || ctx.Spawner == nil {
		return
	}

	at := p.entity.Position()
	at.Y += p.cfg.Note.Rise
	jitter := p.cfg.Note.Jitter
	direction := geom.V(between(p.rng, -jitter, jitter), 1, between(p.rng, -jitter, jitter))
	hue := p.rng.Float64()

	note := ctx.Spawner.Spawn(string(TagNote), at, func(e *entity.Entity) {
		e.MustAddComponent(NewNote(e, p.cfg.Note, direction, hue))
	})
	p.notes++
	if note != nil {
		ctx.Publish(bus.TypeNoteSpawned, p.entity.Name(), NoteSpawned{ID: note.ID(), At: at})
	}
}

// Seed derives a stable per-entity seed from its name and the scene seed.
func Seed(name string, base uint64) uint64 {
	return xxhash.Sum64String(name) ^ base
}

func newRand(name string, base uint64) *rand.Rand {
	seed := Seed(name, base)
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

package conga

import (
	"errors"
	"fmt"
	"math"

	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/geom"
)

// Model is a named body shape. Size is the extent of its bounding box; the
// interaction radius is half of it.
type Model struct {
	Name string
	Size float64
}

type SceneConfig struct {
	MoveSpeed   float64
	Player      PlayerConfig
	PlayerModel Model
	// Herd lists the models animals are drawn from.
	Herd    []Model
	Animals int
	// SpiralStart is the radius of the first animal, SpiralArc the spacing
	// along the spiral between neighbours.
	SpiralStart float64
	SpiralArc   float64
	Seed        uint64
}

// Scene is the set of entities BuildScene created.
type Scene struct {
	Player  *entity.Entity
	Chain   *Chain
	Animals []*entity.Entity
}

var ErrEmptyHerd = errors.New("conga: no animal models")

// BuildScene creates the player at the origin and lays the animals out on an
// Archimedean spiral around it.
func BuildScene(m *entity.Manager, parent entity.Space, cfg SceneConfig) (*Scene, error) {
	if cfg.Animals > 0 && len(cfg.Herd) == 0 {
		return nil, ErrEmptyHerd
	}
	if cfg.Animals > 0 && (cfg.SpiralStart <= 0 || cfg.SpiralArc <= 0) {
		return nil, fmt.Errorf("conga: spiral start %v and arc %v must be positive", cfg.SpiralStart, cfg.SpiralArc)
	}

	player, err := AddPlayer(m, parent, cfg.PlayerModel, cfg.Player)
	if err != nil {
		return nil, err
	}
	scene := &Scene{
		Player:  player,
		Chain:   NewChain(player),
		Animals: make([]*entity.Entity, 0, cfg.Animals),
	}

	rng := newRand("herd", cfg.Seed)
	spiral := newSpiral(cfg.SpiralStart, cfg.SpiralArc)
	for i := 0; i < cfg.Animals; i++ {
		model := cfg.Herd[rng.IntN(len(cfg.Herd))]
		name := fmt.Sprintf("%s-%d", model.Name, i)
		animal, err := AddAnimal(m, parent, name, model, cfg.MoveSpeed)
		if err != nil {
			return nil, err
		}
		animal.Transform().Position = spiral.next()
		scene.Animals = append(scene.Animals, animal)
	}
	return scene, nil
}

// AddPlayer creates the head of the line with its body, animator, label and
// player behavior.
func AddPlayer(m *entity.Manager, parent entity.Space, model Model, cfg PlayerConfig) (*entity.Entity, error) {
	e := m.CreateEntity(parent, "player")
	e.MustAddComponent(&Body{Model: model.Name, Radius: model.Size / 2})
	e.MustAddComponent(NewAnimator(1))
	e.MustAddComponent(&StateDisplay{})

	player, err := NewPlayer(e, cfg)
	if err != nil {
		return nil, err
	}
	if err := e.AddComponent(player); err != nil {
		return nil, err
	}
	return e, nil
}

// AddAnimal creates an idle follower. Its clips play at a quarter of the move
// speed.
func AddAnimal(m *entity.Manager, parent entity.Space, name string, model Model, moveSpeed float64) (*entity.Entity, error) {
	e := m.CreateEntity(parent, name)
	e.MustAddComponent(&Body{Model: model.Name, Radius: model.Size / 2})
	e.MustAddComponent(&StateDisplay{})
	e.MustAddComponent(NewAnimator(moveSpeed / 4))

	follower, err := NewFollower(e, FollowerConfig{MoveSpeed: moveSpeed})
	if err != nil {
		return nil, err
	}
	if err := e.AddComponent(follower); err != nil {
		return nil, err
	}
	return e, nil
}

// spiral walks r = b·φ with b = arc/2π, placing consecutive points roughly
// arc apart.
type spiral struct {
	arc, b, r, phi float64
}

func newSpiral(start, arc float64) *spiral {
	b := arc / (2 * math.Pi)
	return &spiral{arc: arc, b: b, r: start, phi: start / b}
}

// next returns the point at the current angle, then advances. A point at
// angle φ and radius r sits at (r cos φ, 0, -r sin φ), the +X axis turned by φ
// about +Y.
func (s *spiral) next() geom.Vec3 {
	p := geom.V(s.r*math.Cos(s.phi), 0, -s.r*math.Sin(s.phi))
	s.phi += s.arc / s.r
	s.r = s.b * s.phi
	return p
}

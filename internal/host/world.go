package host

import (
	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/entity"
	"github.com/zeusync/conga/internal/core/geom"
)

var (
	_ entity.Visibility = ViewBox{}
	_ entity.Spawner    = (*Spawner)(nil)
	_ entity.Space      = (*Group)(nil)
)

// ViewBox is the visible rectangle of the XZ plane. Height is ignored.
type ViewBox config.ViewConfig

func (v ViewBox) Visible(p geom.Vec3) bool {
	return p.X >= v.MinX && p.X <= v.MaxX && p.Z >= v.MinZ && p.Z <= v.MaxZ
}

// Spawner creates entities through the manager under a fixed parent.
type Spawner struct {
	manager *entity.Manager
	parent  entity.Space
}

func NewSpawner(manager *entity.Manager, parent entity.Space) *Spawner {
	return &Spawner{manager: manager, parent: parent}
}

func (s *Spawner) Spawn(name string, at geom.Vec3, attach func(e *entity.Entity)) *entity.Entity {
	e := s.manager.CreateEntity(s.parent, name)
	e.Transform().Position = at
	if attach != nil {
		attach(e)
	}
	return e
}

// Group is a flat scene-graph parent. It only tracks membership.
type Group struct {
	children map[*entity.Entity]struct{}
}

func NewGroup() *Group {
	return &Group{children: make(map[*entity.Entity]struct{})}
}

func (g *Group) Attach(e *entity.Entity) {
	g.children[e] = struct{}{}
}

func (g *Group) Detach(e *entity.Entity) {
	delete(g.children, e)
}

func (g *Group) Len() int {
	return len(g.children)
}

func (g *Group) Contains(e *entity.Entity) bool {
	_, ok := g.children[e]
	return ok
}

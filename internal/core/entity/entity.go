// Package entity implements entities, their components and the manager that
// updates them once per frame.
package entity

import (
	"errors"
	"fmt"

	"github.com/zeusync/conga/internal/core/collection"
	"github.com/zeusync/conga/internal/core/geom"
)

var (
	// ErrMissingComponent is returned when a sibling lookup finds nothing.
	ErrMissingComponent = errors.New("entity: missing component")
	// ErrDuplicateComponent is returned when a second component claims a tag.
	ErrDuplicateComponent = errors.New("entity: duplicate component")
)

// Tag identifies a component kind. An entity holds at most one component per tag.
type Tag string

// Component is a per-entity behavior updated once per frame.
type Component interface {
	Update(ctx *TickContext)
}

// Tagged components name their own tag. Untagged components are tagged by
// their Go type.
type Tagged interface {
	Tag() Tag
}

// TagOf returns the tag c is registered under.
func TagOf(c Component) Tag {
	if t, ok := c.(Tagged); ok {
		return t.Tag()
	}
	return Tag(fmt.Sprintf("%T", c))
}

// Entity is a named container of components with a transform. Entities are
// created and removed through a Manager only.
type Entity struct {
	id        string
	name      string
	transform geom.Transform

	components *collection.Safe[Component]
	byTag      map[Tag]Component

	parent  Space
	manager *Manager
	removed bool
}

func newEntity(id, name string, manager *Manager) *Entity {
	return &Entity{
		id:         id,
		name:       name,
		components: collection.NewSafe[Component](),
		byTag:      make(map[Tag]Component),
		manager:    manager,
	}
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) String() string {
	return e.name + "#" + e.id
}

// Transform returns the mutable transform of the entity.
func (e *Entity) Transform() *geom.Transform {
	return &e.transform
}

func (e *Entity) Position() geom.Vec3 {
	return e.transform.Position
}

// Manager returns the manager that created the entity.
func (e *Entity) Manager() *Manager {
	return e.manager
}

// Removed reports whether the entity has been handed to RemoveEntity.
func (e *Entity) Removed() bool {
	return e.removed
}

// Remove is shorthand for e.Manager().RemoveEntity(e).
func (e *Entity) Remove() {
	if e.manager != nil {
		e.manager.RemoveEntity(e)
	}
}

// AddComponent attaches c. It becomes part of the update pass starting with
// the next traversal but can be looked up immediately.
func (e *Entity) AddComponent(c Component) error {
	tag := TagOf(c)
	if _, exists := e.byTag[tag]; exists {
		return fmt.Errorf("%s on %s: %w", tag, e.name, ErrDuplicateComponent)
	}
	e.byTag[tag] = c
	e.components.Add(c)
	return nil
}

// MustAddComponent panics when AddComponent fails.
func (e *Entity) MustAddComponent(c Component) {
	if err := e.AddComponent(c); err != nil {
		panic(err)
	}
}

// RemoveComponent detaches the component registered under tag, if any.
func (e *Entity) RemoveComponent(tag Tag) {
	c, ok := e.byTag[tag]
	if !ok {
		return
	}
	delete(e.byTag, tag)
	e.components.Remove(c)
}

// Component looks a sibling up by tag.
func (e *Entity) Component(tag Tag) (Component, bool) {
	c, ok := e.byTag[tag]
	return c, ok
}

// Components returns the live components in update order.
func (e *Entity) Components() []Component {
	return e.components.Items()
}

// Update updates every component in attachment order. A component detached
// after it was queued is dropped instead of updated.
func (e *Entity) Update(ctx *TickContext) {
	e.components.ForEach(func(c Component) {
		if e.byTag[TagOf(c)] != c {
			e.components.Remove(c)
			return
		}
		c.Update(ctx)
	})
}

// Key is a typed handle to a component tag.
type Key[T Component] struct {
	tag Tag
}

// NewKey declares a typed key. The tag must match the one the component
// reports through Tagged.
func NewKey[T Component](tag Tag) Key[T] {
	return Key[T]{tag: tag}
}

func (k Key[T]) Tag() Tag {
	return k.tag
}

// Get returns the sibling registered under the key's tag.
func (k Key[T]) Get(e *Entity) (T, error) {
	var zero T
	c, ok := e.byTag[k.tag]
	if !ok {
		return zero, fmt.Errorf("%s on %s: %w", k.tag, e.name, ErrMissingComponent)
	}
	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%s on %s holds %T: %w", k.tag, e.name, c, ErrMissingComponent)
	}
	return typed, nil
}

// MustGet panics with ErrMissingComponent when the sibling is absent.
func (k Key[T]) MustGet(e *Entity) T {
	c, err := k.Get(e)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether e carries the component.
func (k Key[T]) Has(e *Entity) bool {
	_, err := k.Get(e)
	return err == nil
}

package entity

import (
	"github.com/google/uuid"

	"github.com/zeusync/conga/internal/core/collection"
	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/observability/log"
)

// Event payload published with bus.TypeEntityCreated and bus.TypeEntityRemoved.
type Event struct {
	ID   string
	Name string
}

type Option func(*Manager)

func WithLogger(logger log.Log) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithEventBus(events bus.EventBus) Option {
	return func(m *Manager) {
		m.events = events
	}
}

// Manager owns the entity set. Entities update in creation order; creations
// and removals requested during Update take effect at the next traversal
// boundary.
type Manager struct {
	entities *collection.Safe[*Entity]
	logger   log.Log
	events   bus.EventBus
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entities: collection.NewSafe[*Entity](),
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateEntity builds an entity, hangs it under parent (may be nil) and queues
// it for the update pass. The entity is usable immediately.
func (m *Manager) CreateEntity(parent Space, name string) *Entity {
	e := newEntity(uuid.NewString(), name, m)
	if parent != nil {
		parent.Attach(e)
		e.parent = parent
	}
	m.entities.Add(e)

	m.logger.Debug("entity created", log.String("name", name), log.String("id", e.id))
	m.publish(bus.TypeEntityCreated, e)
	return e
}

// RemoveEntity queues e for removal and detaches it from its parent. Removing
// an entity twice is a no-op.
func (m *Manager) RemoveEntity(e *Entity) {
	if e == nil || e.removed {
		return
	}
	e.removed = true
	m.entities.Remove(e)
	if e.parent != nil {
		e.parent.Detach(e)
		e.parent = nil
	}

	m.logger.Debug("entity removed", log.String("name", e.name), log.String("id", e.id))
	m.publish(bus.TypeEntityRemoved, e)
}

// Update runs one frame over every live entity.
func (m *Manager) Update(ctx *TickContext) {
	m.entities.ForEach(func(e *Entity) {
		if e.removed {
			// Created and removed before its first traversal.
			m.entities.Remove(e)
			return
		}
		e.Update(ctx)
	})
}

// Entities returns the live entities in update order. Queued creations are
// not included until the next traversal.
func (m *Manager) Entities() []*Entity {
	return m.entities.Items()
}

// Len counts live and queued entities.
func (m *Manager) Len() int {
	return m.entities.Len()
}

// Find returns the first live entity with the given name.
func (m *Manager) Find(name string) (*Entity, bool) {
	for _, e := range m.entities.Items() {
		if e.name == name && !e.removed {
			return e, true
		}
	}
	return nil, false
}

func (m *Manager) publish(typ string, e *Entity) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(bus.NewEvent(typ, "entity.manager", Event{ID: e.id, Name: e.name})); err != nil {
		m.logger.Warn("event handler failed", log.String("type", typ), log.Error(err))
	}
}

package conga

import (
	"slices"

	"github.com/zeusync/conga/internal/core/entity"
)

var _ entity.ChainView = (*Chain)(nil)

// Chain is the conga line, head first. It is mutated only on the frame loop.
type Chain struct {
	entities []*entity.Entity
}

func NewChain(head *entity.Entity) *Chain {
	return &Chain{entities: []*entity.Entity{head}}
}

func (c *Chain) Len() int {
	return len(c.entities)
}

// At returns nil when i is out of range.
func (c *Chain) At(i int) *entity.Entity {
	if i < 0 || i >= len(c.entities) {
		return nil
	}
	return c.entities[i]
}

func (c *Chain) Head() *entity.Entity {
	return c.At(0)
}

func (c *Chain) Tail() *entity.Entity {
	return c.At(len(c.entities) - 1)
}

// Append adds e at the tail and returns its index.
func (c *Chain) Append(e *entity.Entity) int {
	c.entities = append(c.entities, e)
	return len(c.entities) - 1
}

// IndexOf returns -1 when e is not in the chain.
func (c *Chain) IndexOf(e *entity.Entity) int {
	return slices.Index(c.entities, e)
}

func (c *Chain) Entities() []*entity.Entity {
	return slices.Clone(c.entities)
}

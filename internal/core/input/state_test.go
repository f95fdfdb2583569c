package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatePressLifecycle(t *testing.T) {
	s := NewDefaultState()
	assert.False(t, s.Held(Left))
	assert.False(t, s.JustPressed(Left))

	s.Set(Left, true)
	assert.True(t, s.Held(Left))
	assert.True(t, s.JustPressed(Left))

	s.Update()
	assert.True(t, s.Held(Left), "held survives the end of frame")
	assert.False(t, s.JustPressed(Left))

	s.Set(Left, true)
	assert.False(t, s.JustPressed(Left), "repeat while held is not a new press")

	s.Set(Left, false)
	assert.False(t, s.Held(Left))
}

func TestStateUnknownControl(t *testing.T) {
	s := NewState()
	assert.False(t, s.Held("jump"))
	s.Set("jump", true)
	assert.True(t, s.Held("jump"))
	s.Release()
	assert.False(t, s.Held("jump"))
}

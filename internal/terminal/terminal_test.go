package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/core/input"
	"github.com/zeusync/conga/internal/server"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestViewerDrawsSnapshot(t *testing.T) {
	screen := newScreen(t, 41, 12)
	v := NewViewer(screen, config.ViewConfig{MinX: -20, MaxX: 20, MinZ: -10, MaxZ: 10})

	v.Draw(server.Snapshot{
		Frame: 42,
		Chain: []string{"p", "a"},
		Entities: []server.EntityState{
			{ID: "p", Kind: server.KindPlayer},
			{ID: "a", Kind: server.KindAnimal, Model: "pig", State: conga.StateFollow, X: 20, Z: 10},
			{ID: "b", Kind: server.KindAnimal, Model: "cow", State: conga.StateIdle, X: -20, Z: -10},
			{ID: "n", Kind: server.KindNote, X: 500},
		},
	})

	assert.Equal(t, '@', runeAt(screen, 20, 5))
	assert.Equal(t, 'P', runeAt(screen, 0, 0), "animals in line are capitalised")
	assert.Equal(t, 'c', runeAt(screen, 40, 10))

	var status strings.Builder
	for x := 0; x < 41; x++ {
		status.WriteRune(runeAt(screen, x, 11))
	}
	assert.Contains(t, status.String(), "frame 42")
	assert.Contains(t, status.String(), "chain 2")
}

func TestViewerCell(t *testing.T) {
	screen := newScreen(t, 41, 12)
	v := NewViewer(screen, config.ViewConfig{MinX: -20, MaxX: 20, MinZ: -10, MaxZ: 10})

	_, _, ok := v.Cell(21, 0)
	assert.False(t, ok)

	col, row, ok := v.Cell(10, -5)
	require.True(t, ok)
	assert.Equal(t, 10, col, "+X is drawn to the left")
	assert.Equal(t, 8, row)

	v.SetView(config.ViewConfig{MinX: 0, MaxX: 40, MinZ: 0, MaxZ: 10})
	col, row, ok = v.Cell(40, 10)
	require.True(t, ok)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

func TestKeysHoldDecay(t *testing.T) {
	now := time.Unix(0, 0)
	k := NewKeys(150 * time.Millisecond)
	k.now = func() time.Time { return now }
	state := input.NewDefaultState()

	k.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	k.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone))
	k.Apply(state)
	assert.True(t, state.Held(input.Left))
	assert.True(t, state.JustPressed(input.Left))
	assert.True(t, state.Held(input.Right))

	state.Update()
	now = now.Add(100 * time.Millisecond)
	k.Apply(state)
	assert.True(t, state.Held(input.Left))
	assert.False(t, state.JustPressed(input.Left))

	now = now.Add(100 * time.Millisecond)
	k.Apply(state)
	assert.False(t, state.Held(input.Left), "released once the hold runs out")

	k.SetHold(time.Second)
	k.Apply(state)
	assert.True(t, state.Held(input.Left))
}

func TestKeysQuit(t *testing.T) {
	k := NewKeys(time.Second)
	k.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	k.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))

	select {
	case <-k.Quit():
	default:
		t.Fatal("quit not signalled")
	}
}

func TestKeysRunPumpsScreenEvents(t *testing.T) {
	screen := newScreen(t, 20, 5)
	k := NewKeys(time.Hour)
	state := input.NewDefaultState()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx, screen) }()

	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	require.Eventually(t, func() bool {
		k.Apply(state)
		return state.Held(input.Right)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop")
	}
}

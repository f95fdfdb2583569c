package terminal

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/conga/internal/core/input"
)

var controls = []string{input.Left, input.Right, input.Up, input.Down, input.A, input.B}

// Keys collects key presses from the terminal. Terminals report no key
// releases, so a control counts as held for the hold duration after its last
// press; auto-repeat keeps it held while the key stays down.
type Keys struct {
	hold time.Duration
	now  func() time.Time

	mu        sync.Mutex
	lastPress map[string]time.Time

	quitOnce sync.Once
	quit     chan struct{}
}

func NewKeys(hold time.Duration) *Keys {
	return &Keys{
		hold:      hold,
		now:       time.Now,
		lastPress: make(map[string]time.Time, len(controls)),
		quit:      make(chan struct{}),
	}
}

// Quit is closed once the user asks to leave.
func (k *Keys) Quit() <-chan struct{} {
	return k.quit
}

// SetHold changes the hold duration, e.g. after a config reload.
func (k *Keys) SetHold(hold time.Duration) {
	k.mu.Lock()
	k.hold = hold
	k.mu.Unlock()
}

// HandleEvent records one terminal event.
func (k *Keys) HandleEvent(ev tcell.Event) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		k.stop()
		return
	case tcell.KeyLeft:
		k.press(input.Left)
	case tcell.KeyRight:
		k.press(input.Right)
	case tcell.KeyUp:
		k.press(input.Up)
	case tcell.KeyDown:
		k.press(input.Down)
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q', 'Q':
			k.stop()
		case 'h':
			k.press(input.Left)
		case 'l':
			k.press(input.Right)
		case 'k':
			k.press(input.Up)
		case 'j':
			k.press(input.Down)
		case 'a':
			k.press(input.A)
		case 'b':
			k.press(input.B)
		}
	}
}

// Apply writes the held state of every control into state. It runs on the
// frame loop.
func (k *Keys) Apply(state *input.State) {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, name := range controls {
		last, ok := k.lastPress[name]
		state.Set(name, ok && now.Sub(last) < k.hold)
	}
}

// Run pumps screen events until ctx is done or the screen is finalized.
func (k *Keys) Run(ctx context.Context, screen tcell.Screen) error {
	stop := context.AfterFunc(ctx, func() {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		k.HandleEvent(ev)
	}
}

func (k *Keys) press(name string) {
	k.mu.Lock()
	k.lastPress[name] = k.now()
	k.mu.Unlock()
}

func (k *Keys) stop() {
	k.quitOnce.Do(func() { close(k.quit) })
}

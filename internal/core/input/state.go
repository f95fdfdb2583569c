// Package input tracks the held / newly pressed state of named controls.
package input

// Control names the host maps keys to.
const (
	Left  = "left"
	Right = "right"
	Up    = "up"
	Down  = "down"
	A     = "a"
	B     = "b"
)

type keyState struct {
	down        bool
	justPressed bool
}

// State is the control-state query consumed by the simulation. Controls that
// were never set read as released.
type State struct {
	keys map[string]*keyState
}

func NewState(names ...string) *State {
	s := &State{keys: make(map[string]*keyState, len(names))}
	for _, name := range names {
		s.keys[name] = &keyState{}
	}
	return s
}

// NewDefaultState registers the arrow controls plus a and b.
func NewDefaultState() *State {
	return NewState(Left, Right, Up, Down, A, B)
}

// Set records the current pressed state of a control. A press counts as new
// only on the transition from released to pressed.
func (s *State) Set(name string, pressed bool) {
	k, ok := s.keys[name]
	if !ok {
		k = &keyState{}
		s.keys[name] = k
	}
	k.justPressed = pressed && !k.down
	k.down = pressed
}

// Held reports whether the control is currently pressed.
func (s *State) Held(name string) bool {
	k, ok := s.keys[name]
	return ok && k.down
}

// JustPressed reports whether the control went down during this frame.
func (s *State) JustPressed(name string) bool {
	k, ok := s.keys[name]
	return ok && k.justPressed
}

// Update ends the frame: newly pressed flags are cleared, held flags stay.
func (s *State) Update() {
	for _, k := range s.keys {
		k.justPressed = false
	}
}

// Release marks every control as released.
func (s *State) Release() {
	for _, k := range s.keys {
		k.down = false
		k.justPressed = false
	}
}

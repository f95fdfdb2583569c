// Package fsm implements a flat finite state machine with enter/update/exit hooks.
package fsm

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a state name is not part of the machine.
var ErrInvalidState = errors.New("fsm: invalid state")

// Hook runs against the machine and the context passed to Update or Transition.
type Hook[T any] func(m *Machine[T], ctx T)

// State is the hook triple of a single state. Any hook may be nil; a state
// without Update is passive.
type State[T any] struct {
	Enter  Hook[T]
	Update Hook[T]
	Exit   Hook[T]
}

// States maps state names to their hooks.
type States[T any] map[string]State[T]

// Machine holds exactly one current state at all times after construction.
// T is the context handed to every hook (typically the per-tick context).
type Machine[T any] struct {
	states    States[T]
	current   string
	observers []func(from, to string)
}

// New builds a machine and enters initial. No exit hook runs since there is no
// prior state.
func New[T any](ctx T, states States[T], initial string) (*Machine[T], error) {
	if _, ok := states[initial]; !ok {
		return nil, fmt.Errorf("initial state %q: %w", initial, ErrInvalidState)
	}

	m := &Machine[T]{
		states:  states,
		current: initial,
	}
	if enter := states[initial].Enter; enter != nil {
		enter(m, ctx)
	}
	return m, nil
}

// State returns the name of the current state.
func (m *Machine[T]) State() string {
	return m.current
}

// Has reports whether name is a known state.
func (m *Machine[T]) Has(name string) bool {
	_, ok := m.states[name]
	return ok
}

// OnTransition registers an observer called after every successful transition,
// once the new state's enter hook has run.
func (m *Machine[T]) OnTransition(fn func(from, to string)) {
	if fn == nil {
		return
	}
	m.observers = append(m.observers, fn)
}

// Transition runs the exit hook of the current state, switches to name and runs
// its enter hook. Unknown names leave the machine untouched.
func (m *Machine[T]) Transition(ctx T, name string) error {
	next, ok := m.states[name]
	if !ok {
		return fmt.Errorf("transition %q -> %q: %w", m.current, name, ErrInvalidState)
	}

	from := m.current
	if exit := m.states[from].Exit; exit != nil {
		exit(m, ctx)
	}

	m.current = name
	if next.Enter != nil {
		next.Enter(m, ctx)
	}

	for _, fn := range m.observers {
		fn(from, name)
	}
	return nil
}

// MustTransition is Transition for static state tables; an unknown name is a
// wiring bug and panics.
func (m *Machine[T]) MustTransition(ctx T, name string) {
	if err := m.Transition(ctx, name); err != nil {
		panic(err)
	}
}

// Update dispatches to the update hook of the current state only.
func (m *Machine[T]) Update(ctx T) {
	if update := m.states[m.current].Update; update != nil {
		update(m, ctx)
	}
}

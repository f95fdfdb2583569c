package server

import (
	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/core/entity"
)

// EntityState is the wire form of one entity.
type EntityState struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Model string  `json:"model,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	// State is the follower state, empty for entities that do not follow.
	State   string  `json:"state,omitempty"`
	Label   string  `json:"label,omitempty"`
	Clip    string  `json:"clip,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Kind    string  `json:"kind"`
}

// Entity kinds.
const (
	KindPlayer = "player"
	KindAnimal = "animal"
	KindNote   = "note"
	KindOther  = "other"
)

// Snapshot is the state of the world at the end of one frame.
type Snapshot struct {
	Frame    uint64        `json:"frame"`
	Time     float64       `json:"time"`
	Chain    []string      `json:"chain"`
	Entities []EntityState `json:"entities"`
}

// Capture copies the live entities and the chain order. It must run on the
// frame loop; the result is safe to hand to other goroutines.
func Capture(frame uint64, time float64, m *entity.Manager, chain *conga.Chain) Snapshot {
	live := m.Entities()
	s := Snapshot{
		Frame:    frame,
		Time:     time,
		Entities: make([]EntityState, 0, len(live)),
	}
	if chain != nil {
		for _, e := range chain.Entities() {
			s.Chain = append(s.Chain, e.ID())
		}
	}

	for _, e := range live {
		if e.Removed() {
			continue
		}
		t := e.Transform()
		state := EntityState{
			ID:   e.ID(),
			Name: e.Name(),
			X:    t.Position.X,
			Y:    t.Position.Y,
			Z:    t.Position.Z,
			Yaw:  t.Yaw,
			Kind: KindOther,
		}
		if body, err := conga.BodyKey.Get(e); err == nil {
			state.Model = body.Model
		}
		if display, err := conga.StateDisplayKey.Get(e); err == nil {
			state.Label = display.Text()
		}
		if animator, err := conga.AnimatorKey.Get(e); err == nil {
			state.Clip = animator.Clip()
		}
		switch {
		case conga.PlayerKey.Has(e):
			state.Kind = KindPlayer
		case conga.FollowerKey.Has(e):
			state.Kind = KindAnimal
			state.State = conga.FollowerKey.MustGet(e).State()
		case conga.NoteKey.Has(e):
			state.Kind = KindNote
			state.Opacity = conga.NoteKey.MustGet(e).Opacity()
		}
		s.Entities = append(s.Entities, state)
	}
	return s
}

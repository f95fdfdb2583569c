package geom

// Transform is the spatial state of an entity: a position and a yaw in [0, 2π).
type Transform struct {
	Position Vec3
	Yaw      float64
}

// Turn adds delta to the yaw and wraps it.
func (t *Transform) Turn(delta float64) {
	t.Yaw = WrapAngle(t.Yaw + delta)
}

// MoveForward translates the transform along its heading.
func (t *Transform) MoveForward(distance float64) {
	t.Position = t.Position.Add(Forward(t.Yaw).Scale(distance))
}

// AimToward turns toward target by at most maxTurn radians, always along the
// shorter arc, and returns the distance to target.
func (t *Transform) AimToward(target Vec3, maxTurn float64) float64 {
	delta := target.Sub(t.Position)
	if delta.X != 0 || delta.Z != 0 {
		turn := NormalizeAngle(Heading(delta) - t.Yaw)
		t.Turn(ClampMagnitude(turn, maxTurn))
	}
	return delta.Len()
}

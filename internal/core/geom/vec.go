// Package geom holds the small amount of vector and steering math the
// simulation needs. Positions are 3D; headings are a yaw around the Y axis.
package geom

import "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Distance is the Euclidean distance between two points.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// IsClose reports whether two bodies with the given interaction radii overlap,
// i.e. their distance is strictly below the sum of the radii.
func IsClose(a Vec3, aRadius float64, b Vec3, bRadius float64) bool {
	return Distance(a, b) < aRadius+bRadius
}

// Forward is the unit heading for a yaw: yaw 0 faces +Z, yaw π/2 faces +X.
func Forward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Z: math.Cos(yaw)}
}

// Heading returns the yaw that faces along d projected on the XZ plane.
func Heading(d Vec3) float64 {
	return math.Atan2(d.X, d.Z)
}

// NormalizeAngle maps a into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// WrapAngle maps a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// ClampMagnitude limits |v| to max while keeping its sign.
func ClampMagnitude(v, max float64) float64 {
	if math.Abs(v) > max {
		return math.Copysign(max, v)
	}
	return v
}

// Package geom provides the pure 2D math the simulation is built on:
// vector arithmetic, centripetal Catmull-Rom spline evaluation over closed
// control loops, and arc-length reparameterization. Nothing in this package
// allocates per call or touches a clock; every function is a pure value
// transformation so the tick loop stays deterministic.
package geom

import "math"

// normalizeEpsilon is the magnitude below which Normalize returns the zero
// vector instead of dividing by a near-zero length.
const normalizeEpsilon = 1e-9

// Vec2 is a 2D point or direction. Always passed and returned by value.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the scalar 2D cross product of v and o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Length returns the Euclidean magnitude of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSq returns the squared magnitude, avoiding the sqrt when only
// comparisons are needed.
func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector in the direction of v. Vectors shorter
// than the guard epsilon normalize to the zero vector rather than dividing
// by a near-zero length.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l < normalizeEpsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rotate returns v rotated counterclockwise by angle radians.
func (v Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// PerpCCW returns v rotated 90 degrees counterclockwise.
func (v Vec2) PerpCCW() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// PerpCW returns v rotated 90 degrees clockwise.
func (v Vec2) PerpCW() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec linearly interpolates between vectors a and b by t.
func LerpVec(a, b Vec2, t float64) Vec2 {
	return Vec2{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// WrapAngle normalizes an angle to the [-pi, pi) range.
func WrapAngle(a float64) float64 {
	wrapped := math.Mod(a+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// LerpAngle interpolates between angles a and b by t along the shortest
// angular path, handling wraparound at +/-pi.
func LerpAngle(a, b, t float64) float64 {
	return WrapAngle(a + WrapAngle(b-a)*t)
}

// Clamp restricts v to the [lo, hi] range.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 = mgl64.Vec3

// Vec3From widens a float32 vertex attribute to a Vec3.
func Vec3From(v [3]float32) Vec3 {
	return Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func SafeNormalize(v Vec3) Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

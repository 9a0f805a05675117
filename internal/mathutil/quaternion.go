package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat represents a rotation quaternion (W plus vector part V).
type Quat = mgl64.Quat

// QuatIdentity is the no-rotation quaternion.
func QuatIdentity() Quat {
	return mgl64.QuatIdent()
}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		W: cx*cy*cz + sx*sy*sz,
		V: Vec3{
			sx*cy*cz - cx*sy*sz,
			cx*sy*cz + sx*cy*sz,
			cx*cy*sz - sx*sy*cz,
		},
	}
}

// AxisAngle returns the rotation of deg degrees about axis. A zero axis gives
// the identity.
func AxisAngle(axis Vec3, deg float64) Quat {
	n := SafeNormalize(axis)
	if n == (Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(Deg2Rad(deg), n)
}

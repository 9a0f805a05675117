package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat4 is a 4×4 matrix stored column-major: element 4*c+r is row r of column c,
// so a translation lives in elements 12, 13 and 14.
type Mat4 = mgl64.Mat4

// Mat4Identity returns the 4×4 identity matrix.
func Mat4Identity() Mat4 {
	return mgl64.Ident4()
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func MulPoint(m Mat4, v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14],
	}
}

// MulDir transforms a direction (w=0) by the 4×4 matrix.
func MulDir(m Mat4, v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// ApproxEqual reports whether every element of a and b differs by at most tol.
func ApproxEqual(a, b Mat4, tol float64) bool {
	for i := 0; i < 16; i++ {
		d := a[i] - b[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m Mat4) bool {
	return ApproxEqual(m, mgl64.Ident4(), 1e-8)
}

// Package transform holds the rigid-plus-scale transformation shared by bones,
// components and model instances.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"mod3d-renderer/internal/mathutil"
)

// ErrDegenerate is returned when a transformation has no inverse.
var ErrDegenerate = errors.New("degenerate transformation")

const minScale = 1e-12

// Transformation places a frame inside its parent: a point p in this frame is
// translate(rotate(scale(p))) in the parent's frame. Rotation must be a unit
// quaternion; normalising is the caller's job.
type Transformation struct {
	Translation mathutil.Vec3
	Scale       mathutil.Vec3
	Rotation    mathutil.Quat
}

// New returns the identity transformation.
func New() Transformation {
	return Transformation{
		Scale:    mathutil.Vec3{1, 1, 1},
		Rotation: mathutil.QuatIdentity(),
	}
}

// WithTranslation returns a copy with the translation replaced.
func (t Transformation) WithTranslation(v mathutil.Vec3) Transformation {
	t.Translation = v
	return t
}

// WithScale returns a copy with the per-axis scale replaced.
func (t Transformation) WithScale(v mathutil.Vec3) Transformation {
	t.Scale = v
	return t
}

// WithRotation returns a copy with the rotation replaced.
func (t Transformation) WithRotation(q mathutil.Quat) Transformation {
	t.Rotation = q
	return t
}

// Mat4 returns T·R·S, mapping this frame into its parent.
func (t Transformation) Mat4() mathutil.Mat4 {
	trs := t.Rotation.Mat4()
	// scale the rotation columns, then drop in the translation
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			trs[4*c+r] *= t.Scale[c]
		}
	}
	trs[12], trs[13], trs[14] = t.Translation[0], t.Translation[1], t.Translation[2]
	return trs
}

// Mat4Inverse returns S⁻¹·R⁻¹·T⁻¹, mapping the parent into this frame.
func (t Transformation) Mat4Inverse() (mathutil.Mat4, error) {
	if err := t.Validate(); err != nil {
		return mathutil.Mat4{}, err
	}
	inv := t.Rotation.Conjugate().Mat4()
	inv = mgl64.Scale3D(1/t.Scale[0], 1/t.Scale[1], 1/t.Scale[2]).Mul4(inv)
	inv = inv.Mul4(mgl64.Translate3D(-t.Translation[0], -t.Translation[1], -t.Translation[2]))
	return inv, nil
}

// Validate reports ErrDegenerate for a zero scale axis or a zero rotation.
func (t Transformation) Validate() error {
	for axis, s := range t.Scale {
		if math.Abs(s) < minScale || math.IsNaN(s) {
			return fmt.Errorf("transform: scale %v on axis %d: %w", s, axis, ErrDegenerate)
		}
	}
	if t.Rotation.Len() < minScale {
		return fmt.Errorf("transform: zero rotation quaternion: %w", ErrDegenerate)
	}
	return nil
}

func (t Transformation) String() string {
	return fmt.Sprintf("+(%.4g,%.4g,%.4g) *(%.4g,%.4g,%.4g) @(%.4g;%.4g,%.4g,%.4g)",
		t.Translation[0], t.Translation[1], t.Translation[2],
		t.Scale[0], t.Scale[1], t.Scale[2],
		t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2])
}

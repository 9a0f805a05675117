package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mod3d-renderer/internal/mathutil"
)

func TestIdentity(t *testing.T) {
	tr := New()
	assert.Equal(t, mathutil.Mat4Identity(), tr.Mat4())
	inv, err := tr.Mat4Inverse()
	require.NoError(t, err)
	assert.True(t, mathutil.IsIdentity(inv))
}

func TestMat4Order(t *testing.T) {
	tr := New().
		WithTranslation(mathutil.Vec3{1, 2, 3}).
		WithScale(mathutil.Vec3{2, 2, 2}).
		WithRotation(mathutil.AxisAngle(mathutil.Vec3{0, 0, 1}, 90))

	// scale, then rotate, then translate
	got := mathutil.MulPoint(tr.Mat4(), mathutil.Vec3{1, 0, 0})
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 4, got[1], 1e-12)
	assert.InDelta(t, 3, got[2], 1e-12)
}

func TestPureTranslationInverseIsExact(t *testing.T) {
	tr := New().WithTranslation(mathutil.Vec3{0.5, -1, 2})
	inv, err := tr.Mat4Inverse()
	require.NoError(t, err)
	assert.Equal(t, mathutil.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, -0.5, 1, -2, 1}, inv)
}

func TestInverseRoundTrip(t *testing.T) {
	cases := []Transformation{
		New().WithTranslation(mathutil.Vec3{3, -2, 7}),
		New().WithScale(mathutil.Vec3{0.5, 2, 4}),
		New().WithRotation(mathutil.AxisAngle(mathutil.Vec3{1, 1, 0}, 37)),
		New().
			WithTranslation(mathutil.Vec3{-1, 0.25, 9}).
			WithScale(mathutil.Vec3{1.5, 0.75, 3}).
			WithRotation(mathutil.EulerToQuat(0.3, -1.1, 2.0)),
	}
	for i, tr := range cases {
		inv, err := tr.Mat4Inverse()
		require.NoError(t, err, "case %d", i)
		assert.True(t, mathutil.ApproxEqual(mathutil.Mat4Identity(), tr.Mat4().Mul4(inv), 1e-9), "case %d: M·M⁻¹", i)
		assert.True(t, mathutil.ApproxEqual(mathutil.Mat4Identity(), inv.Mul4(tr.Mat4()), 1e-9), "case %d: M⁻¹·M", i)
	}
}

func TestDegenerate(t *testing.T) {
	_, err := New().WithScale(mathutil.Vec3{1, 0, 1}).Mat4Inverse()
	assert.ErrorIs(t, err, ErrDegenerate)

	_, err = New().WithRotation(mathutil.Quat{}).Mat4Inverse()
	assert.ErrorIs(t, err, ErrDegenerate)

	assert.NoError(t, New().Validate())
}

func TestBuildersDoNotAlias(t *testing.T) {
	base := New()
	moved := base.WithTranslation(mathutil.Vec3{1, 1, 1})
	assert.Equal(t, mathutil.Vec3{}, base.Translation)
	assert.Equal(t, mathutil.Vec3{1, 1, 1}, moved.Translation)
}

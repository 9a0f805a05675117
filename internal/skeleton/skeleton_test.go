package skeleton

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

func translated(x, y, z float64) transform.Transformation {
	return transform.New().WithTranslation(mathutil.Vec3{x, y, z})
}

func addBone(t *testing.T, s *Skeleton, tr transform.Transformation) int {
	t.Helper()
	i, err := s.AddBone(tr, 0)
	require.NoError(t, err)
	return i
}

// sixBones builds b0 -> {b1, b2 -> {b21, b22}, b3}.
func sixBones(t *testing.T) (*Skeleton, map[string]int) {
	t.Helper()
	s := New()
	ids := map[string]int{
		"b0": addBone(t, s, transform.New()),
		"b1": addBone(t, s, translated(1, 0, 0)),
		"b2": addBone(t, s, translated(0, 1, 0)),
		"b3": addBone(t, s, translated(0, 0, 1)),
	}
	ids["b21"] = addBone(t, s, translated(0.5, 0, 0))
	ids["b22"] = addBone(t, s, translated(0, 0, 0.5))
	require.NoError(t, s.Relate(ids["b0"], ids["b1"]))
	require.NoError(t, s.Relate(ids["b0"], ids["b2"]))
	require.NoError(t, s.Relate(ids["b0"], ids["b3"]))
	require.NoError(t, s.Relate(ids["b2"], ids["b21"]))
	require.NoError(t, s.Relate(ids["b2"], ids["b22"]))
	return s, ids
}

func TestRestPoseMatrices(t *testing.T) {
	s, ids := sixBones(t)
	s.Resolve()
	s.RewriteIndices()
	require.NoError(t, s.DeriveMatrices())

	assert.Equal(t,
		mathutil.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, -0.5, -1, 0, 1},
		s.Bone(ids["b21"]).MTB())
	assert.Equal(t,
		mathutil.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1, -0.5, 1},
		s.Bone(ids["b22"]).MTB())
	assert.Equal(t,
		mathutil.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, -0.5, 0, 0, 1},
		s.Bone(ids["b21"]).PTB())
}

func TestRewriteIndices(t *testing.T) {
	s, ids := sixBones(t)
	s.RewriteIndices()
	assert.Equal(t, 6, s.MaxIndex())

	// traversal order: b0, b1, b2, b21, b22, b3
	want := map[string]int{"b0": 0, "b1": 1, "b2": 2, "b21": 3, "b22": 4, "b3": 5}
	for name, slot := range want {
		assert.Equal(t, slot, s.Bone(ids[name]).MatrixIndex, name)
	}
}

func TestRewriteIndicesKeepsAssignedSlots(t *testing.T) {
	s := New()
	_, err := s.AddBone(transform.New(), 4)
	require.NoError(t, err)
	_, err = s.AddBone(transform.New(), 2)
	require.NoError(t, err)
	require.NoError(t, s.Relate(0, 1))

	s.RewriteIndices()
	assert.Equal(t, 5, s.MaxIndex())
	assert.Equal(t, 4, s.Bone(0).MatrixIndex)
	assert.Equal(t, 2, s.Bone(1).MatrixIndex)
}

func TestDeriveMatricesRequiresResolve(t *testing.T) {
	s, _ := sixBones(t)
	assert.Panics(t, func() { _ = s.DeriveMatrices() })

	s.Resolve()
	assert.NotPanics(t, func() { _ = s.DeriveMatrices() })

	// adding a bone drops the resolution
	addBone(t, s, transform.New())
	assert.False(t, s.Resolved())
	assert.Panics(t, func() { _ = s.DeriveMatrices() })
}

func TestDeriveMatricesDegenerate(t *testing.T) {
	s := New()
	addBone(t, s, transform.New().WithScale(mathutil.Vec3{1, 0, 1}))
	s.Resolve()
	assert.ErrorIs(t, s.DeriveMatrices(), transform.ErrDegenerate)
}

func TestEmptySkeleton(t *testing.T) {
	s := New()
	s.Resolve()
	assert.True(t, s.Resolved())
	require.NoError(t, s.DeriveMatrices())

	p, err := NewPose(s)
	require.NoError(t, err)
	assert.Empty(t, p.Update(1))
}

func TestNewPoseRequiresResolve(t *testing.T) {
	s, _ := sixBones(t)
	_, err := NewPose(s)
	assert.ErrorIs(t, err, ErrNotResolved)
}

func resolvedPose(t *testing.T, s *Skeleton) *SkeletonPose {
	t.Helper()
	s.RewriteIndices()
	require.NoError(t, s.DeriveMatrices())
	p, err := NewPose(s)
	require.NoError(t, err)
	return p
}

func TestRestPoseIsIdentity(t *testing.T) {
	s, _ := sixBones(t)
	s.SetTransformation(0, transform.New().
		WithRotation(mathutil.AxisAngle(mathutil.Vec3{0, 1, 0}, 30)).
		WithScale(mathutil.Vec3{2, 2, 2}))
	p := resolvedPose(t, s)

	data := p.Update(0)
	require.Len(t, data, 6)
	for i, m := range data {
		assert.True(t, mathutil.ApproxEqual(mathutil.Mat4Identity(), m, 1e-9), "slot %d: %v", i, m)
	}
}

func TestAnimatedChain(t *testing.T) {
	rest := []transform.Transformation{
		translated(0, 0, 0),
		translated(0, 2, 0).WithRotation(mathutil.AxisAngle(mathutil.Vec3{0, 0, 1}, 45)),
		translated(1, 0, 0).WithScale(mathutil.Vec3{1, 2, 1}),
		translated(0, 0, 3).WithRotation(mathutil.AxisAngle(mathutil.Vec3{1, 0, 0}, -20)),
	}
	s := New()
	for _, tr := range rest {
		addBone(t, s, tr)
	}
	for i := 1; i < len(rest); i++ {
		require.NoError(t, s.Relate(i-1, i))
	}
	p := resolvedPose(t, s)

	posed := []transform.Transformation{
		rest[0].WithRotation(mathutil.AxisAngle(mathutil.Vec3{0, 1, 0}, 90)),
		rest[1].WithRotation(mathutil.AxisAngle(mathutil.Vec3{0, 0, 1}, 10)),
		rest[2],
		rest[3].WithTranslation(mathutil.Vec3{0, 1, 3}),
	}
	for i, tr := range posed {
		*p.Pose(i).Transformation() = tr
	}
	data := p.Update(1)

	// animated = btp0·btp1·…·btpN · ptbN·…·ptb1·ptb0
	btp := mathutil.Mat4Identity()
	ptb := mathutil.Mat4Identity()
	for i := range rest {
		btp = btp.Mul4(posed[i].Mat4())
		inv, err := rest[i].Mat4Inverse()
		require.NoError(t, err)
		ptb = inv.Mul4(ptb)
		assert.True(t, mathutil.ApproxEqual(ptb, s.Bone(i).MTB(), 1e-9), "mtb %d", i)

		want := btp.Mul4(ptb)
		assert.True(t, mathutil.ApproxEqual(want, data[i], 1e-9), "bone %d: want %v got %v", i, want, data[i])
		assert.Equal(t, data[i], p.Pose(i).AnimatedMTM())
	}

	// a point bound to the last bone in its rest place follows the posed chain
	restPoint := mathutil.MulPoint(s.Bone(3).MTB().Inv(), mathutil.Vec3{0, 0, 0})
	got := mathutil.MulPoint(data[3], restPoint)
	want := mathutil.MulPoint(btp, mathutil.Vec3{0, 0, 0})
	assert.InDelta(t, want[0], got[0], 1e-9)
	assert.InDelta(t, want[1], got[1], 1e-9)
	assert.InDelta(t, want[2], got[2], 1e-9)
}

func TestUpdateMemoized(t *testing.T) {
	s, _ := sixBones(t)
	p := resolvedPose(t, s)

	_, ok := p.LastUpdated()
	assert.False(t, ok)

	first := p.Update(0)
	assert.Equal(t, 1, p.derivations, "first update always derives")

	p.Pose(1).Transformation().Translation = mathutil.Vec3{9, 9, 9}
	again := p.Update(0)
	assert.Equal(t, 1, p.derivations)
	assert.Equal(t, first, again)

	p.Update(1)
	assert.Equal(t, 2, p.derivations)
	tick, ok := p.LastUpdated()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), tick)
	assert.InDelta(t, 8, p.Data()[1][12], 1e-12)

	p.Invalidate()
	p.Update(1)
	assert.Equal(t, 3, p.derivations)

	p.Reset()
	p.Update(1)
	assert.Equal(t, 4, p.derivations)
	assert.True(t, mathutil.IsIdentity(p.Data()[1]))
}

func TestPoseDetectsRestructuredSkeleton(t *testing.T) {
	s, _ := sixBones(t)
	p := resolvedPose(t, s)
	addBone(t, s, transform.New())
	s.Resolve()
	assert.Panics(t, func() { p.Update(5) })
}

func TestPoseDetectsRenumberedSkeleton(t *testing.T) {
	s := New()
	a := addBone(t, s, transform.New())
	b := addBone(t, s, translated(1, 0, 0))
	require.NoError(t, s.Relate(a, b))
	s.Resolve()
	require.Equal(t, 1, s.MaxIndex())
	p, err := NewPose(s)
	require.NoError(t, err)

	s.RewriteIndices()
	require.Equal(t, 2, s.MaxIndex())
	assert.Panics(t, func() { p.Update(1) })

	fresh, err := NewPose(s)
	require.NoError(t, err)
	assert.NotPanics(t, func() { fresh.Update(1) })
}

func TestRandomForestsStayInScratch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 30; trial++ {
		n := 1 + rng.Intn(40)
		s := New()
		for i := 0; i < n; i++ {
			addBone(t, s, translated(rng.Float64(), rng.Float64(), rng.Float64()))
		}
		perm := rng.Perm(n)
		for i := 1; i < n; i++ {
			if rng.Intn(4) == 0 {
				continue
			}
			require.NoError(t, s.Relate(perm[rng.Intn(i)], perm[i]))
		}
		p := resolvedPose(t, s)
		require.NotPanics(t, func() { p.Update(1) })
		for i, m := range p.Data() {
			assert.True(t, mathutil.ApproxEqual(mathutil.Mat4Identity(), m, 1e-9), "trial %d slot %d", trial, i)
		}
	}
}

func TestDump(t *testing.T) {
	s, _ := sixBones(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, s.Dump(&buf), ErrNotResolved)

	s.RewriteIndices()
	require.NoError(t, s.Dump(&buf))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	// b21 is node 4, two levels deep, in slot 3
	assert.True(t, strings.HasPrefix(lines[3], "    4: Bone 3 : "), lines[3])
}

func TestSkin(t *testing.T) {
	move := mathutil.Mat4Identity()
	move[12] = 1
	matrices := []mathutil.Mat4{mathutil.Mat4Identity(), move}

	src := [][3]float32{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}
	dst := make([][3]float32, len(src))
	Skin(dst, src, []int16{1, 0, 7}, matrices)
	assert.Equal(t, [][3]float32{{1, 0, 0}, {1, 1, 1}, {2, 2, 2}}, dst)

	normals := [][3]float32{{0, 0, 2}}
	SkinNormals(normals, normals, []int16{1}, matrices)
	assert.Equal(t, [][3]float32{{0, 0, 1}}, normals)
}

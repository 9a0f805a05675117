package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/shapes"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

// idBackend hands out sequential ids for every client it creates.
type idBackend struct {
	vertices, materials int
	fail                bool
}

func (b *idBackend) CreateVerticesClient(*model.Vertices) (int, error) {
	if b.fail {
		return 0, errors.New("out of buffers")
	}
	b.vertices++
	return b.vertices, nil
}

func (b *idBackend) CreateMaterialClient(model.Material) (int, error) {
	b.materials++
	return b.materials, nil
}

func triangleObject(t *testing.T) *model.Object {
	t.Helper()
	obj := model.NewObject()
	tri := shapes.Triangle(0.5)
	v := obj.AddVertices(tri.Vertices)
	m := obj.AddMaterial(model.NewBaseMaterial(0xff0000ff))
	_, err := obj.AddComponent(model.NoParent, nil, tri.Mesh(v, m))
	require.NoError(t, err)
	return obj
}

func TestTriangleObject(t *testing.T) {
	obj := triangleObject(t)
	_, err := model.Instantiate[int, int](obj, &idBackend{})
	assert.ErrorIs(t, err, model.ErrNotAnalyzed)

	require.NoError(t, obj.Analyze())
	_, ok := obj.Material(0).Texture(model.AspectNormal)
	assert.False(t, ok)

	b := &idBackend{}
	inst, err := model.Instantiate[int, int](obj, b)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, inst.Vertices)
	assert.Equal(t, []int{1}, inst.Materials)

	r := inst.Recipe
	assert.Equal(t, []mathutil.Mat4{mathutil.Mat4Identity()}, r.Matrices)
	assert.Len(t, r.Primitives, 1)
	assert.Equal(t, []int{0}, r.MatrixForPrimitives)

	i := inst.NewInstance()
	assert.Nil(t, i.Pose)
	assert.Nil(t, i.Update(1))
	assert.Equal(t, mathutil.Mat4Identity(), i.ModelMatrix())
}

func TestInstantiateBackendError(t *testing.T) {
	obj := triangleObject(t)
	require.NoError(t, obj.Analyze())
	_, err := model.Instantiate[int, int](obj, &idBackend{fail: true})
	assert.ErrorContains(t, err, "out of buffers")
}

func TestAnalyzeReportsEveryBadPrimitive(t *testing.T) {
	obj := model.NewObject()
	tri := shapes.Triangle(1)
	v := obj.AddVertices(tri.Vertices)

	var bad model.Mesh
	bad.AddPrimitive(model.NewPrimitive(model.Triangles, v, 0, 3, 4))  // no material 4
	bad.AddPrimitive(model.NewPrimitive(model.Triangles, 7, 0, 3, -1)) // no vertices 7
	bad.AddPrimitive(model.NewPrimitive(model.Triangles, v, 4, 3, -1)) // runs past the indices
	_, err := obj.AddComponent(model.NoParent, nil, bad)
	require.NoError(t, err)

	err = obj.Analyze()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIndexRange)
	assert.Contains(t, err.Error(), "3 errors occurred")
	assert.False(t, obj.Analyzed())
}

func TestSkinnedObject(t *testing.T) {
	s := skeleton.New()
	root, err := s.AddBone(transform.New(), 0)
	require.NoError(t, err)
	arm, err := s.AddBone(transform.New().WithTranslation(mathutil.Vec3{0, 1, 0}), 1)
	require.NoError(t, err)
	require.NoError(t, s.Relate(root, arm))

	obj := model.NewObject()
	obj.SetSkeleton(s)
	box := shapes.Box([3]float32{-0.1, 1, -0.1}, [3]float32{0.1, 2, 0.1}, 1)
	v := obj.AddVertices(box.Vertices)
	tr := transform.New().WithTranslation(mathutil.Vec3{5, 0, 0})
	body, err := obj.AddComponent(model.NoParent, &tr, box.Mesh(v, -1))
	require.NoError(t, err)
	_, err = obj.AddComponent(body, nil, box.Mesh(v, -1))
	require.NoError(t, err)
	require.NoError(t, obj.Analyze())

	inst, err := model.Instantiate[int, int](obj, &idBackend{})
	require.NoError(t, err)
	assert.Equal(t, 2, inst.NumBoneMatrices)
	assert.Equal(t, []int{1, 1}, inst.Recipe.MatrixForPrimitives)

	a, b := inst.NewInstance(), inst.NewInstance()
	a.Pose.Pose(arm).Transformation().Translation = mathutil.Vec3{0, 3, 0}
	am := a.Update(1)
	bm := b.Update(1)
	assert.InDelta(t, 2, am[1][13], 1e-12)
	assert.True(t, mathutil.IsIdentity(bm[1]), "instances pose independently")
	assert.Equal(t, am, a.BoneMatrices())
}

func TestAnalyzeChecksBoneSlots(t *testing.T) {
	s := skeleton.New()
	_, err := s.AddBone(transform.New(), 0)
	require.NoError(t, err)

	obj := model.NewObject()
	obj.SetSkeleton(s)
	box := shapes.Box([3]float32{}, [3]float32{1, 1, 1}, 2)
	v := obj.AddVertices(box.Vertices)
	_, err = obj.AddComponent(model.NoParent, nil, box.Mesh(v, -1))
	require.NoError(t, err)
	assert.ErrorIs(t, obj.Analyze(), model.ErrIndexRange)
}

func TestComponentAfterAnalyze(t *testing.T) {
	obj := triangleObject(t)
	require.NoError(t, obj.Analyze())
	_, err := obj.AddComponent(model.NoParent, nil, model.Mesh{})
	assert.Error(t, err)
}

func TestComponentBadParentLeavesNoNode(t *testing.T) {
	obj := model.NewObject()
	tri := shapes.Triangle(0.5)
	v := obj.AddVertices(tri.Vertices)

	_, err := obj.AddComponent(7, nil, tri.Mesh(v, -1))
	assert.ErrorIs(t, err, model.ErrIndexRange)
	assert.Equal(t, 0, obj.Components().Len())

	_, err = obj.AddComponent(model.NoParent, nil, tri.Mesh(v, -1))
	require.NoError(t, err)
	require.NoError(t, obj.Analyze())
	assert.Equal(t, 1, obj.Components().Len())
}

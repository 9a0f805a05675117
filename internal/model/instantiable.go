package model

import (
	"fmt"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

// Renderable is a rendering backend. V and M are the backend's handles for
// a vertex set and a material; the model never looks inside them.
type Renderable[V, M any] interface {
	CreateVerticesClient(v *Vertices) (V, error)
	CreateMaterialClient(m Material) (M, error)
}

// Instantiable is an analyzed Object bound to a backend: backend handles for
// every vertex set and material, the compiled render recipe and the
// skeleton shared by all instances.
type Instantiable[V, M any] struct {
	Vertices  []V
	Materials []M
	Recipe    *RenderRecipe
	// Skeleton is nil for rigid objects.
	Skeleton        *skeleton.Skeleton
	NumBoneMatrices int
}

// Instantiate creates the backend clients for obj and compiles its render
// recipe. obj must have been analyzed.
func Instantiate[V, M any](obj *Object, r Renderable[V, M]) (*Instantiable[V, M], error) {
	if !obj.Analyzed() {
		return nil, fmt.Errorf("model: instantiate: %w", ErrNotAnalyzed)
	}
	recipe, err := FromComponentHierarchy(obj.components)
	if err != nil {
		return nil, err
	}
	inst := &Instantiable[V, M]{
		Vertices:  make([]V, len(obj.vertices)),
		Materials: make([]M, len(obj.materials)),
		Recipe:    recipe,
		Skeleton:  obj.skeleton,
	}
	for i, v := range obj.vertices {
		if inst.Vertices[i], err = r.CreateVerticesClient(v); err != nil {
			return nil, fmt.Errorf("model: vertices %d client: %w", i, err)
		}
	}
	for i, m := range obj.materials {
		if inst.Materials[i], err = r.CreateMaterialClient(m); err != nil {
			return nil, fmt.Errorf("model: material %d client: %w", i, err)
		}
	}
	if obj.skeleton != nil {
		inst.NumBoneMatrices = obj.skeleton.MaxIndex()
	}
	return inst, nil
}

// NewInstance creates an instance at the origin in the skeleton's rest pose.
// It panics if the skeleton was restructured after Analyze.
func (i *Instantiable[V, M]) NewInstance() *Instance[V, M] {
	inst := &Instance[V, M]{
		Instantiable:   i,
		Transformation: transform.New(),
	}
	if i.Skeleton != nil {
		pose, err := skeleton.NewPose(i.Skeleton)
		if err != nil {
			panic(err)
		}
		inst.Pose = pose
	}
	return inst
}

// Instance is one placement of an Instantiable with its own pose. An
// Instance must not be shared between goroutines.
type Instance[V, M any] struct {
	Instantiable   *Instantiable[V, M]
	Transformation transform.Transformation
	// Pose is nil when the object has no skeleton.
	Pose *skeleton.SkeletonPose
}

// ModelMatrix places the instance in the world.
func (i *Instance[V, M]) ModelMatrix() mathutil.Mat4 {
	return i.Transformation.Mat4()
}

// Update advances the pose to tick and returns the bone matrices, or nil
// without a skeleton.
func (i *Instance[V, M]) Update(tick uint64) []mathutil.Mat4 {
	if i.Pose == nil {
		return nil
	}
	return i.Pose.Update(tick)
}

// BoneMatrices returns the bone matrices from the last Update.
func (i *Instance[V, M]) BoneMatrices() []mathutil.Mat4 {
	if i.Pose == nil {
		return nil
	}
	return i.Pose.Data()
}

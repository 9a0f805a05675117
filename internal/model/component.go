package model

import (
	"errors"
	"fmt"

	"mod3d-renderer/internal/hierarchy"
	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

// ErrNotResolved is returned when a component hierarchy is compiled before
// its roots were found.
var ErrNotResolved = errors.New("component hierarchy is not resolved")

// Component is one node of an Object: an optional transformation relative
// to the parent component and the mesh drawn in the resulting frame.
type Component struct {
	// Transformation is nil when the component shares its parent's frame.
	Transformation *transform.Transformation
	Mesh           Mesh
}

// RenderRecipe is a component hierarchy flattened for drawing: every
// primitive paired with the index of its model matrix. Matrices[0] is always
// the identity.
type RenderRecipe struct {
	Matrices            []mathutil.Mat4
	Primitives          []Primitive
	MatrixForPrimitives []int
}

type meshAt struct {
	node   int
	matrix int
}

// FromComponentHierarchy compiles a resolved component hierarchy. Components
// without a transformation reuse their parent's matrix.
func FromComponentHierarchy(h *hierarchy.Hierarchy[Component]) (*RenderRecipe, error) {
	if !h.Resolved() {
		return nil, fmt.Errorf("model: render recipe: %w", ErrNotResolved)
	}
	r := &RenderRecipe{Matrices: []mathutil.Mat4{mathutil.Mat4Identity()}}
	var meshes []meshAt
	var stack []int
	for _, root := range h.Roots() {
		current := 0
		for op := range h.Ops(root) {
			if op.Kind == hierarchy.Pop {
				current = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				continue
			}
			stack = append(stack, current)
			c := h.Data(op.Node)
			if c.Transformation != nil {
				r.Matrices = append(r.Matrices, r.Matrices[current].Mul4(c.Transformation.Mat4()))
				current = len(r.Matrices) - 1
			}
			if len(c.Mesh.Primitives) > 0 {
				meshes = append(meshes, meshAt{node: op.Node, matrix: current})
			}
		}
	}
	for _, m := range meshes {
		for _, p := range h.Data(m.node).Mesh.Primitives {
			r.Primitives = append(r.Primitives, p)
			r.MatrixForPrimitives = append(r.MatrixForPrimitives, m.matrix)
		}
	}
	return r, nil
}

// Len returns the number of primitives.
func (r *RenderRecipe) Len() int {
	return len(r.Primitives)
}

// Each calls fn for every primitive in draw order with its model matrix.
func (r *RenderRecipe) Each(fn func(p Primitive, m mathutil.Mat4)) {
	for i, p := range r.Primitives {
		fn(p, r.Matrices[r.MatrixForPrimitives[i]])
	}
}

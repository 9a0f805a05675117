package model

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"mod3d-renderer/internal/hierarchy"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

// ErrNotAnalyzed is returned when an Object is used before Analyze.
var ErrNotAnalyzed = errors.New("object has not been analyzed")

// NoParent adds a component as a root.
const NoParent = -1

// Object is a complete model under construction: vertex sets, materials, an
// optional skeleton and the component hierarchy that draws them.
//
// Build it, call Analyze, then Instantiate it for a backend.
type Object struct {
	skeleton   *skeleton.Skeleton
	vertices   []*Vertices
	materials  []Material
	components *hierarchy.Hierarchy[Component]
	analyzed   bool
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{components: hierarchy.New[Component]()}
}

// AddVertices adds a vertex set and returns its index.
func (o *Object) AddVertices(v *Vertices) int {
	o.vertices = append(o.vertices, v)
	o.analyzed = false
	return len(o.vertices) - 1
}

// Vertices returns vertex set i. It panics if i is out of range.
func (o *Object) Vertices(i int) *Vertices {
	return o.vertices[i]
}

// NumVertices returns the number of vertex sets.
func (o *Object) NumVertices() int {
	return len(o.vertices)
}

// AddMaterial adds a material and returns its index.
func (o *Object) AddMaterial(m Material) int {
	o.materials = append(o.materials, m)
	o.analyzed = false
	return len(o.materials) - 1
}

// Material returns material i. It panics if i is out of range.
func (o *Object) Material(i int) Material {
	return o.materials[i]
}

// NumMaterials returns the number of materials.
func (o *Object) NumMaterials() int {
	return len(o.materials)
}

// AddComponent adds a component under parent, or as a root when parent is
// NoParent. t may be nil.
func (o *Object) AddComponent(parent int, t *transform.Transformation, mesh Mesh) (int, error) {
	var own *transform.Transformation
	if t != nil {
		c := *t
		own = &c
	}
	if parent != NoParent && (parent < 0 || parent >= o.components.Len()) {
		return 0, fmt.Errorf("model: add component: parent %d of %d: %w", parent, o.components.Len(), ErrIndexRange)
	}
	child, err := o.components.AddNode(Component{Transformation: own, Mesh: mesh})
	if err != nil {
		return 0, fmt.Errorf("model: add component: %w", err)
	}
	if parent != NoParent {
		if err := o.components.Relate(parent, child); err != nil {
			return 0, fmt.Errorf("model: add component: %w", err)
		}
	}
	o.analyzed = false
	return child, nil
}

// Relate makes child a child component of parent.
func (o *Object) Relate(parent, child int) error {
	if err := o.components.Relate(parent, child); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	o.analyzed = false
	return nil
}

// Components exposes the component hierarchy.
func (o *Object) Components() *hierarchy.Hierarchy[Component] {
	return o.components
}

// SetSkeleton attaches a skeleton; nil removes it.
func (o *Object) SetSkeleton(s *skeleton.Skeleton) {
	o.skeleton = s
	o.analyzed = false
}

// Skeleton returns the attached skeleton, or nil.
func (o *Object) Skeleton() *skeleton.Skeleton {
	return o.skeleton
}

// Analyze freezes the object: it finds the component roots, resolves the
// skeleton (renumbering its matrix slots if needed) and derives its rest
// matrices, and checks that every primitive addresses existing vertices,
// indices and materials. All problems found are returned together.
func (o *Object) Analyze() error {
	o.components.FindRoots()

	var result *multierror.Error
	for i, v := range o.vertices {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("vertices %d: %w", i, err))
		}
	}

	bones := -1
	if o.skeleton != nil {
		o.skeleton.RewriteIndices()
		if err := o.skeleton.DeriveMatrices(); err != nil {
			result = multierror.Append(result, err)
		}
		bones = o.skeleton.MaxIndex()
	}

	for n := 0; n < o.components.Len(); n++ {
		for pi, p := range o.components.Data(n).Mesh.Primitives {
			if err := o.checkPrimitive(p, bones); err != nil {
				result = multierror.Append(result, fmt.Errorf("component %d primitive %d: %w", n, pi, err))
			}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("model: analyze: %w", err)
	}

	o.analyzed = true
	logrus.WithFields(logrus.Fields{
		"components": o.components.Len(),
		"roots":      len(o.components.Roots()),
		"vertices":   len(o.vertices),
		"materials":  len(o.materials),
		"bones":      max(bones, 0),
	}).Debug("object analyzed")
	return nil
}

// checkPrimitive range-checks p; bones is the skeleton's slot count, or -1
// without a skeleton.
func (o *Object) checkPrimitive(p Primitive, bones int) error {
	if m, ok := p.MaterialIndex.Get(); ok && m >= len(o.materials) {
		return fmt.Errorf("material %d of %d: %w", m, len(o.materials), ErrIndexRange)
	}
	vi, ok := p.VerticesIndex.Get()
	if !ok {
		return nil
	}
	if vi >= len(o.vertices) {
		return fmt.Errorf("vertices %d of %d: %w", vi, len(o.vertices), ErrIndexRange)
	}
	v := o.vertices[vi]
	if _, err := v.Slice(p); err != nil {
		return err
	}
	for _, b := range v.Bones {
		if bones >= 0 && int(b) >= bones {
			return fmt.Errorf("bone slot %d of %d: %w", b, bones, ErrIndexRange)
		}
	}
	return nil
}

// Analyzed reports whether Analyze succeeded since the last change.
func (o *Object) Analyzed() bool {
	return o.analyzed
}

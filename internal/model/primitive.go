// Package model assembles vertices, materials, a skeleton and a hierarchy of
// mesh components into an Object, and compiles that hierarchy into a flat
// RenderRecipe that a backend can draw without walking the tree.
package model

import "fmt"

// PrimitiveType is how a primitive's indices are assembled. The values match
// glTF.
type PrimitiveType uint8

const (
	Points        PrimitiveType = iota // one point per index
	Lines                              // ab, cd, ef, ...
	LineLoop                           // ab, bc, ..., za
	LineStrip                          // ab, bc, cd, ...
	Triangles                          // one triangle per three indices
	TriangleStrip                      // abc, bcd, cde, ...
	TriangleFan                        // abc, acd, ade, ...
)

var primitiveNames = [...]string{"points", "lines", "line_loop", "line_strip", "triangles", "triangle_strip", "triangle_fan"}

func (t PrimitiveType) String() string {
	if int(t) < len(primitiveNames) {
		return primitiveNames[t]
	}
	return fmt.Sprintf("PrimitiveType(%d)", uint8(t))
}

// ParsePrimitiveType is the inverse of String.
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	for i, n := range primitiveNames {
		if n == s {
			return PrimitiveType(i), nil
		}
	}
	return 0, fmt.Errorf("model: unknown primitive type %q", s)
}

// ShortIndex is an optional small index into one of an Object's arrays.
type ShortIndex uint16

// NoIndex marks an absent ShortIndex.
const NoIndex ShortIndex = 0xFFFF

// Index converts i to a ShortIndex; negative values give NoIndex. It panics
// if i does not fit.
func Index(i int) ShortIndex {
	if i < 0 {
		return NoIndex
	}
	if i >= int(NoIndex) {
		panic(fmt.Sprintf("model: index %d does not fit a ShortIndex", i))
	}
	return ShortIndex(i)
}

// Get returns the index and whether it is present.
func (s ShortIndex) Get() (int, bool) {
	if s == NoIndex {
		return 0, false
	}
	return int(s), true
}

func (s ShortIndex) String() string {
	if s == NoIndex {
		return "-"
	}
	return fmt.Sprintf("%d", uint16(s))
}

// Primitive describes one draw call into a Vertices set of the enclosing
// Object, using a material of the same Object. It owns no data.
type Primitive struct {
	Type          PrimitiveType
	VerticesIndex ShortIndex
	// ByteOffset is the offset into the 32-bit index data.
	ByteOffset    uint32
	IndexCount    uint32
	MaterialIndex ShortIndex
}

// NewPrimitive creates a primitive drawing indexCount indices of the given
// vertices set, starting byteOffset bytes into its index data. Pass a
// negative material for none.
func NewPrimitive(t PrimitiveType, vertices int, byteOffset, indexCount uint32, material int) Primitive {
	return Primitive{
		Type:          t,
		VerticesIndex: Index(vertices),
		ByteOffset:    byteOffset,
		IndexCount:    indexCount,
		MaterialIndex: Index(material),
	}
}

// FirstIndex is the position of the first index in the index data.
func (p Primitive) FirstIndex() int {
	return int(p.ByteOffset / 4)
}

func (p Primitive) String() string {
	return fmt.Sprintf("%s v:%s @%d n:%d m:%s", p.Type, p.VerticesIndex, p.FirstIndex(), p.IndexCount, p.MaterialIndex)
}

// Mesh is an ordered list of primitives, drawn first to last.
type Mesh struct {
	Primitives []Primitive
}

// AddPrimitive appends p to the mesh.
func (m *Mesh) AddPrimitive(p Primitive) {
	m.Primitives = append(m.Primitives, p)
}

// EachTriangle calls fn for every triangle that indices assemble into under
// primitive type t, keeping a consistent winding across strips. Point and
// line types produce no triangles.
func (t PrimitiveType) EachTriangle(indices []uint32, fn func(a, b, c uint32)) {
	n := len(indices)
	switch t {
	case Triangles:
		for i := 0; i+2 < n; i += 3 {
			fn(indices[i], indices[i+1], indices[i+2])
		}
	case TriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				fn(indices[i], indices[i+1], indices[i+2])
			} else {
				fn(indices[i+1], indices[i], indices[i+2])
			}
		}
	case TriangleFan:
		for i := 1; i+1 < n; i++ {
			fn(indices[0], indices[i], indices[i+1])
		}
	}
}

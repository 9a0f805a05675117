package model

import (
	"errors"
	"fmt"
)

// ErrIndexRange is returned when an index points outside the array it
// refers to.
var ErrIndexRange = errors.New("index out of range")

// Vertices is a CPU-side vertex set with its index data. Normals, UVs and
// Bones are optional; when present they run parallel to Positions.
type Vertices struct {
	Indices   []uint32
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	// Bones holds the bone matrix slot each vertex follows (rigid skinning).
	Bones []int16
}

// Len returns the number of vertices.
func (v *Vertices) Len() int {
	return len(v.Positions)
}

// Skinned reports whether the vertices carry bone slots.
func (v *Vertices) Skinned() bool {
	return len(v.Bones) > 0
}

// Validate checks that the optional attributes match the positions and that
// every index addresses a vertex.
func (v *Vertices) Validate() error {
	n := len(v.Positions)
	attrs := []struct {
		name string
		n    int
	}{{"normals", len(v.Normals)}, {"uvs", len(v.UVs)}, {"bones", len(v.Bones)}}
	for _, a := range attrs {
		if a.n != 0 && a.n != n {
			return fmt.Errorf("model: %d %s for %d positions: %w", a.n, a.name, n, ErrIndexRange)
		}
	}
	for i, idx := range v.Indices {
		if int(idx) >= n {
			return fmt.Errorf("model: index %d at %d addresses %d vertices: %w", idx, i, n, ErrIndexRange)
		}
	}
	return nil
}

// Slice returns the indices drawn by p.
func (v *Vertices) Slice(p Primitive) ([]uint32, error) {
	first, end := p.FirstIndex(), p.FirstIndex()+int(p.IndexCount)
	if end > len(v.Indices) {
		return nil, fmt.Errorf("model: primitive indices %d..%d of %d: %w", first, end, len(v.Indices), ErrIndexRange)
	}
	return v.Indices[first:end], nil
}

func (v *Vertices) String() string {
	return fmt.Sprintf("Vertices{%d indices, %d positions, normals:%t uvs:%t bones:%t}",
		len(v.Indices), len(v.Positions), len(v.Normals) > 0, len(v.UVs) > 0, len(v.Bones) > 0)
}

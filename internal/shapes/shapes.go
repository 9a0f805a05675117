// Package shapes builds small example vertex sets for tests and scenes.
package shapes

import (
	"math"

	"mod3d-renderer/internal/model"
)

// Shape is a vertex set together with how its indices are drawn.
type Shape struct {
	Vertices *model.Vertices
	Type     model.PrimitiveType
}

// Mesh returns a one-primitive mesh drawing every index of the shape, for
// the vertex set and material at the given Object indices.
func (s Shape) Mesh(vertices, material int) model.Mesh {
	var m model.Mesh
	m.AddPrimitive(model.NewPrimitive(s.Type, vertices, 0, uint32(len(s.Vertices.Indices)), material))
	return m
}

// Triangle is a flat upward-facing triangle on z=0.
func Triangle(size float32) Shape {
	return Shape{
		Type: model.Triangles,
		Vertices: &model.Vertices{
			Indices:   []uint32{0, 1, 2},
			Positions: [][3]float32{{-size, -size, 0}, {size, -size, 0}, {0, size, 0}},
			Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			UVs:       [][2]float32{{0, 1}, {1, 1}, {0.5, 0}},
		},
	}
}

// Tetrahedron is a regular tetrahedron with edge length size standing on
// z=0, drawn as a single strip. Each normal points away from the centroid.
func Tetrahedron(size float32) Shape {
	height := float32(math.Sqrt(2.0 / 3.0))
	centroid := height / 4
	r32 := float32(math.Sqrt(3)) / 2
	s := 1 / float32(math.Sqrt(3))
	x := float32(math.Sqrt(23.0 / 24.0))
	return Shape{
		Type: model.TriangleStrip,
		Vertices: &model.Vertices{
			Indices: []uint32{0, 1, 2, 3, 0, 1},
			Positions: [][3]float32{
				{size * s, 0, 0},
				{-size * s / 2, size / 2, 0},
				{-size * s / 2, -size / 2, 0},
				{0, 0, size * height},
			},
			Normals: [][3]float32{
				{x, 0, -centroid},
				{-x / 2, x * r32, -centroid},
				{-x / 2, -x * r32, -centroid},
				{0, 0, 1},
			},
		},
	}
}

// boxFaces lists each face as its outward normal and four corners, wound
// counter-clockwise seen from outside. Corner bit 0 picks max x, bit 1 max
// y, bit 2 max z.
var boxFaces = []struct {
	normal  [3]float32
	corners [4]int
}{
	{[3]float32{1, 0, 0}, [4]int{1, 3, 7, 5}},
	{[3]float32{-1, 0, 0}, [4]int{0, 4, 6, 2}},
	{[3]float32{0, 1, 0}, [4]int{2, 6, 7, 3}},
	{[3]float32{0, -1, 0}, [4]int{0, 1, 5, 4}},
	{[3]float32{0, 0, 1}, [4]int{4, 5, 7, 6}},
	{[3]float32{0, 0, -1}, [4]int{0, 2, 3, 1}},
}

// Box is an axis-aligned box between lo and hi with flat faces. Every vertex
// follows bone slot bone; pass -1 for an unskinned box.
func Box(lo, hi [3]float32, bone int16) Shape {
	v := &model.Vertices{}
	for _, f := range boxFaces {
		base := uint32(len(v.Positions))
		for _, c := range f.corners {
			p := lo
			for axis := 0; axis < 3; axis++ {
				if c&(1<<axis) != 0 {
					p[axis] = hi[axis]
				}
			}
			v.Positions = append(v.Positions, p)
			v.Normals = append(v.Normals, f.normal)
		}
		v.UVs = append(v.UVs, [2]float32{0, 1}, [2]float32{1, 1}, [2]float32{1, 0}, [2]float32{0, 0})
		v.Indices = append(v.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	if bone >= 0 {
		v.Bones = make([]int16, len(v.Positions))
		for i := range v.Bones {
			v.Bones[i] = bone
		}
	}
	return Shape{Vertices: v, Type: model.Triangles}
}

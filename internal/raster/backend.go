package raster

import (
	"errors"
	"image"
	"image/color"
	"slices"

	"github.com/sirupsen/logrus"

	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/texture"
)

var defaultColor = color.NRGBA{160, 160, 170, 255}

// Backend creates raster clients for an Object's vertices and materials.
// It implements model.Renderable[*Mesh, *Material].
type Backend struct {
	// Textures resolves texture names; nil disables texturing.
	Textures texture.Resolver
}

var _ model.Renderable[*Mesh, *Material] = (*Backend)(nil)

// Mesh is the backend's copy of a vertex set. It is never written after
// creation and can be shared by every instance and worker.
type Mesh struct {
	vertices model.Vertices
}

// Vertices returns the mesh's vertex data. Callers must not modify it.
func (m *Mesh) Vertices() *model.Vertices {
	return &m.vertices
}

// Material is a resolved material: a tint and an optional colour texture.
type Material struct {
	Tint    color.NRGBA
	Texture *image.NRGBA
	// average is the mean texture colour, used when the vertices carry no
	// UVs.
	average color.NRGBA
}

// CreateVerticesClient copies v into a Mesh.
func (b *Backend) CreateVerticesClient(v *model.Vertices) (*Mesh, error) {
	if v == nil {
		return nil, errors.New("raster: nil vertices")
	}
	return &Mesh{vertices: model.Vertices{
		Indices:   slices.Clone(v.Indices),
		Positions: slices.Clone(v.Positions),
		Normals:   slices.Clone(v.Normals),
		UVs:       slices.Clone(v.UVs),
		Bones:     slices.Clone(v.Bones),
	}}, nil
}

// CreateMaterialClient resolves m's base colour and colour texture. A
// texture that cannot be resolved leaves the material untextured.
func (b *Backend) CreateMaterialClient(m model.Material) (*Material, error) {
	if m == nil {
		return nil, errors.New("raster: nil material")
	}
	rgba := m.Base().RGBA
	mat := &Material{Tint: color.NRGBA{
		R: clamp255(float64(rgba[0]) * 255),
		G: clamp255(float64(rgba[1]) * 255),
		B: clamp255(float64(rgba[2]) * 255),
		A: clamp255(float64(rgba[3]) * 255),
	}}
	mat.average = mat.Tint

	name, ok := m.Texture(model.AspectColor)
	if !ok || b.Textures == nil {
		return mat, nil
	}
	mat.Texture = b.Textures.Resolve(name)
	if mat.Texture == nil {
		logrus.WithField("texture", name).Warn("colour texture unavailable, drawing flat")
		return mat, nil
	}
	mat.average = modulate(averageColor(mat.Texture), mat.Tint)
	return mat, nil
}

// Package raster is a software rendering backend. It draws an instance's
// render recipe into a z-buffered RGBA frame with flat shading and bilinear
// texture sampling.
package raster

import (
	"image"
	"slices"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/postprocess"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/viewmatrix"
)

// Instantiable is an Object bound to this backend.
type Instantiable = model.Instantiable[*Mesh, *Material]

// Instance is an Object instance bound to this backend.
type Instance = model.Instance[*Mesh, *Material]

// Animation poses a skeleton for a tick before it is drawn.
type Animation interface {
	Apply(pose *skeleton.SkeletonPose, tick uint64)
}

// Renderer draws instances. A Renderer holds no per-frame state and may be
// shared by goroutines rendering different instances.
type Renderer struct {
	Camera      viewmatrix.Camera
	Width       int
	Height      int
	Supersample int
	Margin      int // pixels of the final frame left empty on every side
	Lights      LightConfig
	// Animation is optional. It must be safe for concurrent use when the
	// Renderer is shared.
	Animation Animation
}

// NewRenderer returns a width×height renderer with 2× supersampling, a 16
// pixel margin and the default light rig.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		Width:       width,
		Height:      height,
		Supersample: 2,
		Margin:      16,
		Lights:      DefaultLightConfig(),
	}
}

func (r *Renderer) supersample() int {
	return max(r.Supersample, 1)
}

// Fit frames the union of the instance's geometry at every given tick, at
// the supersampled resolution. No ticks means tick 0.
func (r *Renderer) Fit(inst *Instance, ticks ...uint64) viewmatrix.Framing {
	if len(ticks) == 0 {
		ticks = []uint64{0}
	}
	var points []mathutil.Vec3
	for _, tick := range ticks {
		r.walk(inst, tick, func(_ model.Primitive, _ *Mesh, indices []uint32, view []mathutil.Vec3) {
			for _, i := range indices {
				points = append(points, view[i])
			}
		})
	}
	ss := r.supersample()
	return r.Camera.Fit(points, r.Width*ss, r.Height*ss, r.Margin*ss)
}

// Render poses inst at tick and draws it. A nil framing fits the frame to
// this tick alone.
func (r *Renderer) Render(inst *Instance, tick uint64, framing *viewmatrix.Framing) *image.NRGBA {
	if framing == nil {
		f := r.Fit(inst, tick)
		framing = &f
	}
	fb := NewFrameBuffer(framing.Width, framing.Height)

	var px, py, pz []float64
	r.walk(inst, tick, func(p model.Primitive, mesh *Mesh, indices []uint32, view []mathutil.Vec3) {
		n := len(view)
		px = slices.Grow(px[:0], n)[:n]
		py = slices.Grow(py[:0], n)[:n]
		pz = slices.Grow(pz[:0], n)[:n]
		framing.Project(view, px, py, pz)

		tint, tex := defaultColor, (*image.NRGBA)(nil)
		if m, ok := p.MaterialIndex.Get(); ok {
			mat := inst.Instantiable.Materials[m]
			tint, tex = mat.Tint, mat.Texture
			if tex != nil && len(mesh.vertices.UVs) == 0 {
				tint, tex = mat.average, nil
			}
		}
		uvs := mesh.vertices.UVs

		p.Type.EachTriangle(indices, func(a, b, c uint32) {
			normal := mathutil.SafeNormalize(view[b].Sub(view[a]).Cross(view[c].Sub(view[a])))
			if normal == (mathutil.Vec3{}) {
				return
			}
			var tri [3]Vertex
			for k, i := range [3]uint32{a, b, c} {
				tri[k] = Vertex{X: px[i], Y: py[i], Z: pz[i]}
				if tex != nil {
					tri[k].U, tri[k].V = float64(uvs[i][0]), float64(uvs[i][1])
				}
			}
			RasterizeTriangle(fb, tri, normal, tex, tint, &r.Lights)
		})
	})

	return postprocess.Downsample(fb.Image(), r.Width, r.Height)
}

// walk updates the pose and visits every primitive of the recipe with its
// indices and its vertices skinned and moved to view space. The view slice
// is reused between calls.
func (r *Renderer) walk(inst *Instance, tick uint64, visit func(p model.Primitive, mesh *Mesh, indices []uint32, view []mathutil.Vec3)) {
	if r.Animation != nil && inst.Pose != nil {
		r.Animation.Apply(inst.Pose, tick)
	}
	bones := inst.Update(tick)
	base := r.Camera.View().Mul4(inst.ModelMatrix())

	var skinned [][3]float32
	var view []mathutil.Vec3
	inst.Instantiable.Recipe.Each(func(p model.Primitive, m mathutil.Mat4) {
		vi, ok := p.VerticesIndex.Get()
		if !ok {
			return
		}
		mesh := inst.Instantiable.Vertices[vi]
		indices, err := mesh.vertices.Slice(p)
		if err != nil {
			return
		}

		positions := mesh.vertices.Positions
		if bones != nil && mesh.vertices.Skinned() {
			skinned = slices.Grow(skinned[:0], len(positions))[:len(positions)]
			skeleton.Skin(skinned, positions, mesh.vertices.Bones, bones)
			positions = skinned
		}

		mv := base.Mul4(m)
		view = slices.Grow(view[:0], len(positions))[:len(positions)]
		for i, pos := range positions {
			view[i] = mathutil.MulPoint(mv, mathutil.Vec3From(pos))
		}
		visit(p, mesh, indices, view)
	})
}

package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/model"
	"mod3d-renderer/internal/shapes"
	"mod3d-renderer/internal/skeleton"
	"mod3d-renderer/internal/transform"
)

type mapResolver map[string]*image.NRGBA

func (m mapResolver) Resolve(name string) *image.NRGBA { return m[name] }

func instantiate(t *testing.T, obj *model.Object, b *Backend) *Instance {
	t.Helper()
	require.NoError(t, obj.Analyze())
	inst, err := model.Instantiate[*Mesh, *Material](obj, b)
	require.NoError(t, err)
	return inst.NewInstance()
}

func triangle(t *testing.T, mat model.Material) *model.Object {
	t.Helper()
	obj := model.NewObject()
	tri := shapes.Triangle(0.5)
	v := obj.AddVertices(tri.Vertices)
	m := obj.AddMaterial(mat)
	_, err := obj.AddComponent(model.NoParent, nil, tri.Mesh(v, m))
	require.NoError(t, err)
	return obj
}

func smallRenderer() *Renderer {
	r := NewRenderer(64, 64)
	r.Supersample = 1
	r.Margin = 4
	return r
}

func centroidX(img *image.NRGBA) float64 {
	var sum, n float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A > 0 {
				sum += float64(x)
				n++
			}
		}
	}
	return sum / n
}

func TestRenderTriangle(t *testing.T) {
	inst := instantiate(t, triangle(t, model.NewBaseMaterial(0xff0000ff)), &Backend{})
	img := smallRenderer().Render(inst, 0, nil)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, c.R, uint8(100))
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 60).A, "margin stays empty")
}

func TestRenderSupersampled(t *testing.T) {
	inst := instantiate(t, triangle(t, model.NewBaseMaterial(0xff0000ff)), &Backend{})
	r := smallRenderer()
	r.Supersample = 3
	f := r.Fit(inst)
	assert.Equal(t, 192, f.Width)

	img := r.Render(inst, 0, &f)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
}

func TestTexturedMaterial(t *testing.T) {
	green := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(green.Pix); i += 4 {
		copy(green.Pix[i:], []uint8{0, 200, 0, 255})
	}
	b := &Backend{Textures: mapResolver{"grass": green}}

	inst := instantiate(t, triangle(t, model.NewTexturedMaterial(0xffffffff, "grass")), b)
	require.NotNil(t, inst.Instantiable.Materials[0].Texture)
	c := smallRenderer().Render(inst, 0, nil).NRGBAAt(32, 32)
	assert.Greater(t, c.G, c.R)

	// an unresolved texture falls back to the flat tint
	inst = instantiate(t, triangle(t, model.NewTexturedMaterial(0xffffffff, "missing")), b)
	assert.Nil(t, inst.Instantiable.Materials[0].Texture)
	c = smallRenderer().Render(inst, 0, nil).NRGBAAt(32, 32)
	assert.Equal(t, c.R, c.G)
}

func TestBackendCopiesVertices(t *testing.T) {
	tri := shapes.Triangle(1)
	m, err := (&Backend{}).CreateVerticesClient(tri.Vertices)
	require.NoError(t, err)
	tri.Vertices.Positions[0] = [3]float32{9, 9, 9}
	assert.Equal(t, [3]float32{-1, -1, 0}, m.Vertices().Positions[0])

	_, err = (&Backend{}).CreateVerticesClient(nil)
	assert.Error(t, err)
}

func TestRenderFollowsPose(t *testing.T) {
	obj := model.NewObject()
	box := shapes.Box([3]float32{-0.5, -0.5, -0.5}, [3]float32{0.5, 0.5, 0.5}, 0)
	v := obj.AddVertices(box.Vertices)
	_, err := obj.AddComponent(model.NoParent, nil, box.Mesh(v, -1))
	require.NoError(t, err)
	s := skeleton.New()
	_, err = s.AddBone(transform.New(), 0)
	require.NoError(t, err)
	obj.SetSkeleton(s)

	inst := instantiate(t, obj, &Backend{})
	r := smallRenderer()
	framing := r.Fit(inst, 0)
	rest := centroidX(r.Render(inst, 0, &framing))

	pt := inst.Pose.Pose(0).Transformation()
	*pt = pt.WithTranslation(mathutil.Vec3{0.3, 0, 0})
	moved := centroidX(r.Render(inst, 1, &framing))
	assert.Greater(t, moved, rest+5)
}

func TestRasterizeDepthTest(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	lc := DefaultLightConfig()
	n := mathutil.Vec3{0, 0, 1}
	quad := func(z float64) [3]Vertex {
		return [3]Vertex{{X: -1, Y: -1, Z: z}, {X: 20, Y: -1, Z: z}, {X: -1, Y: 20, Z: z}}
	}
	RasterizeTriangle(fb, quad(1), n, nil, color.NRGBA{255, 0, 0, 255}, &lc)
	RasterizeTriangle(fb, quad(0), n, nil, color.NRGBA{0, 0, 255, 255}, &lc)
	c := fb.Image().NRGBAAt(1, 1)
	assert.Greater(t, c.R, c.B, "the farther triangle is hidden")
	assert.Equal(t, 1.0, fb.ZBuf[8+1])
}

func TestExpose(t *testing.T) {
	lc := DefaultLightConfig()
	shade := lc.Shade(mathutil.Vec3{0, 0, 1})
	assert.Equal(t, uint8(0), lc.Expose(0, shade))
	assert.Greater(t, lc.Expose(255, shade), lc.Expose(128, shade))
}

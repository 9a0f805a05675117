package raster

import (
	"image"
	"image/color"
	"math"

	"mod3d-renderer/internal/mathutil"
)

// Vertex is a projected vertex: pixel position, depth (larger is nearer) and
// texture coordinates.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// RasterizeTriangle fills one triangle into fb with a z-test. The texel at
// the interpolated UV (or the tint alone when tex is nil) is multiplied by
// tint and lit with a single shade computed from the view-space face normal.
//
// This is the hot path and does not allocate.
func RasterizeTriangle(fb *FrameBuffer, tri [3]Vertex, normal mathutil.Vec3, tex *image.NRGBA, tint color.NRGBA, lc *LightConfig) {
	x0, y0, z0 := tri[0].X, tri[0].Y, tri[0].Z
	x1, y1, z1 := tri[1].X, tri[1].Y, tri[1].Z
	x2, y2, z2 := tri[2].X, tri[2].Y, tri[2].Z

	shade := lc.Shade(normal)

	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			c := tint
			if tex != nil {
				u := w0*tri[0].U + w1*tri[1].U + w2*tri[2].U
				v := w0*tri[0].V + w1*tri[1].V + w2*tri[2].V
				c = modulate(SampleTexture(tex, u, v), tint)
			}
			// cut-out texels
			if c.A < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = lc.Expose(c.R, shade)
			fb.Color[pxIdx+1] = lc.Expose(c.G, shade)
			fb.Color[pxIdx+2] = lc.Expose(c.B, shade)
			fb.Color[pxIdx+3] = c.A
		}
	}
}

func modulate(a, b color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: uint8(uint16(a.R) * uint16(b.R) / 255),
		G: uint8(uint16(a.G) * uint16(b.G) / 255),
		B: uint8(uint16(a.B) * uint16(b.B) / 255),
		A: uint8(uint16(a.A) * uint16(b.A) / 255),
	}
}

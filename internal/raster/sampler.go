package raster

import (
	"image"
	"image/color"
	"math"
)

// SampleTexture reads tex at (u, v) with bilinear filtering, wrapping UVs
// outside [0, 1).
func SampleTexture(tex *image.NRGBA, u, v float64) color.NRGBA {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	u -= math.Floor(u)
	v -= math.Floor(v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0, y0 := int(fx), int(fy)
	x1, y1 := (x0+1)%w, (y0+1)%h
	dx, dy := fx-float64(x0), fy-float64(y0)

	row0 := y0 * tex.Stride
	row1 := y1 * tex.Stride
	taps := [4]int{row0 + x0*4, row0 + x1*4, row1 + x0*4, row1 + x1*4}
	weights := [4]float64{(1 - dx) * (1 - dy), dx * (1 - dy), (1 - dx) * dy, dx * dy}

	var acc [4]float64
	for t, off := range taps {
		for ch := 0; ch < 4; ch++ {
			acc[ch] += float64(tex.Pix[off+ch]) * weights[t]
		}
	}
	return color.NRGBA{
		R: uint8(acc[0] + 0.5),
		G: uint8(acc[1] + 0.5),
		B: uint8(acc[2] + 0.5),
		A: uint8(acc[3] + 0.5),
	}
}

// averageColor is the mean opaque colour of tex, used when a textured
// material is drawn without UVs.
func averageColor(tex *image.NRGBA) color.NRGBA {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return defaultColor
	}
	var sum [3]float64
	for y := 0; y < h; y++ {
		row := tex.Pix[y*tex.Stride : y*tex.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sum[0] += float64(row[i])
			sum[1] += float64(row[i+1])
			sum[2] += float64(row[i+2])
		}
	}
	n := float64(w * h)
	return color.NRGBA{uint8(sum[0]/n + 0.5), uint8(sum[1]/n + 0.5), uint8(sum[2]/n + 0.5), 255}
}

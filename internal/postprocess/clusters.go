package postprocess

import "image"

// Despeckle clears connected groups of visible pixels (8-connected) smaller
// than minRatio of all visible pixels. Images with a single group are
// returned unchanged.
func Despeckle(img *image.NRGBA, minRatio float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	visible := func(i int) bool {
		return img.Pix[(i/w)*img.Stride+(i%w)*4+3] > 0
	}

	labels := make([]int32, w*h)
	var sizes []int
	total := 0
	stack := make([]int, 0, 256)
	for start := range labels {
		if labels[start] != 0 || !visible(start) {
			continue
		}
		sizes = append(sizes, 0)
		label := int32(len(sizes))
		labels[start] = label
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			sizes[label-1]++
			cx, cy := cur%w, cur/w
			for ny := max(cy-1, 0); ny <= min(cy+1, h-1); ny++ {
				for nx := max(cx-1, 0); nx <= min(cx+1, w-1); nx++ {
					n := ny*w + nx
					if labels[n] == 0 && visible(n) {
						labels[n] = label
						stack = append(stack, n)
					}
				}
			}
		}
		total += sizes[label-1]
	}
	if len(sizes) <= 1 {
		return img
	}

	minSize := int(float64(total) * minRatio)
	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)
	for i, l := range labels {
		if l != 0 && sizes[l-1] < minSize {
			o := (i/w)*out.Stride + (i%w)*4
			out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = 0, 0, 0, 0
		}
	}
	return out
}

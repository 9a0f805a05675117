package skeleton

import "mod3d-renderer/internal/mathutil"

// Skin writes the rigidly skinned positions of src into dst: every vertex
// follows exactly one matrix slot, named by slots[i], with weight 1.
// Vertices whose slot is out of range are copied unchanged. dst and src may
// be the same slice.
func Skin(dst, src [][3]float32, slots []int16, matrices []mathutil.Mat4) {
	if allIdentity(matrices) {
		copy(dst, src)
		return
	}
	for i, p := range src {
		slot := -1
		if i < len(slots) {
			slot = int(slots[i])
		}
		if slot < 0 || slot >= len(matrices) {
			dst[i] = p
			continue
		}
		t := mathutil.MulPoint(matrices[slot], mathutil.Vec3From(p))
		dst[i] = [3]float32{float32(t[0]), float32(t[1]), float32(t[2])}
	}
}

// SkinNormals is Skin for direction vectors: translation is ignored and the
// result is renormalised.
func SkinNormals(dst, src [][3]float32, slots []int16, matrices []mathutil.Mat4) {
	if allIdentity(matrices) {
		copy(dst, src)
		return
	}
	for i, n := range src {
		slot := -1
		if i < len(slots) {
			slot = int(slots[i])
		}
		if slot < 0 || slot >= len(matrices) {
			dst[i] = n
			continue
		}
		t := mathutil.SafeNormalize(mathutil.MulDir(matrices[slot], mathutil.Vec3From(n)))
		dst[i] = [3]float32{float32(t[0]), float32(t[1]), float32(t[2])}
	}
}

func allIdentity(matrices []mathutil.Mat4) bool {
	for _, m := range matrices {
		if !mathutil.IsIdentity(m) {
			return false
		}
	}
	return true
}

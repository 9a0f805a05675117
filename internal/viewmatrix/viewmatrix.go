// Package viewmatrix orients the world for the camera and fits projected
// geometry into a square-pixel frame.
package viewmatrix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"mod3d-renderer/internal/mathutil"
)

// DefaultFOV is the vertical field of view in degrees for perspective
// cameras that leave FOV unset.
const DefaultFOV = 30.0

// Camera looks at the model from a yaw/pitch orbit. Angles are degrees.
type Camera struct {
	Yaw         float64
	Pitch       float64
	Perspective bool
	FOV         float64
}

// View returns the camera rotation: yaw about Y, then pitch about X. The
// camera looks down -Z, so larger view-space Z is nearer.
func (c Camera) View() mathutil.Mat4 {
	pitch := mgl64.HomogRotate3DX(mathutil.Deg2Rad(c.Pitch))
	yaw := mgl64.HomogRotate3DY(mathutil.Deg2Rad(c.Yaw))
	return pitch.Mul4(yaw)
}

// Framing maps view-space points to pixels. It is computed once by Fit and
// can be reused across frames so that an animation does not jitter.
type Framing struct {
	Width, Height int
	center        mathutil.Vec3
	scale         float64
	// camDist is zero for orthographic framings.
	camDist float64
}

// Fit computes the framing that fits every view-space point inside a
// width×height frame with margin pixels on each side.
func (c Camera) Fit(points []mathutil.Vec3, width, height, margin int) Framing {
	f := Framing{Width: width, Height: height, scale: 1}
	if len(points) == 0 {
		return f
	}

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	f.center = lo.Add(hi).Mul(0.5)

	halfX := math.Max((hi[0]-lo[0])/2, 0.0005)
	halfY := math.Max((hi[1]-lo[1])/2, 0.0005)

	if c.Perspective {
		fov := c.FOV
		if fov == 0 {
			fov = DefaultFOV
		}
		// stand back far enough for the wider half-extent to fill the fov,
		// measured from the nearest face of the bounds
		halfFOV := mathutil.Deg2Rad(fov / 2)
		f.camDist = math.Max(halfX, halfY)/math.Tan(halfFOV) + (hi[2]-lo[2])/2

		// the near face is magnified the most; fit that
		near := f.camDist / math.Max(f.camDist-(hi[2]-lo[2])/2, 0.1)
		halfX *= near
		halfY *= near
	}

	availX := float64(width - 2*margin)
	availY := float64(height - 2*margin)
	f.scale = math.Min(availX/(2*halfX), availY/(2*halfY))
	return f
}

// Project maps view-space points to pixel x, pixel y (down) and depth, where
// larger depth is nearer the camera.
func (f Framing) Project(points []mathutil.Vec3, px, py, pz []float64) {
	halfW := float64(f.Width) / 2
	halfH := float64(f.Height) / 2
	for i, p := range points {
		x := p[0] - f.center[0]
		y := p[1] - f.center[1]
		if f.camDist > 0 {
			depth := math.Max(f.camDist-(p[2]-f.center[2]), 0.1)
			factor := f.camDist / depth
			x *= factor
			y *= factor
		}
		px[i] = x*f.scale + halfW
		py[i] = -y*f.scale + halfH
		pz[i] = p[2]
	}
}

// Scale returns pixels per view-space unit at the center depth.
func (f Framing) Scale() float64 {
	return f.scale
}

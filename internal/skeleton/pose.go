package skeleton

import (
	"fmt"

	"mod3d-renderer/internal/hierarchy"
	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

// BonePose is the animated counterpart of a Bone: a pose transformation that
// overrides the rest transformation, plus the matrices derived from it.
type BonePose struct {
	bone           *Bone
	transformation transform.Transformation
	// animatedBTM is btp(t) accumulated from the root down to this bone
	animatedBTM mathutil.Mat4
	animatedMTM mathutil.Mat4
}

func newBonePose(b *Bone) BonePose {
	return BonePose{bone: b, transformation: b.Transformation}
}

// Bone returns the bone this pose animates.
func (p *BonePose) Bone() *Bone {
	return p.bone
}

// Transformation returns the pose transformation for editing.
func (p *BonePose) Transformation() *transform.Transformation {
	return &p.transformation
}

// Reset puts the bone back into its rest pose.
func (p *BonePose) Reset() {
	p.transformation = p.bone.Transformation
}

// AnimatedMTM maps the skinned mesh into animated model space for this bone.
func (p *BonePose) AnimatedMTM() mathutil.Mat4 {
	return p.animatedMTM
}

// AnimatedBTM maps this bone's posed space into animated model space.
func (p *BonePose) AnimatedBTM() mathutil.Mat4 {
	return p.animatedBTM
}

// deriveAnimation composes this bone's btp(t) onto the parent's accumulated
// chain and applies the rest mtb.
func (p *BonePose) deriveAnimation(isRoot bool, parentBTM mathutil.Mat4) mathutil.Mat4 {
	btp := p.transformation.Mat4()
	if isRoot {
		p.animatedBTM = btp
	} else {
		p.animatedBTM = parentBTM.Mul4(btp)
	}
	p.animatedMTM = p.animatedBTM.Mul4(p.bone.mtb)
	return p.animatedBTM
}

// SkeletonPose holds one BonePose per bone of a resolved Skeleton and the
// flat array of animated matrices, indexed by each bone's MatrixIndex.
//
// A SkeletonPose must not be shared between goroutines; readers of Data must
// wait for Update to return.
type SkeletonPose struct {
	skeleton    *Skeleton
	poses       []BonePose
	data        []mathutil.Mat4
	scratch     []mathutil.Mat4
	lastUpdated uint64
	updated     bool
	derivations int
}

// NewPose creates a pose in the rest position for a resolved skeleton.
func NewPose(s *Skeleton) (*SkeletonPose, error) {
	if !s.Resolved() {
		return nil, fmt.Errorf("skeleton: new pose: %w", ErrNotResolved)
	}
	p := &SkeletonPose{
		skeleton: s,
		poses:    make([]BonePose, s.Len()),
		data:     make([]mathutil.Mat4, s.MaxIndex()),
		scratch:  make([]mathutil.Mat4, len(s.scratch)),
	}
	for i := range p.poses {
		p.poses[i] = newBonePose(s.Bone(i))
	}
	return p, nil
}

// Skeleton returns the skeleton being posed.
func (p *SkeletonPose) Skeleton() *Skeleton {
	return p.skeleton
}

// Len returns the number of bone poses.
func (p *SkeletonPose) Len() int {
	return len(p.poses)
}

// Pose returns the pose of bone i. It panics if i is out of range.
func (p *SkeletonPose) Pose(i int) *BonePose {
	return &p.poses[i]
}

// Reset returns every bone to its rest pose.
func (p *SkeletonPose) Reset() {
	for i := range p.poses {
		p.poses[i].Reset()
	}
	p.updated = false
}

// DeriveAnimation recomputes every bone's animated matrices from the current
// pose transformations by replaying the skeleton's recipes.
func (p *SkeletonPose) DeriveAnimation() {
	if !p.skeleton.Resolved() || len(p.poses) != p.skeleton.Len() || len(p.data) < p.skeleton.MaxIndex() {
		panic("skeleton: pose derived against a skeleton that changed since the pose was created")
	}
	p.derivations++
	for _, r := range p.skeleton.roots {
		depth := 0
		for _, op := range r.Recipe.Ops() {
			if op.Kind == hierarchy.Pop {
				depth--
				continue
			}
			if depth >= len(p.scratch) {
				panic(fmt.Sprintf("skeleton: pose depth %d exceeds scratch %d; stale recipe", depth+1, len(p.scratch)))
			}
			var parent mathutil.Mat4
			if depth > 0 {
				parent = p.scratch[depth-1]
			}
			p.scratch[depth] = p.poses[op.Node].deriveAnimation(depth == 0, parent)
			depth++
		}
	}
}

// Update derives the animation for tick and scatters each bone's animated
// matrix into its slot. Repeated calls with the same tick return the cached
// data without recomputing.
func (p *SkeletonPose) Update(tick uint64) []mathutil.Mat4 {
	if p.updated && tick == p.lastUpdated {
		return p.data
	}
	p.lastUpdated = tick
	p.updated = true
	p.DeriveAnimation()
	for i := range p.poses {
		p.data[p.poses[i].bone.MatrixIndex] = p.poses[i].animatedMTM
	}
	return p.data
}

// Invalidate forces the next Update to recompute even for the same tick, for
// poses edited in the middle of a frame.
func (p *SkeletonPose) Invalidate() {
	p.updated = false
}

// Data returns the animated matrices from the last Update.
func (p *SkeletonPose) Data() []mathutil.Mat4 {
	return p.data
}

// LastUpdated returns the tick of the last Update, and false before the
// first one.
func (p *SkeletonPose) LastUpdated() (uint64, bool) {
	return p.lastUpdated, p.updated
}

// Package skeleton derives rest-pose and animated bone matrices for a
// hierarchy of bones by replaying recorded traversals.
//
// For a bone chain Root -> A -> B -> C each bone keeps its parent-to-bone
// matrix ptb (the inverse of its rest transformation) and its mesh-to-bone
// matrix mtb = C.ptb·B.ptb·A.ptb. A pose replaces each rest transformation
// with a bone-to-parent matrix btp(t), giving
//
//	animated(t) = A.btp(t)·B.btp(t)·C.btp(t)·C.mtb
//
// which maps the skinned mesh into the animated model space.
package skeleton

import (
	"fmt"

	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

// Bone holds a rest transformation relative to its parent and the matrices
// derived from it.
type Bone struct {
	// Transformation is the rest pose relative to the parent bone.
	Transformation transform.Transformation
	// MatrixIndex is the slot of this bone in a pose's output matrices.
	MatrixIndex int

	ptb mathutil.Mat4
	mtb mathutil.Mat4
}

// NewBone creates a bone with the given rest transformation.
func NewBone(t transform.Transformation, matrixIndex int) Bone {
	return Bone{Transformation: t, MatrixIndex: matrixIndex}
}

// PTB returns the parent-to-bone matrix from the last DeriveMatrices.
func (b *Bone) PTB() mathutil.Mat4 {
	return b.ptb
}

// MTB returns the mesh-to-bone matrix from the last DeriveMatrices.
func (b *Bone) MTB() mathutil.Mat4 {
	return b.mtb
}

// deriveMatrices refreshes ptb and mtb given the parent's mtb.
func (b *Bone) deriveMatrices(isRoot bool, parentMTB mathutil.Mat4) (mathutil.Mat4, error) {
	ptb, err := b.Transformation.Mat4Inverse()
	if err != nil {
		return mathutil.Mat4{}, err
	}
	b.ptb = ptb
	if isRoot {
		b.mtb = ptb
	} else {
		b.mtb = ptb.Mul4(parentMTB)
	}
	return b.mtb, nil
}

func (b *Bone) String() string {
	return fmt.Sprintf("Bone %d : %s", b.MatrixIndex, b.Transformation)
}

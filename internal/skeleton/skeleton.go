package skeleton

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"mod3d-renderer/internal/hierarchy"
	"mod3d-renderer/internal/mathutil"
	"mod3d-renderer/internal/transform"
)

// ErrNotResolved is returned when an operation needs Resolve to have run.
var ErrNotResolved = errors.New("skeleton is not resolved")

// RootRecipe pairs a root bone with the recorded traversal of its subtree.
type RootRecipe struct {
	Root   int
	Recipe *hierarchy.Recipe
}

// Skeleton is a forest of bones. Build it with AddBone and Relate, then call
// Resolve (and optionally RewriteIndices) before deriving matrices.
type Skeleton struct {
	bones    *hierarchy.Hierarchy[Bone]
	roots    []RootRecipe
	scratch  []mathutil.Mat4
	maxIndex int
	resolved bool
}

// New creates an empty skeleton.
func New() *Skeleton {
	return &Skeleton{bones: hierarchy.New[Bone]()}
}

// AddBone adds a bone with a rest transformation relative to its parent and
// the output matrix slot it writes to. Any previous resolution is discarded.
func (s *Skeleton) AddBone(t transform.Transformation, matrixIndex int) (int, error) {
	s.invalidate()
	n, err := s.bones.AddNode(NewBone(t, matrixIndex))
	if err != nil {
		return 0, fmt.Errorf("skeleton: add bone: %w", err)
	}
	return n, nil
}

// Relate makes child a child bone of parent.
func (s *Skeleton) Relate(parent, child int) error {
	s.invalidate()
	if err := s.bones.Relate(parent, child); err != nil {
		return fmt.Errorf("skeleton: %w", err)
	}
	return nil
}

func (s *Skeleton) invalidate() {
	s.roots = nil
	s.resolved = false
	s.bones.Invalidate()
}

// Resolve finds the roots, records one traversal recipe per root, sizes the
// scratch stack for the deepest recipe and finds how many matrix slots the
// bones need. It does nothing if the skeleton is already resolved.
func (s *Skeleton) Resolve() {
	if s.resolved {
		return
	}
	s.bones.FindRoots()
	maxDepth := 0
	for _, r := range s.bones.Roots() {
		recipe := s.bones.Recipe(r)
		s.roots = append(s.roots, RootRecipe{Root: r, Recipe: recipe})
		maxDepth = max(maxDepth, recipe.Depth())
	}
	s.scratch = make([]mathutil.Mat4, maxDepth)

	s.maxIndex = 0
	for i := 0; i < s.bones.Len(); i++ {
		s.maxIndex = max(s.maxIndex, s.bones.Data(i).MatrixIndex+1)
	}
	s.resolved = true
	logrus.WithFields(logrus.Fields{
		"bones":     s.bones.Len(),
		"roots":     len(s.roots),
		"depth":     maxDepth,
		"max_index": s.maxIndex,
	}).Debug("skeleton resolved")
}

// Resolved reports whether Resolve has run since the last structural change.
func (s *Skeleton) Resolved() bool {
	return s.resolved
}

// RewriteIndices resolves the skeleton and, when the matrix indices cannot
// all be distinct (fewer slots than bones), renumbers every bone densely in
// traversal order.
func (s *Skeleton) RewriteIndices() {
	s.Resolve()
	if s.maxIndex >= s.bones.Len() {
		return
	}
	count := 0
	for _, r := range s.roots {
		for _, op := range r.Recipe.Ops() {
			if op.Kind == hierarchy.Push {
				s.bones.Data(op.Node).MatrixIndex = count
				count++
			}
		}
	}
	s.maxIndex = count
}

// DeriveMatrices recomputes ptb and mtb for every bone from the current rest
// transformations. It must be called again whenever a rest transformation
// changes. It panics if the skeleton has not been resolved.
func (s *Skeleton) DeriveMatrices() error {
	if !s.Resolved() {
		panic("skeleton: Resolve must be called before DeriveMatrices")
	}
	for _, r := range s.roots {
		depth := 0
		for _, op := range r.Recipe.Ops() {
			if op.Kind == hierarchy.Pop {
				depth--
				continue
			}
			if depth >= len(s.scratch) {
				panic(fmt.Sprintf("skeleton: recipe depth %d exceeds scratch %d; stale recipe", depth+1, len(s.scratch)))
			}
			var parent mathutil.Mat4
			if depth > 0 {
				parent = s.scratch[depth-1]
			}
			mtb, err := s.bones.Data(op.Node).deriveMatrices(depth == 0, parent)
			if err != nil {
				return fmt.Errorf("skeleton: bone %d: %w", op.Node, err)
			}
			s.scratch[depth] = mtb
			depth++
		}
	}
	return nil
}

// Len returns the number of bones.
func (s *Skeleton) Len() int {
	return s.bones.Len()
}

// Bone returns bone i. It panics if i is out of range.
func (s *Skeleton) Bone(i int) *Bone {
	return s.bones.Data(i)
}

// SetTransformation replaces the rest transformation of bone i. The matrices
// are stale until the next DeriveMatrices.
func (s *Skeleton) SetTransformation(i int, t transform.Transformation) {
	s.bones.Data(i).Transformation = t
}

// MaxIndex is the number of output matrix slots the bones need.
func (s *Skeleton) MaxIndex() int {
	return s.maxIndex
}

// Roots returns the root bone indices.
func (s *Skeleton) Roots() []int {
	roots := make([]int, len(s.roots))
	for i, r := range s.roots {
		roots[i] = r.Root
	}
	return roots
}

// Recipes returns the per-root traversal recipes.
func (s *Skeleton) Recipes() []RootRecipe {
	return s.roots
}

// Hierarchy exposes the underlying bone hierarchy for read-only use.
func (s *Skeleton) Hierarchy() *hierarchy.Hierarchy[Bone] {
	return s.bones
}

// Dump writes the bone tree, one bone per line.
func (s *Skeleton) Dump(w io.Writer) error {
	if !s.Resolved() {
		return fmt.Errorf("skeleton: dump: %w", ErrNotResolved)
	}
	return s.bones.Dump(w, func(_ int, b *Bone) string {
		return b.String()
	})
}

package hierarchy

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// OpKind distinguishes entering a node from leaving it.
type OpKind uint8

const (
	Push OpKind = iota
	Pop
)

func (k OpKind) String() string {
	switch k {
	case Push:
		return "push"
	case Pop:
		return "pop"
	default:
		return "unknown"
	}
}

// Op is one step of a depth-first walk. Every node produces one Push before
// its children and one Pop after them.
type Op struct {
	Kind        OpKind
	Node        int
	HasChildren bool
}

func (o Op) String() string {
	return fmt.Sprintf("%s(%d,%t)", o.Kind, o.Node, o.HasChildren)
}

// Ops walks the subtree under root depth first, children in insertion order.
// The sequence may be ranged over any number of times; it must not be used
// while the hierarchy is being changed. It panics if root is out of range.
func (h *Hierarchy[T]) Ops(root int) iter.Seq[Op] {
	if !h.valid(root) {
		panic(fmt.Sprintf("hierarchy: node %d out of range (len %d)", root, len(h.nodes)))
	}
	return func(yield func(Op) bool) {
		type frame struct {
			node int
			next int
		}
		stack := []frame{{node: root}}
		if !yield(Op{Kind: Push, Node: root, HasChildren: h.nodes[root].HasChildren()}) {
			return
		}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := h.nodes[top.node].children
			if top.next < len(children) {
				c := children[top.next]
				top.next++
				stack = append(stack, frame{node: c})
				if !yield(Op{Kind: Push, Node: c, HasChildren: h.nodes[c].HasChildren()}) {
					return
				}
				continue
			}
			stack = stack[:len(stack)-1]
			if !yield(Op{Kind: Pop, Node: top.node, HasChildren: len(children) > 0}) {
				return
			}
		}
	}
}

// Recipe is a recorded traversal that can be replayed without walking the
// hierarchy. It stays valid until the hierarchy's structure changes.
type Recipe struct {
	ops   []Op
	depth int
}

// RecipeOf records a traversal.
func RecipeOf(seq iter.Seq[Op]) *Recipe {
	r := &Recipe{}
	nesting := 0
	for op := range seq {
		r.ops = append(r.ops, op)
		if op.Kind == Push {
			nesting++
			if nesting > r.depth {
				r.depth = nesting
			}
		} else {
			nesting--
		}
	}
	return r
}

// Recipe records the traversal from root.
func (h *Hierarchy[T]) Recipe(root int) *Recipe {
	return RecipeOf(h.Ops(root))
}

// Ops returns the recorded operations. The slice must not be modified.
func (r *Recipe) Ops() []Op {
	return r.ops
}

// Depth is the deepest Push nesting in the recipe; scratch stacks indexed by
// depth need exactly this many entries.
func (r *Recipe) Depth() int {
	return r.depth
}

// Len returns the number of operations.
func (r *Recipe) Len() int {
	return len(r.ops)
}

// Dump writes the forest as an indented tree, one node per line, using label
// to describe each node. Roots must have been found.
func (h *Hierarchy[T]) Dump(w io.Writer, label func(int, *T) string) error {
	for _, root := range h.roots {
		depth := 0
		for op := range h.Ops(root) {
			if op.Kind == Pop {
				depth--
				continue
			}
			line := fmt.Sprintf("%s%d: %s\n", strings.Repeat("  ", depth), op.Node, label(op.Node, &h.nodes[op.Node].Data))
			if _, err := io.WriteString(w, line); err != nil {
				return fmt.Errorf("hierarchy: dump: %w", err)
			}
			depth++
		}
	}
	return nil
}

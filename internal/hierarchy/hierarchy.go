// Package hierarchy stores a forest of nodes in a single arena, linking
// parents and children by index.
//
// A Hierarchy is built with AddNode and Relate, then resolved with FindRoots.
// After that its structure is frozen (node data may still change) and each
// root can be walked with Ops or recorded once into a Recipe that is replayed
// without touching the node links again.
package hierarchy

import (
	"errors"
	"fmt"
)

// Sentinel errors for hierarchy building.
var (
	// ErrResolved is returned when the structure is changed after FindRoots.
	ErrResolved = errors.New("hierarchy is resolved and cannot be modified")

	// ErrIndexRange is returned when a node index is outside the arena.
	ErrIndexRange = errors.New("node index out of range")

	// ErrReparent is returned when relating a child that already has a parent.
	ErrReparent = errors.New("node already has a parent")

	// ErrCycle is returned when a relation would make a node its own ancestor.
	ErrCycle = errors.New("relation would create a cycle")
)

const noParent = -1

// Node is one arena slot: its payload plus links to the rest of the forest.
type Node[T any] struct {
	Data     T
	parent   int
	children []int
}

// Parent returns the parent index, or false for a root.
func (n *Node[T]) Parent() (int, bool) {
	if n.parent == noParent {
		return 0, false
	}
	return n.parent, true
}

// Children returns the child indices in insertion order. The slice must not be
// modified.
func (n *Node[T]) Children() []int {
	return n.children
}

// HasChildren reports whether the node has at least one child.
func (n *Node[T]) HasChildren() bool {
	return len(n.children) > 0
}

// Hierarchy is an owning arena of nodes with index-based parent/child links.
type Hierarchy[T any] struct {
	nodes    []Node[T]
	roots    []int
	resolved bool
}

// New creates an empty hierarchy in the building state.
func New[T any]() *Hierarchy[T] {
	return &Hierarchy[T]{}
}

// Len returns the number of nodes in the arena.
func (h *Hierarchy[T]) Len() int {
	return len(h.nodes)
}

// AddNode appends data as a new parentless node and returns its index.
func (h *Hierarchy[T]) AddNode(data T) (int, error) {
	if h.resolved {
		return 0, fmt.Errorf("hierarchy: add node: %w", ErrResolved)
	}
	h.nodes = append(h.nodes, Node[T]{Data: data, parent: noParent})
	return len(h.nodes) - 1, nil
}

// Relate makes child the last child of parent.
func (h *Hierarchy[T]) Relate(parent, child int) error {
	if h.resolved {
		return fmt.Errorf("hierarchy: relate %d->%d: %w", parent, child, ErrResolved)
	}
	if !h.valid(parent) || !h.valid(child) {
		return fmt.Errorf("hierarchy: relate %d->%d (len %d): %w", parent, child, len(h.nodes), ErrIndexRange)
	}
	if h.nodes[child].parent != noParent {
		return fmt.Errorf("hierarchy: relate %d->%d: node %d has parent %d: %w",
			parent, child, child, h.nodes[child].parent, ErrReparent)
	}
	// child must not be parent itself or one of its ancestors
	for n := parent; n != noParent; n = h.nodes[n].parent {
		if n == child {
			return fmt.Errorf("hierarchy: relate %d->%d: %w", parent, child, ErrCycle)
		}
	}
	h.nodes[child].parent = parent
	h.nodes[parent].children = append(h.nodes[parent].children, child)
	return nil
}

// FindRoots records every parentless node, in arena order, and freezes the
// structure. Calling it again is a no-op.
func (h *Hierarchy[T]) FindRoots() {
	if h.resolved {
		return
	}
	h.roots = h.roots[:0]
	for i := range h.nodes {
		if h.nodes[i].parent == noParent {
			h.roots = append(h.roots, i)
		}
	}
	h.resolved = true
}

// Invalidate discards the roots and returns the hierarchy to the building
// state. Recipes recorded earlier must not be replayed afterwards.
func (h *Hierarchy[T]) Invalidate() {
	h.roots = nil
	h.resolved = false
}

// Resolved reports whether FindRoots has run since the last structural change.
func (h *Hierarchy[T]) Resolved() bool {
	return h.resolved
}

// Roots returns the root indices found by FindRoots.
func (h *Hierarchy[T]) Roots() []int {
	return h.roots
}

// Node returns the arena slot at index i. It panics if i is out of range.
func (h *Hierarchy[T]) Node(i int) *Node[T] {
	if !h.valid(i) {
		panic(fmt.Sprintf("hierarchy: node %d out of range (len %d)", i, len(h.nodes)))
	}
	return &h.nodes[i]
}

// Data returns a pointer to the payload of node i.
func (h *Hierarchy[T]) Data(i int) *T {
	return &h.Node(i).Data
}

func (h *Hierarchy[T]) valid(i int) bool {
	return i >= 0 && i < len(h.nodes)
}

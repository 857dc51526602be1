// Package kdtree implements a disposable 2-D point index supporting insertion and nearest
// neighbor queries. Trees are built fresh for each planning attempt and never shrink.
package kdtree

import (
	"container/heap"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"go.viam.com/sslmotion/spatialmath"
)

const (
	// leafCapacity is the entry count at which a leaf is split.
	leafCapacity = 12
	// maxDepth bounds splitting; leaves at this depth grow without limit.
	maxDepth = 16
)

// Entry is a point stored in the tree with its value.
type Entry[V any] struct {
	Point r2.Point
	Value V
}

type node[V any] struct {
	// bound is the finite region used to place the cut.
	bound r2.Rect
	// cell is bound with every face shared with the root boundary pushed out to infinity. It is
	// only used for pruning.
	cell     r2.Rect
	depth    int
	entries  []Entry[V]
	cut      float64
	children [2]*node[V]
}

func (n *node[V]) isLeaf() bool {
	return n.children[0] == nil
}

// Tree is a binary space partition over the plane, cutting alternately on X and Y at the
// midpoint of each node's bound. It is not safe for concurrent use.
type Tree[V any] struct {
	root *node[V]
	size int
}

// New returns an empty tree over bound. Points outside bound may still be inserted and queried.
func New[V any](bound r2.Rect) *Tree[V] {
	open := r1.Interval{Lo: math.Inf(-1), Hi: math.Inf(1)}
	return &Tree[V]{root: &node[V]{
		bound: bound,
		cell:  r2.Rect{X: open, Y: open},
	}}
}

// Len returns the number of inserted entries.
func (t *Tree[V]) Len() int {
	return t.size
}

// Insert adds v at p.
func (t *Tree[V]) Insert(p r2.Point, v V) {
	n := t.root
	for !n.isLeaf() {
		n = n.children[side(n, p)]
	}
	n.entries = append(n.entries, Entry[V]{Point: p, Value: v})
	t.size++
	if len(n.entries) >= leafCapacity && n.depth < maxDepth {
		split(n)
	}
}

func axisValue(p r2.Point, depth int) float64 {
	if depth%2 == 0 {
		return p.X
	}
	return p.Y
}

func side[V any](n *node[V], p r2.Point) int {
	if axisValue(p, n.depth) < n.cut {
		return 0
	}
	return 1
}

func split[V any](n *node[V]) {
	lo, hi := n.bound, n.bound
	loCell, hiCell := n.cell, n.cell
	if n.depth%2 == 0 {
		n.cut = n.bound.X.Center()
		lo.X.Hi, hi.X.Lo = n.cut, n.cut
		loCell.X.Hi, hiCell.X.Lo = n.cut, n.cut
	} else {
		n.cut = n.bound.Y.Center()
		lo.Y.Hi, hi.Y.Lo = n.cut, n.cut
		loCell.Y.Hi, hiCell.Y.Lo = n.cut, n.cut
	}
	n.children[0] = &node[V]{bound: lo, cell: loCell, depth: n.depth + 1}
	n.children[1] = &node[V]{bound: hi, cell: hiCell, depth: n.depth + 1}
	for _, e := range n.entries {
		child := n.children[side(n, e.Point)]
		child.entries = append(child.entries, e)
	}
	n.entries = nil
	for _, child := range n.children {
		if len(child.entries) >= leafCapacity && child.depth < maxDepth {
			split(child)
		}
	}
}

// Nearest returns the entry closest to p, or false when the tree is empty.
func (t *Tree[V]) Nearest(p r2.Point) (Entry[V], bool) {
	var best Entry[V]
	if t.size == 0 {
		return best, false
	}
	bestDist := math.Inf(1)
	var search func(n *node[V])
	search = func(n *node[V]) {
		if n.isLeaf() {
			for _, e := range n.entries {
				if d := spatialmath.DistanceSquared(e.Point, p); d < bestDist {
					best, bestDist = e, d
				}
			}
			return
		}
		near := side(n, p)
		search(n.children[near])
		far := n.children[1-near]
		if spatialmath.RectDistanceSquared(far.cell, p) <= bestDist {
			search(far)
		}
	}
	search(t.root)
	return best, true
}

// NearestK returns up to k entries closest to p in no particular order.
func (t *Tree[V]) NearestK(p r2.Point, k int) []Entry[V] {
	if k <= 0 || t.size == 0 {
		return nil
	}
	h := &candidates[V]{}
	var search func(n *node[V])
	search = func(n *node[V]) {
		if n.isLeaf() {
			for _, e := range n.entries {
				d := spatialmath.DistanceSquared(e.Point, p)
				if h.Len() < k {
					heap.Push(h, candidate[V]{entry: e, dist: d})
				} else if d < (*h)[0].dist {
					(*h)[0] = candidate[V]{entry: e, dist: d}
					heap.Fix(h, 0)
				}
			}
			return
		}
		near := side(n, p)
		search(n.children[near])
		far := n.children[1-near]
		if h.Len() < k || spatialmath.RectDistanceSquared(far.cell, p) <= (*h)[0].dist {
			search(far)
		}
	}
	search(t.root)

	out := make([]Entry[V], 0, h.Len())
	for _, c := range *h {
		out = append(out, c.entry)
	}
	return out
}

type candidate[V any] struct {
	entry Entry[V]
	dist  float64
}

// candidates is a max-heap on distance so the worst kept entry is at the top.
type candidates[V any] []candidate[V]

func (c candidates[V]) Len() int           { return len(c) }
func (c candidates[V]) Less(i, j int) bool { return c[i].dist > c[j].dist }
func (c candidates[V]) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }

func (c *candidates[V]) Push(x any) {
	*c = append(*c, x.(candidate[V]))
}

func (c *candidates[V]) Pop() any {
	old := *c
	n := len(old)
	x := old[n-1]
	*c = old[:n-1]
	return x
}

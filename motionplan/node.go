package motionplan

import (
	"github.com/golang/geo/r2"
)

// node is one state in the search tree. Nodes live in an arena slice owned by a single search
// and refer to their parent by index; the root's parent is -1.
type node struct {
	pos     r2.Point
	vel     r2.Point
	parent  int
	elapsed float64
}

// pathTo walks parents from idx back to the root and returns the positions in root-first order.
func pathTo(nodes []node, idx int) []r2.Point {
	depth := 0
	for i := idx; i >= 0; i = nodes[i].parent {
		depth++
	}
	points := make([]r2.Point, depth)
	for i := idx; i >= 0; i = nodes[i].parent {
		depth--
		points[depth] = nodes[i].pos
	}
	return points
}

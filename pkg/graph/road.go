package graph

import (
	"iter"

	"github.com/paulmach/orb"
)

// Road is a directed road network in CSR (Compressed Sparse Row) format.
// Node identifiers are dense indices in [0, NumNodes).
type Road struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []float64 // len: NumEdges; length in meters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Road) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Point returns the location of node u.
func (g *Road) Point(u uint32) orb.Point {
	return orb.Point{g.NodeLon[u], g.NodeLat[u]}
}

// Bound returns the bounding box of all nodes.
func (g *Road) Bound() orb.Bound {
	if g.NumNodes == 0 {
		return orb.Bound{}
	}
	b := g.Point(0).Bound()
	for u := uint32(1); u < g.NumNodes; u++ {
		b = b.Extend(g.Point(u))
	}
	return b
}

// HasNode reports whether u is a valid node index.
func (g *Road) HasNode(u uint32) bool { return u < g.NumNodes }

// Nodes yields the node indices 0..NumNodes-1.
func (g *Road) Nodes() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for u := uint32(0); u < g.NumNodes; u++ {
			if !yield(u) {
				return
			}
		}
	}
}

// Edges yields the heads and weights of the edges leaving u in CSR order.
func (g *Road) Edges(u uint32) iter.Seq2[uint32, float64] {
	return func(yield func(uint32, float64) bool) {
		if u >= g.NumNodes {
			return
		}
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if !yield(g.Head[e], g.Weight[e]) {
				return
			}
		}
	}
}

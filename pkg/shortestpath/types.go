package shortestpath

import (
	"math"
	"slices"

	"github.com/azybler/route_planner/pkg/graph"
)

// Sentinel errors. They are the graph package's errors, so errors.Is matches
// either name.
var (
	ErrNodeNotFound   = graph.ErrNodeNotFound
	ErrNegativeWeight = graph.ErrNegativeWeight
	ErrInvalidWeight  = graph.ErrInvalidWeight
)

// Table is the result of a full single-source computation.
type Table[K comparable] struct {
	Source K
	// Dist holds every node of the graph; unreachable nodes map to +Inf.
	Dist map[K]float64
	// Prev maps a reached node to its predecessor on a shortest path.
	// The source and unreachable nodes have no entry.
	Prev map[K]K
	// Settled is the number of nodes extracted from the queue with a
	// current distance.
	Settled int
}

// Distance returns the shortest distance to v, or +Inf if v is unreachable
// or unknown.
func (t *Table[K]) Distance(v K) float64 {
	if d, ok := t.Dist[v]; ok {
		return d
	}
	return math.Inf(1)
}

// Reachable reports whether a finite-weight path from the source to v exists.
func (t *Table[K]) Reachable(v K) bool {
	return !math.IsInf(t.Distance(v), 1)
}

// Predecessor returns the node preceding v on its shortest path.
func (t *Table[K]) Predecessor(v K) (K, bool) {
	u, ok := t.Prev[v]
	return u, ok
}

// PathTo reconstructs the shortest path from the source to v.
func (t *Table[K]) PathTo(v K) Path[K] {
	if !t.Reachable(v) {
		return Path[K]{Weight: math.Inf(1), Settled: t.Settled}
	}
	return Path[K]{
		Nodes:   walkBack(t.Prev, v),
		Weight:  t.Dist[v],
		Settled: t.Settled,
	}
}

// Path is a source-to-target result.
type Path[K comparable] struct {
	// Nodes runs from source to target inclusive; empty if unreachable.
	Nodes []K
	// Weight is the total edge weight of Nodes, +Inf if unreachable.
	Weight float64
	// Settled is the number of nodes extracted from the queue with a
	// current distance before the search stopped.
	Settled int
}

// Seed starts (or ends) a multi-node search at Node with an initial
// distance Dist, such as the partial length of an edge a point lies on.
type Seed[K comparable] struct {
	Node K
	Dist float64
}

// Region is the result of a bounded search.
type Region[K comparable] struct {
	Limit float64
	// Dist holds only the nodes within Limit of the nearest seed.
	Dist map[K]float64
	// Prev maps a reached non-seed node to its predecessor.
	Prev    map[K]K
	Settled int
}

// Found reports whether a path exists.
func (p Path[K]) Found() bool { return len(p.Nodes) > 0 }

// walkBack follows predecessors from target back to the node the search
// started from and returns the path in source-to-target order. Only start
// nodes are left without a predecessor.
func walkBack[K comparable](prev map[K]K, target K) []K {
	nodes := []K{target}
	for v := target; ; {
		u, ok := prev[v]
		if !ok {
			break
		}
		nodes = append(nodes, u)
		v = u
	}
	slices.Reverse(nodes)
	return nodes
}

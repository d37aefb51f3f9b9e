// Package graph defines the weighted graphs the shortest-path engine runs on:
// a literal adjacency map, an ordered mutable builder, and the compact CSR
// road network extracted from OpenStreetMap.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
)

var (
	// ErrNodeNotFound is returned when a node identifier is not part of the graph.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrNegativeWeight is returned for an edge with a weight below zero.
	ErrNegativeWeight = errors.New("graph: negative edge weight")

	// ErrInvalidWeight is returned for an edge whose weight is NaN.
	ErrInvalidWeight = errors.New("graph: invalid edge weight")
)

// Graph is a read-only weighted directed graph. Implementations must not be
// mutated while a computation runs over them.
type Graph[K comparable] interface {
	HasNode(u K) bool
	Nodes() iter.Seq[K]
	// Edges yields the outgoing (neighbor, weight) pairs of u.
	Edges(u K) iter.Seq2[K, float64]
}

// Adjacency maps a node to its neighbors and edge weights:
//
//	graph.Adjacency[string]{
//		"A": {"B": 1, "C": 4},
//		"B": {"C": 1},
//		"C": {},
//	}
//
// Every node, including sinks, must be a key. Nodes and neighbors are
// visited in ascending key order so that results are reproducible.
type Adjacency[K cmp.Ordered] map[K]map[K]float64

// HasNode reports whether u is a key of a.
func (a Adjacency[K]) HasNode(u K) bool {
	_, ok := a[u]
	return ok
}

// Nodes yields the keys of a in ascending order.
func (a Adjacency[K]) Nodes() iter.Seq[K] {
	return slices.Values(slices.Sorted(maps.Keys(a)))
}

// Edges yields the neighbors of u in ascending order with their weights.
func (a Adjacency[K]) Edges(u K) iter.Seq2[K, float64] {
	return func(yield func(K, float64) bool) {
		nbrs := a[u]
		for _, v := range slices.Sorted(maps.Keys(nbrs)) {
			if !yield(v, nbrs[v]) {
				return
			}
		}
	}
}

// Validate checks that every edge weight is a non-negative number and that
// every edge points at a node of g.
func Validate[K comparable](g Graph[K]) error {
	for u := range g.Nodes() {
		for v, w := range g.Edges(u) {
			if err := checkWeight(w); err != nil {
				return fmt.Errorf("%w: edge %v→%v weight=%v", err, u, v, w)
			}
			if !g.HasNode(v) {
				return fmt.Errorf("%w: edge %v→%v points at unknown node %v", ErrNodeNotFound, u, v, v)
			}
		}
	}
	return nil
}

func checkWeight(w float64) error {
	switch {
	case math.IsNaN(w):
		return ErrInvalidWeight
	case w < 0:
		return ErrNegativeWeight
	}
	return nil
}

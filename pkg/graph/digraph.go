package graph

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/tidwall/btree"
)

// Digraph is a mutable weighted directed graph with ordered iteration.
// Build it up with AddNode/AddEdge, then hand it to the engine; it must not
// be modified while a computation is running on it.
type Digraph[K cmp.Ordered] struct {
	adj   btree.Map[K, *btree.Map[K, float64]]
	edges int
}

// NewDigraph returns an empty graph.
func NewDigraph[K cmp.Ordered]() *Digraph[K] {
	return &Digraph[K]{}
}

// AddNode adds u if it is not already present.
func (d *Digraph[K]) AddNode(u K) {
	d.neighbors(u)
}

// AddEdge adds or replaces the edge u→v, creating both endpoints as needed.
func (d *Digraph[K]) AddEdge(u, v K, w float64) error {
	if err := checkWeight(w); err != nil {
		return fmt.Errorf("%w: edge %v→%v weight=%v", err, u, v, w)
	}
	d.AddNode(v)
	nbrs := d.neighbors(u)
	if _, replaced := nbrs.Set(v, w); !replaced {
		d.edges++
	}
	return nil
}

// AddUndirectedEdge adds u→v and v→u with the same weight.
func (d *Digraph[K]) AddUndirectedEdge(u, v K, w float64) error {
	if err := d.AddEdge(u, v, w); err != nil {
		return err
	}
	return d.AddEdge(v, u, w)
}

// Len returns the number of nodes.
func (d *Digraph[K]) Len() int { return d.adj.Len() }

// EdgeCount returns the number of directed edges.
func (d *Digraph[K]) EdgeCount() int { return d.edges }

// HasNode reports whether u has been added.
func (d *Digraph[K]) HasNode(u K) bool {
	_, ok := d.adj.Get(u)
	return ok
}

// Nodes yields every node in ascending order.
func (d *Digraph[K]) Nodes() iter.Seq[K] {
	return func(yield func(K) bool) {
		d.adj.Scan(func(u K, _ *btree.Map[K, float64]) bool {
			return yield(u)
		})
	}
}

// Edges yields the out-neighbors of u in ascending order with their weights.
func (d *Digraph[K]) Edges(u K) iter.Seq2[K, float64] {
	return func(yield func(K, float64) bool) {
		nbrs, ok := d.adj.Get(u)
		if !ok {
			return
		}
		nbrs.Scan(yield)
	}
}

func (d *Digraph[K]) neighbors(u K) *btree.Map[K, float64] {
	if nbrs, ok := d.adj.Get(u); ok {
		return nbrs
	}
	nbrs := new(btree.Map[K, float64])
	d.adj.Set(u, nbrs)
	return nbrs
}

// FromAdjacency copies an adjacency map into a Digraph. Neighbors that are
// not keys of a are added as nodes without outgoing edges.
func FromAdjacency[K cmp.Ordered](a Adjacency[K]) (*Digraph[K], error) {
	d := NewDigraph[K]()
	for u := range a.Nodes() {
		d.AddNode(u)
		for v, w := range a.Edges(u) {
			if err := d.AddEdge(u, v, w); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

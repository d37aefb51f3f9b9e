package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the node indices of the largest weakly connected
// component, in ascending order.
func LargestComponent(g *Road) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}

	bestRoot, bestSize := uint32(0), uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		if root := uf.Find(i); uf.size[root] > bestSize {
			bestRoot, bestSize = root, uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent returns a new road network containing only nodes, which
// must be in ascending order. Node i of the result is nodes[i] of g.
func FilterToComponent(g *Road, nodes []uint32) *Road {
	if len(nodes) == 0 {
		return &Road{FirstOut: []uint32{0}}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	// Iterating nodes in order keeps edges grouped by new source index.
	var edges []csrEdge
	for _, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			if newV, ok := oldToNew[g.Head[e]]; ok {
				edges = append(edges, csrEdge{from: oldToNew[oldU], to: newV, weight: g.Weight[e]})
			}
		}
	}

	filtered := newCSR(uint32(len(nodes)), edges)
	for newIdx, oldIdx := range nodes {
		filtered.NodeLat[newIdx] = g.NodeLat[oldIdx]
		filtered.NodeLon[newIdx] = g.NodeLon[oldIdx]
	}
	return filtered
}

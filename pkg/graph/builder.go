package graph

import (
	"cmp"
	"slices"

	"github.com/paulmach/osm"

	osmparser "github.com/azybler/route_planner/pkg/osm"
)

// Build creates a CSR road network from parsed OSM edges. Node indices are
// assigned in order of first appearance in the edge list.
func Build(result *osmparser.ParseResult) *Road {
	edges := result.Edges
	if len(edges) == 0 {
		return &Road{FirstOut: []uint32{0}}
	}

	// Step 1: Compact node index for every referenced OSM node.
	index := make(map[osm.NodeID]uint32)
	var ids []osm.NodeID
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := index[id]; ok {
			return idx
		}
		idx := uint32(len(ids))
		index[id] = idx
		ids = append(ids, id)
		return idx
	}
	for _, e := range edges {
		addNode(e.From)
		addNode(e.To)
	}
	numNodes := uint32(len(ids))

	// Step 2: Remap and sort edges by (from, to).
	compact := make([]csrEdge, len(edges))
	for i, e := range edges {
		compact[i] = csrEdge{from: index[e.From], to: index[e.To], weight: e.Meters}
	}
	slices.SortFunc(compact, func(a, b csrEdge) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.to, b.to)
	})

	g := newCSR(numNodes, compact)

	// Step 3: Node coordinates.
	for i, id := range ids {
		p := result.Nodes[id]
		g.NodeLon[i] = p.Lon()
		g.NodeLat[i] = p.Lat()
	}
	return g
}

type csrEdge struct {
	from, to uint32
	weight   float64
}

// newCSR lays out edges, which must already be grouped by source, into CSR
// arrays. Coordinate slices are allocated but left zero.
func newCSR(numNodes uint32, edges []csrEdge) *Road {
	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)

	for _, e := range edges {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, e := range edges {
		idx := pos[e.from]
		head[idx] = e.to
		weight[idx] = e.weight
		pos[e.from]++
	}

	return &Road{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
		NodeLat:  make([]float64, numNodes),
		NodeLon:  make([]float64, numNodes),
	}
}

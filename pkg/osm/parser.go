// Package osm extracts a drivable road network from OpenStreetMap PBF data.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// minEdgeMeters keeps coincident nodes from producing zero-length edges.
const minEdgeMeters = 0.001

// RawEdge is a directed road segment between two consecutive way nodes.
type RawEdge struct {
	From   osm.NodeID
	To     osm.NodeID
	Meters float64
}

// ParseResult holds the directed edges and the coordinates of every node they
// reference.
type ParseResult struct {
	Edges []RawEdge
	Nodes map[osm.NodeID]orb.Point
}

// ParseOptions configures the parser.
type ParseOptions struct {
	// Bound, if non-zero, keeps only edges with both endpoints inside it.
	Bound orb.Bound
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible reports whether the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	// Pedestrian plazas mapped as areas.
	if tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// directionFlags returns which directions of the way may be driven.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Time-dependent; not routable.
		forward, backward = false, false
	}
	return forward, backward
}

type way struct {
	nodes    []osm.NodeID
	forward  bool
	backward bool
}

// Parse reads r twice: once for ways, once for the coordinates of the nodes
// those ways reference.
func Parse(ctx context.Context, r io.ReadSeeker, opts ParseOptions) (*ParseResult, error) {
	ways, referenced, err := scanWays(ctx, r)
	if err != nil {
		return nil, err
	}
	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referenced))

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}
	nodes, err := scanNodes(ctx, r, referenced)
	if err != nil {
		return nil, err
	}
	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodes))

	return buildEdges(ways, nodes, opts), nil
}

func scanWays(ctx context.Context, r io.Reader) ([]way, map[osm.NodeID]struct{}, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	referenced := make(map[osm.NodeID]struct{})
	var ways []way
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}
		ids := w.Nodes.NodeIDs()
		for _, id := range ids {
			referenced[id] = struct{}{}
		}
		ways = append(ways, way{nodes: ids, forward: fwd, backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	return ways, referenced, nil
}

func scanNodes(ctx context.Context, r io.Reader, referenced map[osm.NodeID]struct{}) (map[osm.NodeID]orb.Point, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	nodes := make(map[osm.NodeID]orb.Point, len(referenced))
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			nodes[n.ID] = n.Point()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	return nodes, nil
}

// buildEdges splits ways into directed node-to-node edges.
func buildEdges(ways []way, nodes map[osm.NodeID]orb.Point, opts ParseOptions) *ParseResult {
	useBound := opts.Bound != orb.Bound{}

	var edges []RawEdge
	var missing, outside int
	used := make(map[osm.NodeID]orb.Point)

	for _, w := range ways {
		for i := 0; i+1 < len(w.nodes); i++ {
			from, to := w.nodes[i], w.nodes[i+1]
			fp, fok := nodes[from]
			tp, tok := nodes[to]
			if !fok || !tok {
				missing++
				continue
			}
			if useBound && (!opts.Bound.Contains(fp) || !opts.Bound.Contains(tp)) {
				outside++
				continue
			}

			meters := max(geo.Distance(fp, tp), minEdgeMeters)
			if w.forward {
				edges = append(edges, RawEdge{From: from, To: to, Meters: meters})
			}
			if w.backward {
				edges = append(edges, RawEdge{From: to, To: from, Meters: meters})
			}
			used[from] = fp
			used[to] = tp
		}
	}

	if missing > 0 {
		log.Printf("Warning: skipped %d segments due to missing node coordinates", missing)
	}
	if outside > 0 {
		log.Printf("Filtered %d segments outside bounding box", outside)
	}
	log.Printf("Built %d directed edges over %d nodes", len(edges), len(used))

	return &ParseResult{Edges: edges, Nodes: used}
}

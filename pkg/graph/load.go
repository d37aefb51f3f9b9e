package graph

import (
	"context"
	"fmt"
	"log"
	"os"

	osmparser "github.com/azybler/route_planner/pkg/osm"
)

// FromPBF parses an .osm.pbf extract and returns the largest connected
// component of its drivable network.
func FromPBF(ctx context.Context, path string, opts osmparser.ParseOptions) (*Road, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parsed, err := osmparser.Parse(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parsed.Edges), len(parsed.Nodes))

	g := Build(parsed)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)
	if g.NumNodes == 0 {
		return g, nil
	}

	component := LargestComponent(g)
	log.Printf("Largest component: %d nodes (%.1f%%)", len(component), float64(len(component))/float64(g.NumNodes)*100)
	g = FilterToComponent(g, component)
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)
	return g, nil
}

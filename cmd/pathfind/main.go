// Command pathfind runs the shortest-path engine over a graph file.
//
// The file is a YAML or JSON object mapping each node to its outgoing
// edges; nodes without outgoing edges map to an empty object:
//
//	A: {B: 1, C: 4}
//	B: {C: 1}
//	C: {}
//
// With -to it prints the shortest path; without it, the distance table.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/azybler/route_planner/pkg/graph"
	"github.com/azybler/route_planner/pkg/shortestpath"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("pathfind: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pathfind", flag.ContinueOnError)
	graphPath := fs.String("graph", "", "Path to YAML or JSON adjacency file")
	from := fs.String("from", "", "Source node")
	to := fs.String("to", "", "Target node (omit to print all distances)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *graphPath == "" || *from == "" {
		return errors.New("usage: pathfind --graph <file> --from <node> [--to <node>]")
	}

	g, err := loadGraph(*graphPath)
	if err != nil {
		return err
	}

	if *to != "" {
		p, err := shortestpath.FindPath[string](g, *from, *to)
		if err != nil {
			return err
		}
		if !p.Found() {
			fmt.Fprintf(out, "no path from %s to %s\n", *from, *to)
			return nil
		}
		fmt.Fprintf(out, "%s (weight %g)\n", strings.Join(p.Nodes, " -> "), p.Weight)
		return nil
	}

	table, err := shortestpath.ComputeDistances[string](g, *from)
	if err != nil {
		return err
	}
	nodes := slices.Sorted(g.Nodes())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tDISTANCE\tVIA")
	for _, v := range nodes {
		via := "-"
		if u, ok := table.Predecessor(v); ok {
			via = u
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\n", v, table.Distance(v), via)
	}
	return tw.Flush()
}

// loadGraph reads an adjacency file, choosing the decoder by extension.
func loadGraph(path string) (graph.Adjacency[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	var g graph.Adjacency[string]
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &g)
	case ".json":
		err = json.Unmarshal(data, &g)
	default:
		return nil, fmt.Errorf("unsupported graph file extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for u, nbrs := range g {
		if nbrs == nil {
			g[u] = map[string]float64{}
		}
	}
	return g, nil
}

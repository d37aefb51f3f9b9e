package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/azybler/route_planner/pkg/api"
	"github.com/azybler/route_planner/pkg/config"
	"github.com/azybler/route_planner/pkg/graph"
	"github.com/azybler/route_planner/pkg/metrics"
	osmparser "github.com/azybler/route_planner/pkg/osm"
	"github.com/azybler/route_planner/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML or JSON config file")
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	input := flag.String("input", "", "Build the graph from this .osm.pbf file instead of --graph")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	maxSnap := flag.Float64("max-snap", 500, "Maximum distance in meters from a point to the nearest road")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.FromFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Explicit flags override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "graph":
			cfg.Graph.Path = *graphPath
		case "input":
			cfg.Graph.Input = *input
		case "addr":
			cfg.Server.Addr = *addr
		case "cors-origin":
			cfg.Server.CORSOrigin = *corsOrigin
		case "max-snap":
			cfg.Routing.MaxSnapMeters = *maxSnap
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	start := time.Now()

	// Load graph.
	var road *graph.Road
	var err error
	if cfg.Graph.Input != "" {
		log.Printf("Building graph from %s...", cfg.Graph.Input)
		road, err = graph.FromPBF(context.Background(), cfg.Graph.Input, osmparser.ParseOptions{})
	} else {
		log.Printf("Loading graph from %s...", cfg.Graph.Path)
		road, err = graph.ReadBinary(cfg.Graph.Path)
	}
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", road.NumNodes, road.NumEdges)
	metrics.GraphSize.WithLabelValues("nodes").Set(float64(road.NumNodes))
	metrics.GraphSize.WithLabelValues("edges").Set(float64(road.NumEdges))

	// Build routing engine.
	log.Println("Building R-tree spatial index...")
	engine, err := routing.NewEngine(road, cfg.Routing.MaxSnapMeters)
	if err != nil {
		log.Fatalf("Invalid graph: %v", err)
	}

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	srvCfg := api.ServerConfig{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout),
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout),
		MaxConcurrent:  cfg.Server.MaxConcurrent,
		CORSOrigin:     cfg.Server.CORSOrigin,
	}

	stats := api.StatsResponse{
		NumNodes: road.NumNodes,
		NumEdges: road.NumEdges,
	}

	handlers := api.NewHandlers(engine, stats)
	handlers.MaxBodyBytes = cfg.Server.MaxBodyBytes
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// Package metrics holds the Prometheus collectors of the route planner.
// Collectors are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_planner_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "route_planner_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	// RoutesTotal counts route queries by outcome: ok, no_route,
	// too_far, canceled or error.
	RoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_planner_routes_total",
			Help: "Total number of route queries by outcome",
		},
		[]string{"outcome"},
	)

	// SettledNodes is the number of nodes a route query settled.
	SettledNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "route_planner_settled_nodes",
			Help:    "Nodes settled per route query",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		},
	)

	// RouteDistance is the length of returned routes.
	RouteDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "route_planner_route_distance_meters",
			Help:    "Length of returned routes in meters",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		},
	)

	// GraphSize reports the loaded road network, labeled "nodes" or "edges".
	GraphSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "route_planner_graph_size",
			Help: "Number of nodes and edges in the loaded road graph",
		},
		[]string{"kind"},
	)
)

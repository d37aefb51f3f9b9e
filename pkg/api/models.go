package api

import "github.com/paulmach/orb/geojson"

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start LatLngJSON `json:"start"`
	End   LatLngJSON `json:"end"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
// Geometry is a GeoJSON Feature holding the route LineString.
type RouteResponse struct {
	TotalDistanceMeters float64          `json:"total_distance_meters"`
	NumNodes            int              `json:"num_nodes"`
	Geometry            *geojson.Feature `json:"geometry"`
}

// ReachableRequest is the JSON body for POST /api/v1/reachable.
type ReachableRequest struct {
	Start     LatLngJSON `json:"start"`
	MaxMeters float64    `json:"max_meters"`
}

// ReachableResponse is the JSON response for POST /api/v1/reachable.
type ReachableResponse struct {
	ReachableNodes int     `json:"reachable_nodes"`
	MaxMeters      float64 `json:"max_meters"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes uint32 `json:"num_nodes"`
	NumEdges uint32 `json:"num_edges"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

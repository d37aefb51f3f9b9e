package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/paulmach/orb/geojson"

	"github.com/azybler/route_planner/pkg/metrics"
	"github.com/azybler/route_planner/pkg/routing"
)

// maxReachableMeters caps the radius of a reachability query, and with it
// the region the bounded search may settle.
const maxReachableMeters = 50_000

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse

	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router:       router,
		stats:        stats,
		MaxBodyBytes: 1024,
	}
}

// decodeJSON enforces the content type and decodes the body into v.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	return true
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Start); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	// Route.
	result, err := h.router.Route(r.Context(), toLatLng(req.Start), toLatLng(req.End))
	if err != nil {
		h.writeRoutingError(w, r, err)
		return
	}
	metrics.RoutesTotal.WithLabelValues("ok").Inc()
	metrics.SettledNodes.Observe(float64(result.Settled))
	metrics.RouteDistance.Observe(result.TotalDistanceMeters)

	// Build response.
	feature := geojson.NewFeature(result.Geometry)
	feature.Properties["distance_meters"] = result.TotalDistanceMeters
	writeJSON(w, http.StatusOK, RouteResponse{
		TotalDistanceMeters: result.TotalDistanceMeters,
		NumNodes:            len(result.Nodes),
		Geometry:            feature,
	})
}

// HandleReachable handles POST /api/v1/reachable.
func (h *Handlers) HandleReachable(w http.ResponseWriter, r *http.Request) {
	var req ReachableRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateCoord(req.Start); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if math.IsNaN(req.MaxMeters) || req.MaxMeters < 0 || req.MaxMeters > maxReachableMeters {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "max_meters")
		return
	}

	n, err := h.router.Reachable(r.Context(), toLatLng(req.Start), req.MaxMeters)
	if err != nil {
		h.writeRoutingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReachableResponse{ReachableNodes: n, MaxMeters: req.MaxMeters})
}

// writeRoutingError maps routing errors to HTTP responses.
func (h *Handlers) writeRoutingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		metrics.RoutesTotal.WithLabelValues("too_far").Inc()
		writeError(w, r, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case errors.Is(err, routing.ErrNoRoute):
		metrics.RoutesTotal.WithLabelValues("no_route").Inc()
		writeError(w, r, http.StatusNotFound, "no_route_found", "")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		metrics.RoutesTotal.WithLabelValues("canceled").Inc()
		writeError(w, r, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		metrics.RoutesTotal.WithLabelValues("error").Inc()
		writeError(w, r, http.StatusInternalServerError, "internal_error", "")
	}
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func toLatLng(ll LatLngJSON) routing.LatLng {
	return routing.LatLng{Lat: ll.Lat, Lng: ll.Lng}
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{
		Error:     code,
		Field:     field,
		RequestID: requestID(r.Context()),
	})
}

package routing

import (
	"context"
	"errors"
	"math"

	"github.com/paulmach/orb"

	"github.com/azybler/route_planner/pkg/graph"
	"github.com/azybler/route_planner/pkg/shortestpath"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Point converts ll to an orb point (lon, lat).
func (ll LatLng) Point() orb.Point { return orb.Point{ll.Lng, ll.Lat} }

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	// Nodes is the road node sequence the route follows, empty when both
	// points snap onto the same segment.
	Nodes []uint32
	// Geometry runs from the snapped start to the snapped end.
	Geometry orb.LineString
	// Settled counts nodes settled by the query's search.
	Settled int
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
	Reachable(ctx context.Context, start LatLng, maxMeters float64) (int, error)
}

// Engine implements Router with Dijkstra searches over a road network.
type Engine struct {
	road    *graph.Road
	sp      *shortestpath.Engine[uint32]
	snapper *Snapper
}

// NewEngine validates road and builds the spatial index. maxSnapMeters <= 0
// selects DefaultMaxSnapMeters.
func NewEngine(road *graph.Road, maxSnapMeters float64) (*Engine, error) {
	sp, err := shortestpath.New[uint32](road)
	if err != nil {
		return nil, err
	}
	return &Engine{
		road:    road,
		sp:      sp,
		snapper: NewSnapper(road, maxSnapMeters),
	}, nil
}

// anchor is a road node reachable from (or reaching) a snapped point, with
// the partial-edge distance between them.
type anchor struct {
	node   uint32
	offset float64
}

// Route computes the shortest driving route between two points.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	// Step 1: Snap points to nearest road segments.
	startSnap, err := e.snapper.Snap(start.Point())
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Point())
	if err != nil {
		return nil, err
	}

	best := &RouteResult{TotalDistanceMeters: math.Inf(1)}
	if d, ok := e.direct(startSnap, endSnap); ok {
		best.TotalDistanceMeters = d
	}

	// Step 2: One search from both departure anchors to both arrival anchors.
	p, err := e.sp.PathBetween(ctx, seeds(e.departures(startSnap)), seeds(e.arrivals(endSnap)))
	if err != nil {
		return nil, err
	}
	best.Settled = p.Settled
	if p.Found() && p.Weight < best.TotalDistanceMeters {
		best.TotalDistanceMeters = p.Weight
		best.Nodes = p.Nodes
	}
	if math.IsInf(best.TotalDistanceMeters, 1) {
		return nil, ErrNoRoute
	}

	// Step 3: Geometry from snapped start through the nodes to snapped end.
	best.Geometry = make(orb.LineString, 0, len(best.Nodes)+2)
	best.Geometry = append(best.Geometry, startSnap.Point)
	for _, u := range best.Nodes {
		best.Geometry = append(best.Geometry, e.road.Point(u))
	}
	best.Geometry = append(best.Geometry, endSnap.Point)
	return best, nil
}

// direct returns the length of the stretch joining two points that snapped
// onto the same road segment, whichever of its two directed edges each one
// landed on, provided an edge runs that way.
func (e *Engine) direct(from, to SnapResult) (float64, bool) {
	toRatio := to.Ratio
	switch {
	case from.EdgeIdx == to.EdgeIdx:
	case from.NodeU == to.NodeV && from.NodeV == to.NodeU:
		toRatio = 1 - to.Ratio
	default:
		return 0, false
	}

	if toRatio >= from.Ratio {
		return e.road.Weight[from.EdgeIdx] * (toRatio - from.Ratio), true
	}
	// Backwards along from's edge: needs the reverse edge.
	if from.EdgeIdx != to.EdgeIdx {
		return e.road.Weight[to.EdgeIdx] * (from.Ratio - toRatio), true
	}
	if rw, ok := e.edgeWeight(from.NodeV, from.NodeU); ok {
		return rw * (from.Ratio - toRatio), true
	}
	return 0, false
}

func seeds(anchors []anchor) []shortestpath.Seed[uint32] {
	out := make([]shortestpath.Seed[uint32], len(anchors))
	for i, a := range anchors {
		out[i] = shortestpath.Seed[uint32]{Node: a.node, Dist: a.offset}
	}
	return out
}

// departures lists the nodes a route can leave a snapped point through:
// forward along its edge, and backward when the reverse edge exists.
func (e *Engine) departures(s SnapResult) []anchor {
	w := e.road.Weight[s.EdgeIdx]
	out := []anchor{{node: s.NodeV, offset: w * (1 - s.Ratio)}}
	if rw, ok := e.edgeWeight(s.NodeV, s.NodeU); ok {
		out = append(out, anchor{node: s.NodeU, offset: rw * s.Ratio})
	}
	return out
}

// arrivals lists the nodes a route can reach a snapped point from.
func (e *Engine) arrivals(s SnapResult) []anchor {
	w := e.road.Weight[s.EdgeIdx]
	in := []anchor{{node: s.NodeU, offset: w * s.Ratio}}
	if rw, ok := e.edgeWeight(s.NodeV, s.NodeU); ok {
		in = append(in, anchor{node: s.NodeV, offset: rw * (1 - s.Ratio)})
	}
	return in
}

// edgeWeight returns the weight of edge u→v.
func (e *Engine) edgeWeight(u, v uint32) (float64, bool) {
	start, end := e.road.EdgesFrom(u)
	for i := start; i < end; i++ {
		if e.road.Head[i] == v {
			return e.road.Weight[i], true
		}
	}
	return 0, false
}

// Reachable returns how many road nodes lie within maxMeters of driving from
// start. The search never settles a node beyond the radius.
func (e *Engine) Reachable(ctx context.Context, start LatLng, maxMeters float64) (int, error) {
	snap, err := e.snapper.Snap(start.Point())
	if err != nil {
		return 0, err
	}

	region, err := e.sp.Within(ctx, seeds(e.departures(snap)), maxMeters)
	if err != nil {
		return 0, err
	}
	return len(region.Dist), nil
}

// NumNodes returns the number of road nodes.
func (e *Engine) NumNodes() uint32 { return e.road.NumNodes }

// NumEdges returns the number of directed road edges.
func (e *Engine) NumEdges() uint32 { return e.road.NumEdges }

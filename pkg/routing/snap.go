package routing

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/rtree"

	"github.com/azybler/route_planner/pkg/graph"
)

// DefaultMaxSnapMeters is the snap radius used when none is configured.
const DefaultMaxSnapMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32    // index into the road's edge arrays
	NodeU   uint32    // source node of the edge
	NodeV   uint32    // target node of the edge
	Ratio   float64   // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64   // meters from the query point to Point
	Point   orb.Point // projection of the query point onto the segment
}

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = math.Pi / 180 * orb.EarthRadius

// Snapper finds the nearest road segment to a point. Segments are indexed by
// their bounding boxes in an R-tree.
type Snapper struct {
	tree    rtree.RTreeG[uint32] // edge index
	source  []uint32             // source node per edge index
	g       *graph.Road
	maxDist float64
}

// NewSnapper indexes every edge of g. maxMeters <= 0 selects
// DefaultMaxSnapMeters.
func NewSnapper(g *graph.Road, maxMeters float64) *Snapper {
	if maxMeters <= 0 {
		maxMeters = DefaultMaxSnapMeters
	}
	s := &Snapper{
		source:  make([]uint32, g.NumEdges),
		g:       g,
		maxDist: maxMeters,
	}
	for u := range g.NumNodes {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			s.source[e] = u
			b := g.Point(u).Bound().Extend(g.Point(g.Head[e]))
			s.tree.Insert(b.Min, b.Max, e)
		}
	}
	return s
}

// MaxMeters returns the snap radius.
func (s *Snapper) MaxMeters() float64 { return s.maxDist }

// Snap finds the nearest road segment to p within the snap radius.
func (s *Snapper) Snap(p orb.Point) (SnapResult, error) {
	// Search window covering the snap radius, widened in longitude by latitude.
	dLat := s.maxDist / metersPerDegree
	cosLat := math.Max(math.Cos(p.Lat()*math.Pi/180), 0.01)
	dLon := dLat / cosLat
	lo := [2]float64{p.Lon() - dLon, p.Lat() - dLat}
	hi := [2]float64{p.Lon() + dLon, p.Lat() + dLat}

	best := SnapResult{Dist: math.Inf(1)}
	s.tree.Search(lo, hi, func(_, _ [2]float64, e uint32) bool {
		u, v := s.source[e], s.g.Head[e]
		proj, ratio := projectOnSegment(p, s.g.Point(u), s.g.Point(v))
		if d := geo.Distance(p, proj); d < best.Dist {
			best = SnapResult{
				EdgeIdx: e,
				NodeU:   u,
				NodeV:   v,
				Ratio:   ratio,
				Dist:    d,
				Point:   proj,
			}
		}
		return true
	})

	if best.Dist > s.maxDist {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}

// projectOnSegment returns the point of segment ab closest to p and its ratio
// along ab, clamped to [0, 1]. Longitudes are scaled by cos(lat), which is
// accurate for segments of road length.
func projectOnSegment(p, a, b orb.Point) (orb.Point, float64) {
	if a == b {
		return a, 0
	}
	cosLat := math.Cos((a.Lat() + b.Lat()) / 2 * math.Pi / 180)
	ax, ay := a.Lon()*cosLat, a.Lat()
	dx, dy := b.Lon()*cosLat-ax, b.Lat()-ay
	px, py := p.Lon()*cosLat, p.Lat()

	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = min(max(t, 0), 1)
	return orb.Point{
		a.Lon() + t*(b.Lon()-a.Lon()),
		a.Lat() + t*(b.Lat()-a.Lat()),
	}, t
}

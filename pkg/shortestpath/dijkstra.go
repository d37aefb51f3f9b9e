package shortestpath

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/azybler/route_planner/pkg/graph"
	"github.com/azybler/route_planner/pkg/pq"
)

// ctxCheckInterval is how many extractions run between context checks.
const ctxCheckInterval = 256

// Engine answers shortest-path queries over one validated, read-only graph.
// It keeps no state between calls and is safe for concurrent use.
type Engine[K comparable] struct {
	g graph.Graph[K]
}

// New validates g and returns an engine over it. g must not be modified
// while the engine is in use.
func New[K comparable](g graph.Graph[K]) (*Engine[K], error) {
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	return &Engine[K]{g: g}, nil
}

// ComputeDistances returns the shortest distance from source to every node of
// g, together with the predecessor of each reached node.
func ComputeDistances[K comparable](g graph.Graph[K], source K) (*Table[K], error) {
	e, err := New(g)
	if err != nil {
		return nil, err
	}
	return e.Distances(context.Background(), source)
}

// FindPath returns the shortest path from source to target in g. An empty
// Path.Nodes means target is unreachable.
func FindPath[K comparable](g graph.Graph[K], source, target K) (Path[K], error) {
	e, err := New(g)
	if err != nil {
		return Path[K]{}, err
	}
	return e.Path(context.Background(), source, target)
}

// Distances is the engine form of ComputeDistances. It returns ctx.Err() if
// the context ends before the search completes.
func (e *Engine[K]) Distances(ctx context.Context, source K) (*Table[K], error) {
	if !e.g.HasNode(source) {
		return nil, fmt.Errorf("%w: source %v", ErrNodeNotFound, source)
	}

	s, err := e.search(ctx, []Seed[K]{{Node: source}}, math.Inf(1), nil)
	if err != nil {
		return nil, err
	}

	dist := make(map[K]float64, len(s.dist))
	for u := range e.g.Nodes() {
		dist[u] = math.Inf(1)
	}
	maps.Copy(dist, s.dist)

	return &Table[K]{
		Source:  source,
		Dist:    dist,
		Prev:    s.prev,
		Settled: s.settled,
	}, nil
}

// Path is the engine form of FindPath. It returns ctx.Err() if the context
// ends before the target is settled or the search is exhausted.
func (e *Engine[K]) Path(ctx context.Context, source, target K) (Path[K], error) {
	if !e.g.HasNode(source) {
		return Path[K]{}, fmt.Errorf("%w: source %v", ErrNodeNotFound, source)
	}
	if !e.g.HasNode(target) {
		return Path[K]{}, fmt.Errorf("%w: target %v", ErrNodeNotFound, target)
	}

	reached := false
	s, err := e.search(ctx, []Seed[K]{{Node: source}}, math.Inf(1), func(_ *searchState[K], u K, _ float64) bool {
		reached = u == target
		return reached
	})
	if err != nil {
		return Path[K]{}, err
	}
	if !reached {
		return Path[K]{Weight: math.Inf(1), Settled: s.settled}, nil
	}
	return Path[K]{
		Nodes:   walkBack(s.prev, target),
		Weight:  s.dist[target],
		Settled: s.settled,
	}, nil
}

// Within settles every node whose distance from the nearest seed is at most
// limit and nothing beyond it, so the work done grows with the size of the
// region rather than the graph.
func (e *Engine[K]) Within(ctx context.Context, seeds []Seed[K], limit float64) (*Region[K], error) {
	if err := e.checkSeeds(seeds); err != nil {
		return nil, err
	}
	if math.IsNaN(limit) {
		return nil, fmt.Errorf("%w: limit=%v", ErrInvalidWeight, limit)
	}

	s, err := e.search(ctx, seeds, limit, nil)
	if err != nil {
		return nil, err
	}
	return &Region[K]{
		Limit:   limit,
		Dist:    s.dist,
		Prev:    s.prev,
		Settled: s.settled,
	}, nil
}

// PathBetween returns the cheapest path from any source seed to any target
// seed in one search. A source seed's Dist is where its node starts; a target
// seed's Dist is added when its node is settled. The returned Weight includes
// both. The search stops once no unsettled node can beat the best arrival.
func (e *Engine[K]) PathBetween(ctx context.Context, sources, targets []Seed[K]) (Path[K], error) {
	if err := e.checkSeeds(sources); err != nil {
		return Path[K]{}, err
	}
	if err := e.checkSeeds(targets); err != nil {
		return Path[K]{}, err
	}

	arrival := make(map[K]float64, len(targets))
	for _, t := range targets {
		if cur, ok := arrival[t.Node]; !ok || t.Dist < cur {
			arrival[t.Node] = t.Dist
		}
	}

	best := math.Inf(1)
	var bestNode K
	s, err := e.search(ctx, sources, math.Inf(1), func(s *searchState[K], u K, d float64) bool {
		off, ok := arrival[u]
		if ok && d+off < best {
			best, bestNode = d+off, u
			s.limit = best
		}
		return false
	})
	if err != nil {
		return Path[K]{}, err
	}
	if math.IsInf(best, 1) {
		return Path[K]{Weight: math.Inf(1), Settled: s.settled}, nil
	}
	return Path[K]{
		Nodes:   walkBack(s.prev, bestNode),
		Weight:  best,
		Settled: s.settled,
	}, nil
}

func (e *Engine[K]) checkSeeds(seeds []Seed[K]) error {
	for _, sd := range seeds {
		if !e.g.HasNode(sd.Node) {
			return fmt.Errorf("%w: seed %v", ErrNodeNotFound, sd.Node)
		}
		if math.IsNaN(sd.Dist) || math.IsInf(sd.Dist, 0) {
			return fmt.Errorf("%w: seed %v dist=%v", ErrInvalidWeight, sd.Node, sd.Dist)
		}
		if sd.Dist < 0 {
			return fmt.Errorf("%w: seed %v dist=%v", ErrNegativeWeight, sd.Node, sd.Dist)
		}
	}
	return nil
}

// searchState is the working state of one run. Nodes absent from dist have
// infinite distance.
type searchState[K comparable] struct {
	dist    map[K]float64
	prev    map[K]K
	settled int
	// limit bounds the run: entries beyond it are neither enqueued nor
	// settled. A settle hook may lower it.
	limit float64
}

// search runs the relaxation loop from seeds. onSettle, when non-nil, is
// called for every settled node and ends the run by returning true.
func (e *Engine[K]) search(ctx context.Context, seeds []Seed[K], limit float64, onSettle func(s *searchState[K], u K, d float64) bool) (*searchState[K], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &searchState[K]{
		dist:  make(map[K]float64),
		prev:  make(map[K]K),
		limit: limit,
	}

	var queue pq.Queue[K]
	for _, sd := range seeds {
		if sd.Dist > s.limit {
			continue
		}
		if cur, ok := s.dist[sd.Node]; ok && sd.Dist >= cur {
			continue
		}
		s.dist[sd.Node] = sd.Dist
		queue.Enqueue(sd.Node, sd.Dist)
	}

	for extracted := 1; !queue.IsEmpty(); extracted++ {
		if extracted%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := queue.Dequeue()
		u, d := item.Value, item.Priority
		if d > s.dist[u] {
			continue // stale entry
		}
		if d > s.limit {
			break
		}
		s.settled++

		if onSettle != nil && onSettle(s, u, d) {
			return s, nil
		}

		for v, w := range e.g.Edges(u) {
			candidate := d + w
			if cur, ok := s.dist[v]; ok && candidate >= cur {
				continue
			}
			if math.IsInf(candidate, 1) || candidate > s.limit {
				continue
			}
			s.dist[v] = candidate
			s.prev[v] = u
			queue.Enqueue(v, candidate)
		}
	}

	return s, nil
}

package shortestpath_test

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/azybler/route_planner/pkg/graph"
	osmparser "github.com/azybler/route_planner/pkg/osm"
	"github.com/azybler/route_planner/pkg/shortestpath"
)

func triangle() graph.Adjacency[string] {
	return graph.Adjacency[string]{
		"A": {"B": 1, "C": 4},
		"B": {"C": 1},
		"C": {},
	}
}

func TestComputeDistancesTriangle(t *testing.T) {
	table, err := shortestpath.ComputeDistances[string](triangle(), "A")
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"A": 0, "B": 1, "C": 2}, table.Dist)
	assert.Equal(t, map[string]string{"B": "A", "C": "B"}, table.Prev)

	_, ok := table.Predecessor("A")
	assert.False(t, ok, "source has no predecessor")
	assert.Equal(t, 3, table.Settled)
}

func TestFindPathTriangle(t *testing.T) {
	p, err := shortestpath.FindPath[string](triangle(), "A", "C")
	require.NoError(t, err)

	assert.True(t, p.Found())
	assert.Equal(t, []string{"A", "B", "C"}, p.Nodes)
	assert.Equal(t, 2.0, p.Weight)
}

func TestFindPathDisconnected(t *testing.T) {
	g := graph.Adjacency[string]{"A": {"B": 1}, "B": {}, "C": {}}

	p, err := shortestpath.FindPath[string](g, "A", "C")
	require.NoError(t, err)
	assert.False(t, p.Found())
	assert.Empty(t, p.Nodes)
	assert.True(t, math.IsInf(p.Weight, 1))

	table, err := shortestpath.ComputeDistances[string](g, "A")
	require.NoError(t, err)
	assert.True(t, math.IsInf(table.Dist["C"], 1))
	assert.False(t, table.Reachable("C"))
	_, ok := table.Predecessor("C")
	assert.False(t, ok)
	assert.False(t, table.PathTo("C").Found())
}

func TestFindPathTrivial(t *testing.T) {
	p, err := shortestpath.FindPath[string](triangle(), "A", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, p.Nodes)
	assert.Equal(t, 0.0, p.Weight)
	assert.Equal(t, 1, p.Settled, "search stops once the target is settled")
}

func TestNodeNotFound(t *testing.T) {
	_, err := shortestpath.ComputeDistances[string](triangle(), "Z")
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)

	_, err = shortestpath.FindPath[string](triangle(), "Z", "A")
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)

	_, err = shortestpath.FindPath[string](triangle(), "A", "Z")
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)

	_, err = shortestpath.ComputeDistances[string](graph.Adjacency[string]{}, "A")
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)
}

func TestInvalidWeights(t *testing.T) {
	neg := graph.Adjacency[string]{"A": {"B": -1}, "B": {}}
	_, err := shortestpath.ComputeDistances[string](neg, "A")
	assert.ErrorIs(t, err, shortestpath.ErrNegativeWeight)

	_, err = shortestpath.FindPath[string](neg, "B", "B")
	assert.ErrorIs(t, err, shortestpath.ErrNegativeWeight, "the whole graph is validated, not just the explored part")

	nan := graph.Adjacency[string]{"A": {"B": math.NaN()}, "B": {}}
	_, err = shortestpath.New[string](nan)
	assert.ErrorIs(t, err, shortestpath.ErrInvalidWeight)
}

func TestInfiniteWeightIsImpassable(t *testing.T) {
	g := graph.Adjacency[string]{"A": {"B": math.Inf(1)}, "B": {}}
	p, err := shortestpath.FindPath[string](g, "A", "B")
	require.NoError(t, err)
	assert.False(t, p.Found())
}

func TestZeroWeightEdges(t *testing.T) {
	g := graph.Adjacency[int]{1: {2: 0}, 2: {1: 0, 3: 0}, 3: {}}
	p, err := shortestpath.FindPath[int](g, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.Nodes)
	assert.Equal(t, 0.0, p.Weight)
}

func TestEqualLengthPathsAreDeterministic(t *testing.T) {
	diamond := graph.Adjacency[string]{
		"A": {"B": 1, "C": 1},
		"B": {"D": 1},
		"C": {"D": 1},
		"D": {},
	}
	for range 20 {
		p, err := shortestpath.FindPath[string](diamond, "A", "D")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D"}, p.Nodes)
	}
}

func TestComputeDistancesIdempotent(t *testing.T) {
	g := randomGraph(rand.New(rand.NewPCG(7, 7)), 60, 0.08)
	first, err := shortestpath.ComputeDistances[int](g, 0)
	require.NoError(t, err)
	second, err := shortestpath.ComputeDistances[int](g, 0)
	require.NoError(t, err)

	assert.Equal(t, first.Dist, second.Dist)
	assert.Equal(t, first.Prev, second.Prev)
}

func TestDoesNotMutateGraph(t *testing.T) {
	g := triangle()
	_, err := shortestpath.ComputeDistances[string](g, "A")
	require.NoError(t, err)
	assert.Equal(t, triangle(), g)
}

// randomGraph returns a directed graph on nodes [0, n) with integer weights
// in [0, 9]. Integer weights keep sums exact.
func randomGraph(rng *rand.Rand, n int, density float64) graph.Adjacency[int] {
	g := make(graph.Adjacency[int], n)
	for u := range n {
		g[u] = map[int]float64{}
		for v := range n {
			if u != v && rng.Float64() < density {
				g[u][v] = float64(rng.IntN(10))
			}
		}
	}
	return g
}

func gonumDistances(g graph.Adjacency[int], source int) path.Shortest {
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for u := range g {
		wg.AddNode(simple.Node(u))
	}
	for u, nbrs := range g {
		for v, w := range nbrs {
			wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(u), simple.Node(v), w))
		}
	}
	return path.DijkstraFrom(simple.Node(source), wg)
}

func TestAgainstGonum(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for trial := range 25 {
		n := 5 + rng.IntN(60)
		g := randomGraph(rng, n, 0.02+rng.Float64()*0.15)
		source := rng.IntN(n)

		table, err := shortestpath.ComputeDistances[int](g, source)
		require.NoError(t, err)
		want := gonumDistances(g, source)

		require.Len(t, table.Dist, n)
		assert.Equal(t, 0.0, table.Dist[source])
		_, hasPrev := table.Predecessor(source)
		assert.False(t, hasPrev)

		for v := range n {
			assert.Equalf(t, want.WeightTo(int64(v)), table.Dist[v], "trial %d: dist %d→%d", trial, source, v)

			// Reconstructed path weight equals the recorded distance.
			p := table.PathTo(v)
			if !table.Reachable(v) {
				assert.False(t, p.Found())
				_, ok := table.Predecessor(v)
				assert.False(t, ok)
				continue
			}
			assert.Equal(t, source, p.Nodes[0])
			assert.Equal(t, v, p.Nodes[len(p.Nodes)-1])
			var sum float64
			for i := 1; i < len(p.Nodes); i++ {
				sum += g[p.Nodes[i-1]][p.Nodes[i]]
			}
			assert.Equalf(t, table.Dist[v], sum, "trial %d: path weight to %d", trial, v)

			// Point-to-point agrees with the full table.
			fp, err := shortestpath.FindPath[int](g, source, v)
			require.NoError(t, err)
			assert.Equal(t, table.Dist[v], fp.Weight)
		}

		// Relaxed-graph invariant.
		for u, nbrs := range g {
			for v, w := range nbrs {
				assert.LessOrEqualf(t, table.Dist[v], table.Dist[u]+w, "trial %d: edge %d→%d", trial, u, v)
			}
		}
	}
}

func TestEngineContextCanceled(t *testing.T) {
	line := make(graph.Adjacency[int], 1000)
	for i := range 1000 {
		line[i] = map[int]float64{}
		if i+1 < 1000 {
			line[i][i+1] = 1
		}
	}
	eng, err := shortestpath.New[int](line)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Distances(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = eng.Path(ctx, 0, 999)
	assert.ErrorIs(t, err, context.Canceled)

	p, err := eng.Path(context.Background(), 0, 999)
	require.NoError(t, err)
	assert.Equal(t, 999.0, p.Weight)
	assert.Len(t, p.Nodes, 1000)
}

func TestEngineConcurrentQueries(t *testing.T) {
	g := randomGraph(rand.New(rand.NewPCG(3, 9)), 80, 0.1)
	eng, err := shortestpath.New[int](g)
	require.NoError(t, err)

	want, err := eng.Distances(context.Background(), 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range 80 {
				p, err := eng.Path(context.Background(), 0, v)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, want.Distance(v), p.Weight)
			}
		}()
	}
	wg.Wait()
}

func TestEngineOnDigraphAndRoad(t *testing.T) {
	d := graph.NewDigraph[string]()
	require.NoError(t, d.AddUndirectedEdge("home", "market", 3))
	require.NoError(t, d.AddUndirectedEdge("market", "office", 4))
	require.NoError(t, d.AddEdge("home", "office", 10))

	p, err := shortestpath.FindPath[string](d, "office", "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"office", "market", "home"}, p.Nodes)
	assert.Equal(t, 7.0, p.Weight)

	road := graph.Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{From: 1, To: 2, Meters: 10},
			{From: 2, To: 3, Meters: 10},
			{From: 1, To: 3, Meters: 25},
		},
		Nodes: map[osm.NodeID]orb.Point{1: {0, 0}, 2: {0, 1}, 3: {0, 2}},
	})
	rp, err := shortestpath.FindPath[uint32](road, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, rp.Nodes)
	assert.Equal(t, 20.0, rp.Weight)
}

func TestWithinStopsAtLimit(t *testing.T) {
	const n = 10_000
	line := make(graph.Adjacency[int], n)
	for i := range n {
		line[i] = map[int]float64{}
		if i > 0 {
			line[i][i-1] = 1
		}
		if i+1 < n {
			line[i][i+1] = 1
		}
	}
	eng, err := shortestpath.New[int](line)
	require.NoError(t, err)

	r, err := eng.Within(context.Background(), []shortestpath.Seed[int]{{Node: 0}}, 2.5)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 0, 1: 1, 2: 2}, r.Dist)
	assert.Equal(t, 3, r.Settled, "nothing past the limit is settled")

	// Two seeds with their own starting distances.
	r, err = eng.Within(context.Background(), []shortestpath.Seed[int]{{Node: 0, Dist: 0.5}, {Node: n - 1}}, 1.6)
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 0.5, 1: 1.5, n - 1: 0, n - 2: 1}, r.Dist)
	assert.Equal(t, 4, r.Settled)

	r, err = eng.Within(context.Background(), []shortestpath.Seed[int]{{Node: 5, Dist: 3}}, 1)
	require.NoError(t, err)
	assert.Empty(t, r.Dist, "seed beyond the limit")

	_, err = eng.Within(context.Background(), []shortestpath.Seed[int]{{Node: -1}}, 1)
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)
	_, err = eng.Within(context.Background(), []shortestpath.Seed[int]{{Node: 0}}, math.NaN())
	assert.ErrorIs(t, err, shortestpath.ErrInvalidWeight)
}

func TestPathBetween(t *testing.T) {
	g := graph.Adjacency[string]{
		"A": {"B": 1},
		"B": {"C": 1},
		"X": {"C": 5},
		"C": {},
	}
	eng, err := shortestpath.New[string](g)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := eng.PathBetween(ctx, []shortestpath.Seed[string]{{Node: "A"}}, []shortestpath.Seed[string]{{Node: "C"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, p.Nodes)
	assert.Equal(t, 2.0, p.Weight)

	// The cheaper start wins once its starting distance is counted.
	p, err = eng.PathBetween(ctx,
		[]shortestpath.Seed[string]{{Node: "A", Dist: 4}, {Node: "X"}},
		[]shortestpath.Seed[string]{{Node: "C"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "C"}, p.Nodes)
	assert.Equal(t, 5.0, p.Weight)

	// B is settled first, but its arrival distance makes C the better end.
	p, err = eng.PathBetween(ctx,
		[]shortestpath.Seed[string]{{Node: "A"}},
		[]shortestpath.Seed[string]{{Node: "B", Dist: 10}, {Node: "C"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, p.Nodes)
	assert.Equal(t, 2.0, p.Weight)

	p, err = eng.PathBetween(ctx, []shortestpath.Seed[string]{{Node: "C"}}, []shortestpath.Seed[string]{{Node: "A"}})
	require.NoError(t, err)
	assert.False(t, p.Found())
	assert.True(t, math.IsInf(p.Weight, 1))

	_, err = eng.PathBetween(ctx, []shortestpath.Seed[string]{{Node: "Z"}}, []shortestpath.Seed[string]{{Node: "A"}})
	assert.ErrorIs(t, err, shortestpath.ErrNodeNotFound)
	_, err = eng.PathBetween(ctx, []shortestpath.Seed[string]{{Node: "A"}}, []shortestpath.Seed[string]{{Node: "C", Dist: -1}})
	assert.ErrorIs(t, err, shortestpath.ErrNegativeWeight)
	_, err = eng.PathBetween(ctx, []shortestpath.Seed[string]{{Node: "A", Dist: math.NaN()}}, []shortestpath.Seed[string]{{Node: "C"}})
	assert.ErrorIs(t, err, shortestpath.ErrInvalidWeight)
}

func TestPathBetweenMatchesPath(t *testing.T) {
	g := randomGraph(rand.New(rand.NewPCG(5, 11)), 60, 0.08)
	eng, err := shortestpath.New[int](g)
	require.NoError(t, err)
	ctx := context.Background()

	for v := range 60 {
		want, err := eng.Path(ctx, 0, v)
		require.NoError(t, err)
		got, err := eng.PathBetween(ctx, []shortestpath.Seed[int]{{Node: 0}}, []shortestpath.Seed[int]{{Node: v}})
		require.NoError(t, err)
		assert.Equal(t, want.Found(), got.Found(), "target %d", v)
		assert.Equal(t, want.Weight, got.Weight, "target %d", v)
	}
}

func BenchmarkFindPath(b *testing.B) {
	g := randomGraph(rand.New(rand.NewPCG(1, 1)), 500, 0.02)
	eng, err := shortestpath.New[int](g)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	for b.Loop() {
		_, _ = eng.Path(ctx, 0, 499)
	}
}

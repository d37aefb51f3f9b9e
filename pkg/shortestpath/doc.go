// Package shortestpath implements Dijkstra's single-source shortest-path
// algorithm over any graph.Graph with non-negative edge weights.
//
// There are two entry points over one relaxation loop:
//
//   - ComputeDistances returns the full distance and predecessor table from
//     a source. Unreachable nodes keep distance +Inf and no predecessor.
//   - FindPath returns the node sequence and total weight from a source to a
//     target, stopping as soon as the target is settled. An empty sequence
//     means the target is unreachable.
//
// Both validate the graph on every call. An Engine validates once and can then
// answer many queries, concurrently if desired, against the same read-only
// graph; its methods also honor context cancellation.
//
// Engine.Within and Engine.PathBetween run the same loop from several seeded
// nodes at once, each with its own starting distance. Within stops at a
// distance bound; PathBetween stops once no unsettled node can improve on the
// cheapest seeded target.
//
// Only the source is seeded into the priority queue. Neighbors are enqueued
// when relaxed, and stale queue entries (whose priority exceeds the recorded
// distance) are skipped when dequeued. Equal priorities dequeue in insertion
// order, so for a graph that iterates its edges deterministically
// (graph.Adjacency, graph.Digraph, graph.Road) results are reproducible.
//
// Complexity: O((V + E) log V) time, O(V + E) space.
package shortestpath

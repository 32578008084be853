// Package closure computes the bounded transitive closure of the reference
// graph: every indirect dependency path derivable from direct references,
// answering "what breaks if I change X".
//
// Each definition is a BFS source. Dangling references are excluded from
// traversal (they remain visible as direct references elsewhere). Exactly
// one row is kept per (source, target) pair, at the shortest discovered
// depth, with the union of reference-context tags along the retained path.
// The expansion is bounded by a configurable maximum depth; truncated paths
// are counted for observability, never raised as errors.
//
// The table is fully recomputed on every build. Traversals are independent
// per source and run on a worker pool; merged output is sorted before
// insertion so rebuilds on unchanged input are byte-identical.
package closure

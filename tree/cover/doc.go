// Package cover implements a cover tree: a hierarchical index over points in
// a metric space that answers nearest-neighbor, k-nearest-neighbor, and
// range queries in time that scales with the intrinsic dimension of the
// data rather than its ambient dimension.
//
// The metric is fixed to Euclidean L2. A Tree supports incremental
// insertion, tree-tree merging, and parallel bulk construction via
// ParallelBuilder. A single Tree is not safe for concurrent use; callers
// must serialize Insert, Nearest, Near, Range, Merge, and Update calls on
// the same Tree.
package cover

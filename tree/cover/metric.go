package cover

import "github.com/viant/vec/search"

// dist returns the Euclidean (L2) distance between two points. Callers must
// ensure both points share the tree's established dimension; dist does not
// re-validate it on every call since it sits on the query hot path.
func dist(a, b *Point) float32 {
	return search.Float32s(a.Vector).EuclideanDistance(b.Vector)
}

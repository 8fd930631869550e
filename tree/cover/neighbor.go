package cover

import (
	"container/heap"
	"math"
	"sort"
)

// Neighbor pairs a stored point with its distance to a query, as returned
// by Near.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// neighborHeap is a max-heap ordered by descending distance, used to keep
// the k best (smallest-distance) candidates seen so far: the root is always
// the current worst of the k, so a new candidate either replaces it or is
// discarded without scanning the rest.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Nearest returns the point nearest to q under the tree's metric.
func (t *Tree) Nearest(q *Point) (*Point, error) {
	if len(q.Vector) != t.dim {
		return nil, errDimensionMismatch(t.dim, len(q.Vector))
	}
	t.root.tempDist = dist(t.root.point, q)
	best := t.nearestDescend(t.root, q, t.root)
	return best.point, nil
}

func (t *Tree) nearestDescend(current *node, q *Point, best *node) *node {
	if current.tempDist < best.tempDist {
		best = current
	}

	for _, c := range current.children {
		c.tempDist = dist(c.point, q)
	}
	sort.Slice(current.children, func(i, j int) bool {
		return current.children[i].tempDist < current.children[j].tempDist
	})

	for _, c := range current.children {
		if best.tempDist > c.tempDist-c.maxdistUB {
			best = t.nearestDescend(c, q, best)
		}
	}
	return best
}

// Near returns the k points nearest to q, in ascending distance order. k
// must be at least 1; if fewer than k points are stored, the shorter
// result is returned.
func (t *Tree) Near(q *Point, k int) ([]*Point, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(q.Vector) != t.dim {
		return nil, errDimensionMismatch(t.dim, len(q.Vector))
	}

	h := make(neighborHeap, 0, k)
	heap.Init(&h)
	t.root.tempDist = dist(t.root.point, q)
	t.kNearestDescend(t.root, q, k, &h)

	result := make([]*Point, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		n := heap.Pop(&h).(Neighbor)
		result[i] = n.Point
	}
	return result, nil
}

func (t *Tree) kNearestDescend(current *node, q *Point, k int, h *neighborHeap) {
	if h.Len() < k {
		heap.Push(h, Neighbor{Point: current.point, Distance: current.tempDist})
	} else if current.tempDist < (*h)[0].Distance {
		heap.Pop(h)
		heap.Push(h, Neighbor{Point: current.point, Distance: current.tempDist})
	}

	for _, c := range current.children {
		c.tempDist = dist(c.point, q)
	}
	sort.Slice(current.children, func(i, j int) bool {
		return current.children[i].tempDist < current.children[j].tempDist
	})

	for _, c := range current.children {
		worst := float32(math.MaxFloat32)
		if h.Len() == k {
			worst = (*h)[0].Distance
		}
		if h.Len() < k || worst > c.tempDist-c.maxdistUB {
			t.kNearestDescend(c, q, k, h)
		}
	}
}

// Range returns every stored point whose distance to q is strictly less
// than r, in traversal order (callers that need a sorted result must sort
// it themselves). r must be strictly positive.
func (t *Tree) Range(q *Point, r float32) ([]*Point, error) {
	if r <= 0 {
		return nil, ErrInvalidRange
	}
	if len(q.Vector) != t.dim {
		return nil, errDimensionMismatch(t.dim, len(q.Vector))
	}

	var result []*Point
	t.root.tempDist = dist(t.root.point, q)
	t.rangeDescend(t.root, q, r, &result)
	return result, nil
}

func (t *Tree) rangeDescend(current *node, q *Point, r float32, result *[]*Point) {
	if current.tempDist < r {
		*result = append(*result, current.point)
	}

	for _, c := range current.children {
		c.tempDist = dist(c.point, q)
	}
	sort.Slice(current.children, func(i, j int) bool {
		return current.children[i].tempDist < current.children[j].tempDist
	})

	for _, c := range current.children {
		if r > c.tempDist-c.maxdistUB {
			t.rangeDescend(c, q, r, result)
		}
	}
}

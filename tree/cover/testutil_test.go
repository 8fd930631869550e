package cover

import (
	"math/rand"
	"sort"
)

// randomPoints generates n points of the given dimension from a seeded RNG,
// so test failures are reproducible.
func randomPoints(seed int64, n, dim int) []*Point {
	r := rand.New(rand.NewSource(seed))
	points := make([]*Point, n)
	for i := 0; i < n; i++ {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.Float32()*200 - 100
		}
		points[i] = NewPoint(v, i)
	}
	return points
}

// bruteNearest returns the exact nearest point to q by exhaustive scan,
// serving as the oracle for cover-tree query tests.
func bruteNearest(points []*Point, q *Point) *Point {
	var best *Point
	var bestDist float32
	for i, p := range points {
		d := dist(p, q)
		if i == 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// bruteNear returns the k exact nearest points to q, ascending by distance.
func bruteNear(points []*Point, q *Point, k int) []*Point {
	type scored struct {
		p *Point
		d float32
	}
	scoredPoints := make([]scored, len(points))
	for i, p := range points {
		scoredPoints[i] = scored{p, dist(p, q)}
	}
	sort.Slice(scoredPoints, func(i, j int) bool { return scoredPoints[i].d < scoredPoints[j].d })
	if k > len(scoredPoints) {
		k = len(scoredPoints)
	}
	result := make([]*Point, k)
	for i := 0; i < k; i++ {
		result[i] = scoredPoints[i].p
	}
	return result
}

// bruteRange returns every point within strict distance r of q.
func bruteRange(points []*Point, q *Point, r float32) []*Point {
	var result []*Point
	for _, p := range points {
		if dist(p, q) < r {
			result = append(result, p)
		}
	}
	return result
}

// idSet builds a set of point IDs for order-independent comparison.
func idSet(points []*Point) map[int]bool {
	set := make(map[int]bool, len(points))
	for _, p := range points {
		set[p.ID] = true
	}
	return set
}

// checkInvariants walks every node of the tree and verifies nesting,
// covering, and separation hold throughout (maxdistUB is checked separately
// by maxdistUBViolations).
func checkInvariants(t *Tree) []string {
	var violations []string
	if t.root == nil {
		return violations
	}

	type frame struct {
		n      *node
		parent *node
	}
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.n

		for _, c := range n.children {
			if c.level != n.level-1 {
				violations = append(violations, "nesting violated: child level does not equal parent level - 1")
			}
			cov, ok := n.covdist(t.powTable)
			if ok && dist(n.point, c.point) > cov {
				violations = append(violations, "covering violated: child outside parent's covdist")
			}
			stack = append(stack, frame{n: c, parent: n})
		}

		for i := 0; i < len(n.children); i++ {
			for j := i + 1; j < len(n.children); j++ {
				sep, ok := n.sepdist(t.powTable)
				if ok && dist(n.children[i].point, n.children[j].point) < sep {
					violations = append(violations, "separation violated: siblings closer than sepdist")
				}
			}
		}
	}
	return violations
}

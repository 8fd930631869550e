package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateIdempotent(t *testing.T) {
	points := randomPoints(7, 200, 8)
	tr, err := NewBatch(points)
	require.NoError(t, err)

	tr.Update()
	first := snapshotMaxdistUB(tr)
	tr.Update()
	second := snapshotMaxdistUB(tr)

	assert.Equal(t, first, second)
}

func TestUpdateTightensBoundsAfterInsert(t *testing.T) {
	points := randomPoints(8, 50, 8)
	tr, err := NewBatch(points)
	require.NoError(t, err)
	tr.Update()

	require.NoError(t, tr.Insert(NewPoint(make([]float32, 8), -1)))
	tr.Update()

	assert.Empty(t, checkInvariants(tr))
	assert.Empty(t, maxdistUBViolations(tr))
}

func TestUpdateComputesExactTightValue(t *testing.T) {
	// A triangle-inequality composition of child bounds (dist(parent,child)
	// + child.maxdistUB) is a looser upper bound than the true
	// max-distance-to-any-descendant whenever a grandchild sits off-axis
	// from its grandparent. Here (1,1) lies outside (0,0)'s covering radius
	// and becomes the root, giving (1,1) -> (0,0) -> (1,0): composition
	// yields ~2.414 for the root, the exact value is ~1.414.
	// maxdistUBViolations independently recomputes the exact value and
	// would flag any node where Update only achieved the looser bound.
	n := NewPoint([]float32{0, 0}, 0)
	c := NewPoint([]float32{1, 0}, 1)
	d := NewPoint([]float32{1, 1}, 2)

	tr, err := New(n)
	require.NoError(t, err)
	require.NoError(t, tr.Insert(c))
	require.NoError(t, tr.Insert(d))
	tr.Update()

	assert.Empty(t, maxdistUBViolations(tr))
}

func TestDestroyClearsTree(t *testing.T) {
	points := randomPoints(9, 50, 8)
	tr, err := NewBatch(points)
	require.NoError(t, err)

	tr.Destroy()
	assert.Nil(t, tr.Points())
}

// snapshotMaxdistUB records every node's maxdistUB keyed by point ID, for
// before/after comparison across repeated Update calls.
func snapshotMaxdistUB(t *Tree) map[int]float32 {
	snap := make(map[int]float32)
	if t.root == nil {
		return snap
	}
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		snap[n.point.ID] = n.maxdistUB
		stack = append(stack, n.children...)
	}
	return snap
}

// maxdistUBViolations reports every node whose maxdistUB does not exactly
// equal the true maximum distance from its point to every point in its own
// subtree (descendants(n) below), independently recomputed by plain
// recursion rather than reusing Update's own algorithm.
func maxdistUBViolations(t *Tree) []string {
	if t.root == nil {
		return nil
	}
	var violations []string
	var walk func(n *node) []*Point
	walk = func(n *node) []*Point {
		descendants := []*Point{n.point}
		for _, c := range n.children {
			descendants = append(descendants, walk(c)...)
		}
		var want float32
		for _, p := range descendants {
			if d := dist(n.point, p); d > want {
				want = d
			}
		}
		if n.maxdistUB < want-1e-3 || n.maxdistUB > want+1e-3 {
			violations = append(violations, "maxdistUB not tight for a node")
		}
		return descendants
	}
	walk(t.root)
	return violations
}

package cover

// Update recomputes a tight maxdistUB for every node: the true maximum
// distance from that node's point to any of its descendants' points, not a
// triangle-inequality composition of child bounds. It is idempotent: calling
// it twice in a row leaves every maxdistUB unchanged. Insert does not
// tighten maxdistUB on its own — the stored value remains a valid (if loose)
// upper bound — so callers that interleave inserts and queries should call
// Update to restore tight pruning; correctness of query results never
// depends on it.
//
// This ports the original's calc_maxdist active-stack walk directly: travel
// holds every node not yet fully closed, active holds the still-open
// ancestor chain above whatever node is currently being visited. Descending
// always follows children[0], pushing the rest of each node's children (in
// reverse, so children[0] ends up on top) onto travel along the way; every
// time a node is visited — whether it's a leaf on first visit or an internal
// node revisited once its whole subtree has closed — every node still in
// active gets compared directly against it, so a node's maxdistUB ends up as
// the max over every descendant, not just its direct children.
func (t *Tree) Update() {
	if t.root == nil {
		return
	}

	t.root.maxdistUB = 0
	travel := []*node{t.root}
	var active []*node

	for len(travel) > 0 {
		current := travel[len(travel)-1]

		if current.maxdistUB == 0 {
			for len(current.children) > 0 {
				active = append(active, current)
				for i := len(current.children) - 1; i >= 0; i-- {
					current.children[i].maxdistUB = 0
					travel = append(travel, current.children[i])
				}
				current = current.children[0]
			}
		} else {
			active = active[:len(active)-1]
		}

		for _, n := range active {
			if d := dist(n.point, current.point); d > n.maxdistUB {
				n.maxdistUB = d
			}
		}

		travel = travel[:len(travel)-1]
	}

	t.logger.Debug("cover: maxdistUB recomputed", "root_level", t.root.level)
}

// Points returns every point stored in the tree, in an unspecified order.
func (t *Tree) Points() []*Point {
	if t.root == nil {
		return nil
	}
	var result []*Point
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, n.point)
		stack = append(stack, n.children...)
	}
	return result
}

// Destroy detaches every node reachable from the root via an iterative
// depth-first walk: each node's children are pushed onto the stack before
// the node itself is cleared, so every node is reached once. Go's GC
// makes the explicit traversal unnecessary for correctness, but for very
// deep trees it avoids relying on the collector to untangle a large parent
// -> children graph in one pass, and it gives Destroy a bounded, stack-based
// shape rather than unbounded recursion. After Destroy, the Tree must not
// be used again.
func (t *Tree) Destroy() {
	if t.root == nil {
		return
	}
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, n.children...)
		n.children = nil
		n.point = nil
	}
	t.root = nil
}

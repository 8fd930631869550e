package cover

// Merge absorbs other into t: after a successful call, t contains every
// point that was in either tree, and other must not be used again. The
// receiver's root level must be greater than or equal to other's root
// level; otherwise Merge returns ErrMergePrecondition (callers needing the
// opposite order should swap receiver and argument themselves).
func (t *Tree) Merge(other *Tree) error {
	if other.root == nil {
		return nil
	}
	if t.root.level < other.root.level {
		return ErrMergePrecondition
	}
	if t.dim != other.dim {
		return errDimensionMismatch(t.dim, other.dim)
	}

	// Align covering: lift t's root until it covers other's root.
	for {
		cov, ok := t.root.covdist(t.powTable)
		if !ok {
			return errPowerTableExhausted(t.root.level)
		}
		if dist(t.root.point, other.root.point) <= cov {
			break
		}
		t.root = liftOnce(t.root)
	}
	if t.root.level > t.maxScale {
		t.maxScale = t.root.level
	}

	// Align levels: lift other's root until the two roots match.
	for t.root.level > other.root.level {
		other.root = liftOnce(other.root)
	}

	leftovers, err := t.mergeHelper(t.root, other.root)
	if err != nil {
		return err
	}
	for _, l := range leftovers {
		if err := t.insertSubtreeAtRoot(l); err != nil {
			return err
		}
	}

	other.root = nil
	if t.minScale > other.minScale {
		t.minScale = other.minScale
	}
	t.logger.Debug("cover: merge complete", "root_level", t.root.level, "minScale", t.minScale)
	return nil
}

// mergeHelper fuses q into p (dist(p.point, q.point) <= p.covdist and
// p.level == q.level on entry). It classifies each of q's children as
// uncovered (p doesn't reach it at all), separated-covered (p reaches it
// but none of p's own children do, so it's attached directly), or merged
// into a matching child of p (recursing and collecting that call's
// leftovers). q.point is folded into p via the point-insert descent, and
// any leftovers that still aren't covered by p are returned to the caller.
func (t *Tree) mergeHelper(p, q *node) ([]*node, error) {
	var sepcov, uncovered, leftovers []*node

	pCov, ok := p.covdist(t.powTable)
	if !ok {
		return nil, errPowerTableExhausted(p.level)
	}

	for _, r := range q.children {
		if dist(p.point, r.point) >= pCov {
			uncovered = append(uncovered, r)
			continue
		}
		matched := false
		for _, s := range p.children {
			sCov, ok := s.covdist(t.powTable)
			if !ok {
				return nil, errPowerTableExhausted(s.level)
			}
			if dist(s.point, r.point) <= sCov {
				sub, err := t.mergeHelper(s, r)
				if err != nil {
					return nil, err
				}
				leftovers = append(leftovers, sub...)
				matched = true
				break
			}
		}
		if !matched {
			sepcov = append(sepcov, r)
		}
	}

	p.children = append(p.children, sepcov...)
	if err := t.insertDescend(p, q.point); err != nil {
		return nil, err
	}

	for _, r := range leftovers {
		pCov, ok := p.covdist(t.powTable)
		if !ok {
			return nil, errPowerTableExhausted(p.level)
		}
		if dist(p.point, r.point) <= pCov {
			if err := t.insertSubtree(p, r); err != nil {
				return nil, err
			}
		} else {
			uncovered = append(uncovered, r)
		}
	}

	return uncovered, nil
}

// insertSubtree descends from current, which must already cover sub.point,
// to the deepest covering child and attaches sub there, reparenting (and
// relabeling every level in) sub if it lands somewhere other than where it
// was built.
func (t *Tree) insertSubtree(current *node, sub *node) error {
	for _, child := range current.children {
		cov, ok := child.covdist(t.powTable)
		if !ok {
			return errPowerTableExhausted(child.level)
		}
		if dist(child.point, sub.point) <= cov {
			return t.insertSubtree(child, sub)
		}
	}
	current.setChild(sub)
	stack := []*node{sub}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.level < t.minScale {
			t.minScale = n.level
		}
		stack = append(stack, n.children...)
	}
	return nil
}

// insertSubtreeAtRoot generalizes Insert's root-lifting phase to a whole
// subtree: a merge leftover can legitimately fall outside even the
// receiver's root covering radius (that's exactly why mergeHelper classifies
// it as uncovered rather than attaching it directly), so the root must be
// allowed to grow to accommodate it, the same way a single far-away point
// grows the root in Insert.
func (t *Tree) insertSubtreeAtRoot(sub *node) error {
	rootCov, ok := t.root.covdist(t.powTable)
	if !ok {
		return errPowerTableExhausted(t.root.level)
	}
	if dist(t.root.point, sub.point) <= rootCov {
		return t.insertSubtree(t.root, sub)
	}

	for {
		cov, ok := t.root.covdist(t.powTable)
		if !ok {
			return errPowerTableExhausted(t.root.level)
		}
		if dist(t.root.point, sub.point) <= 2*cov {
			break
		}
		t.root = liftOnce(t.root)
	}

	newLevel := t.root.level + 1
	shiftLevels(sub, newLevel-sub.level)
	sub.children = append(sub.children, t.root)
	t.root = sub
	if t.root.level > t.maxScale {
		t.maxScale = t.root.level
	}
	return nil
}

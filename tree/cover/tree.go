package cover

import "log/slog"

// Tree is a cover tree over points of a fixed dimension, queried and
// mutated under the Euclidean L2 metric. A Tree is not safe for concurrent
// use: Insert, Nearest, Near, Range, Merge, and Update all mutate node
// state (children order, tempDist, maxdistUB) and must be serialized by the
// caller.
type Tree struct {
	root     *node
	base     float32
	powTable *powerTable
	minScale int
	maxScale int
	dim      int
	logger   *slog.Logger
}

// New constructs a single-node tree from one point. base defaults to 1.3
// when no WithBase option is given.
func New(p *Point, opts ...Option) (*Tree, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newFromPoint(p, o)
}

func newFromPoint(p *Point, o options) (*Tree, error) {
	if o.base <= 1 {
		return nil, ErrInvalidBase
	}
	if p == nil || len(p.Vector) == 0 {
		return nil, ErrEmptyPoint
	}
	t := &Tree{
		base:     o.base,
		powTable: newPowerTable(o.base),
		logger:   o.logger,
		dim:      len(p.Vector),
	}
	t.root = newNode(p, 0)
	return t, nil
}

// NewBatch builds a tree from a non-empty batch of points: the last point
// becomes the root, every other point is inserted in order, and Update is
// called once at the end to compute tight maxdistUB bounds.
func NewBatch(points []*Point, opts ...Option) (*Tree, error) {
	if len(points) == 0 {
		return nil, ErrEmptyBatch
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	t, err := newFromPoint(points[len(points)-1], o)
	if err != nil {
		return nil, err
	}
	for _, p := range points[:len(points)-1] {
		if err := t.Insert(p); err != nil {
			return nil, err
		}
	}
	t.Update()
	t.logger.Debug("cover: batch built", "points", len(points), "root_level", t.root.level)
	return t, nil
}

// Dim returns the dimension established by the tree's first point.
func (t *Tree) Dim() int { return t.dim }

// RootLevel returns the level of the current root.
func (t *Tree) RootLevel() int { return t.root.level }

// MinScale returns the deepest (most negative) level any node has reached.
func (t *Tree) MinScale() int { return t.minScale }

// MaxScale returns the highest level the root has reached.
func (t *Tree) MaxScale() int { return t.maxScale }

// Insert adds p to the tree. p must have the same dimension as every other
// point in the tree.
func (t *Tree) Insert(p *Point) error {
	if len(p.Vector) != t.dim {
		return errDimensionMismatch(t.dim, len(p.Vector))
	}

	rootCov, ok := t.root.covdist(t.powTable)
	if !ok {
		return errPowerTableExhausted(t.root.level)
	}
	rootDist := dist(t.root.point, p)
	if rootDist <= rootCov {
		t.root.tempDist = rootDist
		return t.insertDescend(t.root, p)
	}

	for {
		cov, ok := t.root.covdist(t.powTable)
		if !ok {
			return errPowerTableExhausted(t.root.level)
		}
		d := dist(t.root.point, p)
		if d <= 2*cov {
			break
		}
		t.root = liftOnce(t.root)
	}

	newRoot := newNode(p, t.root.level+1)
	newRoot.maxdistUB = dist(p, t.root.point) + t.root.maxdistUB
	newRoot.children = append(newRoot.children, t.root)
	t.root = newRoot
	if t.root.level > t.maxScale {
		t.maxScale = t.root.level
	}
	return nil
}

// insertDescend implements the internal recursive insert of §4.2: current
// covers p on entry. It descends into the first child that also covers p,
// or appends p as a new leaf under current.
func (t *Tree) insertDescend(current *node, p *Point) error {
	if d := dist(current.point, p); d > current.maxdistUB {
		current.maxdistUB = d
	}
	for _, child := range current.children {
		child.tempDist = dist(child.point, p)
		cov, ok := child.covdist(t.powTable)
		if !ok {
			return errPowerTableExhausted(child.level)
		}
		if child.tempDist <= cov {
			return t.insertDescend(child, p)
		}
	}

	leaf := newNode(p, current.level-1)
	current.children = append(current.children, leaf)
	if leaf.level < t.minScale {
		t.minScale = leaf.level
	}
	return nil
}

// liftOnce performs a single step of the root-lift procedure shared by
// Insert's phase A and Merge's alignment loops: it peels the deepest
// rightmost descendant of root and promotes it one level above root, or,
// if root has no children, simply increments root's level in place.
func liftOnce(root *node) *node {
	current := root
	var parent *node
	for len(current.children) > 0 {
		parent = current
		current = current.children[len(current.children)-1]
	}
	if parent != nil {
		parent.children = parent.children[:len(parent.children)-1]
		current.level = root.level + 1
		current.maxdistUB = dist(current.point, root.point) + root.maxdistUB
		current.children = append(current.children, root)
		return current
	}
	root.level++
	return root
}

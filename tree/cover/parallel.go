package cover

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ParallelBuilder builds a cover tree from a large batch by recursively
// partitioning the input, building each half concurrently, and merging the
// two resulting trees. Below Threshold it falls back to a sequential
// NewBatch. Cancellation is not supported: once started, a build runs to
// completion, matching the core's "builders run to completion" concurrency
// model — a caller needing cancellation wraps Build in its own goroutine
// and abandons the result.
type ParallelBuilder struct {
	base      float32
	threshold int
	logger    *slog.Logger
}

// NewParallelBuilder constructs a ParallelBuilder. WithThreshold overrides
// the reference 50000-point sequential-fallback size.
func NewParallelBuilder(opts ...Option) *ParallelBuilder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &ParallelBuilder{base: o.base, threshold: o.threshold, logger: o.logger}
}

// Build constructs a tree from points, splitting and merging concurrently
// once the batch is at least Threshold points. The resulting tree answers
// the same queries a sequential NewBatch would, though its internal shape
// may differ: child orderings depend on partition boundaries and on which
// half's root outranks the other's during merge.
func (b *ParallelBuilder) Build(points []*Point) (*Tree, error) {
	if len(points) == 0 {
		return nil, ErrEmptyBatch
	}
	if b.base <= 1 {
		return nil, ErrInvalidBase
	}
	t, err := b.build(context.Background(), points)
	if err != nil {
		return nil, err
	}
	t.Update()
	return t, nil
}

func (b *ParallelBuilder) build(ctx context.Context, points []*Point) (*Tree, error) {
	if len(points) < b.threshold {
		b.logger.Debug("cover: parallel builder sequential fallback", "points", len(points))
		return NewBatch(points, WithBase(b.base), WithLogger(b.logger))
	}

	mid := len(points) / 2
	left, right := points[:mid], points[mid:]

	var leftTree, rightTree *Tree
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := b.build(gctx, left)
		if err != nil {
			return err
		}
		leftTree = t
		return nil
	})
	g.Go(func() error {
		t, err := b.build(gctx, right)
		if err != nil {
			return err
		}
		rightTree = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	receiver, donor := leftTree, rightTree
	if rightTree.root.level > leftTree.root.level {
		receiver, donor = rightTree, leftTree
	}
	if err := receiver.Merge(donor); err != nil {
		return nil, err
	}
	b.logger.Debug("cover: parallel builder merged halves",
		"left_points", len(left), "right_points", len(right), "receiver_level", receiver.root.level)
	return receiver, nil
}

package cover

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	covertree "github.com/viant/gds/tree/cover"
)

// parallelThreshold is the batch size above which Build hands off to a
// ParallelBuilder instead of a sequential covertree.NewBatch.
const parallelThreshold = 10000

// Index implements index.Index over a tree/cover.Tree. Queries are answered
// under the Euclidean metric; Query converts each neighbor's distance to a
// score of -distance, so "higher score" still means "more similar" as the
// index.Index contract requires, without claiming the bounded [-1,1] range a
// cosine-based index would return.
type Index struct {
	ids  []string
	dim  int
	tree *covertree.Tree
}

// Build loads ids and vectors into a fresh cover tree, replacing whatever
// the Index held before.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("cover: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.dim, i.tree = nil, 0, nil
		return nil
	}

	dim := len(vectors[0])
	points := make([]*covertree.Point, len(vectors))
	for j, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("cover: inconsistent vector dims %d vs %d", len(v), dim)
		}
		points[j] = covertree.NewPoint(v, j)
	}

	var tr *covertree.Tree
	var err error
	if len(points) >= parallelThreshold {
		tr, err = covertree.NewParallelBuilder().Build(points)
	} else {
		tr, err = covertree.NewBatch(points)
	}
	if err != nil {
		return fmt.Errorf("cover: build: %w", err)
	}
	tr.Update()

	i.ids = append([]string(nil), ids...)
	i.dim = dim
	i.tree = tr
	return nil
}

// Query returns up to k ids ordered by decreasing similarity (increasing
// Euclidean distance).
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.tree == nil || len(i.ids) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("cover: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 || k > len(i.ids) {
		k = len(i.ids)
	}

	q := covertree.NewPoint(query, -1)
	neighbors, err := i.tree.Near(q, k)
	if err != nil {
		return nil, nil, fmt.Errorf("cover: query: %w", err)
	}

	outIDs := make([]string, len(neighbors))
	outScores := make([]float64, len(neighbors))
	for n, p := range neighbors {
		outIDs[n] = i.ids[p.ID]
		outScores[n] = -float64(euclidean(query, p.Vector))
	}
	return outIDs, outScores, nil
}

// MarshalBinary stores: dim(uint32), n(uint32), then for each item:
// idLen(uint32), id bytes, vec(float32[dim]). Unmarshal rebuilds the tree
// from scratch, so the format carries no cover-tree-specific structure.
func (i *Index) MarshalBinary() ([]byte, error) {
	if i.dim == 0 || len(i.ids) == 0 {
		buf := make([]byte, 8)
		return buf, nil
	}
	vectors := i.vectors()

	size := 8
	for _, id := range i.ids {
		size += 4 + len(id) + 4*i.dim
	}
	out := make([]byte, 0, size)
	putU32 := func(v uint32) { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); out = append(out, b...) }
	putF32 := func(v float32) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
		out = append(out, b...)
	}
	putU32(uint32(i.dim))
	putU32(uint32(len(i.ids)))
	for idx, id := range i.ids {
		putU32(uint32(len(id)))
		out = append(out, []byte(id)...)
		for j := 0; j < i.dim; j++ {
			putF32(vectors[idx][j])
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index and rebuilds the cover tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return errors.New("cover: invalid data")
	}
	off := 0
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off : off+4]); off += 4; return v }
	getF32 := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		return v
	}
	dim := int(getU32())
	n := int(getU32())
	ids := make([]string, n)
	vectors := make([][]float32, n)
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return errors.New("cover: truncated")
		}
		idlen := int(getU32())
		if off+idlen > len(data) {
			return errors.New("cover: truncated id")
		}
		ids[idx] = string(data[off : off+idlen])
		off += idlen
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			if off+4 > len(data) {
				return errors.New("cover: truncated vec")
			}
			vec[j] = getF32()
		}
		vectors[idx] = vec
	}
	return i.Build(ids, vectors)
}

// vectors recovers every vector currently held by the tree, indexed by the
// point ID Build assigned it, for re-serialization.
func (i *Index) vectors() [][]float32 {
	vectors := make([][]float32, len(i.ids))
	for _, p := range i.tree.Points() {
		vectors[p.ID] = p.Vector
	}
	return vectors
}

func euclidean(a, b []float32) float32 {
	var sum float32
	for idx := range a {
		d := a[idx] - b[idx]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

package cover

import "math"

const (
	// tableSize is the number of precomputed powers of base, mirroring the
	// original's powdict[2048].
	tableSize = 2048
	// tableOffset centers the table so both deeply positive and deeply
	// negative levels are representable (level 0 maps to the middle).
	tableOffset = tableSize / 2
)

// powerTable precomputes base^(i-tableOffset) for every admissible level so
// covdist/sepdist lookups never call math.Pow on the hot path.
type powerTable struct {
	base float32
	pow  [tableSize]float32
}

func newPowerTable(base float32) *powerTable {
	t := &powerTable{base: base}
	for i := 0; i < tableSize; i++ {
		t.pow[i] = float32(math.Pow(float64(base), float64(i-tableOffset)))
	}
	return t
}

// covdist returns base^level, the maximum allowed distance from a node at
// that level to any direct child. ok is false if level left the
// precomputed range.
func (t *powerTable) covdist(level int) (value float32, ok bool) {
	i := level + tableOffset
	if i < 0 || i >= tableSize {
		return 0, false
	}
	return t.pow[i], true
}

// sepdist returns base^(level-1), the minimum required distance between
// sibling children of a node at that level. ok is false if level-1 left
// the precomputed range.
func (t *powerTable) sepdist(level int) (value float32, ok bool) {
	return t.covdist(level - 1)
}

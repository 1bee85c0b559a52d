package vscroll

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRangeBasics(t *testing.T) {
	t.Parallel()

	r := Range{Start: 3, End: 7}
	assert.False(t, r.IsEmpty())
	assert.EqualValues(t, 4, r.Len())
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(6))
	assert.False(t, r.Contains(7))
	assert.False(t, r.Contains(2))

	empty := Range{Start: 5, End: 5}
	assert.True(t, empty.IsEmpty())
	assert.EqualValues(t, 0, empty.Len())
	assert.False(t, empty.Contains(5))

	assert.True(t, Unbounded().Contains(0))
	assert.True(t, Unbounded().Contains(math.MinInt64))
	assert.True(t, Unbounded().Contains(math.MaxInt64-1))
	assert.EqualValues(t, math.MaxInt64, Unbounded().Len())
}

func TestRangeIntersect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     Range
		expected Range
	}{
		{"overlap", Range{0, 10}, Range{5, 15}, Range{5, 10}},
		{"contained", Range{0, 10}, Range{2, 4}, Range{2, 4}},
		{"disjoint", Range{0, 5}, Range{10, 20}, Range{10, 10}},
		{"touching", Range{0, 5}, Range{5, 10}, Range{5, 5}},
		{"unbounded", Unbounded(), Range{-3, 3}, Range{-3, 3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.a.Intersect(test.b)
			if test.expected.IsEmpty() {
				assert.True(t, got.IsEmpty())
			} else {
				assert.Equal(t, test.expected, got)
			}
		})
	}
}

// ids expands a range over a small domain into a set.
func ids(ranges ...Range) map[int64]bool {
	out := map[int64]bool{}
	for _, r := range ranges {
		r.Each(func(id int64) { out[id] = true })
	}
	return out
}

func TestRangeDiffTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		old, target      Range
		expectedRemovals int
		expectedAdds     int
	}{
		{"identical", Range{0, 10}, Range{0, 10}, 0, 0},
		{"shift down", Range{0, 10}, Range{5, 15}, 1, 1},
		{"shift up", Range{5, 15}, Range{0, 10}, 1, 1},
		{"grow both ends", Range{3, 7}, Range{0, 10}, 0, 2},
		{"shrink both ends", Range{0, 10}, Range{3, 7}, 2, 0},
		{"disjoint", Range{0, 5}, Range{20, 25}, 1, 1},
		{"old empty", Range{4, 4}, Range{0, 3}, 0, 1},
		{"target empty", Range{0, 3}, Range{4, 4}, 1, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			removed, added := test.old.Diff(test.target)
			assert.Len(t, removed, test.expectedRemovals)
			assert.Len(t, added, test.expectedAdds)
		})
	}
}

// Diff over ranges matches the per-element set difference.
func TestRangeDiffMatchesSetDifference(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		bound := func(label string) Range {
			start := rapid.Int64Range(-20, 20).Draw(t, label+"Start")
			end := rapid.Int64Range(start, 25).Draw(t, label+"End")
			return Range{Start: start, End: end}
		}
		old := bound("old")
		target := bound("target")

		removed, added := old.Diff(target)
		require.LessOrEqual(t, len(removed), 2)
		require.LessOrEqual(t, len(added), 2)

		oldSet, targetSet := ids(old), ids(target)
		removedSet, addedSet := ids(removed...), ids(added...)

		for id := int64(-25); id < 30; id++ {
			require.Equal(t, oldSet[id] && !targetSet[id], removedSet[id], "removed %d", id)
			require.Equal(t, targetSet[id] && !oldSet[id], addedSet[id], "added %d", id)
		}
	})
}

func TestRangeWithoutDisjointPieces(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		start := rapid.Int64Range(-20, 20).Draw(t, "start")
		end := rapid.Int64Range(start, 25).Draw(t, "end")
		oStart := rapid.Int64Range(-20, 20).Draw(t, "oStart")
		oEnd := rapid.Int64Range(oStart, 25).Draw(t, "oEnd")

		pieces := (Range{start, end}).Without(Range{oStart, oEnd})
		if len(pieces) == 2 {
			require.Less(t, pieces[0].End, pieces[1].Start)
		}
		for _, p := range pieces {
			require.False(t, p.IsEmpty())
		}
	})
}

func TestAddSat(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 5, addSat(2, 3))
	assert.EqualValues(t, -1, addSat(2, -3))
	assert.EqualValues(t, math.MaxInt64, addSat(math.MaxInt64-1, 5))
	assert.EqualValues(t, math.MinInt64, addSat(math.MinInt64+1, -5))
	assert.EqualValues(t, math.MaxInt64, addSat(math.MaxInt64, 0))
}

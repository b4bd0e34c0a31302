package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCandidates(t *testing.T) {
	candidates := []Candidate{
		{Label: "alice", Distance: 0.1},
		{Label: "bob", Distance: 0.55},
		{Label: "carol", Distance: 0.9},
	}

	t.Run("keeps only candidates within threshold", func(t *testing.T) {
		matches := FilterCandidates(candidates, 0.6)

		assert.Len(t, matches, 2)
		assert.Equal(t, "alice", matches[0].Identity)
		assert.Equal(t, "bob", matches[1].Identity)
	})

	t.Run("boundary distance is included", func(t *testing.T) {
		matches := FilterCandidates([]Candidate{{Label: "edge", Distance: 0.6}}, 0.6)

		assert.Len(t, matches, 1)
	})

	t.Run("confidence is one minus distance", func(t *testing.T) {
		matches := FilterCandidates(candidates, 1.0)

		assert.InDelta(t, 0.9, matches[0].Confidence, 1e-9)
		assert.InDelta(t, 0.45, matches[1].Confidence, 1e-9)
		assert.InDelta(t, 0.1, matches[2].Confidence, 1e-9)
	})

	t.Run("confidence is not clamped for distances above one", func(t *testing.T) {
		matches := FilterCandidates([]Candidate{{Label: "far", Distance: 1.3}}, 2.0)

		assert.Len(t, matches, 1)
		assert.InDelta(t, -0.3, matches[0].Confidence, 1e-9)
	})

	t.Run("empty input yields empty non-nil slice", func(t *testing.T) {
		matches := FilterCandidates(nil, 0.6)

		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})

	t.Run("filtering is monotonic in the threshold", func(t *testing.T) {
		var previous int
		for _, threshold := range []float64{0.0, 0.1, 0.55, 0.6, 0.9, 1.5} {
			matches := FilterCandidates(candidates, threshold)
			assert.GreaterOrEqual(t, len(matches), previous,
				"raising the threshold must never remove a match")
			previous = len(matches)
		}
	})

	t.Run("ascending distance order is preserved", func(t *testing.T) {
		matches := FilterCandidates(candidates, 1.0)

		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
		}
	})
}

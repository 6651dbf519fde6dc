package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoresEmpty(t *testing.T) {
	var s Scores

	assert.Zero(t, s.Mean())
	assert.Zero(t, s.Variance())
	assert.Zero(t, s.StdDev())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.Median())
	assert.Zero(t, s.Best())
}

func TestScoresSingleGame(t *testing.T) {
	var s Scores
	s.Add(25)

	assert.Equal(t, 1, s.Games)
	assert.Equal(t, 1, s.Wins)
	assert.InDelta(t, 25.0, s.Mean(), 1e-9)
	assert.Zero(t, s.Variance())
	assert.InDelta(t, 25.0, s.Median(), 1e-9)

	lo, hi := s.ConfidenceInterval95()
	assert.InDelta(t, 25.0, lo, 1e-9)
	assert.InDelta(t, 25.0, hi, 1e-9)
}

func TestScoresSpread(t *testing.T) {
	var s Scores
	for _, v := range []int{50, -20, 0, 10} {
		s.Add(v)
	}

	assert.Equal(t, 4, s.Games)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 10.0, s.Mean(), 1e-9)

	// deviations 40, -30, -10, 0
	assert.InDelta(t, 2600.0/3, s.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(2600.0/3), s.StdDev(), 1e-9)
	assert.InDelta(t, math.Sqrt(2600.0/3)/2, s.StdError(), 1e-9)

	assert.InDelta(t, 5.0, s.Median(), 1e-9)
	assert.InDelta(t, 50.0, s.Best(), 1e-9)
	assert.InDelta(t, -20.0, s.Worst(), 1e-9)

	lo, hi := s.ConfidenceInterval95()
	assert.Less(t, lo, s.Mean())
	assert.Greater(t, hi, s.Mean())
}

func TestPercentileInterpolates(t *testing.T) {
	var s Scores
	for _, v := range []int{0, 10, 20, 30, 40} {
		s.Add(v)
	}

	assert.InDelta(t, 10.0, s.Percentile(0.25), 1e-9)
	assert.InDelta(t, 35.0, s.Percentile(0.875), 1e-9)
	assert.InDelta(t, 40.0, s.Percentile(2), 1e-9)
}

// Package statistics summarises per-game scores.
package statistics

import (
	"math"
	"slices"
)

// Scores accumulates game scores.
type Scores struct {
	Games  int
	Sum    float64
	Sum2   float64 // sum of squares, for the variance
	Wins   int
	Losses int

	values []float64
}

// Add records one game score.
func (s *Scores) Add(score int) {
	v := float64(score)
	s.Games++
	s.Sum += v
	s.Sum2 += v * v
	s.values = append(s.values, v)

	switch {
	case score > 0:
		s.Wins++
	case score < 0:
		s.Losses++
	}
}

// Mean returns the average score per game.
func (s *Scores) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.Sum / float64(s.Games)
}

// Variance returns the sample variance.
func (s *Scores) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

func (s *Scores) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Scores) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Scores) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Percentile returns the interpolated score at p, in [0, 1].
func (s *Scores) Percentile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.values)
	slices.Sort(sorted)

	p = min(max(p, 0), 1)
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Scores) Median() float64 { return s.Percentile(0.5) }
func (s *Scores) Best() float64   { return s.Percentile(1) }
func (s *Scores) Worst() float64  { return s.Percentile(0) }

package game

// SessionStats aggregates results across games on one connection.
type SessionStats struct {
	GamesPlayed int
	TotalScore  int
}

// Record adds a finished game.
func (s *SessionStats) Record(score int) {
	s.GamesPlayed++
	s.TotalScore += score
}

// Average returns the mean score per game.
func (s SessionStats) Average() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalScore) / float64(s.GamesPlayed)
}

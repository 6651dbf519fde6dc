package strategy

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/runner"
)

// DefaultOpeningRaise is what Simple raises when it opens the first round.
const DefaultOpeningRaise = 100

// Simple opens the first round with a fixed raise when nobody else has
// raised, then checks when it can and calls otherwise.
type Simple struct {
	Base
	OpeningRaise int
	logger       *log.Logger
}

func NewSimple(opts Options) *Simple {
	raise := opts.RaiseAmount
	if raise <= 0 {
		raise = DefaultOpeningRaise
	}
	return &Simple{OpeningRaise: raise, logger: opts.logger()}
}

func (s *Simple) GetAction(round *game.RoundState, money int) (game.Decision, error) {
	if !round.AnyoneRaised() && round.RoundNumber == 1 {
		s.logger.Debug("Opening raise", "amount", s.OpeningRaise)
		return game.Decision{Kind: game.Raise, Amount: s.OpeningRaise}, nil
	}
	if round.CurrentBet == 0 {
		return game.Decision{Kind: game.Check}, nil
	}
	return game.Decision{Kind: game.Call, Amount: round.Owed(s.ID)}, nil
}

var _ runner.Strategy = (*Simple)(nil)

package strategy

import (
	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/runner"
)

// CallingStation never raises and never folds while it has money.
type CallingStation struct {
	Base
}

func (c *CallingStation) GetAction(round *game.RoundState, money int) (game.Decision, error) {
	return passive(round, c.ID, money), nil
}

var _ runner.Strategy = (*CallingStation)(nil)

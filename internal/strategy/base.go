// Package strategy holds the decision makers the runner can play with.
package strategy

import (
	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/protocol"
	"github.com/lox/holdem-runner/internal/runner"
)

// Base implements every callback except GetAction as a no-op and remembers
// the player id. Embed it to write a strategy that only decides.
type Base struct {
	ID protocol.PlayerID
}

func (b *Base) SetID(id protocol.PlayerID) { b.ID = id }

func (*Base) OnGameStart(runner.GameStart) error                  { return nil }
func (*Base) OnRoundStart(*game.RoundState, int) error            { return nil }
func (*Base) OnRoundEnd(*game.RoundState, int) error              { return nil }
func (*Base) OnGameEnd(*game.RoundState, runner.GameResult) error { return nil }

// passive stays in the hand as cheaply as the betting rules allow: check
// when there is no bet, call what is owed, or go all in when the call costs
// more than the stack. When a bet is outstanding but already matched, a zero
// raise is the only accepted way to stand pat.
func passive(round *game.RoundState, self protocol.PlayerID, money int) game.Decision {
	if round.CurrentBet == 0 {
		return game.Decision{Kind: game.Check}
	}
	owed := round.Owed(self)
	switch {
	case owed > money:
		if money <= 0 {
			return game.ForcedFold
		}
		return game.Decision{Kind: game.AllIn, Amount: money}
	case owed > 0:
		return game.Decision{Kind: game.Call, Amount: owed}
	default:
		return game.Decision{Kind: game.Raise, Amount: 0}
	}
}

// raiseTo builds a raise adding extra on top of what is owed, switching to
// all in when that would take the whole stack.
func raiseTo(round *game.RoundState, self protocol.PlayerID, money, extra int) game.Decision {
	amount := max(round.Owed(self), 0) + extra
	if amount >= money {
		if money <= 0 {
			return passive(round, self, money)
		}
		return game.Decision{Kind: game.AllIn, Amount: money}
	}
	return game.Decision{Kind: game.Raise, Amount: amount}
}

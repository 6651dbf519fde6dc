package strategy

import (
	rand "math/rand/v2"

	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/runner"
)

// Random picks uniformly between folding (only when facing a bet), staying
// in, and a minimum raise.
type Random struct {
	Base
	rng *rand.Rand
}

func NewRandom(opts Options) *Random {
	return &Random{rng: opts.rng()}
}

func (r *Random) GetAction(round *game.RoundState, money int) (game.Decision, error) {
	choices := []game.Decision{passive(round, r.ID, money)}
	if round.Owed(r.ID) > 0 {
		choices = append(choices, game.ForcedFold)
	}
	if money > round.Owed(r.ID) {
		choices = append(choices, raiseTo(round, r.ID, money, max(round.MinRaise, 1)))
	}
	return choices[r.rng.IntN(len(choices))], nil
}

var _ runner.Strategy = (*Random)(nil)

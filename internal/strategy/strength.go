package strategy

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	poker "github.com/paulhankin/poker"

	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/runner"
)

const (
	DefaultSamples = 400

	strongEquity = 0.70
	callMargin   = 0.05
	maxOpponents = 3
)

// Strength estimates its chance of winning by dealing out random boards and
// opponent hands, then raises strong hands, calls when the price is right
// and folds the rest.
type Strength struct {
	Base
	Samples int

	rng       *rand.Rand
	logger    *log.Logger
	hole      []poker.Card
	opponents int
}

func NewStrength(opts Options) *Strength {
	samples := opts.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Strength{
		Samples:   samples,
		rng:       opts.rng(),
		logger:    opts.logger(),
		opponents: 1,
	}
}

func (s *Strength) OnGameStart(start runner.GameStart) error {
	s.hole = parseCards(start.Hands)
	s.opponents = min(max(len(start.Players)-1, 1), maxOpponents)
	if len(s.hole) != 2 {
		s.logger.Warn("Unreadable hole cards, playing passively", "hands", start.Hands)
	}
	return nil
}

func (s *Strength) GetAction(round *game.RoundState, money int) (game.Decision, error) {
	if len(s.hole) != 2 {
		return passive(round, s.ID, money), nil
	}

	board := parseCards(round.CommunityCards)
	if len(board) > 5 {
		board = board[:5]
	}
	equity := s.Equity(board)
	owed := max(round.Owed(s.ID), 0)

	s.logger.Debug("Hand strength", "equity", equity, "owed", owed, "pot", round.Pot, "board", round.CommunityCards)

	switch {
	case equity >= strongEquity && money > owed:
		return raiseTo(round, s.ID, money, max(round.MinRaise, round.Pot/2, 1)), nil
	case owed == 0:
		return passive(round, s.ID, money), nil
	case equity >= potOdds(owed, round.Pot)+callMargin:
		return passive(round, s.ID, money), nil
	default:
		return game.ForcedFold, nil
	}
}

// Equity is the estimated share of the pot won against random opponent
// hands, with ties split.
func (s *Strength) Equity(board []poker.Card) float64 {
	known := append(append([]poker.Card{}, s.hole...), board...)
	deck := deckWithout(known)
	need := 5 - len(board) + 2*s.opponents
	if need > len(deck) || s.Samples <= 0 {
		return 0
	}

	var won float64
	var hero, villain [7]poker.Card
	for range s.Samples {
		s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		draw := deck

		copy(hero[:], s.hole)
		copy(hero[2:], board)
		n := copy(hero[2+len(board):], draw[:5-len(board)])
		draw = draw[n:]
		heroScore := poker.Eval7(&hero)

		best, ties := true, 0
		for range s.opponents {
			copy(villain[:], draw[:2])
			copy(villain[2:], hero[2:])
			draw = draw[2:]
			score := poker.Eval7(&villain)
			switch {
			case beats(score, heroScore):
				best = false
			case score == heroScore:
				ties++
			}
		}
		if best {
			won += 1 / float64(ties+1)
		}
	}
	return won / float64(s.Samples)
}

// potOdds is the share of the final pot a call contributes.
func potOdds(owed, pot int) float64 {
	if owed <= 0 {
		return 0
	}
	return float64(owed) / float64(pot+owed)
}

var _ runner.Strategy = (*Strength)(nil)

package game

// Bankroll tracks a player's money across an indefinite sequence of games.
//
// Between games the current money always equals initial + delta. Within a
// game, money spent on bets and blinds lowers the current money only; the
// game's score is applied to delta at settlement, which re-derives the
// current money. Server-reported stacks override local arithmetic.
type Bankroll struct {
	initial int
	delta   int
	current int
}

// NewBankroll starts a bankroll with the given stake.
func NewBankroll(initial int) *Bankroll {
	return &Bankroll{initial: initial, current: initial}
}

func (b Bankroll) Initial() int { return b.initial }
func (b Bankroll) Delta() int   { return b.delta }
func (b Bankroll) Current() int { return b.current }

// Spend deducts money committed to the pot. Money is never clamped; the
// server reconciles any drift.
func (b *Bankroll) Spend(amount int) {
	b.current -= amount
}

// Settle applies a finished game's score.
func (b *Bankroll) Settle(score int) {
	b.delta += score
	b.current = b.initial + b.delta
}

// Reconcile adopts the server's figure when it differs from the local one
// and reports whether anything changed.
func (b *Bankroll) Reconcile(serverMoney int) bool {
	if serverMoney == b.current {
		return false
	}
	b.current = serverMoney
	b.delta = serverMoney - b.initial
	return true
}

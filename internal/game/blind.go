package game

// BlindState records this player's forced bet for the current game.
type BlindState struct {
	Amount       int
	IsSmallBlind bool
	IsBigBlind   bool
	Posted       bool
}

// Reset clears the state at the start of every game.
func (b *BlindState) Reset() {
	*b = BlindState{}
}

// Assign records the blind amount and this player's role for a new game.
func (b *BlindState) Assign(amount int, small, big bool) {
	*b = BlindState{Amount: amount, IsSmallBlind: small, IsBigBlind: big}
}

// Owed returns the forced bet still to be posted, if any. The small blind is
// half the blind amount; both are posted with the raise action.
func (b *BlindState) Owed() (Decision, bool) {
	if b.Posted || b.Amount <= 0 {
		return Decision{}, false
	}
	switch {
	case b.IsSmallBlind:
		return Decision{Kind: Raise, Amount: b.Amount / 2}, true
	case b.IsBigBlind:
		return Decision{Kind: Raise, Amount: b.Amount}, true
	default:
		return Decision{}, false
	}
}

// MarkPosted records that the blind has been posted for this game.
func (b *BlindState) MarkPosted() {
	b.Posted = true
}

package game

import (
	"maps"
	"slices"
	"strings"

	"github.com/lox/holdem-runner/internal/protocol"
)

// Phase is the betting round a RoundState belongs to.
type Phase int

const (
	PhaseUnknown Phase = iota
	Preflop
	Flop
	Turn
	River
)

func (p Phase) String() string {
	return [...]string{"unknown", "preflop", "flop", "turn", "river"}[p]
}

// ParsePhase reads the server's free-text round name.
func ParsePhase(s string) Phase {
	switch strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)) {
	case "preflop":
		return Preflop
	case "flop":
		return Flop
	case "turn":
		return Turn
	case "river":
		return River
	default:
		return PhaseUnknown
	}
}

// SidePot is a pot that only some players can win.
type SidePot struct {
	Amount          int
	EligiblePlayers []protocol.PlayerID
}

// RoundState is the public information of the current betting round, as last
// delivered by the server. It is replaced wholesale on every update and never
// mutated in place.
type RoundState struct {
	RoundNumber    int
	Round          string
	Phase          Phase
	CommunityCards []string
	Pot            int
	CurrentPlayer  protocol.PlayerID
	CurrentBet     int
	MinRaise       int
	MaxRaise       int
	PlayerBets     map[protocol.PlayerID]int
	PlayerActions  map[protocol.PlayerID]string

	// PlayerMoney is the server's view of each stack; nil when not sent.
	PlayerMoney map[protocol.PlayerID]int
	SidePots    []SidePot
}

// NewRoundState builds a RoundState from a GameState payload. The payload's
// maps and slices are copied so the state owns its data.
func NewRoundState(gs protocol.GameState) *RoundState {
	rs := &RoundState{
		RoundNumber:    gs.RoundNum,
		Round:          gs.Round,
		Phase:          ParsePhase(gs.Round),
		CommunityCards: slices.Clone(gs.CommunityCards),
		Pot:            gs.Pot,
		CurrentPlayer:  gs.CurrentPlayer,
		CurrentBet:     gs.CurrentBet,
		MinRaise:       gs.MinRaise,
		MaxRaise:       gs.MaxRaise,
		PlayerBets:     maps.Clone(gs.PlayerBets),
		PlayerActions:  maps.Clone(gs.PlayerActions),
		PlayerMoney:    maps.Clone(gs.PlayerMoney),
	}
	if rs.PlayerBets == nil {
		rs.PlayerBets = map[protocol.PlayerID]int{}
	}
	if rs.PlayerActions == nil {
		rs.PlayerActions = map[protocol.PlayerID]string{}
	}
	for _, sp := range gs.SidePots {
		rs.SidePots = append(rs.SidePots, SidePot{
			Amount:          sp.Amount,
			EligiblePlayers: slices.Clone(sp.EligiblePlayers),
		})
	}
	return rs
}

// Owed returns how much id must add to match the current bet.
func (r *RoundState) Owed(id protocol.PlayerID) int {
	return r.CurrentBet - r.PlayerBets[id]
}

// ServerMoney returns the server's stack for id, if the server sent one.
func (r *RoundState) ServerMoney(id protocol.PlayerID) (int, bool) {
	if r == nil || r.PlayerMoney == nil {
		return 0, false
	}
	m, ok := r.PlayerMoney[id]
	return m, ok
}

// AnyoneRaised reports whether some player's last action was a raise.
func (r *RoundState) AnyoneRaised() bool {
	for _, a := range r.PlayerActions {
		if strings.EqualFold(a, "raise") {
			return true
		}
	}
	return false
}

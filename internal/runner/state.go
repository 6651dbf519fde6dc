package runner

import "fmt"

// State is the engine's position in the session lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateAwaitingGame
	StateAwaitingRoundStart
	StateInRound
	StateAwaitingAction
	StateRoundEnded
	StateGameEnded
)

var stateNames = [...]string{
	StateDisconnected:       "disconnected",
	StateConnected:          "connected",
	StateAwaitingGame:       "awaiting_game",
	StateAwaitingRoundStart: "awaiting_round_start",
	StateInRound:            "in_round",
	StateAwaitingAction:     "awaiting_action",
	StateRoundEnded:         "round_ended",
	StateGameEnded:          "game_ended",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// InGame reports whether a game is underway.
func (s State) InGame() bool {
	return s >= StateAwaitingRoundStart && s <= StateRoundEnded
}

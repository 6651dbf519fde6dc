package runner

import (
	"github.com/lox/holdem-runner/internal/game"
	"github.com/lox/holdem-runner/internal/protocol"
)

// Strategy makes the decisions. The engine calls it synchronously from its
// receive loop, so implementations need no locking but must return promptly.
// When a decision timeout is set and GetAction overruns it, the engine folds
// and makes no further calls until that GetAction returns.
type Strategy interface {
	// SetID is called once, when the server assigns this player's id.
	SetID(id protocol.PlayerID)

	// OnGameStart is called when a new game begins.
	OnGameStart(start GameStart) error

	// OnRoundStart is called at the start of each betting round.
	OnRoundStart(round *game.RoundState, money int) error

	// GetAction is called when the server asks this player to act. Errors
	// and panics turn into a fold.
	GetAction(round *game.RoundState, money int) (game.Decision, error)

	// OnRoundEnd is called at the end of each betting round.
	OnRoundEnd(round *game.RoundState, money int) error

	// OnGameEnd is called when a game finishes. round may be nil if the
	// server never sent a state for the game.
	OnGameEnd(round *game.RoundState, result GameResult) error
}

// GameStart describes a new game to the strategy.
type GameStart struct {
	StartingMoney    int
	Hands            []string
	BlindAmount      int
	BigBlindPlayer   protocol.PlayerID
	SmallBlindPlayer protocol.PlayerID
	Players          []protocol.PlayerID
}

// GameResult describes a finished game to the strategy.
type GameResult struct {
	PlayerScore        int
	AllScores          map[protocol.PlayerID]int
	ActivePlayersHands map[protocol.PlayerID][]string
}

// Observer is told about each finished game. It is optional and used for
// progress displays.
type Observer interface {
	GameFinished(GameSummary)
}

// GameSummary is passed to an Observer after each game.
type GameSummary struct {
	Game     int
	Score    int
	Money    int
	Stats    game.SessionStats
	MaxGames int
}

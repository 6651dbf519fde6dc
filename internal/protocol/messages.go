// Package protocol defines the line-delimited JSON envelope spoken with the
// game server and the payloads carried by each message kind.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the type of an envelope. The numeric codes are shared with
// the server and must stay in sync with it.
type Kind int

const (
	KindConnect Kind = iota
	KindDisconnect
	KindGameStart
	KindRoundStart
	KindRequestAction
	KindPlayerAction
	KindRoundEnd
	KindGameEnd
	KindTimeStamp
	KindGameState
	KindText
)

var kindNames = [...]string{
	KindConnect:       "Connect",
	KindDisconnect:    "Disconnect",
	KindGameStart:     "Game Start",
	KindRoundStart:    "Round Start",
	KindRequestAction: "Request Player Action",
	KindPlayerAction:  "Player Action",
	KindRoundEnd:      "Round End",
	KindGameEnd:       "Game End",
	KindTimeStamp:     "Time Stamp",
	KindGameState:     "Game State",
	KindText:          "Message",
}

// ParseKind converts a wire code into a Kind.
func ParseKind(code int) (Kind, error) {
	if code < 0 || code >= len(kindNames) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, code)
	}
	return Kind(code), nil
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ActionCode is the action identifier sent in a PlayerAction payload.
type ActionCode int

const (
	ActionFold  ActionCode = 1
	ActionCheck ActionCode = 2
	ActionCall  ActionCode = 3
	ActionRaise ActionCode = 4
	ActionAllIn ActionCode = 5
)

func (a ActionCode) String() string {
	switch a {
	case ActionFold:
		return "Fold"
	case ActionCheck:
		return "Check"
	case ActionCall:
		return "Call"
	case ActionRaise:
		return "Raise"
	case ActionAllIn:
		return "AllIn"
	default:
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
}

// PlayerID is a server-assigned player identifier. The server sends ids as
// JSON numbers but keys maps by their string form, so ids are normalised to
// strings on decode.
type PlayerID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (p *PlayerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PlayerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("player id: %w", err)
	}
	*p = PlayerID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so the server sees the same type
// it handed out.
func (p PlayerID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(p), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(p) {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// Envelope is the unit written on each line of the stream.
type Envelope struct {
	Type    *int            `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
}

// GameStart is the payload of a KindGameStart message.
type GameStart struct {
	Hands              []string   `json:"hands"`
	BlindAmount        int        `json:"blind_amount"`
	IsSmallBlind       *bool      `json:"is_small_blind,omitempty"`
	IsBigBlind         *bool      `json:"is_big_blind,omitempty"`
	SmallBlindPlayerID PlayerID   `json:"small_blind_player_id"`
	BigBlindPlayerID   PlayerID   `json:"big_blind_player_id"`
	AllPlayers         []PlayerID `json:"all_players"`
}

// BlindRoles reports whether self is the small or big blind. Explicit flags
// win; otherwise the blind player ids are compared with self.
func (g GameStart) BlindRoles(self PlayerID) (small, big bool) {
	if g.IsSmallBlind != nil {
		small = *g.IsSmallBlind
	} else {
		small = self != "" && g.SmallBlindPlayerID == self
	}
	if g.IsBigBlind != nil {
		big = *g.IsBigBlind
	} else {
		big = self != "" && g.BigBlindPlayerID == self
	}
	return small, big
}

// SidePot is one entry of the optional side_pots list.
type SidePot struct {
	Amount          int        `json:"amount"`
	EligiblePlayers []PlayerID `json:"eligible_players"`
}

// GameState is the payload of a KindGameState message.
type GameState struct {
	RoundNum       int                 `json:"round_num"`
	Round          string              `json:"round"`
	CommunityCards []string            `json:"community_cards"`
	Pot            int                 `json:"pot"`
	CurrentPlayer  PlayerID            `json:"current_player"`
	CurrentBet     int                 `json:"current_bet"`
	MinRaise       int                 `json:"min_raise"`
	MaxRaise       int                 `json:"max_raise"`
	PlayerBets     map[PlayerID]int    `json:"player_bets"`
	PlayerActions  map[PlayerID]string `json:"player_actions"`
	PlayerMoney    map[PlayerID]int    `json:"player_money,omitempty"`
	SidePots       []SidePot           `json:"side_pots,omitempty"`
}

// GameEnd is the payload of a KindGameEnd message.
type GameEnd struct {
	PlayerScore        int                   `json:"player_score"`
	AllScores          map[PlayerID]int      `json:"all_scores"`
	ActivePlayersHands map[PlayerID][]string `json:"active_players_hands"`
}

// PlayerAction is the outbound payload of a KindPlayerAction message.
type PlayerAction struct {
	PlayerID PlayerID   `json:"player_id"`
	Action   ActionCode `json:"action"`
	Amount   int        `json:"amount"`
}

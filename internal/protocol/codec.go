package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyLine is returned for blank lines, which carry no message.
	ErrEmptyLine = errors.New("empty line")

	// ErrMalformed is returned when a line is not a valid JSON envelope or
	// when a payload does not match its kind.
	ErrMalformed = errors.New("malformed message")

	// ErrMissingType is returned when an envelope has no type field.
	ErrMissingType = errors.New("message missing type")

	// ErrUnknownKind is returned for type codes outside the known set.
	ErrUnknownKind = errors.New("unknown message type")
)

// Message is a decoded envelope. The payload is kept raw and decoded on
// demand by the accessor matching the kind.
type Message struct {
	Kind    Kind
	Payload json.RawMessage
}

// Decode parses one line into a Message.
func Decode(line []byte) (Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Message{}, ErrEmptyLine
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil {
		return Message{}, ErrMissingType
	}

	kind, err := ParseKind(*env.Type)
	if err != nil {
		return Message{}, err
	}

	return Message{Kind: kind, Payload: env.Message}, nil
}

// Encode wraps a payload in an envelope and terminates it with a newline.
func Encode(kind Kind, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	code := int(kind)
	data, err := json.Marshal(Envelope{Type: &code, Message: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeAction produces the outbound PlayerAction line.
func EncodeAction(action PlayerAction) ([]byte, error) {
	return Encode(KindPlayerAction, action)
}

// ConnectID returns the player id carried by a Connect message.
func (m Message) ConnectID() (PlayerID, error) {
	var id PlayerID
	if err := m.decode(KindConnect, &id); err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: connect without player id", ErrMalformed)
	}
	return id, nil
}

// GameStart decodes a GameStart payload. A missing payload yields the zero
// value, as the earliest servers sent none.
func (m Message) GameStart() (GameStart, error) {
	var gs GameStart
	if isNull(m.Payload) {
		return gs, m.expect(KindGameStart)
	}
	err := m.decode(KindGameStart, &gs)
	return gs, err
}

// GameState decodes a GameState payload.
func (m Message) GameState() (GameState, error) {
	var gs GameState
	if isNull(m.Payload) {
		if err := m.expect(KindGameState); err != nil {
			return gs, err
		}
		return gs, fmt.Errorf("%w: game state without payload", ErrMalformed)
	}
	err := m.decode(KindGameState, &gs)
	return gs, err
}

// GameEnd decodes a GameEnd payload. Older servers send the bare score as a
// number; newer ones send an object. Fractional scores are rounded.
func (m Message) GameEnd() (GameEnd, error) {
	if err := m.expect(KindGameEnd); err != nil {
		return GameEnd{}, err
	}
	if isNull(m.Payload) {
		return GameEnd{}, nil
	}

	var score float64
	if err := json.Unmarshal(m.Payload, &score); err == nil {
		return GameEnd{PlayerScore: roundScore(score)}, nil
	}

	var raw struct {
		PlayerScore        float64               `json:"player_score"`
		AllScores          map[PlayerID]float64  `json:"all_scores"`
		ActivePlayersHands map[PlayerID][]string `json:"active_players_hands"`
	}
	if err := json.Unmarshal(m.Payload, &raw); err != nil {
		return GameEnd{}, fmt.Errorf("%w: %s payload: %v", ErrMalformed, m.Kind, err)
	}

	end := GameEnd{
		PlayerScore:        roundScore(raw.PlayerScore),
		ActivePlayersHands: raw.ActivePlayersHands,
	}
	if raw.AllScores != nil {
		end.AllScores = make(map[PlayerID]int, len(raw.AllScores))
		for id, s := range raw.AllScores {
			end.AllScores[id] = roundScore(s)
		}
	}
	return end, nil
}

// Text returns the payload of a Text message as a printable string.
func (m Message) Text() string {
	var s string
	if err := json.Unmarshal(m.Payload, &s); err == nil {
		return s
	}
	return string(m.Payload)
}

func (m Message) expect(kind Kind) error {
	if m.Kind != kind {
		return fmt.Errorf("%w: want %s payload, have %s", ErrMalformed, kind, m.Kind)
	}
	return nil
}

func (m Message) decode(kind Kind, v any) error {
	if err := m.expect(kind); err != nil {
		return err
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformed, kind, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func roundScore(f float64) int {
	return int(math.Round(f))
}

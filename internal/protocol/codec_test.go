package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKinds(t *testing.T) {
	for code := 0; code <= 10; code++ {
		line := []byte(fmt.Sprintf(`{"type": %d, "message": null}`, code))
		msg, err := Decode(line)
		require.NoError(t, err, "code %d", code)
		assert.Equal(t, Kind(code), msg.Kind)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"empty", "   ", ErrEmptyLine},
		{"not json", "hello", ErrMalformed},
		{"truncated", `{"type": 2, "message": {`, ErrMalformed},
		{"missing type", `{"message": "hi"}`, ErrMissingType},
		{"unknown code", `{"type": 42, "message": null}`, ErrUnknownKind},
		{"negative code", `{"type": -1}`, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.line))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Request Player Action", KindRequestAction.String())
	assert.Equal(t, "Message", KindText.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestConnectID(t *testing.T) {
	msg, err := Decode([]byte(`{"type": 0, "message": 7}`))
	require.NoError(t, err)
	id, err := msg.ConnectID()
	require.NoError(t, err)
	assert.Equal(t, PlayerID("7"), id)

	msg, err = Decode([]byte(`{"type": 0, "message": "p-7"}`))
	require.NoError(t, err)
	id, err = msg.ConnectID()
	require.NoError(t, err)
	assert.Equal(t, PlayerID("p-7"), id)

	msg, err = Decode([]byte(`{"type": 0, "message": null}`))
	require.NoError(t, err)
	_, err = msg.ConnectID()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestGameStartBlindRoles(t *testing.T) {
	line := `{"type": 2, "message": {"hands": ["As", "Kd"], "blind_amount": 10,
		"small_blind_player_id": 1, "big_blind_player_id": 2, "all_players": [1, 2, 3]}}`
	msg, err := Decode([]byte(line))
	require.NoError(t, err)

	gs, err := msg.GameStart()
	require.NoError(t, err)
	assert.Equal(t, []string{"As", "Kd"}, gs.Hands)
	assert.Equal(t, 10, gs.BlindAmount)
	assert.Equal(t, []PlayerID{"1", "2", "3"}, gs.AllPlayers)

	small, big := gs.BlindRoles("1")
	assert.True(t, small)
	assert.False(t, big)

	small, big = gs.BlindRoles("3")
	assert.False(t, small)
	assert.False(t, big)

	// explicit flags override the id comparison
	line = `{"type": 2, "message": {"blind_amount": 10, "is_small_blind": false, "is_big_blind": true, "small_blind_player_id": 1}}`
	msg, err = Decode([]byte(line))
	require.NoError(t, err)
	gs, err = msg.GameStart()
	require.NoError(t, err)
	small, big = gs.BlindRoles("1")
	assert.False(t, small)
	assert.True(t, big)
}

func TestGameStartWithoutPayload(t *testing.T) {
	msg, err := Decode([]byte(`{"type": 2}`))
	require.NoError(t, err)
	gs, err := msg.GameStart()
	require.NoError(t, err)
	assert.Zero(t, gs.BlindAmount)
}

func TestGameState(t *testing.T) {
	line := `{"type": 9, "message": {"round_num": 2, "round": "Flop", "community_cards": ["2h", "7c", "Jd"],
		"pot": 60, "current_player": 1, "current_bet": 20, "min_raise": 40, "max_raise": 980,
		"player_bets": {"1": 0, "2": 20}, "player_actions": {"2": "Raise"},
		"player_money": {"1": 990, "2": 970},
		"side_pots": [{"amount": 30, "eligible_players": [1, 2]}]}}`
	msg, err := Decode([]byte(line))
	require.NoError(t, err)

	gs, err := msg.GameState()
	require.NoError(t, err)
	assert.Equal(t, 2, gs.RoundNum)
	assert.Equal(t, "Flop", gs.Round)
	assert.Equal(t, PlayerID("1"), gs.CurrentPlayer)
	assert.Equal(t, 20, gs.PlayerBets["2"])
	assert.Equal(t, "Raise", gs.PlayerActions["2"])
	assert.Equal(t, 990, gs.PlayerMoney["1"])
	require.Len(t, gs.SidePots, 1)
	assert.Equal(t, []PlayerID{"1", "2"}, gs.SidePots[0].EligiblePlayers)

	// payload of the wrong shape
	msg, err = Decode([]byte(`{"type": 9, "message": "nope"}`))
	require.NoError(t, err)
	_, err = msg.GameState()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestGameEnd(t *testing.T) {
	t.Run("bare score", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type": 7, "message": 49.6}`))
		require.NoError(t, err)
		end, err := msg.GameEnd()
		require.NoError(t, err)
		assert.Equal(t, 50, end.PlayerScore)
		assert.Nil(t, end.AllScores)
	})

	t.Run("object", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type": 7, "message": {"player_score": -20,
			"all_scores": {"1": -20, "2": 20.0}, "active_players_hands": {"2": ["Ah", "Ad"]}}}`))
		require.NoError(t, err)
		end, err := msg.GameEnd()
		require.NoError(t, err)
		assert.Equal(t, -20, end.PlayerScore)
		assert.Equal(t, map[PlayerID]int{"1": -20, "2": 20}, end.AllScores)
		assert.Equal(t, []string{"Ah", "Ad"}, end.ActivePlayersHands["2"])
	})

	t.Run("wrong kind", func(t *testing.T) {
		msg := Message{Kind: KindText, Payload: json.RawMessage(`1`)}
		_, err := msg.GameEnd()
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestText(t *testing.T) {
	msg, err := Decode([]byte(`{"type": 10, "message": "waiting for players"}`))
	require.NoError(t, err)
	assert.Equal(t, "waiting for players", msg.Text())
}

func TestEncodeAction(t *testing.T) {
	data, err := EncodeAction(PlayerAction{PlayerID: "3", Action: ActionCall, Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, `{"type":5,"message":{"player_id":3,"action":3,"amount":20}}`+"\n", string(data))

	data, err = EncodeAction(PlayerAction{PlayerID: "bot-a", Action: ActionFold})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":5,"message":{"player_id":"bot-a","action":1,"amount":0}}`, string(data))

	msg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, KindPlayerAction, msg.Kind)
}

func TestEncodeActionNonCanonicalNumericIDs(t *testing.T) {
	for _, id := range []PlayerID{"007", "+5", "-0"} {
		data, err := EncodeAction(PlayerAction{PlayerID: id, Action: ActionCheck})
		require.NoError(t, err, "id %q", id)
		assert.JSONEq(t, `{"type":5,"message":{"player_id":"`+string(id)+`","action":2,"amount":0}}`, string(data))
	}

	data, err := EncodeAction(PlayerAction{PlayerID: "-12", Action: ActionCheck})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"player_id":-12`)
}

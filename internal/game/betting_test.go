package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-runner/internal/protocol"
)

const self protocol.PlayerID = "1"

func roundWith(currentBet, selfBet int) *RoundState {
	return &RoundState{
		CurrentBet: currentBet,
		PlayerBets: map[protocol.PlayerID]int{self: selfBet, "2": currentBet},
	}
}

func TestActionKindCode(t *testing.T) {
	assert.Equal(t, protocol.ActionFold, Fold.Code())
	assert.Equal(t, protocol.ActionCheck, Check.Code())
	assert.Equal(t, protocol.ActionCall, Call.Code())
	assert.Equal(t, protocol.ActionRaise, Raise.Code())
	assert.Equal(t, protocol.ActionAllIn, AllIn.Code())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		round    *RoundState
		money    int
		want     Decision
		wantErr  error
	}{
		{"negative amount", Decision{Raise, -1}, roundWith(0, 0), 100, ForcedFold, ErrNegativeAmount},
		{"negative fold", Decision{Fold, -5}, roundWith(0, 0), 100, ForcedFold, ErrNegativeAmount},
		{"fold always", Decision{Fold, 0}, roundWith(50, 0), 0, Decision{Fold, 0}, nil},
		{"fold without round", Decision{Fold, 0}, nil, 100, Decision{Fold, 0}, nil},
		{"fold drops amount", Decision{Fold, 30}, roundWith(0, 0), 100, Decision{Fold, 0}, nil},
		{"check no bet", Decision{Check, 0}, roundWith(0, 0), 100, Decision{Check, 0}, nil},
		{"check facing bet", Decision{Check, 0}, roundWith(20, 0), 100, ForcedFold, ErrBetOutstanding},
		{"check without round", Decision{Check, 0}, nil, 100, ForcedFold, ErrNoRoundState},
		{"call owed", Decision{Call, 20}, roundWith(20, 0), 990, Decision{Call, 20}, nil},
		{"call ignores proposed amount", Decision{Call, 3}, roundWith(20, 5), 990, Decision{Call, 15}, nil},
		{"call nothing owed", Decision{Call, 0}, roundWith(20, 20), 990, ForcedFold, ErrNothingToCall},
		{"call no bet", Decision{Call, 0}, roundWith(0, 0), 990, ForcedFold, ErrNothingToCall},
		{"call exactly all money", Decision{Call, 0}, roundWith(50, 0), 50, Decision{Call, 50}, nil},
		{"call short", Decision{Call, 0}, roundWith(50, 0), 49, ForcedFold, ErrInsufficientMoney},
		{"raise too small", Decision{Raise, 15}, roundWith(20, 0), 990, ForcedFold, ErrRaiseTooSmall},
		{"raise counts committed", Decision{Raise, 15}, roundWith(20, 5), 990, Decision{Raise, 15}, nil},
		{"raise over", Decision{Raise, 100}, roundWith(20, 0), 990, Decision{Raise, 100}, nil},
		{"raise beyond money", Decision{Raise, 1000}, roundWith(20, 0), 990, ForcedFold, ErrInsufficientMoney},
		{"allin exact", Decision{AllIn, 990}, roundWith(20, 0), 990, Decision{AllIn, 990}, nil},
		{"allin one short", Decision{AllIn, 989}, roundWith(20, 0), 990, ForcedFold, ErrAllInMismatch},
		{"allin one over", Decision{AllIn, 991}, roundWith(20, 0), 990, ForcedFold, ErrAllInMismatch},
		{"unknown kind", Decision{ActionKind(9), 0}, roundWith(0, 0), 100, ForcedFold, ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.decision, tt.round, self, tt.money)
			assert.Equal(t, tt.want, got)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)

			var rejectErr *RejectError
			require.ErrorAs(t, err, &rejectErr)
			assert.Equal(t, tt.decision, rejectErr.Decision)
		})
	}
}

func TestValidateCheckProperty(t *testing.T) {
	for bet := 0; bet <= 200; bet += 10 {
		for selfBet := 0; selfBet <= bet; selfBet += 5 {
			_, err := Validate(Decision{Check, 0}, roundWith(bet, selfBet), self, 1000)
			if bet == 0 {
				assert.NoError(t, err, "bet=%d", bet)
			} else {
				assert.ErrorIs(t, err, ErrBetOutstanding, "bet=%d", bet)
			}
		}
	}
}

func TestValidateCallProperty(t *testing.T) {
	for bet := 0; bet <= 100; bet += 10 {
		for selfBet := 0; selfBet <= 100; selfBet += 10 {
			for _, money := range []int{0, 30, 100} {
				round := roundWith(bet, selfBet)
				owed := bet - selfBet
				for _, proposed := range []int{0, owed, 7} {
					if proposed < 0 {
						continue
					}
					got, err := Validate(Decision{Call, proposed}, round, self, money)
					if owed > 0 && owed <= money {
						require.NoError(t, err)
						assert.Equal(t, owed, got.Amount)
					} else {
						assert.Error(t, err)
					}
				}
			}
		}
	}
}

func TestRejectErrorMessage(t *testing.T) {
	_, err := Validate(Decision{Raise, 15}, roundWith(20, 0), self, 990)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid raise 15")
}

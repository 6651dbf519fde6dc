package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-runner/internal/protocol"
)

// ActionKind is the kind of a betting decision.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
	AllIn
)

func (a ActionKind) String() string {
	if a < Fold || a > AllIn {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// Code maps the kind to its wire action code.
func (a ActionKind) Code() protocol.ActionCode {
	return protocol.ActionCode(int(a) + 1)
}

// Decision is an action chosen by a strategy.
type Decision struct {
	Kind   ActionKind
	Amount int
}

func (d Decision) String() string {
	return fmt.Sprintf("%s %d", d.Kind, d.Amount)
}

// ForcedFold is transmitted in place of a rejected decision.
var ForcedFold = Decision{Kind: Fold}

var (
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrNoRoundState      = errors.New("no round state")
	ErrBetOutstanding    = errors.New("cannot check while a bet is outstanding")
	ErrNothingToCall     = errors.New("nothing to call")
	ErrInsufficientMoney = errors.New("insufficient money")
	ErrRaiseTooSmall     = errors.New("raise does not reach the current bet")
	ErrAllInMismatch     = errors.New("all-in amount must equal remaining money")
	ErrUnknownAction     = errors.New("unknown action")
)

// RejectError explains why a decision was refused.
type RejectError struct {
	Decision Decision
	Reason   error
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Decision, e.Reason)
}

func (e *RejectError) Unwrap() error {
	return e.Reason
}

func reject(d Decision, reason error) (Decision, error) {
	return ForcedFold, &RejectError{Decision: d, Reason: reason}
}

// Validate checks a decision against the round before it is sent. It returns
// the decision to transmit, which differs from the input for Call (the owed
// amount is always sent) and for Fold/Check (always sent with amount 0). On
// rejection it returns ForcedFold and a *RejectError.
func Validate(d Decision, round *RoundState, self protocol.PlayerID, money int) (Decision, error) {
	if d.Amount < 0 {
		return reject(d, ErrNegativeAmount)
	}

	if d.Kind == Fold {
		return Decision{Kind: Fold}, nil
	}

	if round == nil {
		return reject(d, ErrNoRoundState)
	}

	committed := round.PlayerBets[self]

	switch d.Kind {
	case Check:
		if round.CurrentBet != 0 {
			return reject(d, ErrBetOutstanding)
		}
		return Decision{Kind: Check}, nil

	case Call:
		owed := round.CurrentBet - committed
		if owed <= 0 {
			return reject(d, ErrNothingToCall)
		}
		if owed > money {
			return reject(d, fmt.Errorf("%w: owe %d, have %d", ErrInsufficientMoney, owed, money))
		}
		return Decision{Kind: Call, Amount: owed}, nil

	case Raise:
		if d.Amount+committed < round.CurrentBet {
			return reject(d, fmt.Errorf("%w: %d+%d < %d", ErrRaiseTooSmall, d.Amount, committed, round.CurrentBet))
		}
		if d.Amount > money {
			return reject(d, fmt.Errorf("%w: raise %d, have %d", ErrInsufficientMoney, d.Amount, money))
		}
		return d, nil

	case AllIn:
		if d.Amount != money {
			return reject(d, fmt.Errorf("%w: %d != %d", ErrAllInMismatch, d.Amount, money))
		}
		return d, nil

	default:
		return reject(d, ErrUnknownAction)
	}
}

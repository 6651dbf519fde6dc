package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/holdem-runner/internal/runner"
)

// Sender delivers messages to a running program; *tea.Program is one.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards finished games from the engine to the display.
type ProgramObserver struct {
	Sender Sender
}

func (o ProgramObserver) GameFinished(s runner.GameSummary) {
	o.Sender.Send(GameFinishedMsg(s))
}

var _ runner.Observer = ProgramObserver{}

// Package tui renders live progress of a run in the terminal.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/holdem-runner/internal/runner"
)

const (
	recentGames   = 8
	maxBarWidth   = 60
	defaultBarLen = 40
)

// GameFinishedMsg reports a finished game to the model.
type GameFinishedMsg runner.GameSummary

// DoneMsg ends the program once the run is over.
type DoneMsg struct {
	Err error
}

// Model shows a progress bar when the number of games is bounded and a
// spinner otherwise, with the running score below.
type Model struct {
	maxGames int
	onQuit   func()

	progress progress.Model
	spinner  spinner.Model

	last    runner.GameSummary
	recent  []int
	started bool
	done    bool
	err     error
}

// NewModel creates the model. onQuit, if set, is called when the user
// interrupts the display and should cancel the run.
func NewModel(maxGames int, onQuit func()) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = defaultBarLen

	return Model{
		maxGames: maxGames,
		onQuit:   onQuit,
		progress: bar,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	if m.maxGames > 0 {
		return nil
	}
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil

	case GameFinishedMsg:
		m.started = true
		m.last = runner.GameSummary(msg)
		m.recent = append(m.recent, msg.Score)
		if len(m.recent) > recentGames {
			m.recent = m.recent[len(m.recent)-recentGames:]
		}
		if m.maxGames > 0 {
			return m, m.progress.SetPercent(m.fraction())
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) fraction() float64 {
	if m.maxGames <= 0 {
		return 0
	}
	return min(float64(m.last.Stats.GamesPlayed)/float64(m.maxGames), 1)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("holdem-runner"))
	b.WriteString("\n\n")

	games := strconv.Itoa(m.last.Stats.GamesPlayed)
	if m.maxGames > 0 {
		b.WriteString(m.progress.View())
		games += "/" + strconv.Itoa(m.maxGames)
	} else if !m.done {
		b.WriteString(m.spinner.View() + " playing")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Games:  "), ValueStyle.Render(games))
	if m.started {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Last:   "), Score(m.last.Score))
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Total:  "), Score(m.last.Stats.TotalScore))
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Average:"), ValueStyle.Render(fmt.Sprintf("%.1f", m.last.Stats.Average())))
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Money:  "), ValueStyle.Render(strconv.Itoa(m.last.Money)))
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Recent: "), m.recentView())
	}

	b.WriteString("\n")
	switch {
	case m.done && m.err != nil:
		b.WriteString(LossStyle.Render("Run failed: " + m.err.Error()))
	case m.done:
		b.WriteString(WinStyle.Render("Run complete"))
	default:
		b.WriteString(HelpStyle.Render("q or ctrl+c to stop"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) recentView() string {
	parts := make([]string, len(m.recent))
	for i, s := range m.recent {
		parts[i] = Score(s)
	}
	return strings.Join(parts, " ")
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

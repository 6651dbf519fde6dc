package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/holdem-runner/internal/config"
	"github.com/lox/holdem-runner/internal/results"
	"github.com/lox/holdem-runner/internal/statistics"
	"github.com/lox/holdem-runner/internal/tui"
)

// ResultsCmd groups the result file utilities.
type ResultsCmd struct {
	Show  ResultsShowCmd  `cmd:"" help:"Summarise a result file"`
	Clear ResultsClearCmd `cmd:"" help:"Truncate a result file"`
}

type ResultsShowCmd struct {
	File    string `arg:"" optional:"" help:"Result file (defaults to the output directory)" type:"path"`
	NoColor bool   `help:"Disable colours"`
}

func (cmd ResultsShowCmd) Run() error {
	path := resultPath(cmd.File)
	report, err := results.ReadFile(path)
	if err != nil {
		return err
	}
	if cmd.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	renderReport(os.Stdout, path, report)
	return nil
}

type ResultsClearCmd struct {
	File string `arg:"" optional:"" help:"Result file (defaults to the output directory)" type:"path"`
}

func (cmd ResultsClearCmd) Run() error {
	path := resultPath(cmd.File)
	if err := results.Clear(path); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", path)
	return nil
}

func resultPath(file string) string {
	if file != "" {
		return file
	}
	return config.DefaultResultFile()
}

func renderReport(w io.Writer, path string, report results.Report) {
	fmt.Fprintln(w, tui.HeaderStyle.Render(path))

	if len(report.Games) == 0 && len(report.Summaries) == 0 {
		fmt.Fprintln(w, tui.HelpStyle.Render("No results"))
		return
	}

	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", tui.LabelStyle.Render(label), value)
	}

	if len(report.Games) > 0 {
		var scores statistics.Scores
		for _, g := range report.Games {
			scores.Add(g.PlayerScore)
		}
		lo, hi := scores.ConfidenceInterval95()

		row("Games:  ", tui.ValueStyle.Render(fmt.Sprintf("%d (%d won, %d lost)", scores.Games, scores.Wins, scores.Losses)))
		row("Total:  ", tui.Score(report.TotalScore()))
		row("Average:", tui.ValueStyle.Render(fmt.Sprintf("%.1f ± %.1f (95%% CI %.1f to %.1f)", scores.Mean(), hi-scores.Mean(), lo, hi)))
		row("Median: ", tui.ValueStyle.Render(fmt.Sprintf("%.1f", scores.Median())))
		row("Best:   ", tui.Score(int(scores.Best())))
		row("Worst:  ", tui.Score(int(scores.Worst())))
	}

	for i, s := range report.Summaries {
		row(fmt.Sprintf("Run %d:  ", i+1), fmt.Sprintf("%s games, total %s, average %s",
			tui.ValueStyle.Render(strconv.Itoa(s.Games)),
			tui.Score(s.Total),
			tui.ValueStyle.Render(fmt.Sprintf("%.1f", s.Average()))))
	}

	if n := len(report.Unparsed); n > 0 {
		fmt.Fprintln(w, tui.HelpStyle.Render(fmt.Sprintf("%d unrecognised lines skipped", n)))
	}
}

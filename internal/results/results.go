// Package results records finished games to the result log read by the
// external result-inspection tooling. The line formats are a compatibility
// surface and must not change.
package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/holdem-runner/internal/protocol"
)

// GameRecord is one completed game. PlayerID is not part of the text
// format and is empty for records read back from a file.
type GameRecord struct {
	PlayerID    protocol.PlayerID
	Game        int
	PlayerScore int
	AllScores   map[protocol.PlayerID]int
}

// Summary closes a continuous run.
type Summary struct {
	PlayerID protocol.PlayerID
	Games    int
	Total    int
}

// Average returns the mean score per game.
func (s Summary) Average() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Total) / float64(s.Games)
}

// Sink receives game records and run summaries.
type Sink interface {
	RecordGame(ctx context.Context, rec GameRecord) error
	RecordSummary(ctx context.Context, sum Summary) error
	Close() error
}

// FormatGameLine renders a game record.
func FormatGameLine(rec GameRecord) string {
	return fmt.Sprintf("Game_%d: Player score: %d, All scores: %s",
		rec.Game, rec.PlayerScore, formatScores(rec.AllScores))
}

// FormatSummaryLine renders a run summary.
func FormatSummaryLine(sum Summary) string {
	return fmt.Sprintf("CONTINUOUS_MODE / Games: %d, / Total: %d, / Average: %s",
		sum.Games, sum.Total, formatFloat(sum.Average()))
}

// formatScores writes a score map the way the result tooling expects:
// {'1': 50, '2': -50}, with keys in a stable order.
func formatScores(scores map[protocol.PlayerID]int) string {
	ids := make([]protocol.PlayerID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })

	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "'%s': %d", id, scores[id])
	}
	b.WriteByte('}')
	return b.String()
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b protocol.PlayerID) bool {
	na, errA := strconv.Atoi(string(a))
	nb, errB := strconv.Atoi(string(b))
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// formatFloat always keeps a fractional part: 15 renders as "15.0".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Multi fans records out to several sinks, collecting every failure.
type Multi []Sink

func (m Multi) RecordGame(ctx context.Context, rec GameRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.RecordGame(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordSummary(ctx context.Context, sum Summary) error {
	var errs []error
	for _, s := range m {
		if err := s.RecordSummary(ctx, sum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package results

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-runner/internal/protocol"
)

func TestFormatGameLine(t *testing.T) {
	line := FormatGameLine(GameRecord{
		Game:        3,
		PlayerScore: 50,
		AllScores:   map[protocol.PlayerID]int{"10": 0, "2": -50, "1": 50},
	})
	assert.Equal(t, "Game_3: Player score: 50, All scores: {'1': 50, '2': -50, '10': 0}", line)

	line = FormatGameLine(GameRecord{Game: 1, PlayerScore: -5})
	assert.Equal(t, "Game_1: Player score: -5, All scores: {}", line)
}

func TestFormatSummaryLine(t *testing.T) {
	tests := []struct {
		sum  Summary
		want string
	}{
		{Summary{Games: 2, Total: 30}, "CONTINUOUS_MODE / Games: 2, / Total: 30, / Average: 15.0"},
		{Summary{Games: 4, Total: 50}, "CONTINUOUS_MODE / Games: 4, / Total: 50, / Average: 12.5"},
		{Summary{Games: 2, Total: -20}, "CONTINUOUS_MODE / Games: 2, / Total: -20, / Average: -10.0"},
		{Summary{Games: 0, Total: 0}, "CONTINUOUS_MODE / Games: 0, / Total: 0, / Average: 0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSummaryLine(tt.sum))
	}
}

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "game_result.log")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.RecordGame(ctx, GameRecord{Game: 1, PlayerScore: 50, AllScores: map[protocol.PlayerID]int{"1": 50, "2": -50}}))
	require.NoError(t, sink.RecordGame(ctx, GameRecord{Game: 2, PlayerScore: -20, AllScores: map[protocol.PlayerID]int{"1": -20, "2": 20}}))
	require.NoError(t, sink.RecordSummary(ctx, Summary{Games: 2, Total: 30}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Game_1: Player score: 50, All scores: {'1': 50, '2': -50}\n"+
			"Game_2: Player score: -20, All scores: {'1': -20, '2': 20}\n"+
			"CONTINUOUS_MODE / Games: 2, / Total: 30, / Average: 15.0\n",
		string(data))

	report, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, report.Games, 2)
	assert.Equal(t, 2, report.Games[1].Game)
	assert.Equal(t, map[protocol.PlayerID]int{"1": -20, "2": 20}, report.Games[1].AllScores)
	assert.Equal(t, []Summary{{Games: 2, Total: 30}}, report.Summaries)
	assert.Equal(t, 30, report.TotalScore())
	assert.Empty(t, report.Unparsed)
}

func TestReadFileLegacyAndJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_result.log")
	require.NoError(t, os.WriteFile(path, []byte("25\n\nsomething else\nGame_1: Player score: 5, All scores: {bad}\n"), 0o644))

	report, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, report.Games, 1)
	assert.Equal(t, 25, report.Games[0].PlayerScore)
	assert.Equal(t, 0, report.Games[0].Game)
	assert.Len(t, report.Unparsed, 2)
}

func TestReadFileMissing(t *testing.T) {
	report, err := ReadFile(filepath.Join(t.TempDir(), "nope.log"))
	require.NoError(t, err)
	assert.Empty(t, report.Games)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_result.log")
	require.NoError(t, os.WriteFile(path, []byte("Game_1: Player score: 5, All scores: {}\n"), 0o600))

	require.NoError(t, Clear(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, Clear(filepath.Join(t.TempDir(), "missing.log")))
}

type failingSink struct{ err error }

func (f failingSink) RecordGame(context.Context, GameRecord) error { return f.err }
func (f failingSink) RecordSummary(context.Context, Summary) error { return f.err }
func (f failingSink) Close() error                                 { return nil }

func TestMultiCollectsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_result.log")
	boom := errors.New("boom")
	m := Multi{failingSink{boom}, NewFileSink(path)}

	err := m.RecordGame(context.Background(), GameRecord{Game: 1, PlayerScore: 1})
	require.ErrorIs(t, err, boom)

	// the healthy sink still got the line
	report, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, report.Games, 1)

	require.NoError(t, m.Close())
}

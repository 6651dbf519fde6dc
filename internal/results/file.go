package results

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/lox/holdem-runner/internal/fileutil"
	"github.com/lox/holdem-runner/internal/protocol"
)

// FileSink appends result lines to a text file.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink appending to path. The file and its directory
// are created on first write.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) RecordGame(_ context.Context, rec GameRecord) error {
	return s.append(FormatGameLine(rec))
}

func (s *FileSink) RecordSummary(_ context.Context, sum Summary) error {
	return s.append(FormatSummaryLine(sum))
}

func (s *FileSink) Close() error { return nil }

func (s *FileSink) append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fileutil.AppendLine(s.path, line)
}

var (
	gameLineRE    = regexp.MustCompile(`^Game_(\d+): Player score: (-?\d+), All scores: \{(.*)\}$`)
	summaryLineRE = regexp.MustCompile(`^CONTINUOUS_MODE / Games: (\d+), / Total: (-?\d+), / Average: (\S+)$`)
	scoreEntryRE  = regexp.MustCompile(`^'([^']*)': (-?\d+)$`)
)

// Report is the parsed content of a result file.
type Report struct {
	Games     []GameRecord
	Summaries []Summary

	// Unparsed holds lines in neither format, kept for display.
	Unparsed []string
}

// TotalScore sums the player score over every game line.
func (r Report) TotalScore() int {
	total := 0
	for _, g := range r.Games {
		total += g.PlayerScore
	}
	return total
}

// ReadFile parses a result file. A missing file yields an empty report.
// Bare integer lines, written by older runners, become unnumbered games.
func ReadFile(path string) (Report, error) {
	var report Report

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := gameLineRE.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			score, _ := strconv.Atoi(m[2])
			scores, err := parseScores(m[3])
			if err != nil {
				report.Unparsed = append(report.Unparsed, line)
				continue
			}
			report.Games = append(report.Games, GameRecord{Game: n, PlayerScore: score, AllScores: scores})
			continue
		}

		if m := summaryLineRE.FindStringSubmatch(line); m != nil {
			games, _ := strconv.Atoi(m[1])
			total, _ := strconv.Atoi(m[2])
			report.Summaries = append(report.Summaries, Summary{Games: games, Total: total})
			continue
		}

		if score, err := strconv.Atoi(line); err == nil {
			report.Games = append(report.Games, GameRecord{PlayerScore: score})
			continue
		}

		report.Unparsed = append(report.Unparsed, line)
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("read results: %w", err)
	}
	return report, nil
}

func parseScores(body string) (map[protocol.PlayerID]int, error) {
	scores := map[protocol.PlayerID]int{}
	body = strings.TrimSpace(body)
	if body == "" {
		return scores, nil
	}
	for _, entry := range strings.Split(body, ", ") {
		m := scoreEntryRE.FindStringSubmatch(strings.TrimSpace(entry))
		if m == nil {
			return nil, fmt.Errorf("bad score entry %q", entry)
		}
		n, _ := strconv.Atoi(m[2])
		scores[protocol.PlayerID(m[1])] = n
	}
	return scores, nil
}

// Clear truncates the result file. A missing file is left missing.
func Clear(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat results: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return fileutil.WriteFileAtomic(path, nil, info.Mode().Perm())
}

package results

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// PostgresSink stores results in Postgres alongside the text log.
type PostgresSink struct {
	pool  *pgxpool.Pool
	runID string
}

// OpenPostgres connects to dsn and creates the result tables if missing.
// runID tags every row written by this process.
func OpenPostgres(ctx context.Context, dsn, runID string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect results database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping results database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate results database: %w", err)
	}
	return &PostgresSink{pool: pool, runID: runID}, nil
}

func (s *PostgresSink) RecordGame(ctx context.Context, rec GameRecord) error {
	scores := make(map[string]int, len(rec.AllScores))
	for id, v := range rec.AllScores {
		scores[string(id)] = v
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_results (run_id, player_id, game, player_score, all_scores)
		VALUES ($1, $2, $3, $4, $5)
	`, s.runID, string(rec.PlayerID), rec.Game, rec.PlayerScore, string(raw))
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

func (s *PostgresSink) RecordSummary(ctx context.Context, sum Summary) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_summaries (run_id, player_id, games, total, average)
		VALUES ($1, $2, $3, $4, $5)
	`, s.runID, string(sum.PlayerID), sum.Games, sum.Total, sum.Average())
	if err != nil {
		return fmt.Errorf("insert session summary: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/arena/internal/spawn"
)

// Run is a stored finished run.
type Run struct {
	ID         int64
	StartLives int
	Deaths     int
	Coins      int
	Duration   time.Duration
	EndedAt    time.Time
}

// RunRepository handles run-history persistence
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run repository
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save stores a finished run and returns its ID.
func (r *RunRepository) Save(ctx context.Context, s spawn.RunSummary) (int64, error) {
	endedAt := s.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO runs (start_lives, deaths, coins, duration_ms, ended_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		s.StartLives, s.Deaths, s.Coins, s.Duration.Milliseconds(), endedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit most recent runs, newest first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]Run, error) {
	return r.query(ctx,
		`SELECT id, start_lives, deaths, coins, duration_ms, ended_at
		 FROM runs
		 ORDER BY ended_at DESC, id DESC
		 LIMIT $1`, limit)
}

// Best returns up to limit runs with the most coins.
func (r *RunRepository) Best(ctx context.Context, limit int) ([]Run, error) {
	return r.query(ctx,
		`SELECT id, start_lives, deaths, coins, duration_ms, ended_at
		 FROM runs
		 ORDER BY coins DESC, duration_ms DESC, id
		 LIMIT $1`, limit)
}

// Count returns number of stored runs.
func (r *RunRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

func (r *RunRepository) query(ctx context.Context, sql string, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("loading runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run        Run
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &run.StartLives, &run.Deaths, &run.Coins, &durationMs, &run.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}

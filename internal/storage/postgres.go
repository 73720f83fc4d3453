package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists analyses in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		image_key TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("migrate analyses table: %w", err)
	}
	return nil
}

// SaveAnalysis stores the provided analysis record.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, input Analysis) (Analysis, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	resultJSON, err := json.Marshal(input.Result)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal result: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, image_key, image_url, provider, model, result, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		input.ID, input.ImageKey, input.ImageURL, input.Provider, input.Model, resultJSON, input.CreatedAt); err != nil {
		return Analysis{}, fmt.Errorf("insert analysis: %w", err)
	}

	return input, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (s *PostgresStore) ListAnalyses(ctx context.Context) ([]Analysis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, image_key, image_url, provider, model, result, created_at FROM analyses ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		item, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, item)
	}

	return analyses, rows.Err()
}

// GetAnalysis returns a single analysis by id.
func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, image_key, image_url, provider, model, result, created_at FROM analyses WHERE id = $1`, id)

	item, err := scanAnalysis(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return item, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanAnalysis(scan func(dest ...any) error) (Analysis, error) {
	var (
		item       Analysis
		resultJSON []byte
	)
	if err := scan(&item.ID, &item.ImageKey, &item.ImageURL, &item.Provider, &item.Model, &resultJSON, &item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Analysis{}, pgx.ErrNoRows
		}
		return Analysis{}, fmt.Errorf("scan analysis: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &item.Result); err != nil {
		return Analysis{}, fmt.Errorf("decode stored result: %w", err)
	}
	return item, nil
}

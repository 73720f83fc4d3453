package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leafsight/internal/analysis"
)

// ErrNotFound indicates that an analysis could not be located in the backing store.
var ErrNotFound = errors.New("analysis not found")

// Analysis is one recorded detection run.
type Analysis struct {
	ID        string          `json:"id"`
	ImageKey  string          `json:"image_key,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Result    analysis.Result `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store defines the persistence behaviors the API relies on.
type Store interface {
	SaveAnalysis(ctx context.Context, input Analysis) (Analysis, error)
	ListAnalyses(ctx context.Context) ([]Analysis, error)
	GetAnalysis(ctx context.Context, id string) (Analysis, error)
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

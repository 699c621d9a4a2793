package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/salesbonus/internal/contracts"
)

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS sales;

	CREATE TABLE IF NOT EXISTS sales.analysis_runs (
		id            UUID PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL,
		dataset_hash  TEXT NOT NULL,
		policy_id     TEXT NOT NULL,
		policy_hash   TEXT NOT NULL,
		seller_count  INTEGER NOT NULL,
		total_payout  NUMERIC(18, 2) NOT NULL,
		sellers       JSONB NOT NULL,
		bonuses       JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at
		ON sales.analysis_runs (created_at DESC);
`

// DefaultListLimit is used when ListRuns gets a non-positive limit
const DefaultListLimit = 20

// Repository persists analysis runs in PostgreSQL
// ⭐ SSOT: 분석 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

var _ contracts.RunRepository = (*Repository)(nil)

// NewRepository creates a new run repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the runs table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun inserts or replaces a run
func (r *Repository) SaveRun(ctx context.Context, run *contracts.Run) error {
	sellersJSON, err := json.Marshal(run.Sellers)
	if err != nil {
		return fmt.Errorf("failed to marshal sellers: %w", err)
	}
	bonusesJSON, err := json.Marshal(run.Bonuses)
	if err != nil {
		return fmt.Errorf("failed to marshal bonuses: %w", err)
	}

	query := `
		INSERT INTO sales.analysis_runs (
			id, created_at, dataset_hash, policy_id, policy_hash,
			seller_count, total_payout, sellers, bonuses
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			dataset_hash = EXCLUDED.dataset_hash,
			policy_id = EXCLUDED.policy_id,
			policy_hash = EXCLUDED.policy_hash,
			seller_count = EXCLUDED.seller_count,
			total_payout = EXCLUDED.total_payout,
			sellers = EXCLUDED.sellers,
			bonuses = EXCLUDED.bonuses
	`

	_, err = r.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, run.DatasetHash, run.PolicyID, run.PolicyHash,
		len(run.Sellers), run.TotalPayout(), sellersJSON, bonusesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by id
func (r *Repository) GetRun(ctx context.Context, id string) (*contracts.Run, error) {
	runID, err := parseRunID(id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id::text, created_at, dataset_hash, policy_id, policy_hash, sellers, bonuses
		FROM sales.analysis_runs
		WHERE id = $1::uuid
	`
	return r.scanRun(r.pool.QueryRow(ctx, query, runID))
}

// GetLatestRun retrieves the most recent run
func (r *Repository) GetLatestRun(ctx context.Context) (*contracts.Run, error) {
	query := `
		SELECT id::text, created_at, dataset_hash, policy_id, policy_hash, sellers, bonuses
		FROM sales.analysis_runs
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanRun(r.pool.QueryRow(ctx, query))
}

// parseRunID normalizes a run id; anything that is not a UUID cannot exist
func parseRunID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", contracts.ErrRunNotFound
	}
	return parsed.String(), nil
}

func (r *Repository) scanRun(row pgx.Row) (*contracts.Run, error) {
	var run contracts.Run
	var sellersJSON, bonusesJSON []byte

	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.DatasetHash, &run.PolicyID, &run.PolicyHash,
		&sellersJSON, &bonusesJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(sellersJSON, &run.Sellers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sellers: %w", err)
	}
	if err := json.Unmarshal(bonusesJSON, &run.Bonuses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bonuses: %w", err)
	}

	return &run, nil
}

// ListRuns returns the most recent runs first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]contracts.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id::text, created_at, dataset_hash, policy_id, seller_count, total_payout::float8
		FROM sales.analysis_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]contracts.RunSummary, 0)
	for rows.Next() {
		var s contracts.RunSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.DatasetHash, &s.PolicyID, &s.SellerCount, &s.TotalPayout); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return summaries, nil
}

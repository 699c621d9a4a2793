package contracts

import (
	"context"
	"errors"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists analysis runs
type RunRepository interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	GetLatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// Run is one completed analysis: ranked seller reports plus special bonuses
type Run struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	DatasetHash string         `json:"dataset_hash"`
	PolicyID    string         `json:"policy_id"`
	PolicyHash  string         `json:"policy_hash"`
	Sellers     []SellerReport `json:"sellers"`
	Bonuses     []BonusResult  `json:"bonuses"`
	Cached      bool           `json:"cached"`
}

// TotalPayout sums primary and special bonuses
func (r *Run) TotalPayout() float64 {
	var total float64
	for _, s := range r.Sellers {
		total += s.Bonus
	}
	for _, b := range r.Bonuses {
		total += b.Bonus
	}
	return Round2(total)
}

// RunSummary is the list view of a stored run
type RunSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	DatasetHash string    `json:"dataset_hash"`
	PolicyID    string    `json:"policy_id"`
	SellerCount int       `json:"seller_count"`
	TotalPayout float64   `json:"total_payout"`
}

package report

import (
	"context"
	"sort"
	"sync"

	"github.com/wonny/salesbonus/internal/contracts"
)

// MemoryRepository keeps runs in process; used when no database is configured
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]*contracts.Run
}

var _ contracts.RunRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-process store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string]*contracts.Run)}
}

// SaveRun stores a copy of run
func (m *MemoryRepository) SaveRun(ctx context.Context, run *contracts.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *run
	stored.Cached = false
	m.runs[run.ID] = &stored
	return nil
}

// GetRun retrieves a run by id
func (m *MemoryRepository) GetRun(ctx context.Context, id string) (*contracts.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, contracts.ErrRunNotFound
	}
	out := *run
	return &out, nil
}

// GetLatestRun retrieves the most recent run
func (m *MemoryRepository) GetLatestRun(ctx context.Context) (*contracts.Run, error) {
	runs := m.sorted()
	if len(runs) == 0 {
		return nil, contracts.ErrRunNotFound
	}
	out := *runs[0]
	return &out, nil
}

// ListRuns returns the most recent runs first
func (m *MemoryRepository) ListRuns(ctx context.Context, limit int) ([]contracts.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs := m.sorted()
	if len(runs) > limit {
		runs = runs[:limit]
	}

	summaries := make([]contracts.RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, Summarize(run))
	}
	return summaries, nil
}

func (m *MemoryRepository) sorted() []*contracts.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*contracts.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// Summarize builds the list view of a run
func Summarize(run *contracts.Run) contracts.RunSummary {
	return contracts.RunSummary{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		DatasetHash: run.DatasetHash,
		PolicyID:    run.PolicyID,
		SellerCount: len(run.Sellers),
		TotalPayout: run.TotalPayout(),
	}
}

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesbonus/internal/bonus"
	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/report"
	"github.com/wonny/salesbonus/pkg/logger"
	"github.com/wonny/salesbonus/pkg/redis"
)

type failingRepo struct {
	report.MemoryRepository
	err error
}

func (f *failingRepo) SaveRun(ctx context.Context, run *contracts.Run) error {
	return f.err
}

// memCache is an in-process contracts.ReportCache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Enabled() bool { return true }

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func testDataset() *contracts.Dataset {
	return &contracts.Dataset{
		Customers: []contracts.Customer{{ID: "c1"}, {ID: "c2"}},
		Products: []contracts.Product{
			{SKU: "A", PurchasePrice: 10},
			{SKU: "B", PurchasePrice: 5},
		},
		Sellers: []contracts.Seller{
			{ID: "s1", FirstName: "Alexey", LastName: "Smirnov"},
			{ID: "s2", FirstName: "Maria", LastName: "Kuznetsova"},
		},
		PurchaseRecords: []contracts.PurchaseRecord{
			{Date: "2024-01-05", SellerID: "s1", CustomerID: "c1", TotalAmount: 40,
				Items: []contracts.Item{{SKU: "A", SalePrice: 20, Quantity: 2}}},
			{Date: "2024-02-05", SellerID: "s1", CustomerID: "c2", TotalAmount: 20.5,
				Items: []contracts.Item{{SKU: "A", SalePrice: 20.5, Quantity: 1}}},
			{Date: "2024-01-20", SellerID: "s2", CustomerID: "c2", TotalAmount: 15,
				Items: []contracts.Item{{SKU: "B", SalePrice: 15, Quantity: 1}}},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	repo := report.NewMemoryRepository()
	runner, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithRepository(repo)

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	runner.now = func() time.Time { return fixed }

	run, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)

	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.Equal(t, fixed.UTC(), run.CreatedAt)
	assert.Equal(t, "default", run.PolicyID)
	assert.Equal(t, runner.PolicyHash(), run.PolicyHash)
	assert.Len(t, run.DatasetHash, 64)
	assert.False(t, run.Cached)

	require.Len(t, run.Sellers, 2)
	assert.Equal(t, "s1", run.Sellers[0].SellerID)
	// s1 profit = (40-20) + (20.5-10) = 30.5, rank 0 -> 15%
	assert.Equal(t, 30.5, run.Sellers[0].Profit)
	assert.Equal(t, 4.58, run.Sellers[0].Bonus)

	require.Len(t, run.Bonuses, 5)
	for i, name := range bonus.RuleNames() {
		assert.Equal(t, name, run.Bonuses[i].Category)
	}

	stored, err := repo.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Sellers, stored.Sellers)
}

func TestRunner_StagesMatchDirectCalls(t *testing.T) {
	runner, err := NewRunner(bonusconfig.Default(), logger.Nop())
	require.NoError(t, err)

	ds := testDataset()
	run, err := runner.Run(context.Background(), ds)
	require.NoError(t, err)

	sellers, err := runner.Ranking(ds)
	require.NoError(t, err)
	bonuses, err := runner.Bonuses(ds)
	require.NoError(t, err)

	assert.Equal(t, sellers, run.Sellers)
	assert.Equal(t, bonuses, run.Bonuses)

	again, err := runner.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, again.ID)
	assert.Equal(t, run.Sellers, again.Sellers)
	assert.Equal(t, run.DatasetHash, again.DatasetHash)
}

func TestRunner_InvalidDataset(t *testing.T) {
	repo := report.NewMemoryRepository()
	runner, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithRepository(repo)

	ds := testDataset()
	ds.Products = []contracts.Product{}

	run, err := runner.Run(context.Background(), ds)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, contracts.ErrInvalidDataset)

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunner_SaveFailure(t *testing.T) {
	boom := errors.New("connection refused")
	runner, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithRepository(&failingRepo{err: boom})

	_, err = runner.Run(context.Background(), testDataset())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_CacheHit(t *testing.T) {
	repo := report.NewMemoryRepository()
	runner, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithRepository(repo).WithCache(newMemCache(), time.Hour)

	first, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Sellers, second.Sellers)

	// the hit is not stored twice, and its id resolves
	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	_, err = repo.GetRun(context.Background(), second.ID)
	assert.NoError(t, err)
}

func TestRunner_SaveFailureIsNotCached(t *testing.T) {
	cache := newMemCache()
	boom := errors.New("db down")

	failing, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	failing.WithRepository(&failingRepo{err: boom}).WithCache(cache, time.Hour)

	_, err = failing.Run(context.Background(), testDataset())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, cache.data)

	repo := report.NewMemoryRepository()
	healthy, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	healthy.WithRepository(repo).WithCache(cache, time.Hour)

	run, err := healthy.Run(context.Background(), testDataset())
	require.NoError(t, err)
	assert.False(t, run.Cached)

	_, err = repo.GetRun(context.Background(), run.ID)
	assert.NoError(t, err)
}

func TestRunner_DisabledCache(t *testing.T) {
	runner, err := NewRunner(nil, logger.Nop())
	require.NoError(t, err)
	runner.WithCache(redis.NewCache(redis.Disabled(), "test"), time.Hour)

	first, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)

	assert.False(t, second.Cached)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNewRunner_InvalidPolicy(t *testing.T) {
	cfg := bonusconfig.Default()
	cfg.Meta.PolicyID = ""
	_, err := NewRunner(cfg, logger.Nop())
	assert.Error(t, err)

	var verr bonusconfig.ValidationError
	assert.True(t, errors.As(err, &verr))

	cfg = bonusconfig.Default()
	cfg.Rules = append(cfg.Rules, bonusconfig.RuleSpec{Name: "mystery"})
	_, err = NewRunner(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestRunner_CustomPolicy(t *testing.T) {
	amount := 250.0
	cfg := bonusconfig.Default()
	cfg.Meta.PolicyID = "q2"
	cfg.Ranking.Tiers = []bonusconfig.Tier{{MaxRank: 0, Pct: 0.2}}
	cfg.Ranking.DefaultPct = 0
	cfg.Rules = []bonusconfig.RuleSpec{{Name: bonus.CategoryBestCustomerRetention, Amount: &amount}}

	runner, err := NewRunner(cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotEqual(t, mustDefaultHash(t), runner.PolicyHash())

	run, err := runner.Run(context.Background(), testDataset())
	require.NoError(t, err)

	assert.Equal(t, "q2", run.PolicyID)
	assert.Equal(t, 6.1, run.Sellers[0].Bonus)
	assert.Equal(t, 0.0, run.Sellers[1].Bonus)
	require.Len(t, run.Bonuses, 1)
	assert.Equal(t, 250.0, run.Bonuses[0].Bonus)
}

func mustDefaultHash(t *testing.T) string {
	t.Helper()
	h, err := bonusconfig.Hash(bonusconfig.Default())
	require.NoError(t, err)
	return h
}

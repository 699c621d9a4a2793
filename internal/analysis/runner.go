package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/salesbonus/internal/bonus"
	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/dataset"
	"github.com/wonny/salesbonus/internal/ranking"
	"github.com/wonny/salesbonus/pkg/logger"
	"github.com/wonny/salesbonus/pkg/redis"
)

// Runner executes a complete analysis: ranking plus special bonuses
// ⭐ SSOT: 분석 실행 조율은 여기서만
type Runner struct {
	policy     *bonusconfig.Config
	policyHash string

	rankingOpts ranking.Options
	bonusOpts   bonus.Options
	rules       []bonus.Rule

	cache    contracts.ReportCache
	cacheTTL time.Duration
	repo     contracts.RunRepository

	logger *logger.Logger
	now    func() time.Time
}

// NewRunner builds the strategies of a policy; nil policy means the default one
func NewRunner(policy *bonusconfig.Config, log *logger.Logger) (*Runner, error) {
	if policy == nil {
		policy = bonusconfig.Default()
	}
	if err := bonusconfig.Validate(policy); err != nil {
		return nil, fmt.Errorf("invalid bonus policy: %w", err)
	}

	rules, err := bonus.RulesFromConfig(policy)
	if err != nil {
		return nil, fmt.Errorf("invalid bonus policy: %w", err)
	}

	hash, err := bonusconfig.Hash(policy)
	if err != nil {
		return nil, err
	}

	return &Runner{
		policy:      policy,
		policyHash:  hash,
		rankingOpts: ranking.OptionsFromConfig(policy),
		bonusOpts:   bonus.DefaultOptions(),
		rules:       rules,
		logger:      log.WithComponent("analysis"),
		now:         time.Now,
	}, nil
}

// WithCache enables the report cache; ttl <= 0 leaves it off
func (r *Runner) WithCache(cache contracts.ReportCache, ttl time.Duration) *Runner {
	if ttl > 0 && cache != nil {
		r.cache = cache
		r.cacheTTL = ttl
	}
	return r
}

// WithRepository stores every computed run in repo
func (r *Runner) WithRepository(repo contracts.RunRepository) *Runner {
	r.repo = repo
	return r
}

func (r *Runner) cacheEnabled() bool {
	return r.cache != nil && r.cache.Enabled()
}

// Policy returns the active bonus policy
func (r *Runner) Policy() *bonusconfig.Config {
	return r.policy
}

// PolicyHash returns the fingerprint of the active policy
func (r *Runner) PolicyHash() string {
	return r.policyHash
}

// Ranking runs the ranking stage only
func (r *Runner) Ranking(ds *contracts.Dataset) ([]contracts.SellerReport, error) {
	return ranking.AnalyzeSalesData(ds, r.rankingOpts)
}

// Bonuses runs the special bonus stage only
func (r *Runner) Bonuses(ds *contracts.Dataset) ([]contracts.BonusResult, error) {
	return bonus.CalculateSpecialBonuses(ds, r.bonusOpts, r.rules)
}

// Run executes both stages over ds.
// Cached results are returned with Cached=true and are not stored again.
func (r *Runner) Run(ctx context.Context, ds *contracts.Dataset) (*contracts.Run, error) {
	startTime := time.Now()

	if err := contracts.ValidateDataset(ds); err != nil {
		return nil, err
	}

	datasetHash, err := dataset.Hash(ds)
	if err != nil {
		return nil, err
	}

	log := r.logger.WithFields(map[string]interface{}{
		"dataset_hash": shortHash(datasetHash),
		"policy_id":    r.policy.Meta.PolicyID,
	})

	cacheKey := redis.ReportKey(datasetHash, r.policyHash)
	if r.cacheEnabled() {
		var cached contracts.Run
		found, err := r.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.WithError(err).Warn("Report cache read failed")
		}
		if found {
			cached.Cached = true
			log.WithField("run_id", cached.ID).Info("Report cache hit")
			return &cached, nil
		}
	}

	var sellers []contracts.SellerReport
	var bonuses []contracts.BonusResult

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		sellers, err = r.Ranking(ds)
		if err != nil {
			return fmt.Errorf("ranking: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bonuses, err = r.Bonuses(ds)
		if err != nil {
			return fmt.Errorf("special bonuses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &contracts.Run{
		ID:          uuid.NewString(),
		CreatedAt:   r.now().UTC(),
		DatasetHash: datasetHash,
		PolicyID:    r.policy.Meta.PolicyID,
		PolicyHash:  r.policyHash,
		Sellers:     sellers,
		Bonuses:     bonuses,
	}

	// only stored runs are cached, so a cache hit always refers to a saved run
	if r.repo != nil {
		if err := r.repo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run %s: %w", run.ID, err)
		}
	}

	if r.cacheEnabled() {
		if err := r.cache.Set(ctx, cacheKey, run, r.cacheTTL); err != nil {
			log.WithError(err).Warn("Report cache write failed")
		}
	}

	winners := 0
	for _, b := range bonuses {
		if b.HasWinner() {
			winners++
		}
	}

	log.WithFields(map[string]interface{}{
		"run_id":       run.ID,
		"sellers":      len(sellers),
		"awards":       winners,
		"total_payout": run.TotalPayout(),
		"persisted":    r.repo != nil,
		"duration":     time.Since(startTime).String(),
	}).Info("Analysis completed")

	return run, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

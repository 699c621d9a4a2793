package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/salesbonus/internal/analysis"
	"github.com/wonny/salesbonus/internal/bonusconfig"
	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/internal/dataset"
	"github.com/wonny/salesbonus/internal/report"
	"github.com/wonny/salesbonus/pkg/config"
	"github.com/wonny/salesbonus/pkg/database"
	"github.com/wonny/salesbonus/pkg/httputil"
	"github.com/wonny/salesbonus/pkg/logger"
	"github.com/wonny/salesbonus/pkg/redis"
)

const cachePrefix = "salesbonus"

// app holds the wired dependencies shared by commands
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	redis  *redis.Client
	db     *database.DB
	repo   contracts.RunRepository
	loader *dataset.Loader
	runner *analysis.Runner
}

// appOptions selects the optional infrastructure a command needs
type appOptions struct {
	persist bool // attach a run repository (postgres, or memory without DATABASE_URL)
	cache   bool // connect redis when REDIS_ENABLED
}

// newApp loads config and wires logger, stores, loader and runner.
// Logs go to logOut so that stdout stays clean for reports.
func newApp(ctx context.Context, logOut io.Writer, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if policyPath != "" {
		cfg.Analysis.PolicyPath = policyPath
	}

	log := logger.NewTo(cfg, logOut)
	a := &app{cfg: cfg, log: log, redis: redis.Disabled()}

	policy, err := bonusconfig.LoadOrDefault(cfg.Analysis.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load bonus policy: %w", err)
	}

	runner, err := analysis.NewRunner(policy, log)
	if err != nil {
		return nil, err
	}
	a.runner = runner

	httpClient := httputil.New(cfg.HTTP, log)
	a.loader = dataset.NewLoader(httpClient, log)

	if opts.cache && cfg.Redis.Enabled {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = client
		cache := redis.NewCache(client, cachePrefix)
		a.loader.WithCache(cache, redis.TTLDaily)
		a.runner.WithCache(cache, cfg.Analysis.CacheTTL)
		log.Info("Connected to redis")
	}

	if opts.persist {
		if err := a.attachRepository(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *app) attachRepository(ctx context.Context) error {
	if !a.cfg.Database.Enabled() {
		a.log.Warn("DATABASE_URL not set, runs are kept in memory")
		a.repo = report.NewMemoryRepository()
		a.runner.WithRepository(a.repo)
		return nil
	}

	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db

	repo := report.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	a.repo = repo
	a.runner.WithRepository(repo)
	a.log.Info("Connected to database")
	return nil
}

// datasetSource resolves the --dataset flag against DATASET_SOURCE
func (a *app) datasetSource(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Analysis.DatasetSource
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

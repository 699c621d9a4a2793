package contracts

import (
	"context"
	"time"
)

// RunExecutor runs a full analysis over a dataset
// ⭐ SSOT: 분석 실행 인터페이스 (API, 스케줄러 공용)
type RunExecutor interface {
	Run(ctx context.Context, ds *Dataset) (*Run, error)
}

// DatasetSource loads a dataset from a location (file path or URL)
type DatasetSource interface {
	Load(ctx context.Context, source string) (*Dataset, error)
}

// ReportCache stores finished runs by key (implemented by pkg/redis.Cache)
type ReportCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

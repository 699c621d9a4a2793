package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/pkg/httputil"
	"github.com/wonny/salesbonus/pkg/logger"
	"github.com/wonny/salesbonus/pkg/redis"
)

// MaxRemoteBytes caps the size of a dataset fetched over HTTP
const MaxRemoteBytes = 64 << 20

// ErrNoSource is returned when no dataset location was given
var ErrNoSource = errors.New("dataset source is required")

// Format is the encoding of a dataset document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Loader reads datasets from files or http(s) URLs
type Loader struct {
	http   *httputil.Client
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewLoader creates a loader; http may be nil when only files are used
func NewLoader(http *httputil.Client, log *logger.Logger) *Loader {
	return &Loader{
		http:   http,
		logger: log.WithComponent("dataset"),
	}
}

// WithCache keeps remote documents in Redis for ttl
func (l *Loader) WithCache(cache *redis.Cache, ttl time.Duration) *Loader {
	l.cache = cache
	l.ttl = ttl
	return l
}

// Load resolves source and decodes it.
// The dataset is returned as read; validation is left to the engines.
func (l *Loader) Load(ctx context.Context, source string) (*contracts.Dataset, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrNoSource
	}

	var data []byte
	var err error
	if isRemote(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", source, err)
	}

	ds, err := Decode(data, FormatOf(source))
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", source, err)
	}

	l.logger.WithFields(map[string]interface{}{
		"source":    source,
		"sellers":   len(ds.Sellers),
		"products":  len(ds.Products),
		"customers": len(ds.Customers),
		"records":   len(ds.PurchaseRecords),
	}).Debug("Dataset loaded")

	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if l.http == nil {
		return nil, fmt.Errorf("remote source %s: no http client configured", source)
	}

	if l.cache.Enabled() {
		var cached []byte
		found, err := l.cache.Get(ctx, redis.DatasetKey(source), &cached)
		if err != nil {
			l.logger.WithError(err).Warn("Dataset cache read failed")
		}
		if found {
			l.logger.WithField("source", source).Debug("Dataset cache hit")
			return cached, nil
		}
	}

	data, err := l.http.Fetch(ctx, source, MaxRemoteBytes)
	if err != nil {
		return nil, err
	}

	if l.cache.Enabled() {
		if err := l.cache.Set(ctx, redis.DatasetKey(source), data, l.ttl); err != nil {
			l.logger.WithError(err).Warn("Dataset cache write failed")
		}
	}

	return data, nil
}

// Decode parses a dataset document
func Decode(data []byte, format Format) (*contracts.Dataset, error) {
	var ds contracts.Dataset

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	}

	return &ds, nil
}

// FormatOf picks the decoder from the file or URL path extension
func FormatOf(source string) Format {
	p := source
	if isRemote(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
		p = path.Ext(p)
	} else {
		p = filepath.Ext(p)
	}

	switch strings.ToLower(p) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

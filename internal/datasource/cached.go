package datasource

import (
	"context"
	"time"

	"github.com/ortelius/pdvd-notices/model"
	"github.com/ortelius/pdvd-notices/storage"
	"go.uber.org/zap"
)

// DefaultTTL is how long a fetched catalog is served from the cache
const DefaultTTL = 24 * time.Hour

// CachedDataSource wraps another NoticeDataSource and persists its results to a
// cache file together with an expiration time.
type CachedDataSource struct {
	delegate  NoticeDataSource
	fileName  string
	ttl       time.Duration
	skipCache bool
	now       func() time.Time
	logger    *zap.Logger
}

// CacheOption configures a CachedDataSource
type CacheOption func(*CachedDataSource)

// WithTTL sets how long fetched catalogs stay fresh
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedDataSource) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSkipCache makes every fetch go to the delegate; the result is still persisted
func WithSkipCache(skip bool) CacheOption {
	return func(c *CachedDataSource) {
		c.skipCache = skip
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedDataSource) {
		c.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *CachedDataSource) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedDataSource wraps delegate with a cache stored in fileName
func NewCachedDataSource(fileName string, delegate NoticeDataSource, opts ...CacheOption) *CachedDataSource {
	c := &CachedDataSource{
		delegate: delegate,
		fileName: fileName,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch serves the cached catalog while it is fresh. Otherwise it asks the delegate,
// rewrites the cache file with the result and returns it. Cache read and write
// failures never reach the caller.
func (c *CachedDataSource) Fetch(ctx context.Context) ([]model.Notice, error) {
	if !c.skipCache {
		if notices, ok := c.load(); ok {
			return notices, nil
		}
	}

	notices, err := c.delegate.Fetch(ctx)
	if err != nil {
		c.logger.Sugar().Warnf("Failed to fetch notices: %v", err)
		notices = []model.Notice{}
	}

	envelope := model.NewCacheEnvelope(notices, c.now(), c.ttl)
	if err := storage.SaveEnvelope(c.fileName, envelope); err != nil {
		c.logger.Sugar().Debugf("Failed to write notices cache: %v", err)
	}

	return envelope.Notices, nil
}

func (c *CachedDataSource) load() ([]model.Notice, bool) {
	envelope, err := storage.LoadEnvelope(c.fileName)
	if err != nil {
		c.logger.Sugar().Debugf("Notices cache miss: %v", err)
		return nil, false
	}
	if envelope.Expired(c.now()) {
		c.logger.Sugar().Debugf("Notices cache expired at %s", envelope.ExpiresAt().Format(time.RFC3339))
		return nil, false
	}
	if envelope.Notices == nil {
		envelope.Notices = []model.Notice{}
	}
	return envelope.Notices, true
}

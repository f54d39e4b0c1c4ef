package marketdata

import (
	"context"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/pkg/logger"
	"github.com/wonny/esgproxy/backend/pkg/redis"
)

// CachedProvider is a Redis read-through cache in front of another provider
// Cache failures are logged and fall through to the inner provider.
type CachedProvider struct {
	inner  contracts.PriceProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCached wraps inner; a disabled cache makes every call a pass-through
func NewCached(inner contracts.PriceProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl, logger: log}
}

// Name reports the inner provider's name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// FetchPrices serves from cache when possible
func (p *CachedProvider) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	key := redis.SeriesKey(p.inner.Name(), ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))

	var cached contracts.PriceSeries
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Series cache read failed")
	}
	if hit {
		return cached, nil
	}

	series, err := p.inner.FetchPrices(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}
	// 빈 시리즈는 캐시하지 않음 (신규 상장 등)
	if len(series) > 0 {
		if err := p.cache.Set(ctx, key, series, p.ttl); err != nil {
			p.logger.WithError(err).WithField("key", key).Warn("Series cache write failed")
		}
	}
	return series, nil
}

// FetchFundamentals serves from cache when the inner provider supplies fundamentals
func (p *CachedProvider) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fp, ok := p.inner.(contracts.FundamentalsProvider)
	if !ok {
		return nil, contracts.ErrFundamentalsUnavailable
	}

	key := redis.FundamentalsKey(p.inner.Name(), ticker)
	var cached contracts.Fundamentals
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Fundamentals cache read failed")
	}
	if hit {
		return &cached, nil
	}

	f, err := fp.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}
	// null을 캐시하면 다음 조회가 0값 재무로 적중함
	if f == nil {
		return nil, contracts.ErrFundamentalsUnavailable
	}
	if err := p.cache.Set(ctx, key, f, redis.TTLDaily); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Fundamentals cache write failed")
	}
	return f, nil
}

package marketdata

import (
	"context"
	"fmt"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/external/eodhd"
	"github.com/wonny/esgproxy/backend/internal/external/naver"
	"github.com/wonny/esgproxy/backend/internal/metrics"
	"github.com/wonny/esgproxy/backend/pkg/config"
	"github.com/wonny/esgproxy/backend/pkg/database"
	"github.com/wonny/esgproxy/backend/pkg/httputil"
	"github.com/wonny/esgproxy/backend/pkg/logger"
	"github.com/wonny/esgproxy/backend/pkg/redis"
)

// cachePrefix namespaces this service's Redis keys
const cachePrefix = "esgproxy"

// Source is the configured provider chain plus the connections it owns
type Source struct {
	Provider contracts.PriceProvider
	closers  []func()
}

// Close releases database and Redis connections
func (s *Source) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open builds the provider selected by MARKETDATA_PROVIDER
// Chain: provider → instrumented (metrics) → cached (Redis, when enabled).
// ⭐ SSOT: 시세 제공자 조립은 여기서만
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Recorder) (*Source, error) {
	src := &Source{}

	var base contracts.PriceProvider
	switch cfg.MarketData.Provider {
	case config.ProviderStatic:
		base = NewStatic()
	case config.ProviderEODHD:
		base = eodhd.NewClient(httputil.New(cfg, log), log, cfg.EODHD.APIKey, cfg.EODHD.BaseURL)
	case config.ProviderNaver:
		base = naver.NewClient(httputil.New(cfg, log), log, cfg.Naver)
	case config.ProviderPostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres provider: %w", err)
		}
		src.closers = append(src.closers, db.Close)
		base = NewPostgresStore(db.Pool)
	default:
		return nil, contracts.ValidationError{Field: "MARKETDATA_PROVIDER", Message: fmt.Sprintf("unknown provider %q", cfg.MarketData.Provider)}
	}

	var provider contracts.PriceProvider = NewInstrumented(base, m)

	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, cfg)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		src.closers = append(src.closers, func() { _ = rc.Close() })
		provider = NewCached(provider, redis.NewCache(rc, cachePrefix), cfg.Redis.CacheTTL, log)
	}

	src.Provider = provider
	log.WithFields(map[string]interface{}{
		"provider": base.Name(),
		"cache":    cfg.Redis.Enabled,
	}).Info("Market data provider ready")
	return src, nil
}

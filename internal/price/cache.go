// internal/price/cache.go
package price

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCacheTTL – время жизни закэшированной цены.
const DefaultCacheTTL = 30 * time.Second

// Oracle возвращает текущую цену токена.
type Oracle interface {
	CurrentPrice(ctx context.Context, mint string) (decimal.Decimal, error)
}

// Store хранит цены с ограниченным временем жизни.
type Store interface {
	Get(ctx context.Context, mint string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, mint string, price decimal.Decimal, ttl time.Duration) error
}

// CacheRecorder учитывает попадания в кэш цен.
type CacheRecorder interface {
	CountPriceLookup(result string)
}

// CachedOracle – декоратор Oracle с кэшем. Ошибки кэша логируются
// и не мешают получить цену из источника.
type CachedOracle struct {
	next     Oracle
	store    Store
	ttl      time.Duration
	recorder CacheRecorder
	logger   *zap.Logger
}

// NewCachedOracle оборачивает next кэшем store.
func NewCachedOracle(next Oracle, store Store, ttl time.Duration, recorder CacheRecorder, logger *zap.Logger) *CachedOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedOracle{
		next:     next,
		store:    store,
		ttl:      ttl,
		recorder: recorder,
		logger:   logger.Named("price-cache"),
	}
}

// CurrentPrice возвращает цену из кэша, а при промахе – из источника.
func (c *CachedOracle) CurrentPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	cached, ok, err := c.store.Get(ctx, mint)
	switch {
	case err != nil:
		c.logger.Warn("Price cache read failed", zap.String("mint", mint), zap.Error(err))
		c.count("error")
	case ok:
		c.count("hit")
		return cached, nil
	default:
		c.count("miss")
	}

	price, err := c.next.CurrentPrice(ctx, mint)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.store.Set(ctx, mint, price, c.ttl); err != nil {
		c.logger.Warn("Price cache write failed", zap.String("mint", mint), zap.Error(err))
	}
	return price, nil
}

func (c *CachedOracle) count(result string) {
	if c.recorder != nil {
		c.recorder.CountPriceLookup(result)
	}
}

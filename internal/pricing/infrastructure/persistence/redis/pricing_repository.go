package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/cache"
)

const defaultResultTTL = 15 * time.Minute

// PricingRedisRepository 定价结果缓存，保存每个标的最新一次的定价结果。
type PricingRedisRepository struct {
	cache        *cache.RedisCache
	resultPrefix string
	ttl          time.Duration
}

// NewPricingRedisRepository 创建缓存仓储，ttl <= 0 时使用默认 15 分钟。
func NewPricingRedisRepository(c *cache.RedisCache, ttl time.Duration) *PricingRedisRepository {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &PricingRedisRepository{
		cache:        c,
		resultPrefix: "pricing_result:",
		ttl:          ttl,
	}
}

// SaveLatest 覆盖写入该标的最新定价结果
func (r *PricingRedisRepository) SaveLatest(ctx context.Context, result *domain.PricingResult) error {
	if result == nil {
		return nil
	}
	return r.cache.SetJSON(ctx, r.resultKey(result.Symbol), result, r.ttl)
}

// GetLatest 未命中时返回 (nil, nil)
func (r *PricingRedisRepository) GetLatest(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if symbol == "" {
		return nil, nil
	}
	var result domain.PricingResult
	found, err := r.cache.GetJSON(ctx, r.resultKey(symbol), &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &result, nil
}

func (r *PricingRedisRepository) resultKey(symbol string) string {
	return fmt.Sprintf("%s%s", r.resultPrefix, symbol)
}

var _ domain.ResultCache = (*PricingRedisRepository)(nil)

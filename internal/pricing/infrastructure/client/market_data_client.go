package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/cache"
	"github.com/wyfcoding/optionspricing/pkg/logger"
)

// MarketDataClientImpl 市场数据客户端，从 Redis 读取行情服务写入的最新现货价。
type MarketDataClientImpl struct {
	cache      *cache.RedisCache
	spotPrefix string
}

// NewMarketDataClient 创建市场数据客户端
func NewMarketDataClient(c *cache.RedisCache) domain.MarketDataClient {
	return &MarketDataClientImpl{
		cache:      c,
		spotPrefix: "spot_price:",
	}
}

// GetSpotPrice 获取最新现货价格
func (c *MarketDataClientImpl) GetSpotPrice(ctx context.Context, symbol string) (float64, error) {
	raw, err := c.cache.Get(ctx, c.spotPrefix+symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch spot price for %s: %w", symbol, err)
	}
	if raw == "" {
		return 0, fmt.Errorf("no spot price available for %s", symbol)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid spot price for %s: %w", symbol, err)
	}
	return price, nil
}

// StaticMarketDataClient 静态市场数据客户端，用于开发和测试环境。
type StaticMarketDataClient struct {
	prices map[string]float64
}

// NewStaticMarketDataClient 创建静态客户端，prices 为 nil 时使用内置样例行情。
func NewStaticMarketDataClient(prices map[string]float64) domain.MarketDataClient {
	if prices == nil {
		prices = map[string]float64{
			"AAPL": 189.50,
			"MSFT": 415.20,
			"SPY":  520.75,
			"TSLA": 248.30,
		}
	}
	return &StaticMarketDataClient{prices: prices}
}

func (c *StaticMarketDataClient) GetSpotPrice(ctx context.Context, symbol string) (float64, error) {
	price, ok := c.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no spot price available for %s", symbol)
	}
	logger.Debug(ctx, "static spot price served", "symbol", symbol, "price", price)
	return price, nil
}

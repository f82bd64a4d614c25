package application

import (
	"context"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/metrics"
)

// PricingQueryService 处理所有定价相关的查询操作（Queries）。
type PricingQueryService struct {
	engine  *domain.Engine
	repo    domain.PricingRepository
	cache   domain.ResultCache
	metrics *metrics.Metrics
}

// NewPricingQueryService 构造函数。
func NewPricingQueryService(engine *domain.Engine, repo domain.PricingRepository, cache domain.ResultCache, m *metrics.Metrics) *PricingQueryService {
	return &PricingQueryService{
		engine:  engine,
		repo:    repo,
		cache:   cache,
		metrics: m,
	}
}

// GetGreeks 计算希腊字母，不持久化
// model 为空时使用 Black-Scholes
func (s *PricingQueryService) GetGreeks(ctx context.Context, cmd PriceOptionCommand) (*domain.Greeks, error) {
	optionType, err := domain.ParseOptionType(cmd.OptionType)
	if err != nil {
		return nil, err
	}

	params := domain.OptionParameters{
		Symbol:        cmd.Symbol,
		Type:          optionType,
		SpotPrice:     cmd.SpotPrice,
		StrikePrice:   cmd.StrikePrice,
		TimeToExpiry:  cmd.TimeToExpiry,
		RiskFreeRate:  cmd.RiskFreeRate,
		DividendYield: cmd.DividendYield,
		Volatility:    cmd.Volatility,
	}

	model := cmd.PricingModel
	if model == "" {
		model = domain.ModelBlackScholes
	}

	result, err := s.engine.Run(ctx, model, params)
	if err != nil {
		return nil, err
	}

	greeks := domain.NewGreeks(result.Greeks)
	return &greeks, nil
}

// GetLatestResult 获取最新定价结果，缓存优先
func (s *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, symbol)
		if err == nil && cached != nil {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}
	return s.repo.GetLatest(ctx, symbol)
}

// GetHistory 获取定价历史
func (s *PricingQueryService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetHistory(ctx, symbol, limit)
}

// ListModels 已注册模型名称
func (s *PricingQueryService) ListModels() []string {
	return s.engine.ModelNames()
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/logger"
	"github.com/wyfcoding/optionspricing/pkg/metrics"
)

// PricingCommandService 处理定价相关的命令操作
type PricingCommandService struct {
	engine     *domain.Engine
	repo       domain.PricingRepository
	cache      domain.ResultCache
	marketData domain.MarketDataClient
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
}

// NewPricingCommandService 创建新的 PricingCommandService 实例
// cache、marketData、publisher、m 均可为 nil
func NewPricingCommandService(
	engine *domain.Engine,
	repo domain.PricingRepository,
	cache domain.ResultCache,
	marketData domain.MarketDataClient,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *PricingCommandService {
	return &PricingCommandService{
		engine:     engine,
		repo:       repo,
		cache:      cache,
		marketData: marketData,
		publisher:  publisher,
		metrics:    m,
	}
}

// PriceOption 期权定价
// PricingModel 为空时运行全部模型并附带对比指标
func (c *PricingCommandService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*PricingOutcome, error) {
	params, err := c.toParameters(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var results []*domain.ModelResult
	if cmd.PricingModel == "" {
		results, err = c.engine.RunAll(ctx, params)
	} else {
		var result *domain.ModelResult
		result, err = c.engine.Run(ctx, cmd.PricingModel, params)
		if result != nil {
			results = []*domain.ModelResult{result}
		}
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.PricingErrorsTotal.WithLabelValues(cmd.PricingModel).Inc()
		}
		c.publishError(ctx, params, cmd.PricingModel, err)
		return nil, err
	}

	calculatedAt := time.Now().Unix()
	for _, result := range results {
		if c.metrics != nil {
			c.metrics.PricingsTotal.WithLabelValues(result.ModelName).Inc()
			c.metrics.ModelDuration.WithLabelValues(result.ModelName).Observe(result.ComputationTime)
		}

		entity := toPricingResult(params, result, calculatedAt)
		if err := c.repo.Save(ctx, entity); err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.SaveLatest(ctx, entity); err != nil {
				// 缓存失败不阻断定价
				logger.Warn(ctx, "failed to cache pricing result",
					"symbol", params.Symbol,
					"model", result.ModelName,
					"error", err,
				)
			}
		}

		c.publishPriced(ctx, params, result, calculatedAt)
	}

	outcome := &PricingOutcome{
		Symbol:  params.Symbol,
		Results: results,
	}
	if len(results) > 1 {
		outcome.Comparison = domain.Compare(results)
	}
	return outcome, nil
}

// BatchPriceOptions 批量定价，单合约失败不影响其余合约
func (c *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	batchID := cmd.BatchID
	if batchID == "" {
		batchID = uuid.New().String()
	}

	if c.metrics != nil {
		c.metrics.BatchSize.Observe(float64(len(cmd.Contracts)))
	}

	outcomes := make([]*PricingOutcome, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		start := time.Now()
		outcome, err := c.PriceOption(ctx, contract)
		totalTime += time.Since(start).Seconds()

		if err != nil {
			failureCount++
			logger.Error(ctx, "batch contract pricing failed",
				"batch_id", batchID,
				"symbol", contract.Symbol,
				"error", err,
			)
			continue
		}

		outcomes = append(outcomes, outcome)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		event := domain.BatchPricingCompletedEvent{
			BatchID:        batchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		}
		if err := c.publisher.PublishBatchPricingCompleted(ctx, event); err != nil {
			logger.Warn(ctx, "failed to publish batch completion event", "batch_id", batchID, "error", err)
		}
	}

	return &BatchPricingResult{
		BatchID:      batchID,
		Outcomes:     outcomes,
		SuccessCount: successCount,
		FailureCount: failureCount,
		AverageTime:  avg,
	}, nil
}

func (c *PricingCommandService) publishPriced(ctx context.Context, params domain.OptionParameters, result *domain.ModelResult, calculatedAt int64) {
	if c.publisher == nil {
		return
	}

	pricedEvent := domain.OptionPricedEvent{
		Symbol:          params.Symbol,
		OptionType:      params.Type,
		SpotPrice:       params.SpotPrice,
		StrikePrice:     params.StrikePrice,
		TimeToExpiry:    params.TimeToExpiry,
		RiskFreeRate:    params.RiskFreeRate,
		DividendYield:   params.DividendYield,
		Volatility:      params.Volatility,
		OptionPrice:     result.Price,
		PricingModel:    result.ModelName,
		ComputationTime: result.ComputationTime,
		CalculatedAt:    calculatedAt,
		OccurredOn:      time.Now(),
	}
	if err := c.publisher.PublishOptionPriced(ctx, pricedEvent); err != nil {
		logger.Warn(ctx, "failed to publish option priced event", "symbol", params.Symbol, "error", err)
	}

	greeksEvent := domain.GreeksCalculatedEvent{
		Symbol:       params.Symbol,
		OptionType:   params.Type,
		StrikePrice:  params.StrikePrice,
		TimeToExpiry: params.TimeToExpiry,
		Delta:        result.Greeks.Delta,
		Gamma:        result.Greeks.Gamma,
		Theta:        result.Greeks.Theta,
		Vega:         result.Greeks.Vega,
		Rho:          result.Greeks.Rho,
		PricingModel: result.ModelName,
		CalculatedAt: calculatedAt,
		OccurredOn:   time.Now(),
	}
	if err := c.publisher.PublishGreeksCalculated(ctx, greeksEvent); err != nil {
		logger.Warn(ctx, "failed to publish greeks event", "symbol", params.Symbol, "error", err)
	}
}

func (c *PricingCommandService) publishError(ctx context.Context, params domain.OptionParameters, model string, cause error) {
	if c.publisher == nil {
		return
	}
	event := domain.PricingErrorEvent{
		Symbol:      params.Symbol,
		OptionType:  params.Type,
		StrikePrice: params.StrikePrice,
		Model:       model,
		Error:       cause.Error(),
		OccurredAt:  time.Now().Unix(),
		OccurredOn:  time.Now(),
	}
	if err := c.publisher.PublishPricingError(ctx, event); err != nil {
		logger.Warn(ctx, "failed to publish pricing error event", "symbol", params.Symbol, "error", err)
	}
}

func toPricingResult(params domain.OptionParameters, result *domain.ModelResult, calculatedAt int64) *domain.PricingResult {
	greeks := domain.NewGreeks(result.Greeks)
	return &domain.PricingResult{
		Symbol:          params.Symbol,
		OptionType:      params.Type,
		StrikePrice:     decimal.NewFromFloat(params.StrikePrice),
		TimeToExpiry:    params.TimeToExpiry,
		OptionPrice:     decimal.NewFromFloat(result.Price),
		UnderlyingPrice: decimal.NewFromFloat(params.SpotPrice),
		Delta:           greeks.Delta,
		Gamma:           greeks.Gamma,
		Theta:           greeks.Theta,
		Vega:            greeks.Vega,
		Rho:             greeks.Rho,
		PricingModel:    result.ModelName,
		ComputationTime: result.ComputationTime,
		CalculatedAt:    calculatedAt,
	}
}

// 辅助函数：提取合约符号
func extractSymbols(contracts []PriceOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)

	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}

	return symbols
}

package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/wyfcoding/optionspricing/pkg/logger"
)

// Engine 定价引擎，聚合全部已注册模型
type Engine struct {
	models map[string]PricingModel
	order  []string
}

// NewEngine 构造引擎，注册顺序即 RunAll 的输出顺序
func NewEngine(models ...PricingModel) *Engine {
	e := &Engine{
		models: make(map[string]PricingModel, len(models)),
	}
	for _, m := range models {
		if _, exists := e.models[m.Name()]; exists {
			continue
		}
		e.models[m.Name()] = m
		e.order = append(e.order, m.Name())
	}
	return e
}

// NewDefaultEngine 按原始系统默认参数构造引擎
func NewDefaultEngine() *Engine {
	return NewEngine(
		NewBlackScholesModel(),
		NewBinomialTreeModel(DefaultBinomialSteps),
		NewMonteCarloModel(DefaultMonteCarloPaths, DefaultMonteCarloSeed),
	)
}

// ModelNames 已注册模型名称，按注册顺序
func (e *Engine) ModelNames() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// Run 使用指定模型定价
func (e *Engine) Run(ctx context.Context, modelName string, params OptionParameters) (*ModelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	model, ok := e.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelName)
	}

	return e.run(model, params)
}

// RunAll 使用全部模型定价，单模型失败不影响其余模型
func (e *Engine) RunAll(ctx context.Context, params OptionParameters) ([]*ModelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	results := make([]*ModelResult, 0, len(e.order))
	for _, name := range e.order {
		result, err := e.run(e.models[name], params)
		if err != nil {
			logger.Error(ctx, "pricing model failed",
				"model", name,
				"symbol", params.Symbol,
				"error", err,
			)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) run(model PricingModel, params OptionParameters) (*ModelResult, error) {
	start := time.Now()
	price, err := model.Price(params)
	computationTime := time.Since(start).Seconds()
	if err != nil {
		return nil, err
	}

	greeks, err := model.CalculateGreeks(params)
	if err != nil {
		return nil, err
	}

	return &ModelResult{
		ModelName:       model.Name(),
		Price:           price,
		Greeks:          greeks,
		ComputationTime: computationTime,
		Parameters:      model.Parameters(),
	}, nil
}

// ComparisonMetrics 模型间对比指标
type ComparisonMetrics struct {
	AveragePrice         float64 `json:"average_price"`
	MaxDifference        float64 `json:"max_difference"`
	MaxDifferencePct     float64 `json:"max_difference_pct"`
	TotalComputationTime float64 `json:"total_computation_time"` // 毫秒
	FastestModel         string  `json:"fastest_model"`
	SlowestModel         string  `json:"slowest_model"`
	PriceMin             float64 `json:"price_min"`
	PriceMax             float64 `json:"price_max"`
}

// Compare 计算模型间对比指标，结果为空时返回 nil
func Compare(results []*ModelResult) *ComparisonMetrics {
	if len(results) == 0 {
		return nil
	}

	prices := make([]float64, len(results))
	totalTime := 0.0
	fastest := results[0]
	slowest := results[0]
	for i, r := range results {
		prices[i] = r.Price
		totalTime += r.ComputationTime
		if r.ComputationTime < fastest.ComputationTime {
			fastest = r
		}
		if r.ComputationTime > slowest.ComputationTime {
			slowest = r
		}
	}

	avg, _ := stats.Mean(prices)
	minPrice, _ := stats.Min(prices)
	maxPrice, _ := stats.Max(prices)

	maxDiff := 0.0
	for _, p := range prices {
		maxDiff = max(maxDiff, math.Abs(p-avg))
	}
	maxDiffPct := 0.0
	if avg > 0 {
		maxDiffPct = maxDiff / avg * 100
	}

	return &ComparisonMetrics{
		AveragePrice:         avg,
		MaxDifference:        maxDiff,
		MaxDifferencePct:     maxDiffPct,
		TotalComputationTime: totalTime * 1000,
		FastestModel:         fastest.ModelName,
		SlowestModel:         slowest.ModelName,
		PriceMin:             minPrice,
		PriceMax:             maxPrice,
	}
}

package application

import (
	"context"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
)

// PriceOptionCommand 期权定价命令
// PricingModel 为空时使用全部模型
type PriceOptionCommand struct {
	Symbol        string
	OptionType    string
	SpotPrice     float64
	StrikePrice   float64
	TimeToExpiry  float64
	RiskFreeRate  float64
	DividendYield float64
	Volatility    float64
	PricingModel  string
}

// BatchPriceOptionsCommand 批量定价命令
type BatchPriceOptionsCommand struct {
	BatchID   string
	Contracts []PriceOptionCommand
}

// PricingOutcome 单次定价输出：各模型结果与对比指标
type PricingOutcome struct {
	Symbol     string                    `json:"symbol"`
	Results    []*domain.ModelResult     `json:"results"`
	Comparison *domain.ComparisonMetrics `json:"comparison,omitempty"`
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string            `json:"batch_id"`
	Outcomes     []*PricingOutcome `json:"outcomes"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	AverageTime  float64           `json:"average_time"` // 秒
}

// toParameters 将命令转换为领域参数，现货价缺省时查询市场数据
func (c *PricingCommandService) toParameters(ctx context.Context, cmd PriceOptionCommand) (domain.OptionParameters, error) {
	optionType, err := domain.ParseOptionType(cmd.OptionType)
	if err != nil {
		return domain.OptionParameters{}, err
	}

	spot := cmd.SpotPrice
	if spot == 0 && c.marketData != nil {
		spot, err = c.marketData.GetSpotPrice(ctx, cmd.Symbol)
		if err != nil {
			return domain.OptionParameters{}, err
		}
	}

	return domain.OptionParameters{
		Symbol:        cmd.Symbol,
		Type:          optionType,
		SpotPrice:     spot,
		StrikePrice:   cmd.StrikePrice,
		TimeToExpiry:  cmd.TimeToExpiry,
		RiskFreeRate:  cmd.RiskFreeRate,
		DividendYield: cmd.DividendYield,
		Volatility:    cmd.Volatility,
	}, nil
}

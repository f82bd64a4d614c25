// Package domain 定价服务的领域模型
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "call" // 看涨期权
	OptionTypePut  OptionType = "put"  // 看跌期权
)

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(s) {
	case string(OptionTypeCall):
		return OptionTypeCall, nil
	case string(OptionTypePut):
		return OptionTypePut, nil
	default:
		return "", fmt.Errorf("option type must be 'call' or 'put', got %q", s)
	}
}

// OptionParameters 单个期权合约的定价输入
type OptionParameters struct {
	Symbol        string     `json:"symbol"`
	Type          OptionType `json:"option_type"`
	SpotPrice     float64    `json:"spot_price"`
	StrikePrice   float64    `json:"strike_price"`
	TimeToExpiry  float64    `json:"time_to_expiry"` // 年
	RiskFreeRate  float64    `json:"risk_free_rate"`
	DividendYield float64    `json:"dividend_yield"`
	Volatility    float64    `json:"volatility"`
}

// ErrInvalidParameters 参数校验失败
var ErrInvalidParameters = errors.New("invalid option parameters")

// ErrUnknownModel 未注册的定价模型
var ErrUnknownModel = errors.New("unknown pricing model")

// Validate 校验定价输入，返回所有违规项
func (p OptionParameters) Validate() error {
	var reasons []string

	if p.Symbol == "" {
		reasons = append(reasons, "symbol is required")
	}
	if p.Type != OptionTypeCall && p.Type != OptionTypePut {
		reasons = append(reasons, "option type must be 'call' or 'put'")
	}
	if p.SpotPrice <= 0 {
		reasons = append(reasons, "spot price must be positive")
	}
	if p.StrikePrice <= 0 {
		reasons = append(reasons, "strike price must be positive")
	}
	if p.TimeToExpiry <= 0 {
		reasons = append(reasons, "time to expiry must be positive")
	}
	if p.Volatility <= 0 {
		reasons = append(reasons, "volatility must be positive")
	}
	if p.TimeToExpiry > 10 {
		reasons = append(reasons, "time to expiry seems unusually long (>10 years)")
	}
	if p.Volatility > 5 {
		reasons = append(reasons, "volatility seems unusually high (>500%)")
	}

	if len(reasons) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParameters, strings.Join(reasons, "; "))
	}
	return nil
}

// IsCall 是否看涨
func (p OptionParameters) IsCall() bool {
	return p.Type == OptionTypeCall
}

// IntrinsicValue 内在价值，用于已到期或零波动率的退化场景
func (p OptionParameters) IntrinsicValue() float64 {
	if p.IsCall() {
		return max(0, p.SpotPrice-p.StrikePrice)
	}
	return max(0, p.StrikePrice-p.SpotPrice)
}

// GreeksValues 希腊字母（模型计算层，float64）
type GreeksValues struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"` // 每日
	Vega  float64 `json:"vega"`  // 每 1 个波动率点
	Rho   float64 `json:"rho"`   // 每 1 个利率点
}

// Greeks 希腊字母（领域实体层，decimal）
type Greeks struct {
	Delta decimal.Decimal `json:"delta"`
	Gamma decimal.Decimal `json:"gamma"`
	Theta decimal.Decimal `json:"theta"`
	Vega  decimal.Decimal `json:"vega"`
	Rho   decimal.Decimal `json:"rho"`
}

// NewGreeks 从计算层结果构造领域实体
func NewGreeks(v GreeksValues) Greeks {
	return Greeks{
		Delta: decimal.NewFromFloat(v.Delta),
		Gamma: decimal.NewFromFloat(v.Gamma),
		Theta: decimal.NewFromFloat(v.Theta),
		Vega:  decimal.NewFromFloat(v.Vega),
		Rho:   decimal.NewFromFloat(v.Rho),
	}
}

// ModelResult 单个模型的计算输出
type ModelResult struct {
	ModelName       string         `json:"model_name"`
	Price           float64        `json:"price"`
	Greeks          GreeksValues   `json:"greeks"`
	ComputationTime float64        `json:"computation_time"` // 秒
	Parameters      map[string]int `json:"parameters,omitempty"`
}

// PricingResult 定价结果实体（持久化）
type PricingResult struct {
	ID              uint            `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Symbol          string          `json:"symbol"`
	OptionType      OptionType      `json:"option_type"`
	StrikePrice     decimal.Decimal `json:"strike_price"`
	TimeToExpiry    float64         `json:"time_to_expiry"`
	OptionPrice     decimal.Decimal `json:"option_price"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	Delta           decimal.Decimal `json:"delta"`
	Gamma           decimal.Decimal `json:"gamma"`
	Theta           decimal.Decimal `json:"theta"`
	Vega            decimal.Decimal `json:"vega"`
	Rho             decimal.Decimal `json:"rho"`
	PricingModel    string          `json:"pricing_model"`
	ComputationTime float64         `json:"computation_time"` // 秒
	CalculatedAt    int64           `json:"calculated_at"`
}

// PricingRepository 定价历史仓储接口
type PricingRepository interface {
	Save(ctx context.Context, result *PricingResult) error
	GetLatest(ctx context.Context, symbol string) (*PricingResult, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}

// ResultCache 最新定价结果缓存接口
type ResultCache interface {
	SaveLatest(ctx context.Context, result *PricingResult) error
	GetLatest(ctx context.Context, symbol string) (*PricingResult, error)
}

// MarketDataClient 市场数据客户端接口
type MarketDataClient interface {
	GetSpotPrice(ctx context.Context, symbol string) (float64, error)
}

package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// BlackScholesModel 欧式期权 Black-Scholes 解析定价，含股息率修正
type BlackScholesModel struct{}

// NewBlackScholesModel 构造函数
func NewBlackScholesModel() *BlackScholesModel {
	return &BlackScholesModel{}
}

// Name 模型名称
func (m *BlackScholesModel) Name() string { return ModelBlackScholes }

// Parameters 解析模型无数值参数
func (m *BlackScholesModel) Parameters() map[string]int { return nil }

// Price 计算期权价格
func (m *BlackScholesModel) Price(params OptionParameters) (float64, error) {
	price, _ := m.priceAndGreeks(params)
	return price, nil
}

// CalculateGreeks 计算希腊字母（解析公式）
func (m *BlackScholesModel) CalculateGreeks(params OptionParameters) (GreeksValues, error) {
	_, greeks := m.priceAndGreeks(params)
	return greeks, nil
}

func (m *BlackScholesModel) priceAndGreeks(params OptionParameters) (float64, GreeksValues) {
	S := params.SpotPrice
	K := params.StrikePrice
	T := params.TimeToExpiry
	r := params.RiskFreeRate
	q := params.DividendYield
	sigma := params.Volatility

	// 已到期或零波动率退化为内在价值
	if T <= 0 || sigma <= 0 {
		return params.IntrinsicValue(), intrinsicGreeks(params)
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	nd1 := stdNormal.CDF(d1)
	nd2 := stdNormal.CDF(d2)
	pdfD1 := stdNormal.Prob(d1)

	discQ := math.Exp(-q * T)
	discR := math.Exp(-r * T)

	var price, delta, theta, rho float64
	if params.IsCall() {
		price = S*discQ*nd1 - K*discR*nd2
		delta = discQ * nd1
		theta = -S*pdfD1*sigma*discQ/(2*sqrtT) - r*K*discR*nd2 + q*S*discQ*nd1
		rho = K * T * discR * nd2 / 100
	} else {
		price = K*discR*stdNormal.CDF(-d2) - S*discQ*stdNormal.CDF(-d1)
		delta = -discQ * stdNormal.CDF(-d1)
		theta = -S*pdfD1*sigma*discQ/(2*sqrtT) + r*K*discR*stdNormal.CDF(-d2) - q*S*discQ*stdNormal.CDF(-d1)
		rho = -K * T * discR * stdNormal.CDF(-d2) / 100
	}

	greeks := GreeksValues{
		Delta: delta,
		Gamma: pdfD1 * discQ / (S * sigma * sqrtT),
		Theta: theta / 365, // 每日
		Vega:  S * discQ * pdfD1 * sqrtT / 100,
		Rho:   rho,
	}

	return price, greeks
}

// intrinsicGreeks 退化场景的希腊字母：实值 delta 为 ±1，其余为零
func intrinsicGreeks(params OptionParameters) GreeksValues {
	var delta float64
	if params.IsCall() && params.SpotPrice > params.StrikePrice {
		delta = 1
	}
	if !params.IsCall() && params.SpotPrice < params.StrikePrice {
		delta = -1
	}
	return GreeksValues{Delta: delta}
}

package domain

import (
	"math"
)

// DefaultBinomialSteps 二叉树默认步数
const DefaultBinomialSteps = 100

// BinomialTreeModel Cox-Ross-Rubinstein 二叉树定价
type BinomialTreeModel struct {
	steps int
}

// NewBinomialTreeModel 构造函数，steps 非正时使用默认步数
func NewBinomialTreeModel(steps int) *BinomialTreeModel {
	if steps <= 0 {
		steps = DefaultBinomialSteps
	}
	return &BinomialTreeModel{steps: steps}
}

// Name 模型名称
func (m *BinomialTreeModel) Name() string { return ModelBinomialTree }

// Parameters 模型参数
func (m *BinomialTreeModel) Parameters() map[string]int {
	return map[string]int{"steps": m.steps}
}

// Price 计算期权价格
func (m *BinomialTreeModel) Price(params OptionParameters) (float64, error) {
	if params.TimeToExpiry <= 0 || params.Volatility <= 0 {
		return params.IntrinsicValue(), nil
	}

	S := params.SpotPrice
	K := params.StrikePrice
	T := params.TimeToExpiry
	r := params.RiskFreeRate
	q := params.DividendYield
	sigma := params.Volatility
	n := m.steps

	dt := T / float64(n)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp((r-q)*dt) - d) / (u - d)
	discount := math.Exp(-r * dt)

	// 终端节点收益，单列反向归纳，无需完整价格矩阵
	values := make([]float64, n+1)
	for j := 0; j <= n; j++ {
		// j 次下行、n-j 次上行的终端价格
		ST := S * math.Pow(u, float64(n-j)) * math.Pow(d, float64(j))
		if params.IsCall() {
			values[j] = max(0, ST-K)
		} else {
			values[j] = max(0, K-ST)
		}
	}

	for i := n - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			values[j] = discount * (p*values[j] + (1-p)*values[j+1])
		}
	}

	return values[0], nil
}

// CalculateGreeks 计算希腊字母（中心差分）
func (m *BinomialTreeModel) CalculateGreeks(params OptionParameters) (GreeksValues, error) {
	return finiteDifferenceGreeks(m.Price, params)
}

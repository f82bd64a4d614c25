package domain

// 定价模型名称
const (
	ModelBlackScholes = "BlackScholes"
	ModelBinomialTree = "BinomialTree"
	ModelMonteCarlo   = "MonteCarlo"
)

// PricingModel 定价模型接口
// Price 与 CalculateGreeks 假定参数已通过 Validate
type PricingModel interface {
	// Name 模型名称
	Name() string
	// Price 计算期权价格
	Price(params OptionParameters) (float64, error)
	// CalculateGreeks 计算希腊字母
	CalculateGreeks(params OptionParameters) (GreeksValues, error)
	// Parameters 模型自身的数值参数（步数、路径数），无则返回 nil
	Parameters() map[string]int
}

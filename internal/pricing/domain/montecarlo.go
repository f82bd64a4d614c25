package domain

import (
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
)

// DefaultMonteCarloPaths 蒙特卡洛默认路径数
const DefaultMonteCarloPaths = 10000

// DefaultMonteCarloSeed 默认随机种子，固定种子保证希腊字母差分使用共同随机数
const DefaultMonteCarloSeed = 42

// MonteCarloModel 几何布朗运动终端价蒙特卡洛定价
type MonteCarloModel struct {
	paths int
	seed  uint64
}

// NewMonteCarloModel 构造函数，paths 非正时使用默认路径数
func NewMonteCarloModel(paths int, seed uint64) *MonteCarloModel {
	if paths <= 0 {
		paths = DefaultMonteCarloPaths
	}
	if seed == 0 {
		seed = DefaultMonteCarloSeed
	}
	return &MonteCarloModel{paths: paths, seed: seed}
}

// Name 模型名称
func (m *MonteCarloModel) Name() string { return ModelMonteCarlo }

// Parameters 模型参数
func (m *MonteCarloModel) Parameters() map[string]int {
	return map[string]int{"paths": m.paths}
}

// Price 计算期权价格
// 终端价 S_T = S·exp((r-q-σ²/2)T + σ√T·z)，价格为贴现平均收益
func (m *MonteCarloModel) Price(params OptionParameters) (float64, error) {
	if params.TimeToExpiry <= 0 || params.Volatility <= 0 {
		return params.IntrinsicValue(), nil
	}

	S := params.SpotPrice
	K := params.StrikePrice
	T := params.TimeToExpiry
	r := params.RiskFreeRate
	q := params.DividendYield
	sigma := params.Volatility

	drift := (r - q - 0.5*sigma*sigma) * T
	vol := sigma * math.Sqrt(T)
	isCall := params.IsCall()

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > m.paths {
		numWorkers = 1
	}
	chunk := m.paths / numWorkers

	sums := make([]float64, numWorkers)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		paths := chunk
		if w == numWorkers-1 {
			paths += m.paths % numWorkers
		}

		wg.Add(1)
		go func(worker, paths int) {
			defer wg.Done()

			// 每个 worker 独立确定性种子，保证结果可复现
			rng := rand.New(rand.NewSource(m.seed + uint64(worker)))

			var sum float64
			for i := 0; i < paths; i++ {
				z := rng.NormFloat64()
				ST := S * math.Exp(drift+vol*z)
				if isCall {
					sum += max(0, ST-K)
				} else {
					sum += max(0, K-ST)
				}
			}
			sums[worker] = sum
		}(w, paths)
	}
	wg.Wait()

	var total float64
	for _, s := range sums {
		total += s
	}

	return math.Exp(-r*T) * total / float64(m.paths), nil
}

// CalculateGreeks 计算希腊字母（中心差分，固定种子共同随机数降噪）
func (m *MonteCarloModel) CalculateGreeks(params OptionParameters) (GreeksValues, error) {
	return finiteDifferenceGreeks(m.Price, params)
}

package domain

// 数值模型共用的中心差分希腊字母
// 扰动量：现货 ±1%，时间 1 天，波动率 1 个点，利率 1 个点

const oneDay = 1.0 / 365.0

type priceFunc func(OptionParameters) (float64, error)

func finiteDifferenceGreeks(price priceFunc, params OptionParameters) (GreeksValues, error) {
	base, err := price(params)
	if err != nil {
		return GreeksValues{}, err
	}

	// Delta / Gamma
	dS := params.SpotPrice * 0.01
	up := params
	up.SpotPrice += dS
	down := params
	down.SpotPrice -= dS

	priceUp, err := price(up)
	if err != nil {
		return GreeksValues{}, err
	}
	priceDown, err := price(down)
	if err != nil {
		return GreeksValues{}, err
	}

	delta := (priceUp - priceDown) / (2 * dS)
	gamma := (priceUp - 2*base + priceDown) / (dS * dS)

	// Theta：时间前移一天，每日衰减
	shorter := params
	shorter.TimeToExpiry = max(params.TimeToExpiry-oneDay, oneDay)
	priceTheta, err := price(shorter)
	if err != nil {
		return GreeksValues{}, err
	}
	theta := priceTheta - base

	// Vega：波动率 +1 个点的价格变化
	bumpedVol := params
	bumpedVol.Volatility += 0.01
	priceVega, err := price(bumpedVol)
	if err != nil {
		return GreeksValues{}, err
	}
	vega := priceVega - base

	// Rho：利率 +1 个点的价格变化
	bumpedRate := params
	bumpedRate.RiskFreeRate += 0.01
	priceRho, err := price(bumpedRate)
	if err != nil {
		return GreeksValues{}, err
	}
	rho := priceRho - base

	return GreeksValues{
		Delta: delta,
		Gamma: gamma,
		Theta: theta,
		Vega:  vega,
		Rho:   rho,
	}, nil
}

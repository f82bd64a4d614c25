package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinomialTreeConvergesToBlackScholes(t *testing.T) {
	bs := NewBlackScholesModel()
	tree := NewBinomialTreeModel(500)

	for _, params := range []OptionParameters{
		atmCall(),
		{Symbol: "AAPL", Type: OptionTypePut, SpotPrice: 100, StrikePrice: 110, TimeToExpiry: 0.5, RiskFreeRate: 0.03, Volatility: 0.25},
		{Symbol: "AAPL", Type: OptionTypeCall, SpotPrice: 120, StrikePrice: 100, TimeToExpiry: 2, RiskFreeRate: 0.04, DividendYield: 0.02, Volatility: 0.30},
	} {
		bsPrice, err := bs.Price(params)
		require.NoError(t, err)
		treePrice, err := tree.Price(params)
		require.NoError(t, err)

		assert.InDelta(t, bsPrice, treePrice, bsPrice*0.005,
			"binomial tree should converge to Black-Scholes for %s %s", params.Symbol, params.Type)
	}
}

func TestBinomialTreeDefaultSteps(t *testing.T) {
	tree := NewBinomialTreeModel(0)
	assert.Equal(t, DefaultBinomialSteps, tree.Parameters()["steps"])
}

func TestBinomialTreeExpiredOptionIntrinsicValue(t *testing.T) {
	tree := NewBinomialTreeModel(100)

	params := atmCall()
	params.SpotPrice = 90
	params.StrikePrice = 100
	params.Type = OptionTypePut
	params.TimeToExpiry = 0

	price, err := tree.Price(params)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, price, 1e-10)
}

func TestBinomialTreeGreeksCloseToAnalytic(t *testing.T) {
	bs := NewBlackScholesModel()
	tree := NewBinomialTreeModel(500)

	params := atmCall()
	analytic, err := bs.CalculateGreeks(params)
	require.NoError(t, err)
	numeric, err := tree.CalculateGreeks(params)
	require.NoError(t, err)

	assert.InDelta(t, analytic.Delta, numeric.Delta, 0.02)
	assert.InDelta(t, analytic.Gamma, numeric.Gamma, 0.02)
}

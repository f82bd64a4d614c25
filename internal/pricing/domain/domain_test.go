package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionType(t *testing.T) {
	for _, tc := range []struct {
		input   string
		want    OptionType
		wantErr bool
	}{
		{"call", OptionTypeCall, false},
		{"put", OptionTypePut, false},
		{"CALL", OptionTypeCall, false},
		{"Put", OptionTypePut, false},
		{"straddle", "", true},
		{"", "", true},
	} {
		got, err := ParseOptionType(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
		} else {
			require.NoError(t, err, "input %q", tc.input)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := atmCall()
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*OptionParameters){
		"missing symbol":     func(p *OptionParameters) { p.Symbol = "" },
		"bad option type":    func(p *OptionParameters) { p.Type = "straddle" },
		"zero spot":          func(p *OptionParameters) { p.SpotPrice = 0 },
		"negative spot":      func(p *OptionParameters) { p.SpotPrice = -100 },
		"zero strike":        func(p *OptionParameters) { p.StrikePrice = 0 },
		"zero expiry":        func(p *OptionParameters) { p.TimeToExpiry = 0 },
		"expiry too long":    func(p *OptionParameters) { p.TimeToExpiry = 11 },
		"zero volatility":    func(p *OptionParameters) { p.Volatility = 0 },
		"volatility too high": func(p *OptionParameters) { p.Volatility = 5.5 },
	} {
		t.Run(name, func(t *testing.T) {
			params := valid
			mutate(&params)
			err := params.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	params := OptionParameters{}
	err := params.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.Contains(t, err.Error(), "symbol is required")
	assert.Contains(t, err.Error(), "spot price must be positive")
	assert.Contains(t, err.Error(), "volatility must be positive")
}

func TestIntrinsicValue(t *testing.T) {
	call := OptionParameters{Type: OptionTypeCall, SpotPrice: 110, StrikePrice: 100}
	assert.Equal(t, 10.0, call.IntrinsicValue())

	otmCall := OptionParameters{Type: OptionTypeCall, SpotPrice: 90, StrikePrice: 100}
	assert.Zero(t, otmCall.IntrinsicValue())

	put := OptionParameters{Type: OptionTypePut, SpotPrice: 90, StrikePrice: 100}
	assert.Equal(t, 10.0, put.IntrinsicValue())
}

func TestNegativeRatesAccepted(t *testing.T) {
	params := atmCall()
	params.RiskFreeRate = -0.01
	assert.NoError(t, params.Validate())
}

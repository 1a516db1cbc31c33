package indicator

import (
	"testing"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/stretchr/testify/suite"
)

type ComputeTestSuite struct {
	suite.Suite

	snapshot types.MarketSnapshot
}

func TestComputeSuite(t *testing.T) {
	suite.Run(t, new(ComputeTestSuite))
}

func (suite *ComputeTestSuite) SetupTest() {
	closes := make([]float64, 50)
	highs := make([]float64, 50)
	lows := make([]float64, 50)

	for i := range closes {
		closes[i] = 1.1 + float64(i%10)*0.002
		highs[i] = closes[i] * 1.002
		lows[i] = closes[i] * 0.998
	}

	suite.snapshot = types.MarketSnapshot{
		Symbol:       "EURUSD",
		Timeframe:    types.Timeframe15Min,
		Closes:       closes,
		Highs:        highs,
		Lows:         lows,
		CurrentPrice: closes[len(closes)-1],
	}
}

func (suite *ComputeTestSuite) TestComputeAllTypes() {
	specs := []types.IndicatorSpec{
		{Type: types.IndicatorTypeRSI},
		{Type: types.IndicatorTypeSMA},
		{Type: types.IndicatorTypeEMA},
		{Type: types.IndicatorTypeMACD},
		{Type: types.IndicatorTypeBollinger},
		{Type: types.IndicatorTypeStochastic},
	}

	values := Compute(specs, suite.snapshot)

	for _, key := range []string{
		ValueRSI, ValueSMA, ValueEMA,
		ValueMACD, ValueMACDSignal, ValueMACDHistogram,
		ValueBBUpper, ValueBBMiddle, ValueBBLower,
		ValueStochK, ValueStochD,
	} {
		suite.Contains(values, key)
	}
}

func (suite *ComputeTestSuite) TestComputeAppliesParams() {
	specs := []types.IndicatorSpec{
		{Type: types.IndicatorTypeSMA, SMA: &types.SMAParams{Period: 5}},
	}

	values := Compute(specs, suite.snapshot)
	suite.InDelta(SMA(suite.snapshot.Closes, 5), values[ValueSMA], 1e-9)
}

func (suite *ComputeTestSuite) TestComputeNilParamsUseDefaults() {
	specs := []types.IndicatorSpec{{Type: types.IndicatorTypeRSI}}

	values := Compute(specs, suite.snapshot)
	suite.InDelta(RSI(suite.snapshot.Closes, DefaultRSIPeriod), values[ValueRSI], 1e-9)
}

func (suite *ComputeTestSuite) TestComputeUnknownTypeSkipped() {
	specs := []types.IndicatorSpec{{Type: types.IndicatorType("VWAP")}}

	values := Compute(specs, suite.snapshot)
	suite.Empty(values)
}

func (suite *ComputeTestSuite) TestComputeEmptySpecs() {
	suite.Empty(Compute(nil, suite.snapshot))
}

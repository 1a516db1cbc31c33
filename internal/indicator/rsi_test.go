package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestInsufficientDataReturnsNeutral() {
	prices := make([]float64, 14) // need period+1
	suite.Equal(NeutralRSI, RSI(prices, 14))
	suite.Equal(NeutralRSI, RSI(nil, 14))
}

func (suite *RSITestSuite) TestPerfectUptrendIsExactly100() {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	suite.Equal(100.0, RSI(prices, 14))
}

func (suite *RSITestSuite) TestPerfectDowntrendIsZero() {
	prices := []float64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	suite.InDelta(0.0, RSI(prices, 14), 1e-9)
}

func (suite *RSITestSuite) TestAlwaysWithinBounds() {
	prices := []float64{
		1.10, 1.12, 1.08, 1.15, 1.11, 1.13, 1.09, 1.14,
		1.10, 1.16, 1.12, 1.18, 1.13, 1.19, 1.15, 1.20,
	}

	for period := 2; period <= 14; period++ {
		value := RSI(prices, period)
		suite.GreaterOrEqual(value, 0.0)
		suite.LessOrEqual(value, 100.0)
	}
}

func (suite *RSITestSuite) TestBalancedGainsAndLosses() {
	// Alternating equally sized moves: avg gain == avg loss, RSI == 50.
	prices := []float64{
		1.0, 1.1, 1.0, 1.1, 1.0, 1.1, 1.0, 1.1,
		1.0, 1.1, 1.0, 1.1, 1.0, 1.1, 1.0,
	}
	suite.InDelta(50.0, RSI(prices, 14), 1e-9)
}

func (suite *RSITestSuite) TestNonPositivePeriodUsesDefault() {
	prices := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	suite.Equal(RSI(prices, DefaultRSIPeriod), RSI(prices, 0))
}

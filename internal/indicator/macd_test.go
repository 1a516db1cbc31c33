package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MACDTestSuite struct {
	suite.Suite
}

func TestMACDSuite(t *testing.T) {
	suite.Run(t, new(MACDTestSuite))
}

func (suite *MACDTestSuite) TestInsufficientDataFallback() {
	// 20 bars < slow period of 26: must degrade, never error.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 1.1 + float64(i)*0.001
	}

	result := MACD(prices, 12, 26, 9)
	suite.Zero(result.Line)
	suite.Zero(result.Signal)
	suite.Zero(result.Histogram)
}

func (suite *MACDTestSuite) TestLineIsFastMinusSlowEMA() {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 1.0 + float64(i)*0.01
	}

	result := MACD(prices, 12, 26, 9)
	suite.InDelta(EMA(prices, 12)-EMA(prices, 26), result.Line, 1e-9)
}

func (suite *MACDTestSuite) TestSignalLineApproximation() {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 1.0 + float64(i)*0.01
	}

	result := MACD(prices, 12, 26, 9)
	suite.InDelta(result.Line*0.9, result.Signal, 1e-9)
	suite.InDelta(result.Line-result.Signal, result.Histogram, 1e-9)
}

func (suite *MACDTestSuite) TestUptrendIsPositive() {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	result := MACD(prices, 12, 26, 9)
	suite.Greater(result.Line, 0.0)
	suite.Greater(result.Histogram, 0.0)
}

func (suite *MACDTestSuite) TestDowntrendIsNegative() {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 160 - float64(i)
	}

	result := MACD(prices, 12, 26, 9)
	suite.Less(result.Line, 0.0)
	suite.Less(result.Histogram, 0.0)
}

package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StochasticTestSuite struct {
	suite.Suite
}

func TestStochasticSuite(t *testing.T) {
	suite.Run(t, new(StochasticTestSuite))
}

func flatSeries(value float64, n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = value
	}

	return series
}

func (suite *StochasticTestSuite) TestFlatWindowReturnsNeutralK() {
	highs := flatSeries(1.2, 20)
	lows := flatSeries(1.2, 20)
	closes := flatSeries(1.2, 20)

	result := Stochastic(highs, lows, closes, 14)
	suite.Equal(50.0, result.K)
}

func (suite *StochasticTestSuite) TestCloseAtHighIs100() {
	highs := flatSeries(1.3, 20)
	lows := flatSeries(1.1, 20)
	closes := flatSeries(1.2, 20)
	closes[len(closes)-1] = 1.3

	result := Stochastic(highs, lows, closes, 14)
	suite.InDelta(100.0, result.K, 1e-9)
	suite.InDelta(80.0, result.D, 1e-9)
}

func (suite *StochasticTestSuite) TestCloseAtLowIsZero() {
	highs := flatSeries(1.3, 20)
	lows := flatSeries(1.1, 20)
	closes := flatSeries(1.2, 20)
	closes[len(closes)-1] = 1.1

	result := Stochastic(highs, lows, closes, 14)
	suite.InDelta(0.0, result.K, 1e-9)
}

func (suite *StochasticTestSuite) TestKAlwaysWithinBounds() {
	highs := []float64{1.3, 1.35, 1.32, 1.4, 1.38, 1.36, 1.33, 1.39, 1.41, 1.37, 1.34, 1.42, 1.38, 1.36}
	lows := []float64{1.2, 1.22, 1.21, 1.25, 1.24, 1.23, 1.2, 1.26, 1.27, 1.25, 1.22, 1.28, 1.26, 1.24}
	closes := []float64{1.25, 1.3, 1.28, 1.33, 1.3, 1.29, 1.27, 1.32, 1.35, 1.3, 1.28, 1.36, 1.31, 1.3}

	result := Stochastic(highs, lows, closes, 14)
	suite.GreaterOrEqual(result.K, 0.0)
	suite.LessOrEqual(result.K, 100.0)
}

func (suite *StochasticTestSuite) TestInsufficientDataReturnsNeutral() {
	result := Stochastic(flatSeries(1, 5), flatSeries(1, 5), flatSeries(1, 5), 14)
	suite.Equal(50.0, result.K)
	suite.Equal(50.0, result.D)
}

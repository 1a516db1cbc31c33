package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestConstantSeriesCollapsesBands() {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 1.2
	}

	bands := BollingerBands(prices, 20, 2.0)
	suite.InDelta(1.2, bands.Middle, 1e-9)
	suite.InDelta(1.2, bands.Upper, 1e-9)
	suite.InDelta(1.2, bands.Lower, 1e-9)
}

func (suite *BollingerBandsTestSuite) TestBandsSymmetricAroundMiddle() {
	prices := []float64{
		1.10, 1.12, 1.08, 1.15, 1.11, 1.13, 1.09, 1.14, 1.10, 1.16,
		1.12, 1.18, 1.13, 1.19, 1.15, 1.20, 1.14, 1.17, 1.11, 1.16,
	}

	bands := BollingerBands(prices, 20, 2.0)
	suite.InDelta(bands.Middle-bands.Lower, bands.Upper-bands.Middle, 1e-9)
	suite.Greater(bands.Upper, bands.Middle)
	suite.Less(bands.Lower, bands.Middle)
}

func (suite *BollingerBandsTestSuite) TestPopulationStdDev() {
	// Two alternating values: mean 3, population sigma 1.
	prices := []float64{2, 4, 2, 4}

	bands := BollingerBands(prices, 4, 2.0)
	suite.InDelta(3.0, bands.Middle, 1e-9)
	suite.InDelta(5.0, bands.Upper, 1e-9)
	suite.InDelta(1.0, bands.Lower, 1e-9)
	suite.False(math.IsNaN(bands.Upper))
}

func (suite *BollingerBandsTestSuite) TestInsufficientDataCollapsesToLastPrice() {
	bands := BollingerBands([]float64{1.5, 1.6}, 20, 2.0)
	suite.Equal(Bands{Upper: 1.6, Middle: 1.6, Lower: 1.6}, bands)

	empty := BollingerBands(nil, 20, 2.0)
	suite.Equal(Bands{}, empty)
}

package indicator

import "math"

// Bands holds the three Bollinger Band levels.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands computes the middle band as SMA(period) and the upper and
// lower bands at stdDev population standard deviations around it, measured
// over the last period prices.
//
// Fallback: fewer than period prices collapses all three bands to the last
// available price (0 on an empty series), so band-touch conditions read as
// "price at every band" rather than erroring during warm-up.
func BollingerBands(prices []float64, period int, stdDev float64) Bands {
	if period <= 0 {
		period = DefaultBollingerPeriod
	}

	if stdDev <= 0 {
		stdDev = DefaultBollingerStdDev
	}

	if len(prices) < period {
		price := lastPrice(prices)

		return Bands{Upper: price, Middle: price, Lower: price}
	}

	middle := SMA(prices, period)

	variance := 0.0
	for _, price := range prices[len(prices)-period:] {
		diff := price - middle
		variance += diff * diff
	}

	variance /= float64(period)
	sigma := math.Sqrt(variance)

	return Bands{
		Upper:  middle + stdDev*sigma,
		Middle: middle,
		Lower:  middle - stdDev*sigma,
	}
}

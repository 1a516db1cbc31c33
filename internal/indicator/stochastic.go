package indicator

// StochasticResult holds the %K and %D oscillator values.
type StochasticResult struct {
	K float64
	D float64
}

// NeutralStochastic is the %K/%D value reported when the series is too
// short or the lookback window is completely flat.
const NeutralStochastic = 50.0

// dLineFactor approximates the smoothed %D line as a constant fraction of
// %K.
const dLineFactor = 0.8

// Stochastic computes the Stochastic Oscillator:
// %K = 100 x (close - lowestLow) / (highestHigh - lowestLow) over the last
// period bars. %K is always within [0, 100].
//
// Edge case: a flat window (highestHigh == lowestLow) returns %K = 50
// instead of dividing by zero.
//
// Approximation note: %D is documented as a smoothed %K but is computed as
// 0.8 x %K, a deliberate simplification kept from the reference behavior
// (see the matching note on MACD). Strategies comparing STOCH_K against
// STOCH_D rely on this fixed ratio.
//
// Fallback: fewer than period closes returns 50/50.
func Stochastic(highs, lows, closes []float64, period int) StochasticResult {
	if period <= 0 {
		period = DefaultStochasticPeriod
	}

	if len(closes) < period || len(highs) < period || len(lows) < period {
		return StochasticResult{K: NeutralStochastic, D: NeutralStochastic}
	}

	highestHigh := highs[len(highs)-period]
	for _, high := range highs[len(highs)-period:] {
		if high > highestHigh {
			highestHigh = high
		}
	}

	lowestLow := lows[len(lows)-period]
	for _, low := range lows[len(lows)-period:] {
		if low < lowestLow {
			lowestLow = low
		}
	}

	if highestHigh == lowestLow {
		return StochasticResult{K: NeutralStochastic, D: NeutralStochastic * dLineFactor}
	}

	k := 100 * (closes[len(closes)-1] - lowestLow) / (highestHigh - lowestLow)

	return StochasticResult{K: k, D: k * dLineFactor}
}

package indicator

// NeutralRSI is returned when the series is too short for an RSI
// computation: neither overbought nor oversold, so no condition on standard
// 30/70 thresholds can fire during warm-up.
const NeutralRSI = 50.0

// RSI computes the Relative Strength Index over the last period price
// changes. Positive deltas count as gains, negative deltas as losses; the
// averages of the most recent period gains and losses form the relative
// strength.
//
// Edge case: a zero average loss means a perfect uptrend and returns 100
// exactly rather than dividing by zero. The result is always within
// [0, 100].
//
// Fallback: fewer than period+1 prices returns NeutralRSI.
func RSI(prices []float64, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}

	if len(prices) < period+1 {
		return NeutralRSI
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)

	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for _, gain := range gains[len(gains)-period:] {
		avgGain += gain
	}

	for _, loss := range losses[len(losses)-period:] {
		avgLoss += loss
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}

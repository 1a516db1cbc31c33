package indicator

// SMA computes the simple moving average: the arithmetic mean of the last
// period prices.
//
// Fallback: with fewer than period prices the last available price is
// returned, and 0 on an empty series. During warm-up this makes the average
// track the raw price, which keeps price-vs-MA conditions from firing
// spuriously but also means early signals carry no smoothing.
func SMA(prices []float64, period int) float64 {
	if period <= 0 {
		period = 1
	}

	if len(prices) < period {
		return lastPrice(prices)
	}

	sum := 0.0
	for _, price := range prices[len(prices)-period:] {
		sum += price
	}

	return sum / float64(period)
}

// EMA computes the exponential moving average seeded with the SMA of the
// first period prices and then folding the remaining prices in
// chronological order with weight 2/(period+1).
//
// Fallback: same degraded behavior as SMA below the minimum window.
func EMA(prices []float64, period int) float64 {
	if period <= 0 {
		period = 1
	}

	if len(prices) < period {
		return lastPrice(prices)
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	seed := 0.0
	for _, price := range prices[:period] {
		seed += price
	}

	ema := seed / float64(period)

	for _, price := range prices[period:] {
		ema = price*multiplier + ema*(1.0-multiplier)
	}

	return ema
}

// lastPrice is the shared warm-up fallback for moving averages.
func lastPrice(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	return prices[len(prices)-1]
}

package indicator

// MACDResult holds the three MACD output values.
type MACDResult struct {
	// Line is EMA(fast) - EMA(slow).
	Line float64
	// Signal is the signal line; see the approximation note on MACD.
	Signal float64
	// Histogram is Line - Signal.
	Histogram float64
}

// signalLineFactor approximates the smoothed signal line as a constant
// fraction of the MACD line.
const signalLineFactor = 0.9

// MACD computes the Moving Average Convergence Divergence.
//
// Approximation note: the signal line here is NOT a true EMA of the MACD
// line's history. It is a deliberate simplification carried over from the
// reference behavior: signal = 0.9 x line, histogram = 0.1 x line. The
// histogram therefore always shares the MACD line's sign. Replacing this
// with true smoothing would change signal timing for every strategy that
// compares MACD against MACD_SIGNAL, so the approximation is kept and
// documented. The signalPeriod parameter is accepted for config
// compatibility but does not affect the result.
//
// Fallback: fewer than slow prices returns all-zero lines.
func MACD(prices []float64, fast, slow, signalPeriod int) MACDResult {
	if fast <= 0 {
		fast = DefaultMACDFast
	}

	if slow <= 0 {
		slow = DefaultMACDSlow
	}

	_ = signalPeriod // retained for configuration compatibility

	if len(prices) < slow {
		return MACDResult{}
	}

	line := EMA(prices, fast) - EMA(prices, slow)
	signal := line * signalLineFactor

	return MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
}

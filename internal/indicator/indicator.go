// Package indicator implements the technical-analysis math used by the
// condition evaluator. All functions are pure and total: below the minimum
// data window they return a documented fallback instead of an error, so a
// short warm-up series can never abort a worker cycle.
package indicator

import (
	"github.com/signalmaster/signal-engine/internal/types"
)

// Default parameter values applied when a spec omits its params struct.
const (
	DefaultRSIPeriod        = 14
	DefaultSMAPeriod        = 20
	DefaultEMAPeriod        = 20
	DefaultMACDFast         = 12
	DefaultMACDSlow         = 26
	DefaultMACDSignal       = 9
	DefaultBollingerPeriod  = 20
	DefaultBollingerStdDev  = 2.0
	DefaultStochasticPeriod = 14
)

// Value-map keys produced by Compute. Conditions reference these names.
const (
	ValueRSI           = "RSI"
	ValueSMA           = "SMA"
	ValueEMA           = "EMA"
	ValueMACD          = "MACD"
	ValueMACDSignal    = "MACD_SIGNAL"
	ValueMACDHistogram = "MACD_HISTOGRAM"
	ValueBBUpper       = "BB_UPPER"
	ValueBBMiddle      = "BB_MIDDLE"
	ValueBBLower       = "BB_LOWER"
	ValueStochK        = "STOCH_K"
	ValueStochD        = "STOCH_D"
)

// Values is the flat indicator-name to value mapping consumed by the
// condition evaluator.
type Values map[string]float64

// Compute runs every configured indicator spec against the snapshot and
// returns the merged value map. Unknown spec types are skipped; each
// computation degrades to its documented fallback when the series is too
// short, so the result always contains an entry for every recognized spec.
func Compute(specs []types.IndicatorSpec, snapshot types.MarketSnapshot) Values {
	values := make(Values)

	for _, spec := range specs {
		computeSpec(spec, snapshot, values)
	}

	return values
}

// computeSpec dispatches a single spec of the tagged union into the value
// map. This switch is the only place indicator types are enumerated.
func computeSpec(spec types.IndicatorSpec, snapshot types.MarketSnapshot, values Values) {
	switch spec.Type {
	case types.IndicatorTypeRSI:
		period := DefaultRSIPeriod
		if spec.RSI != nil && spec.RSI.Period > 0 {
			period = spec.RSI.Period
		}

		values[ValueRSI] = RSI(snapshot.Closes, period)

	case types.IndicatorTypeSMA:
		period := DefaultSMAPeriod
		if spec.SMA != nil && spec.SMA.Period > 0 {
			period = spec.SMA.Period
		}

		values[ValueSMA] = SMA(snapshot.Closes, period)

	case types.IndicatorTypeEMA:
		period := DefaultEMAPeriod
		if spec.EMA != nil && spec.EMA.Period > 0 {
			period = spec.EMA.Period
		}

		values[ValueEMA] = EMA(snapshot.Closes, period)

	case types.IndicatorTypeMACD:
		fast, slow, signal := DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal
		if spec.MACD != nil {
			if spec.MACD.Fast > 0 {
				fast = spec.MACD.Fast
			}

			if spec.MACD.Slow > 0 {
				slow = spec.MACD.Slow
			}

			if spec.MACD.Signal > 0 {
				signal = spec.MACD.Signal
			}
		}

		macd := MACD(snapshot.Closes, fast, slow, signal)
		values[ValueMACD] = macd.Line
		values[ValueMACDSignal] = macd.Signal
		values[ValueMACDHistogram] = macd.Histogram

	case types.IndicatorTypeBollinger:
		period := DefaultBollingerPeriod
		stdDev := DefaultBollingerStdDev

		if spec.Bollinger != nil {
			if spec.Bollinger.Period > 0 {
				period = spec.Bollinger.Period
			}

			if spec.Bollinger.StdDev > 0 {
				stdDev = spec.Bollinger.StdDev
			}
		}

		bands := BollingerBands(snapshot.Closes, period, stdDev)
		values[ValueBBUpper] = bands.Upper
		values[ValueBBMiddle] = bands.Middle
		values[ValueBBLower] = bands.Lower

	case types.IndicatorTypeStochastic:
		period := DefaultStochasticPeriod
		if spec.Stochastic != nil && spec.Stochastic.Period > 0 {
			period = spec.Stochastic.Period
		}

		stoch := Stochastic(snapshot.Highs, snapshot.Lows, snapshot.Closes, period)
		values[ValueStochK] = stoch.K
		values[ValueStochD] = stoch.D
	}
}

package types

import "time"

// Timeframe is the candle granularity of a subscription. It governs both the
// resolution of fetched market data and how often the worker re-evaluates the
// subscription.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1min"
	Timeframe5Min  Timeframe = "5min"
	Timeframe15Min Timeframe = "15min"
	Timeframe30Min Timeframe = "30min"
	Timeframe1Hour Timeframe = "1h"
	Timeframe4Hour Timeframe = "4h"
	Timeframe1Day  Timeframe = "1d"
)

// DefaultCheckInterval is used for timeframes outside the known set.
const DefaultCheckInterval = 5 * time.Minute

// timeframeAliases maps the spellings accepted from clients to canonical
// timeframes. MT-style (H1, H4, D1) and short (1m, 5m) forms are accepted.
var timeframeAliases = map[string]Timeframe{
	"1min":  Timeframe1Min,
	"1m":    Timeframe1Min,
	"M1":    Timeframe1Min,
	"5min":  Timeframe5Min,
	"5m":    Timeframe5Min,
	"M5":    Timeframe5Min,
	"15min": Timeframe15Min,
	"15m":   Timeframe15Min,
	"M15":   Timeframe15Min,
	"30min": Timeframe30Min,
	"30m":   Timeframe30Min,
	"M30":   Timeframe30Min,
	"1h":    Timeframe1Hour,
	"1H":    Timeframe1Hour,
	"H1":    Timeframe1Hour,
	"4h":    Timeframe4Hour,
	"4H":    Timeframe4Hour,
	"H4":    Timeframe4Hour,
	"1d":    Timeframe1Day,
	"1D":    Timeframe1Day,
	"D1":    Timeframe1Day,
}

// checkIntervals is the per-timeframe monitoring cadence. Slower timeframes
// are checked less often than their candle duration on purpose: a 1h candle
// rarely produces a fresh verdict more than once per 45 minutes.
var checkIntervals = map[Timeframe]time.Duration{
	Timeframe1Min:  1 * time.Minute,
	Timeframe5Min:  5 * time.Minute,
	Timeframe15Min: 10 * time.Minute,
	Timeframe30Min: 20 * time.Minute,
	Timeframe1Hour: 45 * time.Minute,
	Timeframe4Hour: 60 * time.Minute,
	Timeframe1Day:  240 * time.Minute,
}

// barDurations is the actual candle duration per timeframe, used to size the
// history window requested from market data providers.
var barDurations = map[Timeframe]time.Duration{
	Timeframe1Min:  1 * time.Minute,
	Timeframe5Min:  5 * time.Minute,
	Timeframe15Min: 15 * time.Minute,
	Timeframe30Min: 30 * time.Minute,
	Timeframe1Hour: 1 * time.Hour,
	Timeframe4Hour: 4 * time.Hour,
	Timeframe1Day:  24 * time.Hour,
}

// ParseTimeframe normalizes a client-supplied timeframe string to its
// canonical value. Unknown spellings are passed through unchanged so the
// interval lookup can still apply its default.
func ParseTimeframe(s string) Timeframe {
	if tf, ok := timeframeAliases[s]; ok {
		return tf
	}

	return Timeframe(s)
}

// CheckInterval returns how long the worker waits between evaluations of a
// subscription on this timeframe. Unknown timeframes fall back to 5 minutes.
func (tf Timeframe) CheckInterval() time.Duration {
	if interval, ok := checkIntervals[tf]; ok {
		return interval
	}

	return DefaultCheckInterval
}

// Cooldown returns the minimum gap between two signals emitted on the same
// subscription: twice the monitoring interval.
func (tf Timeframe) Cooldown() time.Duration {
	return 2 * tf.CheckInterval()
}

// BarDuration returns the candle duration for this timeframe. Unknown
// timeframes report the default check interval.
func (tf Timeframe) BarDuration() time.Duration {
	if d, ok := barDurations[tf]; ok {
		return d
	}

	return DefaultCheckInterval
}

package types

import "time"

// Candle is a single OHLCV bar persisted by the backfill tooling and served
// by the store-backed market data provider.
type Candle struct {
	// Symbol is the instrument identifier.
	Symbol string `json:"symbol"`
	// Timeframe is the bar granularity.
	Timeframe Timeframe `json:"timeframe"`
	// Time is the bar's open time.
	Time time.Time `json:"time"`
	// Open is the opening price.
	Open float64 `json:"open"`
	// High is the highest traded price.
	High float64 `json:"high"`
	// Low is the lowest traded price.
	Low float64 `json:"low"`
	// Close is the closing price.
	Close float64 `json:"close"`
	// Volume is the traded volume.
	Volume float64 `json:"volume"`
}

// MarketSnapshot is the evaluation input fetched per subscription: the
// recent price history in chronological order plus the current price.
type MarketSnapshot struct {
	// Symbol is the instrument the snapshot describes.
	Symbol string `json:"symbol"`
	// Timeframe is the bar granularity of the series.
	Timeframe Timeframe `json:"timeframe"`
	// Closes holds closing prices, oldest first.
	Closes []float64 `json:"close_prices"`
	// Highs holds high prices, oldest first.
	Highs []float64 `json:"high_prices"`
	// Lows holds low prices, oldest first.
	Lows []float64 `json:"low_prices"`
	// CurrentPrice is the latest close.
	CurrentPrice float64 `json:"current_price"`
}

// Bars returns the number of bars in the snapshot.
func (m MarketSnapshot) Bars() int {
	return len(m.Closes)
}

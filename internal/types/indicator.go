package types

import "time"

// IndicatorType identifies one of the supported technical-analysis
// computations.
type IndicatorType string

const (
	IndicatorTypeRSI        IndicatorType = "RSI"
	IndicatorTypeSMA        IndicatorType = "SMA"
	IndicatorTypeEMA        IndicatorType = "EMA"
	IndicatorTypeMACD       IndicatorType = "MACD"
	IndicatorTypeBollinger  IndicatorType = "BOLLINGER"
	IndicatorTypeStochastic IndicatorType = "STOCHASTIC"
)

// RSIParams configures a Relative Strength Index computation.
type RSIParams struct {
	// Period is the lookback window. Defaults to 14.
	Period int `json:"period,omitempty" jsonschema:"title=Period,default=14"`
}

// SMAParams configures a Simple Moving Average computation.
type SMAParams struct {
	// Period is the lookback window. Defaults to 20.
	Period int `json:"period,omitempty" jsonschema:"title=Period,default=20"`
}

// EMAParams configures an Exponential Moving Average computation.
type EMAParams struct {
	// Period is the lookback window. Defaults to 20.
	Period int `json:"period,omitempty" jsonschema:"title=Period,default=20"`
}

// MACDParams configures a Moving Average Convergence Divergence computation.
type MACDParams struct {
	// Fast is the fast EMA period. Defaults to 12.
	Fast int `json:"fast,omitempty" jsonschema:"title=Fast period,default=12"`
	// Slow is the slow EMA period. Defaults to 26.
	Slow int `json:"slow,omitempty" jsonschema:"title=Slow period,default=26"`
	// Signal is the signal-line period. Defaults to 9.
	Signal int `json:"signal,omitempty" jsonschema:"title=Signal period,default=9"`
}

// BollingerParams configures a Bollinger Bands computation.
type BollingerParams struct {
	// Period is the lookback window. Defaults to 20.
	Period int `json:"period,omitempty" jsonschema:"title=Period,default=20"`
	// StdDev is the band width in standard deviations. Defaults to 2.0.
	StdDev float64 `json:"std_dev,omitempty" jsonschema:"title=Standard deviations,default=2"`
}

// StochasticParams configures a Stochastic Oscillator computation.
type StochasticParams struct {
	// Period is the lookback window. Defaults to 14.
	Period int `json:"period,omitempty" jsonschema:"title=Period,default=14"`
}

// IndicatorSpec is a tagged union over the supported indicator types. Type
// selects the variant; exactly the matching params field is consulted, and a
// nil params field means defaults.
type IndicatorSpec struct {
	Type       IndicatorType     `json:"type" jsonschema:"title=Indicator type,enum=RSI,enum=SMA,enum=EMA,enum=MACD,enum=BOLLINGER,enum=STOCHASTIC"`
	RSI        *RSIParams        `json:"rsi,omitempty"`
	SMA        *SMAParams        `json:"sma,omitempty"`
	EMA        *EMAParams        `json:"ema,omitempty"`
	MACD       *MACDParams       `json:"macd,omitempty"`
	Bollinger  *BollingerParams  `json:"bollinger,omitempty"`
	Stochastic *StochasticParams `json:"stochastic,omitempty"`
}

// IndicatorStatus is the soft-delete flag of an indicator.
type IndicatorStatus string

const (
	IndicatorStatusActive  IndicatorStatus = "active"
	IndicatorStatusDeleted IndicatorStatus = "deleted"
)

// Indicator is a mentor-authored strategy: a set of indicator computations
// plus BUY/SELL condition lists evaluated against them. IsRunning gates both
// visibility to end users and worker evaluation; mentors create indicators
// stopped and start them explicitly.
type Indicator struct {
	// ID is the unique identifier of the indicator.
	ID string `json:"id"`
	// MentorID is the owning mentor.
	MentorID string `json:"mentor_id"`
	// Name is the mentor-facing strategy name.
	Name string `json:"name"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`
	// Symbol is the default instrument the strategy was authored for.
	Symbol string `json:"symbol"`
	// Timeframe is the default candle granularity.
	Timeframe Timeframe `json:"timeframe"`
	// Specs lists the indicator computations feeding the conditions.
	Specs []IndicatorSpec `json:"indicators"`
	// BuyConditions fire a BUY signal when satisfied under BuyLogic.
	BuyConditions []Condition `json:"buy_conditions"`
	// BuyLogic combines BuyConditions (AND/OR). Defaults to AND.
	BuyLogic Logic `json:"buy_logic,omitempty"`
	// SellConditions fire a SELL signal when satisfied under SellLogic.
	SellConditions []Condition `json:"sell_conditions"`
	// SellLogic combines SellConditions (AND/OR). Defaults to AND.
	SellLogic Logic `json:"sell_logic,omitempty"`
	// CurrentSignal caches the most recent verdict for dashboard display.
	CurrentSignal SignalType `json:"current_signal"`
	// IsRunning gates worker evaluation and user visibility.
	IsRunning bool `json:"is_running"`
	// Status is the soft-delete flag.
	Status IndicatorStatus `json:"status"`
	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt tracks the last mentor or worker mutation.
	UpdatedAt time.Time `json:"updated_at"`
	// LastChecked is when the worker last evaluated this indicator, nil
	// until the first evaluation.
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

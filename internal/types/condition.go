package types

// Operator is a comparison applied between a computed indicator value and a
// mentor-supplied threshold.
type Operator string

const (
	OperatorGreater      Operator = ">"
	OperatorLess         Operator = "<"
	OperatorGreaterEqual Operator = ">="
	OperatorLessEqual    Operator = "<="
	OperatorEqual        Operator = "=="
	// OperatorCrossesAbove fires when the value moves from at-or-below the
	// threshold to above it between two evaluations. Without a previous
	// value it degrades to a plain greater-than check.
	OperatorCrossesAbove Operator = "crosses_above"
	// OperatorCrossesBelow is the downward counterpart of CrossesAbove.
	OperatorCrossesBelow Operator = "crosses_below"
)

// Logic combines the results of multiple conditions.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is one mentor-authored comparison against a computed indicator
// value, referenced by the flat value name the math facade produces (e.g.
// "RSI", "MACD_HISTOGRAM", "BB_LOWER", "STOCH_K").
type Condition struct {
	// Indicator is the value-map key the condition reads.
	Indicator string `json:"indicator" jsonschema:"title=Indicator value,description=Name of the computed value this condition compares against"`
	// Operator is the comparison to apply.
	Operator Operator `json:"operator" jsonschema:"title=Operator,enum=>,enum=<,enum=>=,enum=<=,enum===,enum=crosses_above,enum=crosses_below"`
	// Value is the threshold.
	Value float64 `json:"value" jsonschema:"title=Threshold"`
}

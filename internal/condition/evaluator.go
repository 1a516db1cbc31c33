// Package condition evaluates mentor-authored BUY/SELL condition lists
// against computed indicator values and produces the signal verdict.
package condition

import (
	"math"

	"github.com/signalmaster/signal-engine/internal/indicator"
	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/types"
	"go.uber.org/zap"
)

// equalityEpsilon is the tolerance of the "==" operator.
const equalityEpsilon = 0.01

// MinimumBars is the smallest snapshot the evaluator accepts. Below this the
// configured indicators are mostly warm-up fallbacks and any verdict would
// be noise.
const MinimumBars = 20

// Evaluator turns an indicator configuration plus a market snapshot into a
// BUY/SELL/NONE verdict.
type Evaluator struct {
	log *logger.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// EvaluateIndicator computes every configured indicator value from the
// snapshot and checks the buy conditions first; when they hold, BUY is
// returned without consulting the sell conditions (buy wins the tie by
// design). Otherwise the sell conditions decide. The computed values are
// returned alongside the verdict so callers can keep them as the previous
// values for crossing detection and annotate emitted signals.
//
// previous holds the values from the subscription's last evaluation; nil on
// a cold start, which makes crossing operators degrade to instantaneous
// comparisons.
func (e *Evaluator) EvaluateIndicator(ind types.Indicator, snapshot types.MarketSnapshot, previous indicator.Values) (types.SignalType, indicator.Values) {
	if snapshot.Bars() < MinimumBars {
		e.log.Warn("insufficient market data for evaluation",
			zap.String("indicator", ind.Name),
			zap.String("symbol", snapshot.Symbol),
			zap.Int("bars", snapshot.Bars()),
		)

		return types.SignalTypeNone, nil
	}

	values := indicator.Compute(ind.Specs, snapshot)

	e.log.Debug("computed indicator values",
		zap.String("indicator", ind.Name),
		zap.String("symbol", snapshot.Symbol),
		zap.Any("values", values),
	)

	if len(ind.BuyConditions) > 0 {
		if e.EvaluateConditions(ind.BuyConditions, values, previous, ind.BuyLogic) {
			return types.SignalTypeBuy, values
		}
	}

	if len(ind.SellConditions) > 0 {
		if e.EvaluateConditions(ind.SellConditions, values, previous, ind.SellLogic) {
			return types.SignalTypeSell, values
		}
	}

	return types.SignalTypeNone, values
}

// EvaluateConditions combines the per-condition results under the given
// logic. An empty condition list is false for both AND and OR: no
// conditions means no signal, not a vacuous truth. Unknown logic values
// default to AND.
func (e *Evaluator) EvaluateConditions(conditions []types.Condition, values, previous indicator.Values, logic types.Logic) bool {
	if len(conditions) == 0 {
		return false
	}

	results := make([]bool, 0, len(conditions))
	for _, cond := range conditions {
		results = append(results, e.evaluateCondition(cond, values, previous))
	}

	if logic == types.LogicOr {
		for _, r := range results {
			if r {
				return true
			}
		}

		return false
	}

	for _, r := range results {
		if !r {
			return false
		}
	}

	return true
}

// evaluateCondition checks a single condition. A reference to a value the
// facade did not produce is false, logged, and never an error.
func (e *Evaluator) evaluateCondition(cond types.Condition, values, previous indicator.Values) bool {
	value, ok := values[cond.Indicator]
	if !ok {
		e.log.Warn("condition references unknown indicator value",
			zap.String("indicator", cond.Indicator),
			zap.String("operator", string(cond.Operator)),
		)

		return false
	}

	switch cond.Operator {
	case types.OperatorGreater:
		return value > cond.Value
	case types.OperatorLess:
		return value < cond.Value
	case types.OperatorGreaterEqual:
		return value >= cond.Value
	case types.OperatorLessEqual:
		return value <= cond.Value
	case types.OperatorEqual:
		return math.Abs(value-cond.Value) < equalityEpsilon
	case types.OperatorCrossesAbove:
		if prev, ok := previousValue(previous, cond.Indicator); ok {
			return prev <= cond.Value && value > cond.Value
		}
		// No history yet: degrade to an instantaneous comparison.
		return value > cond.Value
	case types.OperatorCrossesBelow:
		if prev, ok := previousValue(previous, cond.Indicator); ok {
			return prev >= cond.Value && value < cond.Value
		}

		return value < cond.Value
	default:
		e.log.Warn("unknown condition operator",
			zap.String("operator", string(cond.Operator)),
		)

		return false
	}
}

func previousValue(previous indicator.Values, name string) (float64, bool) {
	if previous == nil {
		return 0, false
	}

	value, ok := previous[name]

	return value, ok
}

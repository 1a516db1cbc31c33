// Package worker runs the background evaluation loop: every tick it walks
// the active subscriptions, paces them by timeframe, evaluates due ones and
// hands verdicts to the fan-out.
package worker

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/condition"
	"github.com/signalmaster/signal-engine/internal/indicator"
	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
	"github.com/signalmaster/signal-engine/pkg/marketdata"
)

// Config tunes the worker loop. Zero values fall back to the defaults.
type Config struct {
	// BaseTick is the pause between cycles and the backoff after a failed
	// cycle. Defaults to one minute.
	BaseTick time.Duration

	// SubscriptionDelay spaces out per-subscription work inside a cycle to
	// avoid hammering the market data provider. Defaults to 500ms.
	SubscriptionDelay time.Duration

	// Bars is the snapshot depth requested per evaluation. Defaults to 100.
	Bars int

	// FetchTimeout bounds a single market data fetch. Defaults to 30s.
	FetchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseTick <= 0 {
		c.BaseTick = time.Minute
	}

	if c.SubscriptionDelay <= 0 {
		c.SubscriptionDelay = 500 * time.Millisecond
	}

	if c.Bars <= 0 {
		c.Bars = marketdata.DefaultBars
	}

	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}

	return c
}

// Store is the persistence surface the worker needs.
type Store interface {
	ListActiveSubscriptions(ctx context.Context) ([]types.Subscription, error)
	GetIndicator(ctx context.Context, id string) (optional.Option[types.Indicator], error)
	TouchCheckTime(ctx context.Context, subscriptionID string, at time.Time) error
}

// Emitter fans out a verdict.
type Emitter interface {
	EmitAuto(ctx context.Context, sub types.Subscription, ind types.Indicator, signalType types.SignalType, values map[string]float64) (types.Signal, error)
}

// Worker is the signal evaluation loop. Not safe for concurrent Run calls;
// exactly one worker runs per process.
type Worker struct {
	cfg       Config
	store     Store
	provider  marketdata.Provider
	evaluator *condition.Evaluator
	emitter   Emitter
	log       *logger.Logger

	// prevValues keeps each subscription's last computed indicator values
	// so crossing operators can detect transitions. In-memory only: a
	// restart degrades crossings to instantaneous comparisons for one
	// evaluation.
	prevValues map[string]indicator.Values
}

// NewWorker creates a Worker.
func NewWorker(cfg Config, store Store, provider marketdata.Provider, evaluator *condition.Evaluator, emitter Emitter, log *logger.Logger) *Worker {
	return &Worker{
		cfg:        cfg.withDefaults(),
		store:      store,
		provider:   provider,
		evaluator:  evaluator,
		emitter:    emitter,
		log:        log,
		prevValues: make(map[string]indicator.Values),
	}
}

// Run executes cycles until the context is canceled. A failed cycle is
// logged and retried after the base tick; it never terminates the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("signal worker started",
		zap.Duration("base_tick", w.cfg.BaseTick),
		zap.String("provider", string(w.provider.Name())),
	)

	for {
		if err := w.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}

			w.log.Error("worker cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.log.Info("signal worker stopping")

			return nil
		case <-time.After(w.cfg.BaseTick):
		}
	}

	w.log.Info("signal worker stopping")

	return nil
}

// runCycle processes every active subscription once. Per-subscription
// failures are logged and skipped; only listing failures fail the cycle.
func (w *Worker) runCycle(ctx context.Context) error {
	subscriptions, err := w.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWorkerCycleFailed, "failed to list active subscriptions")
	}

	w.log.Debug("worker cycle", zap.Int("subscriptions", len(subscriptions)))

	for i, sub := range subscriptions {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := w.processSubscription(ctx, sub, time.Now().UTC()); err != nil {
			w.log.Error("failed to process subscription",
				zap.String("subscription_id", sub.ID),
				zap.String("symbol", sub.Symbol),
				zap.Error(err),
			)
		}

		if i < len(subscriptions)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.SubscriptionDelay):
			}
		}
	}

	w.pruneCrossingState(subscriptions)

	return nil
}

// pruneCrossingState drops remembered indicator values for subscriptions no
// longer active, so unsubscribes do not leak state over a long-lived worker.
func (w *Worker) pruneCrossingState(subscriptions []types.Subscription) {
	active := make(map[string]bool, len(subscriptions))
	for _, sub := range subscriptions {
		active[sub.ID] = true
	}

	for id := range w.prevValues {
		if !active[id] {
			delete(w.prevValues, id)
		}
	}
}

// processSubscription applies the per-subscription gates in order: check
// cadence, cooldown, indicator liveness, then evaluation. The check time is
// stamped as soon as the subscription is due, before any gate that might
// skip it, so a failing subscription does not get retried every tick.
func (w *Worker) processSubscription(ctx context.Context, sub types.Subscription, now time.Time) error {
	if !sub.DueForCheck(now) {
		return nil
	}

	if err := w.store.TouchCheckTime(ctx, sub.ID, now); err != nil {
		return err
	}

	if sub.CooldownActive(now) {
		w.log.Debug("subscription in cooldown",
			zap.String("subscription_id", sub.ID),
			zap.String("symbol", sub.Symbol),
		)

		return nil
	}

	indOpt, err := w.store.GetIndicator(ctx, sub.IndicatorID)
	if err != nil {
		return err
	}

	if indOpt.IsNone() {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", sub.IndicatorID)
	}

	ind := indOpt.Unwrap()
	if ind.Status != types.IndicatorStatusActive || !ind.IsRunning {
		w.log.Debug("indicator not running, skipping",
			zap.String("indicator_id", ind.ID),
			zap.String("subscription_id", sub.ID),
		)

		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, w.cfg.FetchTimeout)
	defer cancel()

	snapshot, err := w.provider.Fetch(fetchCtx, sub.Symbol, sub.Timeframe, w.cfg.Bars)
	if err != nil {
		return err
	}

	verdict, values := w.evaluator.EvaluateIndicator(ind, snapshot, w.prevValues[sub.ID])

	// Previous values update on every evaluation, fired or not, so crossing
	// detection always compares against the latest check.
	if values != nil {
		w.prevValues[sub.ID] = values
	}

	if verdict != types.SignalTypeBuy && verdict != types.SignalTypeSell {
		return nil
	}

	if _, err := w.emitter.EmitAuto(ctx, sub, ind, verdict, values); err != nil {
		return err
	}

	return nil
}

// Package fanout turns an evaluator verdict or a mentor override into the
// persisted signal, per-subscriber inbox entries, push notifications and
// websocket broadcast.
package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/notification"
	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// valuePrecision is the decimal places kept on indicator values attached to
// emitted signals.
const valuePrecision = 5

// Store is the persistence surface the fan-out needs.
type Store interface {
	InsertSignal(ctx context.Context, sig types.Signal) error
	InsertInboxEntries(ctx context.Context, entries []types.InboxEntry) error
	RecordSignal(ctx context.Context, subscriptionID string, signalType types.SignalType, at time.Time) error
	SetIndicatorSignal(ctx context.Context, indicatorID string, signal types.SignalType, checkedAt time.Time) error
	ListActiveSubscribersByIndicator(ctx context.Context, indicatorID string) ([]types.Subscription, error)
	ListPushTokens(ctx context.Context, userIDs []string) ([]string, error)
}

// Broadcaster pushes emitted signals to connected dashboard clients.
type Broadcaster interface {
	Broadcast(payload interface{})
}

// Fanout emits signals. Persistence failures abort the emission; push and
// broadcast failures are logged and swallowed so delivery problems never
// poison the worker loop.
type Fanout struct {
	store    Store
	notifier notification.Notifier
	hub      Broadcaster
	log      *logger.Logger
}

// NewFanout creates a Fanout.
func NewFanout(store Store, notifier notification.Notifier, hub Broadcaster, log *logger.Logger) *Fanout {
	return &Fanout{
		store:    store,
		notifier: notifier,
		hub:      hub,
		log:      log,
	}
}

// EmitAuto emits a worker-generated signal to a single subscription: the
// evaluation that fired belongs to that subscription's symbol and
// timeframe, so only its owner receives the signal.
func (f *Fanout) EmitAuto(ctx context.Context, sub types.Subscription, ind types.Indicator, signalType types.SignalType, values map[string]float64) (types.Signal, error) {
	if signalType != types.SignalTypeBuy && signalType != types.SignalTypeSell {
		return types.Signal{}, errors.Newf(errors.ErrCodeInvalidSignal, "cannot emit signal of type %s", signalType)
	}

	now := time.Now().UTC()

	sig := types.Signal{
		ID:             uuid.New().String(),
		Symbol:         sub.Symbol,
		Type:           signalType,
		IndicatorID:    ind.ID,
		IndicatorName:  ind.Name,
		SubscriptionID: sub.ID,
		Timeframe:      sub.Timeframe,
		SenderType:     types.SenderIndicatorAuto,
		SenderID:       ind.MentorID,
		Notes:          fmt.Sprintf("%s signal from %s on %s %s", signalType, ind.Name, sub.Symbol, sub.Timeframe),
		Values:         roundValues(values),
		CreatedAt:      now,
		ExpiresAt:      now.Add(types.DefaultSignalTTL),
		Status:         types.SignalStatusActive,
	}

	if err := f.store.InsertSignal(ctx, sig); err != nil {
		return types.Signal{}, err
	}

	entry := types.InboxEntry{
		ID:         uuid.New().String(),
		SignalID:   sig.ID,
		UserID:     sub.UserID,
		ReceivedAt: now,
	}

	if err := f.store.InsertInboxEntries(ctx, []types.InboxEntry{entry}); err != nil {
		return types.Signal{}, err
	}

	if err := f.store.RecordSignal(ctx, sub.ID, signalType, now); err != nil {
		return types.Signal{}, err
	}

	if err := f.store.SetIndicatorSignal(ctx, ind.ID, signalType, now); err != nil {
		return types.Signal{}, err
	}

	f.deliver(ctx, sig, []string{sub.UserID})

	f.log.Info("signal emitted",
		zap.String("signal_id", sig.ID),
		zap.String("type", string(signalType)),
		zap.String("symbol", sub.Symbol),
		zap.String("indicator", ind.Name),
		zap.String("subscription_id", sub.ID),
	)

	return sig, nil
}

// EmitManual emits a mentor override to every active subscriber of the
// indicator, bypassing condition evaluation, cooldowns and the running
// gate. The validity duration is mentor-chosen; zero means the default TTL.
func (f *Fanout) EmitManual(ctx context.Context, ind types.Indicator, signalType types.SignalType, notes string, validFor time.Duration) (types.Signal, int, error) {
	if signalType != types.SignalTypeBuy && signalType != types.SignalTypeSell {
		return types.Signal{}, 0, errors.Newf(errors.ErrCodeInvalidSignal, "cannot emit signal of type %s", signalType)
	}

	if validFor <= 0 {
		validFor = types.DefaultSignalTTL
	}

	now := time.Now().UTC()

	if notes == "" {
		notes = fmt.Sprintf("Manual %s signal from %s", signalType, ind.Name)
	}

	sig := types.Signal{
		ID:            uuid.New().String(),
		Symbol:        ind.Symbol,
		Type:          signalType,
		IndicatorID:   ind.ID,
		IndicatorName: ind.Name,
		Timeframe:     ind.Timeframe,
		SenderType:    types.SenderMentorManual,
		SenderID:      ind.MentorID,
		Notes:         notes,
		CreatedAt:     now,
		ExpiresAt:     now.Add(validFor),
		Status:        types.SignalStatusActive,
	}

	if err := f.store.InsertSignal(ctx, sig); err != nil {
		return types.Signal{}, 0, err
	}

	subscribers, err := f.store.ListActiveSubscribersByIndicator(ctx, ind.ID)
	if err != nil {
		return types.Signal{}, 0, err
	}

	entries := make([]types.InboxEntry, 0, len(subscribers))
	userIDs := make([]string, 0, len(subscribers))

	for _, sub := range subscribers {
		entries = append(entries, types.InboxEntry{
			ID:         uuid.New().String(),
			SignalID:   sig.ID,
			UserID:     sub.UserID,
			ReceivedAt: now,
		})
		userIDs = append(userIDs, sub.UserID)
	}

	if err := f.store.InsertInboxEntries(ctx, entries); err != nil {
		return types.Signal{}, 0, err
	}

	for _, sub := range subscribers {
		if err := f.store.RecordSignal(ctx, sub.ID, signalType, now); err != nil {
			return types.Signal{}, 0, err
		}
	}

	if err := f.store.SetIndicatorSignal(ctx, ind.ID, signalType, now); err != nil {
		return types.Signal{}, 0, err
	}

	f.deliver(ctx, sig, userIDs)

	f.log.Info("manual signal emitted",
		zap.String("signal_id", sig.ID),
		zap.String("type", string(signalType)),
		zap.String("indicator", ind.Name),
		zap.Int("subscribers", len(subscribers)),
	)

	return sig, len(subscribers), nil
}

// deliver sends push notifications and the websocket broadcast. Best
// effort only.
func (f *Fanout) deliver(ctx context.Context, sig types.Signal, userIDs []string) {
	tokens, err := f.store.ListPushTokens(ctx, userIDs)
	if err != nil {
		f.log.Error("failed to load push tokens", zap.Error(err))
	} else if len(tokens) > 0 {
		msg := notification.PushMessage{
			Tokens: tokens,
			Title:  fmt.Sprintf("%s %s", sig.Type, sig.Symbol),
			Body:   sig.Notes,
			Data: map[string]interface{}{
				"signal_id":   sig.ID,
				"signal_type": string(sig.Type),
				"symbol":      sig.Symbol,
			},
		}

		if err := f.notifier.Send(ctx, msg); err != nil {
			f.log.Error("push delivery failed", zap.String("signal_id", sig.ID), zap.Error(err))
		}
	}

	f.hub.Broadcast(sig)
}

func roundValues(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return nil
	}

	rounded := make(map[string]float64, len(values))

	for name, value := range values {
		rounded[name], _ = decimal.NewFromFloat(value).Round(valuePrecision).Float64()
	}

	return rounded
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

var subscriptionColumns = []string{
	"id", "user_id", "mentor_id", "indicator_id", "indicator_name", "symbol", "timeframe",
	"status", "subscribed_at", "unsubscribed_at", "last_check_time",
	"last_signal_time", "last_signal_type", "total_signals_received",
}

// CreateSubscription inserts a subscription after checking the active
// uniqueness constraint: one active subscription per (user, indicator,
// symbol).
func (s *Store) CreateSubscription(ctx context.Context, sub types.Subscription) error {
	existing, err := s.FindActiveSubscription(ctx, sub.UserID, sub.IndicatorID, sub.Symbol)
	if err != nil {
		return err
	}

	if existing.IsSome() {
		return errors.Newf(errors.ErrCodeDuplicateSubscription,
			"user %s already has an active subscription to indicator %s for %s",
			sub.UserID, sub.IndicatorID, sub.Symbol)
	}

	query := s.sq.
		Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(
			sub.ID, sub.UserID, sub.MentorID, sub.IndicatorID, sub.IndicatorName, sub.Symbol, sub.Timeframe,
			sub.Status, sub.SubscribedAt, sub.UnsubscribedAt, sub.LastCheckTime,
			sub.LastSignalTime, sub.LastSignalType, sub.TotalSignalsReceived,
		).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("create subscription", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to insert subscription")
	}

	return nil
}

// FindActiveSubscription looks up the active subscription for a
// (user, indicator, symbol) tuple.
func (s *Store) FindActiveSubscription(ctx context.Context, userID, indicatorID, symbol string) (optional.Option[types.Subscription], error) {
	query := s.sq.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{
			"user_id":      userID,
			"indicator_id": indicatorID,
			"symbol":       symbol,
			"status":       types.SubscriptionStatusActive,
		}).
		RunWith(s.db)

	sub, err := scanSubscription(query.QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return optional.None[types.Subscription](), nil
	}

	if err != nil {
		s.logQueryError("find active subscription", err)

		return optional.None[types.Subscription](), errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to find subscription")
	}

	return optional.Some(sub), nil
}

// GetSubscription returns a subscription by id regardless of status.
func (s *Store) GetSubscription(ctx context.Context, id string) (optional.Option[types.Subscription], error) {
	query := s.sq.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	sub, err := scanSubscription(query.QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return optional.None[types.Subscription](), nil
	}

	if err != nil {
		s.logQueryError("get subscription", err)

		return optional.None[types.Subscription](), errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to get subscription")
	}

	return optional.Some(sub), nil
}

// ListActiveSubscriptions returns every active subscription ordered by
// creation time. This is the worker's cycle input.
func (s *Store) ListActiveSubscriptions(ctx context.Context) ([]types.Subscription, error) {
	query := s.sq.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"status": types.SubscriptionStatusActive}).
		OrderBy("subscribed_at ASC").
		RunWith(s.db)

	return s.querySubscriptions(ctx, query, "list active subscriptions")
}

// ListSubscriptionsByUser returns all of a user's subscriptions, newest
// first, detached and inactive ones included.
func (s *Store) ListSubscriptionsByUser(ctx context.Context, userID string) ([]types.Subscription, error) {
	query := s.sq.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("subscribed_at DESC").
		RunWith(s.db)

	return s.querySubscriptions(ctx, query, "list subscriptions by user")
}

// ListActiveSubscribersByIndicator returns the user ids with an active
// subscription to the indicator. Used by the manual-override fan-out.
func (s *Store) ListActiveSubscribersByIndicator(ctx context.Context, indicatorID string) ([]types.Subscription, error) {
	query := s.sq.
		Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"indicator_id": indicatorID, "status": types.SubscriptionStatusActive}).
		OrderBy("subscribed_at ASC").
		RunWith(s.db)

	return s.querySubscriptions(ctx, query, "list active subscribers by indicator")
}

// DeactivateSubscription soft-deactivates a user's subscription.
func (s *Store) DeactivateSubscription(ctx context.Context, id, userID string, at time.Time) error {
	query := s.sq.
		Update("subscriptions").
		Set("status", types.SubscriptionStatusInactive).
		Set("unsubscribed_at", at).
		Where(squirrel.Eq{"id": id, "user_id": userID, "status": types.SubscriptionStatusActive}).
		RunWith(s.db)

	result, err := query.ExecContext(ctx)
	if err != nil {
		s.logQueryError("deactivate subscription", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to deactivate subscription")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to read rows affected")
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "no active subscription %s for user %s", id, userID)
	}

	return nil
}

// TouchCheckTime stamps last_check_time. The worker calls this for every
// due subscription before any other gate so the cadence holds even when
// the evaluation is skipped or fails.
func (s *Store) TouchCheckTime(ctx context.Context, id string, at time.Time) error {
	query := s.sq.
		Update("subscriptions").
		Set("last_check_time", at).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("touch check time", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to update check time")
	}

	return nil
}

// RecordSignal stamps the subscription's cooldown state and bumps its
// signal counter after a successful emission.
func (s *Store) RecordSignal(ctx context.Context, id string, signalType types.SignalType, at time.Time) error {
	query := s.sq.
		Update("subscriptions").
		Set("last_signal_time", at).
		Set("last_signal_type", signalType).
		Set("total_signals_received", squirrel.Expr("total_signals_received + 1")).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("record signal", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to record signal on subscription")
	}

	return nil
}

func (s *Store) querySubscriptions(ctx context.Context, query squirrel.SelectBuilder, operation string) ([]types.Subscription, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		s.logQueryError(operation, err)

		return nil, errors.Wrapf(err, errors.ErrCodeQueryFailed, "failed to %s", operation)
	}
	defer rows.Close()

	var subscriptions []types.Subscription

	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to scan subscription")
		}

		subscriptions = append(subscriptions, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "error iterating subscriptions")
	}

	return subscriptions, nil
}

func scanSubscription(row rowScanner) (types.Subscription, error) {
	var (
		sub            types.Subscription
		unsubscribedAt sql.NullTime
		lastCheckTime  sql.NullTime
		lastSignalTime sql.NullTime
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.MentorID, &sub.IndicatorID, &sub.IndicatorName, &sub.Symbol, &sub.Timeframe,
		&sub.Status, &sub.SubscribedAt, &unsubscribedAt, &lastCheckTime,
		&lastSignalTime, &sub.LastSignalType, &sub.TotalSignalsReceived,
	)
	if err != nil {
		return types.Subscription{}, err
	}

	sub.UnsubscribedAt = nullableTime(unsubscribedAt)
	sub.LastCheckTime = nullableTime(lastCheckTime)
	sub.LastSignalTime = nullableTime(lastSignalTime)

	return sub, nil
}

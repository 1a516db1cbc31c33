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

var indicatorColumns = []string{
	"id", "mentor_id", "name", "description", "symbol", "timeframe",
	"specs", "buy_conditions", "buy_logic", "sell_conditions", "sell_logic",
	"current_signal", "is_running", "status", "created_at", "updated_at", "last_checked",
}

// CreateIndicator inserts a new indicator row.
func (s *Store) CreateIndicator(ctx context.Context, ind types.Indicator) error {
	specs, err := marshalJSON(ind.Specs)
	if err != nil {
		return err
	}

	buyConditions, err := marshalJSON(ind.BuyConditions)
	if err != nil {
		return err
	}

	sellConditions, err := marshalJSON(ind.SellConditions)
	if err != nil {
		return err
	}

	query := s.sq.
		Insert("indicators").
		Columns(indicatorColumns...).
		Values(
			ind.ID, ind.MentorID, ind.Name, ind.Description, ind.Symbol, ind.Timeframe,
			specs, buyConditions, ind.BuyLogic, sellConditions, ind.SellLogic,
			ind.CurrentSignal, ind.IsRunning, ind.Status, ind.CreatedAt, ind.UpdatedAt, ind.LastChecked,
		).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("create indicator", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to insert indicator")
	}

	return nil
}

// GetIndicator returns the indicator with the given id, deleted ones
// included. Callers that must not see deleted indicators check Status.
func (s *Store) GetIndicator(ctx context.Context, id string) (optional.Option[types.Indicator], error) {
	query := s.sq.
		Select(indicatorColumns...).
		From("indicators").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	ind, err := scanIndicator(query.QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return optional.None[types.Indicator](), nil
	}

	if err != nil {
		s.logQueryError("get indicator", err)

		return optional.None[types.Indicator](), errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to get indicator")
	}

	return optional.Some(ind), nil
}

// ListIndicatorsByMentor returns the mentor's non-deleted indicators, newest
// first.
func (s *Store) ListIndicatorsByMentor(ctx context.Context, mentorID string) ([]types.Indicator, error) {
	query := s.sq.
		Select(indicatorColumns...).
		From("indicators").
		Where(squirrel.Eq{"mentor_id": mentorID}).
		Where(squirrel.NotEq{"status": types.IndicatorStatusDeleted}).
		OrderBy("created_at DESC").
		RunWith(s.db)

	return s.queryIndicators(ctx, query, "list indicators by mentor")
}

// ListRunningIndicators returns all indicators visible to end users: active
// and started by their mentor.
func (s *Store) ListRunningIndicators(ctx context.Context) ([]types.Indicator, error) {
	query := s.sq.
		Select(indicatorColumns...).
		From("indicators").
		Where(squirrel.Eq{"status": types.IndicatorStatusActive, "is_running": true}).
		OrderBy("created_at DESC").
		RunWith(s.db)

	return s.queryIndicators(ctx, query, "list running indicators")
}

// SetIndicatorRunning flips the is_running gate.
func (s *Store) SetIndicatorRunning(ctx context.Context, id string, running bool) error {
	query := s.sq.
		Update("indicators").
		Set("is_running", running).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": types.IndicatorStatusDeleted}).
		RunWith(s.db)

	result, err := query.ExecContext(ctx)
	if err != nil {
		s.logQueryError("set indicator running", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to update indicator")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to read rows affected")
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", id)
	}

	return nil
}

// SetIndicatorSignal caches the worker's latest verdict and check time on
// the indicator row for dashboard display.
func (s *Store) SetIndicatorSignal(ctx context.Context, id string, signal types.SignalType, checkedAt time.Time) error {
	query := s.sq.
		Update("indicators").
		Set("current_signal", signal).
		Set("last_checked", checkedAt).
		Set("updated_at", checkedAt).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("set indicator signal", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to update indicator signal")
	}

	return nil
}

// DeleteIndicator soft-deletes the indicator and detaches its active
// subscriptions in one transaction. Detached subscriptions keep their
// history but are never evaluated again.
func (s *Store) DeleteIndicator(ctx context.Context, id string, deletedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to begin transaction")
	}

	deleteQuery := s.sq.
		Update("indicators").
		Set("status", types.IndicatorStatusDeleted).
		Set("is_running", false).
		Set("updated_at", deletedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": types.IndicatorStatusDeleted}).
		RunWith(tx)

	result, err := deleteQuery.ExecContext(ctx)
	if err != nil {
		tx.Rollback()
		s.logQueryError("delete indicator", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to delete indicator")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to read rows affected")
	}

	if affected == 0 {
		tx.Rollback()

		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", id)
	}

	detachQuery := s.sq.
		Update("subscriptions").
		Set("status", types.SubscriptionStatusDetached).
		Set("unsubscribed_at", deletedAt).
		Where(squirrel.Eq{"indicator_id": id, "status": types.SubscriptionStatusActive}).
		RunWith(tx)

	if _, err := detachQuery.ExecContext(ctx); err != nil {
		tx.Rollback()
		s.logQueryError("detach subscriptions", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to detach subscriptions")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to commit transaction")
	}

	return nil
}

func (s *Store) queryIndicators(ctx context.Context, query squirrel.SelectBuilder, operation string) ([]types.Indicator, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		s.logQueryError(operation, err)

		return nil, errors.Wrapf(err, errors.ErrCodeQueryFailed, "failed to %s", operation)
	}
	defer rows.Close()

	var indicators []types.Indicator

	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to scan indicator")
		}

		indicators = append(indicators, ind)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "error iterating indicators")
	}

	return indicators, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIndicator(row rowScanner) (types.Indicator, error) {
	var (
		ind            types.Indicator
		specs          string
		buyConditions  string
		sellConditions string
		lastChecked    sql.NullTime
	)

	err := row.Scan(
		&ind.ID, &ind.MentorID, &ind.Name, &ind.Description, &ind.Symbol, &ind.Timeframe,
		&specs, &buyConditions, &ind.BuyLogic, &sellConditions, &ind.SellLogic,
		&ind.CurrentSignal, &ind.IsRunning, &ind.Status, &ind.CreatedAt, &ind.UpdatedAt, &lastChecked,
	)
	if err != nil {
		return types.Indicator{}, err
	}

	if err := unmarshalJSON(specs, &ind.Specs); err != nil {
		return types.Indicator{}, err
	}

	if err := unmarshalJSON(buyConditions, &ind.BuyConditions); err != nil {
		return types.Indicator{}, err
	}

	if err := unmarshalJSON(sellConditions, &ind.SellConditions); err != nil {
		return types.Indicator{}, err
	}

	ind.LastChecked = nullableTime(lastChecked)

	return ind, nil
}

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

var signalColumns = []string{
	"id", "symbol", "signal_type", "indicator_id", "indicator_name", "subscription_id",
	"timeframe", "sender_type", "sender_id", "notes", "indicator_values",
	"created_at", "expires_at", "status",
}

// InboxItem joins an inbox entry with its signal payload for user-facing
// listings.
type InboxItem struct {
	Entry  types.InboxEntry `json:"entry"`
	Signal types.Signal     `json:"signal"`
}

// InsertSignal persists an emitted signal. Signals are immutable; there is
// no update path.
func (s *Store) InsertSignal(ctx context.Context, sig types.Signal) error {
	values, err := marshalJSON(sig.Values)
	if err != nil {
		return err
	}

	query := s.sq.
		Insert("signals").
		Columns(signalColumns...).
		Values(
			sig.ID, sig.Symbol, sig.Type, sig.IndicatorID, sig.IndicatorName, sig.SubscriptionID,
			sig.Timeframe, sig.SenderType, sig.SenderID, sig.Notes, values,
			sig.CreatedAt, sig.ExpiresAt, sig.Status,
		).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("insert signal", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to insert signal")
	}

	return nil
}

// GetSignal returns a signal by id.
func (s *Store) GetSignal(ctx context.Context, id string) (optional.Option[types.Signal], error) {
	query := s.sq.
		Select(signalColumns...).
		From("signals").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db)

	sig, err := scanSignal(query.QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return optional.None[types.Signal](), nil
	}

	if err != nil {
		s.logQueryError("get signal", err)

		return optional.None[types.Signal](), errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to get signal")
	}

	return optional.Some(sig), nil
}

// InsertInboxEntries persists one inbox row per recipient inside a single
// transaction so a partial fan-out never becomes visible.
func (s *Store) InsertInboxEntries(ctx context.Context, entries []types.InboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to begin transaction")
	}

	for _, entry := range entries {
		query := s.sq.
			Insert("user_signals").
			Columns("id", "signal_id", "user_id", "read", "received_at").
			Values(entry.ID, entry.SignalID, entry.UserID, entry.Read, entry.ReceivedAt).
			RunWith(tx)

		if _, err := query.ExecContext(ctx); err != nil {
			tx.Rollback()
			s.logQueryError("insert inbox entry", err)

			return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to insert inbox entry")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to commit transaction")
	}

	return nil
}

// ListInbox returns a user's inbox joined with signal payloads, newest
// first. Expired signals are included; callers surface the expired state
// via Signal.Expired.
func (s *Store) ListInbox(ctx context.Context, userID string, limit int) ([]InboxItem, error) {
	query := s.sq.
		Select(
			"us.id", "us.signal_id", "us.user_id", "us.read", "us.received_at",
			"s.id", "s.symbol", "s.signal_type", "s.indicator_id", "s.indicator_name", "s.subscription_id",
			"s.timeframe", "s.sender_type", "s.sender_id", "s.notes", "s.indicator_values",
			"s.created_at", "s.expires_at", "s.status",
		).
		From("user_signals us").
		Join("signals s ON s.id = us.signal_id").
		Where(squirrel.Eq{"us.user_id": userID}).
		OrderBy("us.received_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		s.logQueryError("list inbox", err)

		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to list inbox")
	}
	defer rows.Close()

	var items []InboxItem

	for rows.Next() {
		var (
			item   InboxItem
			values string
		)

		err := rows.Scan(
			&item.Entry.ID, &item.Entry.SignalID, &item.Entry.UserID, &item.Entry.Read, &item.Entry.ReceivedAt,
			&item.Signal.ID, &item.Signal.Symbol, &item.Signal.Type, &item.Signal.IndicatorID,
			&item.Signal.IndicatorName, &item.Signal.SubscriptionID,
			&item.Signal.Timeframe, &item.Signal.SenderType, &item.Signal.SenderID, &item.Signal.Notes, &values,
			&item.Signal.CreatedAt, &item.Signal.ExpiresAt, &item.Signal.Status,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to scan inbox item")
		}

		if err := unmarshalJSON(values, &item.Signal.Values); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "error iterating inbox")
	}

	return items, nil
}

// MarkInboxRead flips the read flag on one of the user's inbox entries.
// The flag is never unset.
func (s *Store) MarkInboxRead(ctx context.Context, entryID, userID string) error {
	query := s.sq.
		Update("user_signals").
		Set("read", true).
		Where(squirrel.Eq{"id": entryID, "user_id": userID}).
		RunWith(s.db)

	result, err := query.ExecContext(ctx)
	if err != nil {
		s.logQueryError("mark inbox read", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to mark inbox entry read")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to read rows affected")
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "inbox entry %s not found for user %s", entryID, userID)
	}

	return nil
}

// CountUnread returns the number of unread, unexpired inbox entries for the
// badge counter.
func (s *Store) CountUnread(ctx context.Context, userID string, now time.Time) (int, error) {
	query := s.sq.
		Select("COUNT(*)").
		From("user_signals us").
		Join("signals s ON s.id = us.signal_id").
		Where(squirrel.Eq{"us.user_id": userID, "us.read": false}).
		Where(squirrel.Gt{"s.expires_at": now}).
		RunWith(s.db)

	var count int
	if err := query.QueryRowContext(ctx).Scan(&count); err != nil {
		s.logQueryError("count unread", err)

		return 0, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to count unread inbox entries")
	}

	return count, nil
}

func scanSignal(row rowScanner) (types.Signal, error) {
	var (
		sig    types.Signal
		values string
	)

	err := row.Scan(
		&sig.ID, &sig.Symbol, &sig.Type, &sig.IndicatorID, &sig.IndicatorName, &sig.SubscriptionID,
		&sig.Timeframe, &sig.SenderType, &sig.SenderID, &sig.Notes, &values,
		&sig.CreatedAt, &sig.ExpiresAt, &sig.Status,
	)
	if err != nil {
		return types.Signal{}, err
	}

	if err := unmarshalJSON(values, &sig.Values); err != nil {
		return types.Signal{}, err
	}

	return sig, nil
}

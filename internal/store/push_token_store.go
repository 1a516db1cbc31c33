package store

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/signalmaster/signal-engine/pkg/errors"
)

// UpsertPushToken registers a device push token for a user. Re-registering
// the same token refreshes its timestamp.
func (s *Store) UpsertPushToken(ctx context.Context, userID, token string, at time.Time) error {
	deleteQuery := s.sq.
		Delete("push_tokens").
		Where(squirrel.Eq{"user_id": userID, "token": token}).
		RunWith(s.db)

	if _, err := deleteQuery.ExecContext(ctx); err != nil {
		s.logQueryError("delete push token", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to replace push token")
	}

	insertQuery := s.sq.
		Insert("push_tokens").
		Columns("user_id", "token", "updated_at").
		Values(userID, token, at).
		RunWith(s.db)

	if _, err := insertQuery.ExecContext(ctx); err != nil {
		s.logQueryError("insert push token", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to insert push token")
	}

	return nil
}

// DeletePushToken removes a device token, typically on logout.
func (s *Store) DeletePushToken(ctx context.Context, userID, token string) error {
	query := s.sq.
		Delete("push_tokens").
		Where(squirrel.Eq{"user_id": userID, "token": token}).
		RunWith(s.db)

	if _, err := query.ExecContext(ctx); err != nil {
		s.logQueryError("delete push token", err)

		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to delete push token")
	}

	return nil
}

// ListPushTokens returns all registered tokens for the given users. The
// result order is unspecified.
func (s *Store) ListPushTokens(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := s.sq.
		Select("token").
		From("push_tokens").
		Where(squirrel.Eq{"user_id": userIDs}).
		RunWith(s.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		s.logQueryError("list push tokens", err)

		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to list push tokens")
	}
	defer rows.Close()

	var tokens []string

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to scan push token")
		}

		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "error iterating push tokens")
	}

	return tokens, nil
}

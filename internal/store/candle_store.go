package store

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// WriteCandles inserts backfilled candles in one transaction. Re-running a
// backfill over the same range replaces existing bars.
func (s *Store) WriteCandles(ctx context.Context, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to begin transaction")
	}

	for _, candle := range candles {
		// DuckDB's ART index does not observe same-transaction deletes, so
		// delete+insert on the primary key fails on re-backfill. INSERT OR
		// REPLACE handles the overwrite in one statement.
		insertQuery := s.sq.
			Insert("market_data").
			Options("OR REPLACE").
			Columns("symbol", "timeframe", "time", "open", "high", "low", "close", "volume").
			Values(candle.Symbol, candle.Timeframe, candle.Time,
				candle.Open, candle.High, candle.Low, candle.Close, candle.Volume).
			RunWith(tx)

		if _, err := insertQuery.ExecContext(ctx); err != nil {
			tx.Rollback()
			s.logQueryError("write candle", err)

			return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to write candle")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to commit transaction")
	}

	return nil
}

// ReadCandles returns the most recent limit candles for a symbol and
// timeframe, oldest first.
func (s *Store) ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) ([]types.Candle, error) {
	// Select newest first to apply the limit, then reverse in the outer
	// query so callers see chronological order.
	inner := s.sq.
		Select("symbol", "timeframe", "time", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol, "timeframe": timeframe}).
		OrderBy("time DESC")

	if limit > 0 {
		inner = inner.Limit(uint64(limit))
	}

	innerSQL, args, err := inner.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to build candle query")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM ("+innerSQL+") ORDER BY time ASC", args...)
	if err != nil {
		s.logQueryError("read candles", err)

		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to read candles")
	}
	defer rows.Close()

	var candles []types.Candle

	for rows.Next() {
		var candle types.Candle

		err := rows.Scan(&candle.Symbol, &candle.Timeframe, &candle.Time,
			&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to scan candle")
		}

		candles = append(candles, candle)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeQueryFailed, "error iterating candles")
	}

	return candles, nil
}

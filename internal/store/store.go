// Package store persists indicators, subscriptions, signals, inbox entries,
// push tokens and backfilled candles in DuckDB.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// Store wraps a DuckDB database. Use ":memory:" as the path for an
// ephemeral database in tests.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewStore opens the database at path.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStoreInitFailed, "failed to open database at %s", path)
	}

	return &Store{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the schema. Safe to call on an already-initialized
// database.
func (s *Store) Initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS indicators (
			id TEXT PRIMARY KEY,
			mentor_id TEXT,
			name TEXT,
			description TEXT,
			symbol TEXT,
			timeframe TEXT,
			specs TEXT,
			buy_conditions TEXT,
			buy_logic TEXT,
			sell_conditions TEXT,
			sell_logic TEXT,
			current_signal TEXT,
			is_running BOOLEAN,
			status TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			last_checked TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			mentor_id TEXT,
			indicator_id TEXT,
			indicator_name TEXT,
			symbol TEXT,
			timeframe TEXT,
			status TEXT,
			subscribed_at TIMESTAMP,
			unsubscribed_at TIMESTAMP,
			last_check_time TIMESTAMP,
			last_signal_time TIMESTAMP,
			last_signal_type TEXT,
			total_signals_received INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			signal_type TEXT,
			indicator_id TEXT,
			indicator_name TEXT,
			subscription_id TEXT,
			timeframe TEXT,
			sender_type TEXT,
			sender_id TEXT,
			notes TEXT,
			indicator_values TEXT,
			created_at TIMESTAMP,
			expires_at TIMESTAMP,
			status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS user_signals (
			id TEXT PRIMARY KEY,
			signal_id TEXT,
			user_id TEXT,
			read BOOLEAN,
			received_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS push_tokens (
			user_id TEXT,
			token TEXT,
			updated_at TIMESTAMP,
			PRIMARY KEY (user_id, token)
		)`,
		`CREATE TABLE IF NOT EXISTS market_data (
			symbol TEXT,
			timeframe TEXT,
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			PRIMARY KEY (symbol, timeframe, time)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, errors.ErrCodeStoreInitFailed, "failed to create schema")
		}
	}

	s.log.Debug("store schema initialized")

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to close database")
	}

	return nil
}

func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to marshal column")
	}

	return string(data), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueryFailed, "failed to unmarshal column")
	}

	return nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time

	return &v
}

func (s *Store) logQueryError(operation string, err error) {
	s.log.Error("store query failed", zap.String("operation", operation), zap.Error(err))
}

// Package audit - PostgreSQL audit sink
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS prediction_audit (
	id           BIGSERIAL PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL,
	request_id   TEXT NOT NULL,
	input_hash   TEXT NOT NULL,
	input        JSONB NOT NULL,
	record       DOUBLE PRECISION[],
	price        NUMERIC(20, 2),
	currency     TEXT,
	client_ip    TEXT,
	user_agent   TEXT,
	duration_ms  BIGINT NOT NULL,
	success      BOOLEAN NOT NULL,
	error_type   TEXT,
	error        TEXT
)`

const insertSQL = `
INSERT INTO prediction_audit (
	created_at, request_id, input_hash, input, record, price, currency,
	client_ip, user_agent, duration_ms, success, error_type, error
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// PostgresLogger stores entries in the prediction_audit table
type PostgresLogger struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and creates the audit table if needed
func OpenPostgres(ctx context.Context, dsn string) (*PostgresLogger, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid audit DSN: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit database unreachable: %w", err)
	}

	l := NewPostgresLogger(db)
	if err := l.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// NewPostgresLogger wraps an open database handle
func NewPostgresLogger(db *sql.DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

// EnsureSchema creates the audit table
func (l *PostgresLogger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// Log implements Logger
func (l *PostgresLogger) Log(ctx context.Context, entry Entry) error {
	input, err := json.Marshal(entry.Input)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx, insertSQL,
		entry.Timestamp,
		entry.RequestID,
		entry.InputHash,
		string(input),
		pq.Array(entry.Record),
		nullString(entry.Price),
		nullString(entry.Currency),
		nullString(entry.ClientIP),
		nullString(entry.UserAgent),
		entry.DurationMs,
		entry.Success,
		nullString(entry.ErrorType),
		nullString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Close closes the database handle
func (l *PostgresLogger) Close() error {
	return l.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

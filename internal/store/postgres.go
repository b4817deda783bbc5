package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"vscode-status-server/internal/model"
)

// PostgresStore is the Postgres-backed Repository. Each method is a single
// statement, so per-record atomicity comes from the database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a status record store that uses the given db for persistence.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec *model.StatusRecord) error {
	data, err := marshalStatus(rec.StatusData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, auth_token, created_at, last_updated, status_data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING`,
		rec.UserID, rec.AuthToken, rec.CreatedAt, rec.LastUpdated, data)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*model.StatusRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, auth_token, created_at, last_updated, status_data
		FROM users WHERE user_id = $1`, userID)

	var rec model.StatusRecord
	var lastUpdated sql.NullTime
	var data []byte
	if err := row.Scan(&rec.UserID, &rec.AuthToken, &rec.CreatedAt, &lastUpdated, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if lastUpdated.Valid {
		t := lastUpdated.Time
		rec.LastUpdated = &t
	}
	rec.StatusData = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.StatusData); err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, userID string, statusData map[string]any, now time.Time) error {
	data, err := marshalStatus(statusData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET status_data = $2, last_updated = $3 WHERE user_id = $1`,
		userID, data, now)
	if err != nil {
		return err
	}
	return notFoundIfZero(res)
}

func (s *PostgresStore) ClearStatus(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET status_data = '{}'::jsonb, last_updated = NULL WHERE user_id = $1`,
		userID)
	if err != nil {
		return err
	}
	return notFoundIfZero(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	return notFoundIfZero(res)
}

func marshalStatus(data map[string]any) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(data)
}

func notFoundIfZero(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

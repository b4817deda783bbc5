package telemetry

import (
	"context"
	"database/sql"
	"errors"

	"vscode-status-server/internal/model"
)

// PostgresLog is the Postgres-backed Log.
type PostgresLog struct {
	db *sql.DB
}

// NewPostgresLog returns a telemetry log that uses the given db for persistence.
func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append persists the event. It sets ev.ID on success.
func (l *PostgresLog) Append(ctx context.Context, ev *model.TelemetryEvent) error {
	return l.db.QueryRowContext(ctx, `
		INSERT INTO telemetry (ip, endpoint, method, status, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ev.IP, ev.Endpoint, ev.Method, ev.Status, ev.Timestamp).Scan(&ev.ID)
}

func (l *PostgresLog) CountByIP(ctx context.Context, start, end int64) ([]model.IPCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT ip, count(id) FROM telemetry
		WHERE timestamp >= $1 AND timestamp < $2
		GROUP BY ip`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IPCount
	for rows.Next() {
		var c model.IPCount
		if err := rows.Scan(&c.IP, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (l *PostgresLog) CountByEndpoint(ctx context.Context, start, end int64) ([]model.EndpointCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT endpoint, count(id) FROM telemetry
		WHERE timestamp >= $1 AND timestamp < $2
		GROUP BY endpoint`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EndpointCount
	for rows.Next() {
		var c model.EndpointCount
		if err := rows.Scan(&c.Endpoint, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (l *PostgresLog) CountByIPEndpoint(ctx context.Context, start, end int64) ([]model.IPEndpointCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT ip, endpoint, count(id) FROM telemetry
		WHERE timestamp >= $1 AND timestamp < $2
		GROUP BY ip, endpoint`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IPEndpointCount
	for rows.Next() {
		var c model.IPEndpointCount
		if err := rows.Scan(&c.IP, &c.Endpoint, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PostgresTracker is the Postgres-backed Tracker.
type PostgresTracker struct {
	db *sql.DB
}

// NewPostgresTracker returns a report tracker that uses the given db for persistence.
func NewPostgresTracker(db *sql.DB) *PostgresTracker {
	return &PostgresTracker{db: db}
}

func (t *PostgresTracker) LastSent(ctx context.Context, reportType, period string) (int64, error) {
	var lastSent int64
	err := t.db.QueryRowContext(ctx, `
		SELECT last_sent FROM webhook_tracker WHERE type = $1 AND period = $2`,
		reportType, period).Scan(&lastSent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return lastSent, nil
}

func (t *PostgresTracker) Seed(ctx context.Context, reportType, period string, lastSent int64) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO webhook_tracker (type, period, last_sent)
		VALUES ($1, $2, $3)
		ON CONFLICT (type, period) DO NOTHING`,
		reportType, period, lastSent)
	return err
}

// Claim is the compare-and-swap that makes report dispatch idempotent across
// processes: only the process whose expected value still matches advances the
// entry and may send.
func (t *PostgresTracker) Claim(ctx context.Context, reportType, period string, expected, now int64) (bool, error) {
	res, err := t.db.ExecContext(ctx, `
		UPDATE webhook_tracker SET last_sent = $4
		WHERE type = $1 AND period = $2 AND last_sent = $3`,
		reportType, period, expected, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if expected != 0 {
		return false, nil
	}

	// No entry yet; creating it is the claim.
	res, err = t.db.ExecContext(ctx, `
		INSERT INTO webhook_tracker (type, period, last_sent)
		VALUES ($1, $2, $3)
		ON CONFLICT (type, period) DO NOTHING`,
		reportType, period, now)
	if err != nil {
		return false, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

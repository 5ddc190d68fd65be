package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusd/internal/modules/reminder/domain"
	reminderout "focusd/internal/modules/reminder/port/out"
	apperrors "focusd/internal/platform/errors"
	"focusd/internal/platform/tx"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteLogStore struct {
	db *sql.DB
}

func NewSQLiteLogStore(ctx context.Context, db *sql.DB) (reminderout.LogStore, error) {
	const ddl = `
CREATE TABLE IF NOT EXISTS reminder_logs (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  fired_at TEXT NOT NULL,
  predicted_min REAL NOT NULL DEFAULT 0,
  response TEXT NOT NULL DEFAULT '',
  responded_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_reminder_logs_session ON reminder_logs(session_id, fired_at);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create reminder tables: %w", err)
	}
	return &SQLiteLogStore{db: db}, nil
}

func (s *SQLiteLogStore) Append(ctx context.Context, entry domain.Log) error {
	if err := entry.Kind.Validate(); err != nil {
		return err
	}
	if _, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`INSERT INTO reminder_logs (id, session_id, kind, fired_at, predicted_min) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, string(entry.Kind),
		entry.FiredAt.UTC().Format(timeLayout), entry.PredictedMin,
	); err != nil {
		return fmt.Errorf("append reminder log: %w", err)
	}
	return nil
}

func (s *SQLiteLogStore) SetResponse(ctx context.Context, logID, response string, respondedAt time.Time) error {
	result, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`UPDATE reminder_logs SET response = ?, responded_at = ? WHERE id = ?`,
		response, respondedAt.UTC().Format(timeLayout), logID)
	if err != nil {
		return fmt.Errorf("record reminder response: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record reminder response: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteLogStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Log, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx, `
SELECT id, session_id, kind, fired_at, predicted_min, response, COALESCE(responded_at, '')
FROM reminder_logs WHERE session_id = ? ORDER BY fired_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list reminder logs: %w", err)
	}
	defer rows.Close()
	var out []domain.Log
	for rows.Next() {
		var entry domain.Log
		var kind, firedAt, respondedAt string
		if err := rows.Scan(&entry.ID, &entry.SessionID, &kind, &firedAt,
			&entry.PredictedMin, &entry.Response, &respondedAt); err != nil {
			return nil, fmt.Errorf("scan reminder log: %w", err)
		}
		entry.Kind = domain.CheckKind(kind)
		entry.FiredAt, err = time.Parse(timeLayout, firedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fired_at: %w", err)
		}
		if respondedAt != "" {
			entry.RespondedAt, err = time.Parse(timeLayout, respondedAt)
			if err != nil {
				return nil, fmt.Errorf("parse responded_at: %w", err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

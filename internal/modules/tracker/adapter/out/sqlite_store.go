package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focusd/internal/modules/tracker/domain"
	trackerout "focusd/internal/modules/tracker/port/out"
	"focusd/internal/platform/clock"
	apperrors "focusd/internal/platform/errors"
	"focusd/internal/platform/id"
	"focusd/internal/platform/tx"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// OpenDB opens (and creates) the shared sqlite database.
func OpenDB(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tracker tables. Idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id),
  name TEXT NOT NULL,
  created_at TEXT NOT NULL,
  UNIQUE(category_id, name)
);
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id),
  task_id TEXT,
  started_at TEXT NOT NULL,
  ended_at TEXT,
  gross_min REAL NOT NULL DEFAULT 0,
  net_focused_min REAL NOT NULL DEFAULT 0,
  break_min REAL NOT NULL DEFAULT 0,
  procrastination_min REAL NOT NULL DEFAULT 0,
  longest_focus_block_min REAL NOT NULL DEFAULT 0,
  interruption_count INTEGER NOT NULL DEFAULT 0,
  focus_ratio REAL NOT NULL DEFAULT 0,
  burnout_detected INTEGER NOT NULL DEFAULT 0,
  procrastination_detected INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_category ON sessions(category_id, started_at);
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES sessions(id),
  kind TEXT NOT NULL,
  at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, at);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tracker tables: %w", err)
	}
	return nil
}

// ── categories ──

type SQLiteCategoryStore struct {
	db    *sql.DB
	idGen id.Generator
	clock clock.Clock
}

func NewSQLiteCategoryStore(db *sql.DB, idGen id.Generator, clk clock.Clock) *SQLiteCategoryStore {
	return &SQLiteCategoryStore{db: db, idGen: idGen, clock: clk}
}

func (s *SQLiteCategoryStore) GetOrCreate(ctx context.Context, name string) (domain.Category, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT id, name, created_at FROM categories WHERE name = ?`, name)
	category, err := scanCategory(row)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, fmt.Errorf("query category: %w", err)
	}
	category = domain.Category{ID: s.idGen.New(), Name: name, CreatedAt: s.clock.Now()}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		category.ID, category.Name, category.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

func (s *SQLiteCategoryStore) Get(ctx context.Context, categoryID string) (domain.Category, error) {
	row := tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ?`, categoryID)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("query category: %w", err)
	}
	return category, nil
}

func (s *SQLiteCategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, category)
	}
	return out, rows.Err()
}

// ── tasks ──

type SQLiteTaskStore struct {
	db    *sql.DB
	idGen id.Generator
	clock clock.Clock
}

func NewSQLiteTaskStore(db *sql.DB, idGen id.Generator, clk clock.Clock) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: db, idGen: idGen, clock: clk}
}

func (s *SQLiteTaskStore) GetOrCreate(ctx context.Context, categoryID, name string) (domain.Task, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT id, category_id, name, created_at FROM tasks WHERE category_id = ? AND name = ?`,
		categoryID, name)
	task, err := scanTask(row)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, fmt.Errorf("query task: %w", err)
	}
	task = domain.Task{ID: s.idGen.New(), CategoryID: categoryID, Name: name, CreatedAt: s.clock.Now()}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO tasks (id, category_id, name, created_at) VALUES (?, ?, ?, ?)`,
		task.ID, task.CategoryID, task.Name, task.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *SQLiteTaskStore) Get(ctx context.Context, taskID string) (domain.Task, error) {
	row := tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, category_id, name, created_at FROM tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

func (s *SQLiteTaskStore) List(ctx context.Context, categoryID string) ([]domain.Task, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx,
		`SELECT id, category_id, name, created_at FROM tasks WHERE category_id = ? ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var out []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// ── events ──

type SQLiteEventStore struct {
	db *sql.DB
}

func NewSQLiteEventStore(db *sql.DB) *SQLiteEventStore {
	return &SQLiteEventStore{db: db}
}

func (s *SQLiteEventStore) Append(ctx context.Context, event domain.Event) error {
	if err := event.Kind.Validate(); err != nil {
		return err
	}
	if _, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`INSERT INTO events (id, session_id, kind, at) VALUES (?, ?, ?, ?)`,
		event.ID, event.SessionID, string(event.Kind), event.At.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *SQLiteEventStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Event, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx,
		`SELECT id, session_id, kind, at FROM events WHERE session_id = ? ORDER BY at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var event domain.Event
		var kind, at string
		if err := rows.Scan(&event.ID, &event.SessionID, &kind, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Kind = domain.EventKind(kind)
		event.At, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// ── sessions ──

type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(db *sql.DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

func (s *SQLiteSessionStore) Create(ctx context.Context, session domain.Session) error {
	if _, err := tx.Querier(ctx, s.db).ExecContext(ctx,
		`INSERT INTO sessions (id, category_id, task_id, started_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.CategoryID, nullable(session.TaskID), session.StartedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Finalize(ctx context.Context, session domain.Session) error {
	agg := session.Aggregates
	result, err := tx.Querier(ctx, s.db).ExecContext(ctx, `
UPDATE sessions SET
  ended_at = ?, gross_min = ?, net_focused_min = ?, break_min = ?,
  procrastination_min = ?, longest_focus_block_min = ?, interruption_count = ?,
  focus_ratio = ?, burnout_detected = ?, procrastination_detected = ?
WHERE id = ?`,
		session.EndedAt.UTC().Format(timeLayout),
		agg.GrossMin, agg.NetFocusedMin, agg.BreakMin,
		agg.ProcrastinationMin, agg.LongestFocusBlockMin, agg.InterruptionCount,
		agg.FocusRatio, boolInt(agg.BurnoutDetected), boolInt(agg.ProcrastinationDetected),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteSessionStore) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	row := tx.Querier(ctx, s.db).QueryRowContext(ctx, sessionColumns+` WHERE id = ?`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("query session: %w", err)
	}
	return session, nil
}

func (s *SQLiteSessionStore) ListCompleted(ctx context.Context, query trackerout.ListQuery) ([]domain.Session, error) {
	stmt := sessionColumns + ` WHERE ended_at IS NOT NULL`
	args := []any{}
	if query.CategoryID != "" {
		stmt += ` AND category_id = ?`
		args = append(args, query.CategoryID)
	}
	if !query.From.IsZero() {
		stmt += ` AND started_at >= ?`
		args = append(args, query.From.UTC().Format(timeLayout))
	}
	if !query.To.IsZero() {
		stmt += ` AND started_at <= ?`
		args = append(args, query.To.UTC().Format(timeLayout))
	}
	stmt += ` ORDER BY started_at`
	if query.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, query.Limit)
	}
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var out []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func (s *SQLiteSessionStore) CountCompleted(ctx context.Context) (int, error) {
	var count int
	if err := tx.Querier(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE ended_at IS NOT NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, sessionID string) error {
	q := tx.Querier(ctx, s.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM events WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session events: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	q := tx.Querier(ctx, s.db)
	if _, err := q.ExecContext(ctx, `
DELETE FROM events WHERE session_id IN (
  SELECT id FROM sessions WHERE started_at >= ? AND started_at <= ? AND ended_at IS NOT NULL
)`, from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)); err != nil {
		return 0, fmt.Errorf("delete range events: %w", err)
	}
	result, err := q.ExecContext(ctx,
		`DELETE FROM sessions WHERE started_at >= ? AND started_at <= ? AND ended_at IS NOT NULL`,
		from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete range sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete range sessions: %w", err)
	}
	return int(affected), nil
}

func (s *SQLiteSessionStore) ResetAll(ctx context.Context) error {
	q := tx.Querier(ctx, s.db)
	for _, table := range []string{"events", "sessions", "tasks", "categories"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// ── scanning helpers ──

const sessionColumns = `
SELECT id, category_id, COALESCE(task_id, ''), started_at, ended_at,
  gross_min, net_focused_min, break_min, procrastination_min,
  longest_focus_block_min, interruption_count, focus_ratio,
  burnout_detected, procrastination_detected
FROM sessions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var session domain.Session
	var startedAt string
	var endedAt sql.NullString
	var burnout, proc int
	if err := row.Scan(
		&session.ID, &session.CategoryID, &session.TaskID, &startedAt, &endedAt,
		&session.Aggregates.GrossMin, &session.Aggregates.NetFocusedMin,
		&session.Aggregates.BreakMin, &session.Aggregates.ProcrastinationMin,
		&session.Aggregates.LongestFocusBlockMin, &session.Aggregates.InterruptionCount,
		&session.Aggregates.FocusRatio, &burnout, &proc,
	); err != nil {
		return domain.Session{}, err
	}
	var err error
	session.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	if endedAt.Valid {
		session.EndedAt, err = time.Parse(timeLayout, endedAt.String)
		if err != nil {
			return domain.Session{}, fmt.Errorf("parse ended_at: %w", err)
		}
		session.Finalized = true
	}
	session.Aggregates.BurnoutDetected = burnout != 0
	session.Aggregates.ProcrastinationDetected = proc != 0
	return session, nil
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var category domain.Category
	var createdAt string
	if err := row.Scan(&category.ID, &category.Name, &createdAt); err != nil {
		return domain.Category{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Category{}, fmt.Errorf("parse created_at: %w", err)
	}
	category.CreatedAt = parsed
	return category, nil
}

func scanTask(row rowScanner) (domain.Task, error) {
	var task domain.Task
	var createdAt string
	if err := row.Scan(&task.ID, &task.CategoryID, &task.Name, &createdAt); err != nil {
		return domain.Task{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("parse created_at: %w", err)
	}
	task.CreatedAt = parsed
	return task, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"focusd/internal/modules/predict/domain"
	predictout "focusd/internal/modules/predict/port/out"
	"focusd/internal/platform/tx"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteModelStore struct {
	db *sql.DB
}

func NewSQLiteModelStore(ctx context.Context, db *sql.DB) (predictout.ModelStore, error) {
	const ddl = `
CREATE TABLE IF NOT EXISTS model_versions (
  version INTEGER PRIMARY KEY AUTOINCREMENT,
  target TEXT NOT NULL,
  category_id TEXT NOT NULL DEFAULT '',
  tier TEXT NOT NULL DEFAULT '',
  params TEXT NOT NULL DEFAULT '{}',
  sample_count INTEGER NOT NULL DEFAULT 0,
  trained_at TEXT NOT NULL,
  failed INTEGER NOT NULL DEFAULT 0,
  fail_reason TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_model_versions_pair ON model_versions(target, category_id, version);
`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create model tables: %w", err)
	}
	return &SQLiteModelStore{db: db}, nil
}

func (s *SQLiteModelStore) Save(ctx context.Context, version domain.ModelVersion) (int64, error) {
	params, err := json.Marshal(version.Params)
	if err != nil {
		return 0, fmt.Errorf("marshal model params: %w", err)
	}
	result, err := tx.Querier(ctx, s.db).ExecContext(ctx, `
INSERT INTO model_versions (target, category_id, tier, params, sample_count, trained_at, failed, fail_reason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(version.Target), version.CategoryID, string(version.Tier), string(params),
		version.SampleCount, version.TrainedAt.UTC().Format(timeLayout),
		boolInt(version.Failed), version.FailReason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert model version: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert model version: %w", err)
	}
	return id, nil
}

// LoadLatest returns the newest non-failed version per (target, category).
func (s *SQLiteModelStore) LoadLatest(ctx context.Context) ([]domain.ModelVersion, error) {
	rows, err := tx.Querier(ctx, s.db).QueryContext(ctx, `
SELECT version, target, category_id, tier, params, sample_count, trained_at, failed, fail_reason
FROM model_versions m
WHERE failed = 0 AND version = (
  SELECT MAX(version) FROM model_versions
  WHERE target = m.target AND category_id = m.category_id AND failed = 0
)`)
	if err != nil {
		return nil, fmt.Errorf("load model versions: %w", err)
	}
	defer rows.Close()
	var out []domain.ModelVersion
	for rows.Next() {
		var v domain.ModelVersion
		var target, tier, params, trainedAt string
		var failed int
		if err := rows.Scan(&v.Version, &target, &v.CategoryID, &tier, &params,
			&v.SampleCount, &trainedAt, &failed, &v.FailReason); err != nil {
			return nil, fmt.Errorf("scan model version: %w", err)
		}
		v.Target = domain.Target(target)
		v.Tier = domain.Tier(tier)
		v.Failed = failed != 0
		if err := json.Unmarshal([]byte(params), &v.Params); err != nil {
			return nil, fmt.Errorf("decode model params: %w", err)
		}
		// Rows written by another params layout cannot be evaluated;
		// the pair retrains instead of misreading them.
		if v.Params.SchemaVersion != domain.ParamsSchemaVersion {
			continue
		}
		v.TrainedAt, err = time.Parse(timeLayout, trainedAt)
		if err != nil {
			return nil, fmt.Errorf("parse trained_at: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

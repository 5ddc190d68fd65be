package out

import (
	"context"

	"focusd/internal/modules/predict/domain"
)

// History exposes finalized-session observations for training. Samples
// returns every observation of the target; callers group by category.
type History interface {
	Samples(ctx context.Context, target domain.Target) ([]domain.Sample, error)
	CompletedCount(ctx context.Context) (int, error)
	CategoryFocusRatio(ctx context.Context, categoryID string) (float64, error)
	CategoryIDByName(ctx context.Context, name string) (string, error)
	// BreakRecoverySamples reports, per finalized session that took a
	// break, the break minutes spread over that session's interruptions.
	// An empty categoryID spans every category.
	BreakRecoverySamples(ctx context.Context, categoryID string) ([]float64, error)
}

// ModelStore persists training results. Load returns the latest version
// per (target, category) pair so a restarted process predicts without
// retraining first.
type ModelStore interface {
	Save(ctx context.Context, version domain.ModelVersion) (int64, error)
	LoadLatest(ctx context.Context) ([]domain.ModelVersion, error)
}

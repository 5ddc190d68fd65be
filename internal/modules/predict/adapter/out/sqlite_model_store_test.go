package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"focusd/internal/modules/predict/adapter/out"
	"focusd/internal/modules/predict/domain"
	trackerout "focusd/internal/modules/tracker/adapter/out"
)

func TestModelStoreKeepsLatestPerPair(t *testing.T) {
	t.Parallel()
	db, err := trackerout.OpenDB(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store, err := out.NewSQLiteModelStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	trainedAt := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	save := func(categoryID string, tier domain.Tier, value float64) int64 {
		t.Helper()
		version, err := store.Save(context.Background(), domain.ModelVersion{
			Target:     domain.TargetTimeToBreak,
			CategoryID: categoryID,
			Tier:       tier,
			Params: domain.Params{
				SchemaVersion: domain.ParamsSchemaVersion,
				Tier:          tier,
				Value:         value,
				ClampLow:      value / 2,
				ClampHigh:     value * 2,
			},
			SampleCount: 4,
			TrainedAt:   trainedAt,
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		return version
	}

	first := save("cat-1", domain.TierEMA, 20)
	second := save("cat-1", domain.TierEMA, 25)
	if second <= first {
		t.Fatalf("versions must be monotonic: %d then %d", first, second)
	}
	save("", domain.TierGlobalMean, 30)

	// Failed rows never shadow good ones.
	if _, err := store.Save(context.Background(), domain.ModelVersion{
		Target:     domain.TargetTimeToBreak,
		CategoryID: "cat-1",
		TrainedAt:  trainedAt,
		Failed:     true,
		FailReason: "singular system",
	}); err != nil {
		t.Fatalf("save failed row: %v", err)
	}

	latest, err := store.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 surviving pairs, got %d", len(latest))
	}
	for _, v := range latest {
		if v.CategoryID == "cat-1" {
			if v.Params.Value != 25 {
				t.Fatalf("cat-1 should load the newer params, got %v", v.Params.Value)
			}
			if v.TrainedAt != trainedAt {
				t.Fatalf("trained_at round trip lost: %v", v.TrainedAt)
			}
		}
	}
}

func TestLoadLatestRejectsForeignParamsSchema(t *testing.T) {
	t.Parallel()
	db, err := trackerout.OpenDB(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	store, err := out.NewSQLiteModelStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	trainedAt := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	if _, err := store.Save(context.Background(), domain.ModelVersion{
		Target:     domain.TargetTimeToBreak,
		CategoryID: "cat-1",
		Tier:       domain.TierEMA,
		Params: domain.Params{
			SchemaVersion: domain.ParamsSchemaVersion + 1,
			Tier:          domain.TierEMA,
			Value:         20,
			ClampLow:      10,
			ClampHigh:     40,
		},
		SampleCount: 4,
		TrainedAt:   trainedAt,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	latest, err := store.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if len(latest) != 0 {
		t.Fatalf("a params blob from another schema must not load, got %+v", latest)
	}
}

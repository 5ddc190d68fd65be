package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"focusd/internal/modules/predict/domain"
	"focusd/internal/modules/predict/service"
	apperrors "focusd/internal/platform/errors"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

type fakeHistory struct {
	samples  map[domain.Target][]domain.Sample
	count    int
	ratio    float64
	recovery map[string][]float64
}

func (f *fakeHistory) Samples(_ context.Context, target domain.Target) ([]domain.Sample, error) {
	return f.samples[target], nil
}

func (f *fakeHistory) CompletedCount(context.Context) (int, error) { return f.count, nil }

func (f *fakeHistory) CategoryFocusRatio(context.Context, string) (float64, error) {
	return f.ratio, nil
}

func (f *fakeHistory) CategoryIDByName(_ context.Context, name string) (string, error) {
	return "cat-" + name, nil
}

func (f *fakeHistory) BreakRecoverySamples(_ context.Context, categoryID string) ([]float64, error) {
	return f.recovery[categoryID], nil
}

type memoryModelStore struct {
	saved []domain.ModelVersion
	next  int64
}

func (m *memoryModelStore) Save(_ context.Context, version domain.ModelVersion) (int64, error) {
	m.next++
	version.Version = m.next
	m.saved = append(m.saved, version)
	return m.next, nil
}

func (m *memoryModelStore) LoadLatest(context.Context) ([]domain.ModelVersion, error) {
	latest := map[string]domain.ModelVersion{}
	for _, v := range m.saved {
		if v.Failed {
			continue
		}
		key := string(v.Target) + "/" + v.CategoryID
		if v.Version > latest[key].Version {
			latest[key] = v
		}
	}
	out := make([]domain.ModelVersion, 0, len(latest))
	for _, v := range latest {
		out = append(out, v)
	}
	return out, nil
}

func history(count int, targetSamples map[domain.Target][]domain.Sample) *fakeHistory {
	return &fakeHistory{samples: targetSamples, count: count, ratio: 0.8}
}

func catSamples(categoryID string, values ...float64) []domain.Sample {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	out := make([]domain.Sample, 0, len(values))
	for i, v := range values {
		out = append(out, domain.Sample{StartedAt: base.AddDate(0, 0, i), CategoryID: categoryID, Value: v})
	}
	return out
}

func TestTrainAllSwapsModelsAndPredicts(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(5, map[domain.Target][]domain.Sample{
		domain.TargetNetFocusedTime: catSamples("cat-1", 40, 45, 38, 42),
	})
	store := &memoryModelStore{}
	svc := service.NewPredictService(clk, hist, store, 5)

	if _, _, err := svc.Predict(domain.TargetNetFocusedTime, "cat-1"); !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("predict before training should report insufficient data, got %v", err)
	}

	trained, failed, err := svc.TrainAll(context.Background())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	// One category model plus the global fallback for the populated target.
	if len(trained) != 2 {
		t.Fatalf("trained %d models, want 2", len(trained))
	}

	minutes, version, err := svc.Predict(domain.TargetNetFocusedTime, "cat-1")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if version.Tier != domain.TierEMA {
		t.Fatalf("4 samples should fit ema, got %s", version.Tier)
	}
	if minutes <= 0 {
		t.Fatalf("prediction should be positive, got %v", minutes)
	}

	// Unknown category falls back to the global model.
	_, fallback, err := svc.Predict(domain.TargetNetFocusedTime, "cat-unknown")
	if err != nil {
		t.Fatalf("fallback predict: %v", err)
	}
	if fallback.CategoryID != "" || fallback.Tier != domain.TierGlobalMean {
		t.Fatalf("expected global fallback, got %+v", fallback)
	}

	// A target with no history at all stays unavailable.
	if _, _, err := svc.Predict(domain.TargetTimeToBurnout, "cat-1"); !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("empty target should report insufficient data, got %v", err)
	}
}

func TestRestoreLoadsPersistedModels(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(4, map[domain.Target][]domain.Sample{
		domain.TargetTimeToBreak: catSamples("cat-1", 25, 30, 28),
	})
	store := &memoryModelStore{}

	first := service.NewPredictService(clk, hist, store, 5)
	if _, _, err := first.TrainAll(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}

	second := service.NewPredictService(clk, hist, store, 5)
	if err := second.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	minutes, version, err := second.Predict(domain.TargetTimeToBreak, "cat-1")
	if err != nil {
		t.Fatalf("predict after restore: %v", err)
	}
	if version.Tier != domain.TierEMA || minutes <= 0 {
		t.Fatalf("unexpected restored model: tier=%s minutes=%v", version.Tier, minutes)
	}
}

func TestShouldRetrainFollowsStride(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(5, map[domain.Target][]domain.Sample{})
	store := &memoryModelStore{}
	svc := service.NewPredictService(clk, hist, store, 5)

	if _, _, err := svc.TrainAll(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}
	due, err := svc.ShouldRetrain(context.Background())
	if err != nil || due {
		t.Fatalf("no new sessions: due=%v err=%v", due, err)
	}
	hist.count = 9
	if due, _ = svc.ShouldRetrain(context.Background()); due {
		t.Fatalf("4 new sessions should not trigger a stride of 5")
	}
	hist.count = 10
	if due, _ = svc.ShouldRetrain(context.Background()); !due {
		t.Fatalf("5 new sessions should trigger retraining")
	}
}

func TestAdvisoryEstimates(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(6, map[domain.Target][]domain.Sample{
		domain.TargetNetFocusedTime:   catSamples("cat-1", 40, 40, 40),
		domain.TargetFocusBlockLength: catSamples("cat-1", 50, 50, 50),
	})
	store := &memoryModelStore{}
	svc := service.NewPredictService(clk, hist, store, 5)
	if _, _, err := svc.TrainAll(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}

	optimal, err := svc.OptimalSessionLength(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("optimal length: %v", err)
	}
	// 40 net focused at a 0.8 focus ratio means sitting down for 50.
	if optimal < 49 || optimal > 51 {
		t.Fatalf("optimal session length = %v, want ~50", optimal)
	}

	insertion, err := svc.BreakInsertionPoint("cat-1")
	if err != nil {
		t.Fatalf("break insertion: %v", err)
	}
	if insertion < 44 || insertion > 46 {
		t.Fatalf("break insertion = %v, want ~45", insertion)
	}

	// No break history yet, so the research mapping for a 50-minute
	// focus block answers.
	breakLen, err := svc.SuggestBreakLength(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("break length: %v", err)
	}
	if breakLen < 9 || breakLen > 11 {
		t.Fatalf("break length = %v, want ~10", breakLen)
	}
}

func TestSuggestBreakLengthFollowsRecoveryHistory(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(6, map[domain.Target][]domain.Sample{
		domain.TargetFocusBlockLength: catSamples("cat-1", 50, 50, 50),
	})
	hist.recovery = map[string][]float64{"cat-1": {12, 14, 16}}
	store := &memoryModelStore{}
	svc := service.NewPredictService(clk, hist, store, 5)
	if _, _, err := svc.TrainAll(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}

	breakLen, err := svc.SuggestBreakLength(context.Background(), "cat-1")
	if err != nil {
		t.Fatalf("break length: %v", err)
	}
	// Mean break-per-interruption from the category's own sessions wins
	// over the research mapping.
	if breakLen < 13.9 || breakLen > 14.1 {
		t.Fatalf("break length = %v, want 14", breakLen)
	}
}

// flakyModelStore refuses to persist good fits for one category, which
// makes that category's training fail while everything else succeeds.
type flakyModelStore struct {
	memoryModelStore
	refuseCategory string
}

func (m *flakyModelStore) Save(ctx context.Context, version domain.ModelVersion) (int64, error) {
	if m.refuseCategory != "" && version.CategoryID == m.refuseCategory && !version.Failed {
		return 0, errors.New("disk full")
	}
	return m.memoryModelStore.Save(ctx, version)
}

func TestFailedRefitKeepsPreviousModelServing(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{now: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)}
	hist := history(5, map[domain.Target][]domain.Sample{
		domain.TargetNetFocusedTime: catSamples("cat-1", 40, 45, 38, 42),
	})
	store := &flakyModelStore{}
	svc := service.NewPredictService(clk, hist, store, 5)

	if _, _, err := svc.TrainAll(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}
	before, version, err := svc.Predict(domain.TargetNetFocusedTime, "cat-1")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if version.Tier != domain.TierEMA {
		t.Fatalf("expected ema model, got %s", version.Tier)
	}

	store.refuseCategory = "cat-1"
	_, failed, err := svc.TrainAll(context.Background())
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if len(failed) == 0 {
		t.Fatalf("expected the cat-1 refit to be recorded as failed")
	}

	after, version, err := svc.Predict(domain.TargetNetFocusedTime, "cat-1")
	if err != nil {
		t.Fatalf("predict after failed refit: %v", err)
	}
	if version.Tier != domain.TierEMA || version.CategoryID != "cat-1" {
		t.Fatalf("failed refit must keep the previous category model, got %+v", version)
	}
	if after != before {
		t.Fatalf("prediction changed across a failed refit: %v then %v", before, after)
	}
}

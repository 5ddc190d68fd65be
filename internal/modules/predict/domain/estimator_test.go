package domain_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"focusd/internal/modules/predict/domain"
	apperrors "focusd/internal/platform/errors"
)

func samples(categoryID string, values ...float64) []domain.Sample {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	out := make([]domain.Sample, 0, len(values))
	for i, v := range values {
		out = append(out, domain.Sample{
			StartedAt:  base.AddDate(0, 0, i),
			CategoryID: categoryID,
			Value:      v,
		})
	}
	return out
}

func TestTrainPicksTierBySampleCount(t *testing.T) {
	t.Parallel()
	global := samples("", 30, 40, 50, 60)

	cases := []struct {
		name     string
		category []domain.Sample
		want     domain.Tier
	}{
		{"eight samples unlock regression", samples("cat", 40, 42, 38, 45, 41, 39, 44, 43), domain.TierRegression},
		{"three samples fall to ema", samples("cat", 40, 42, 38), domain.TierEMA},
		{"seven samples still ema", samples("cat", 40, 42, 38, 45, 41, 39, 44), domain.TierEMA},
		{"two samples fall to global mean", samples("cat", 40, 42), domain.TierGlobalMean},
		{"no samples fall to global mean", nil, domain.TierGlobalMean},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params, tier, _, err := domain.Train(domain.TargetNetFocusedTime, "cat", tc.category, global)
			if err != nil {
				t.Fatalf("train: %v", err)
			}
			if tier != tc.want {
				t.Fatalf("tier = %s, want %s", tier, tc.want)
			}
			if params.Tier != tc.want {
				t.Fatalf("params tier = %s, want %s", params.Tier, tc.want)
			}
		})
	}
}

func TestTrainWithoutAnyHistory(t *testing.T) {
	t.Parallel()
	_, _, _, err := domain.Train(domain.TargetTimeToBreak, "cat", nil, samples("", 10, 20))
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}

func TestTrainRejectsUnknownTarget(t *testing.T) {
	t.Parallel()
	if _, _, _, err := domain.Train(domain.Target("bogus"), "cat", nil, nil); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestEMAWeighsRecentSessionsHeavier(t *testing.T) {
	t.Parallel()
	// Old sessions at 30, latest at 60: the estimate must sit between
	// the plain mean and the latest observation.
	history := samples("cat", 30, 30, 30, 60)
	params, tier, _, err := domain.Train(domain.TargetFocusBlockLength, "cat", history, nil)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if tier != domain.TierEMA {
		t.Fatalf("tier = %s, want ema", tier)
	}
	got, err := domain.Predict(params, time.Now(), "cat")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	mean := 37.5
	if got <= mean || got >= 60 {
		t.Fatalf("ema estimate %v should land between mean %v and latest 60", got, mean)
	}
}

func TestPredictionsAreClampedToTrainingBand(t *testing.T) {
	t.Parallel()
	// Average 40 over the training set: every prediction must land in
	// [20, 80] no matter what the fitted weights extrapolate to.
	history := samples("cat", 40, 35, 45, 38, 42, 44, 36, 40)
	params, tier, _, err := domain.Train(domain.TargetNetFocusedTime, "cat", history, nil)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if tier != domain.TierRegression {
		t.Fatalf("tier = %s, want regression", tier)
	}
	for hour := 0; hour < 24; hour++ {
		at := time.Date(2026, 3, 15, hour, 0, 0, 0, time.UTC)
		got, err := domain.Predict(params, at, "cat")
		if err != nil {
			t.Fatalf("predict at %d: %v", hour, err)
		}
		if got < 20-1e-9 || got > 80+1e-9 {
			t.Fatalf("prediction %v at hour %d escapes clamp band [20, 80]", got, hour)
		}
	}
}

func TestRegressionFitsConstantHistory(t *testing.T) {
	t.Parallel()
	history := samples("cat", 50, 50, 50, 50, 50, 50, 50, 50)
	params, _, count, err := domain.Train(domain.TargetTimeToBurnout, "cat", history, nil)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if count != 8 {
		t.Fatalf("sample count = %d, want 8", count)
	}
	got, err := domain.Predict(params, time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC), "cat")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-50) > 1 {
		t.Fatalf("constant history should predict ~50, got %v", got)
	}
}

func TestGlobalMeanUsesAllCategories(t *testing.T) {
	t.Parallel()
	global := append(samples("a", 20, 30), samples("b", 40, 50)...)
	params, tier, _, err := domain.Train(domain.TargetTimeToBreak, "new-cat", nil, global)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if tier != domain.TierGlobalMean {
		t.Fatalf("tier = %s, want global_mean", tier)
	}
	got, err := domain.Predict(params, time.Now(), "new-cat")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-35) > 1e-9 {
		t.Fatalf("global mean = %v, want 35", got)
	}
}

package domain

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"time"

	apperrors "focusd/internal/platform/errors"
)

const ParamsSchemaVersion = 1

// Target names one predictable quantity, always in minutes.
type Target string

const (
	TargetTimeToBurnout         Target = "time_to_burnout"
	TargetTimeToProcrastination Target = "time_to_procrastination"
	TargetTimeToBreak           Target = "time_to_break"
	TargetNetFocusedTime        Target = "net_focused_time"
	TargetTimeToInterruption    Target = "time_to_first_interruption"
	TargetFocusBlockLength      Target = "focus_block_length"
)

var AllTargets = []Target{
	TargetTimeToBurnout,
	TargetTimeToProcrastination,
	TargetTimeToBreak,
	TargetNetFocusedTime,
	TargetTimeToInterruption,
	TargetFocusBlockLength,
}

func (t Target) Validate() error {
	for _, known := range AllTargets {
		if t == known {
			return nil
		}
	}
	return fmt.Errorf("unknown prediction target %q", t)
}

// Tier identifies which estimator produced a model, ordered from richest
// to coarsest.
type Tier string

const (
	TierRegression Tier = "regression"
	TierEMA        Tier = "ema"
	TierGlobalMean Tier = "global_mean"
)

const (
	// Sample counts that unlock each tier.
	MinRegressionSamples = 8
	MinEMASamples        = 3
	MinGlobalSamples     = 3

	emaAlpha = 0.3

	// Keeps the normal equations solvable when features are collinear,
	// which they always are for a single category (constant category
	// feature).
	ridgeEpsilon = 1e-6
)

// Sample is one finalized session's observation of a target.
type Sample struct {
	StartedAt  time.Time
	CategoryID string
	Value      float64
}

// Params is the serializable model state. A model is pure data; evaluation
// never touches history again.
type Params struct {
	SchemaVersion int       `json:"schema_version"`
	Tier          Tier      `json:"tier"`
	Weights       []float64 `json:"weights,omitempty"`
	RollingMean   float64   `json:"rolling_mean,omitempty"`
	Value         float64   `json:"value,omitempty"`
	ClampLow      float64   `json:"clamp_low"`
	ClampHigh     float64   `json:"clamp_high"`
}

// ModelVersion is one persisted training result for a (target, category)
// pair. CategoryID is empty for the global fallback model.
type ModelVersion struct {
	Version     int64
	Target      Target
	CategoryID  string
	Tier        Tier
	Params      Params
	SampleCount int
	TrainedAt   time.Time
	Failed      bool
	FailReason  string
}

// Train fits the richest tier the category history supports. The global
// sample set only matters when the category is too thin for its own model.
func Train(target Target, categoryID string, categorySamples, globalSamples []Sample) (Params, Tier, int, error) {
	if err := target.Validate(); err != nil {
		return Params{}, "", 0, err
	}
	sorted := make([]Sample, len(categorySamples))
	copy(sorted, categorySamples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartedAt.Before(sorted[j].StartedAt) })

	switch {
	case len(sorted) >= MinRegressionSamples:
		params, err := fitRegression(categoryID, sorted)
		if err != nil {
			return Params{}, "", 0, err
		}
		return params, TierRegression, len(sorted), nil
	case len(sorted) >= MinEMASamples:
		return fitEMA(sorted), TierEMA, len(sorted), nil
	case len(globalSamples) >= MinGlobalSamples:
		return fitMean(globalSamples), TierGlobalMean, len(globalSamples), nil
	default:
		return Params{}, "", 0, apperrors.ErrInsufficientData
	}
}

// Predict evaluates fitted params for a session starting at the given
// moment. The result is clamped to the training band.
func Predict(params Params, at time.Time, categoryID string) (float64, error) {
	var raw float64
	switch params.Tier {
	case TierRegression:
		if len(params.Weights) != 5 {
			return 0, fmt.Errorf("regression params hold %d weights, want 5", len(params.Weights))
		}
		features := featureVector(at, categoryID, params.RollingMean)
		raw = params.Weights[0]
		for i, f := range features {
			raw += params.Weights[i+1] * f
		}
	case TierEMA, TierGlobalMean:
		raw = params.Value
	default:
		return 0, fmt.Errorf("unknown model tier %q", params.Tier)
	}
	return clamp(raw, params.ClampLow, params.ClampHigh), nil
}

func featureVector(at time.Time, categoryID string, rollingMean float64) [4]float64 {
	return [4]float64{
		float64(at.Hour()),
		float64(at.Weekday()),
		categoryFeature(categoryID),
		rollingMean,
	}
}

// categoryFeature hashes an opaque category id into a stable small float.
func categoryFeature(categoryID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(categoryID))
	return float64(h.Sum32()%1000) / 1000
}

func fitRegression(categoryID string, samples []Sample) (Params, error) {
	const dims = 5
	mean := meanValue(samples)

	// Rolling mean feature per observation: mean of values seen so far,
	// seeded with the first value.
	var xtx [dims][dims]float64
	var xty [dims]float64
	for i, s := range samples {
		rolling := s.Value
		if i > 0 {
			rolling = meanValue(samples[:i])
		}
		features := featureVector(s.StartedAt, categoryID, rolling)
		row := [dims]float64{1, features[0], features[1], features[2], features[3]}
		for a := 0; a < dims; a++ {
			for b := 0; b < dims; b++ {
				xtx[a][b] += row[a] * row[b]
			}
			xty[a] += row[a] * s.Value
		}
	}
	for a := 0; a < dims; a++ {
		xtx[a][a] += ridgeEpsilon
	}
	weights, err := solve(xtx, xty)
	if err != nil {
		return Params{}, fmt.Errorf("fit %d-sample regression: %w", len(samples), err)
	}
	return Params{
		SchemaVersion: ParamsSchemaVersion,
		Tier:          TierRegression,
		Weights:       weights[:],
		RollingMean:   meanValue(samples),
		ClampLow:      0.5 * mean,
		ClampHigh:     2 * mean,
	}, nil
}

func fitEMA(samples []Sample) Params {
	mean := meanValue(samples)
	value := samples[0].Value
	for _, s := range samples[1:] {
		value = emaAlpha*s.Value + (1-emaAlpha)*value
	}
	return Params{
		SchemaVersion: ParamsSchemaVersion,
		Tier:          TierEMA,
		Value:         value,
		ClampLow:      0.5 * mean,
		ClampHigh:     2 * mean,
	}
}

func fitMean(samples []Sample) Params {
	mean := meanValue(samples)
	return Params{
		SchemaVersion: ParamsSchemaVersion,
		Tier:          TierGlobalMean,
		Value:         mean,
		ClampLow:      0.5 * mean,
		ClampHigh:     2 * mean,
	}
}

func meanValue(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// solve runs Gaussian elimination with partial pivoting on a 5x5 system.
func solve(a [5][5]float64, b [5]float64) ([5]float64, error) {
	const n = 5
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [5]float64{}, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	var x [5]float64
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}

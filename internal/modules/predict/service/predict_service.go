package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"focusd/internal/modules/predict/domain"
	predictout "focusd/internal/modules/predict/port/out"
	"focusd/internal/platform/clock"
	apperrors "focusd/internal/platform/errors"
)

type modelKey struct {
	target     domain.Target
	categoryID string
}

// PredictService trains and serves the tiered estimators. Training runs
// over a history snapshot taken up front; the finished model set replaces
// the active one in a single guarded exchange, so Predict never observes
// a half-trained set.
type PredictService struct {
	clock   clock.Clock
	history predictout.History
	models  predictout.ModelStore
	stride  int

	mu             sync.RWMutex
	active         map[modelKey]domain.ModelVersion
	trainedAtCount int
}

func NewPredictService(clk clock.Clock, history predictout.History, models predictout.ModelStore, retrainEvery int) *PredictService {
	return &PredictService{
		clock:   clk,
		history: history,
		models:  models,
		stride:  retrainEvery,
		active:  map[modelKey]domain.ModelVersion{},
	}
}

// Restore loads the latest persisted model per (target, category) so a
// restarted process predicts before its first retrain.
func (s *PredictService) Restore(ctx context.Context) error {
	versions, err := s.models.LoadLatest(ctx)
	if err != nil {
		return err
	}
	next := make(map[modelKey]domain.ModelVersion, len(versions))
	for _, v := range versions {
		next[modelKey{target: v.Target, categoryID: v.CategoryID}] = v
	}
	s.mu.Lock()
	s.active = next
	s.mu.Unlock()
	return nil
}

// TrainAll refits every target. A failing target is logged and recorded,
// never fatal: the remaining targets still swap in.
func (s *PredictService) TrainAll(ctx context.Context) ([]domain.ModelVersion, []domain.ModelVersion, error) {
	count, err := s.history.CompletedCount(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	prev := s.active
	s.mu.RUnlock()

	next := map[modelKey]domain.ModelVersion{}
	var trained, failed []domain.ModelVersion
	for _, target := range domain.AllTargets {
		all, err := s.history.Samples(ctx, target)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot %s history: %w", target, err)
		}
		byCategory := map[string][]domain.Sample{}
		for _, sample := range all {
			byCategory[sample.CategoryID] = append(byCategory[sample.CategoryID], sample)
		}

		// Global fallback model first, then one per category.
		global, err := s.train(ctx, target, "", nil, all)
		if err == nil {
			next[modelKey{target: target}] = global
			trained = append(trained, global)
		} else if !errors.Is(err, apperrors.ErrInsufficientData) {
			failed = append(failed, s.recordFailure(ctx, target, "", err))
			carryPrevious(prev, next, modelKey{target: target})
		}
		for categoryID, samples := range byCategory {
			version, err := s.train(ctx, target, categoryID, samples, all)
			if err == nil {
				next[modelKey{target: target, categoryID: categoryID}] = version
				trained = append(trained, version)
				continue
			}
			if errors.Is(err, apperrors.ErrInsufficientData) {
				continue
			}
			failed = append(failed, s.recordFailure(ctx, target, categoryID, err))
			carryPrevious(prev, next, modelKey{target: target, categoryID: categoryID})
		}
	}

	s.mu.Lock()
	s.active = next
	s.trainedAtCount = count
	s.mu.Unlock()
	return trained, failed, nil
}

func (s *PredictService) train(ctx context.Context, target domain.Target, categoryID string, categorySamples, globalSamples []domain.Sample) (domain.ModelVersion, error) {
	params, tier, sampleCount, err := domain.Train(target, categoryID, categorySamples, globalSamples)
	if err != nil {
		return domain.ModelVersion{}, err
	}
	version := domain.ModelVersion{
		Target:      target,
		CategoryID:  categoryID,
		Tier:        tier,
		Params:      params,
		SampleCount: sampleCount,
		TrainedAt:   s.clock.Now(),
	}
	version.Version, err = s.models.Save(ctx, version)
	if err != nil {
		return domain.ModelVersion{}, fmt.Errorf("persist model: %w", err)
	}
	return version, nil
}

// carryPrevious keeps the last good model serving a pair whose refit
// failed, so one bad training run never degrades the pair past the tier
// it already had.
func carryPrevious(prev, next map[modelKey]domain.ModelVersion, key modelKey) {
	if v, ok := prev[key]; ok && !v.Failed {
		next[key] = v
	}
}

func (s *PredictService) recordFailure(ctx context.Context, target domain.Target, categoryID string, cause error) domain.ModelVersion {
	log.Printf("predict: training %s/%s failed: %v", target, categoryID, cause)
	version := domain.ModelVersion{
		Target:     target,
		CategoryID: categoryID,
		TrainedAt:  s.clock.Now(),
		Failed:     true,
		FailReason: cause.Error(),
	}
	saved, err := s.models.Save(ctx, version)
	if err != nil {
		log.Printf("predict: recording failed training for %s/%s: %v", target, categoryID, err)
		return version
	}
	version.Version = saved
	return version
}

// ShouldRetrain reports whether the completed-session count moved a full
// stride past the last training run.
func (s *PredictService) ShouldRetrain(ctx context.Context) (bool, error) {
	count, err := s.history.CompletedCount(ctx)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	last := s.trainedAtCount
	s.mu.RUnlock()
	return count-last >= s.stride, nil
}

// Predict evaluates the active model for the pair, falling back to the
// global model when the category has none.
func (s *PredictService) Predict(target domain.Target, categoryID string) (float64, domain.ModelVersion, error) {
	if err := target.Validate(); err != nil {
		return 0, domain.ModelVersion{}, err
	}
	s.mu.RLock()
	version, ok := s.active[modelKey{target: target, categoryID: categoryID}]
	if !ok || version.Failed {
		version, ok = s.active[modelKey{target: target}]
	}
	s.mu.RUnlock()
	if !ok || version.Failed {
		return 0, domain.ModelVersion{}, apperrors.ErrInsufficientData
	}
	minutes, err := domain.Predict(version.Params, s.clock.Now(), categoryID)
	if err != nil {
		return 0, domain.ModelVersion{}, err
	}
	return minutes, version, nil
}

// OptimalSessionLength scales the net-focused prediction by the category's
// historical focus ratio: how long to sit down for, not how long the
// focused part lasts.
func (s *PredictService) OptimalSessionLength(ctx context.Context, categoryID string) (float64, error) {
	net, _, err := s.Predict(domain.TargetNetFocusedTime, categoryID)
	if err != nil {
		return 0, err
	}
	ratio, err := s.history.CategoryFocusRatio(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if ratio <= 0 {
		return net, nil
	}
	return net / ratio, nil
}

// BreakInsertionPoint suggests placing a break slightly before the focus
// block typically decays.
func (s *PredictService) BreakInsertionPoint(categoryID string) (float64, error) {
	block, _, err := s.Predict(domain.TargetFocusBlockLength, categoryID)
	if err == nil {
		return 0.9 * block, nil
	}
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		return 0, err
	}
	interruption, _, err := s.Predict(domain.TargetTimeToInterruption, categoryID)
	if err != nil {
		return 0, err
	}
	return 0.9 * interruption, nil
}

// SuggestBreakLength prefers the user's own recovery pattern: the mean
// break-per-interruption over sessions that actually took breaks, per
// category first, then across all categories. With too little break
// history it falls back to the research guidance for the category's
// typical focus block.
func (s *PredictService) SuggestBreakLength(ctx context.Context, categoryID string) (float64, error) {
	recoveries, err := s.history.BreakRecoverySamples(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if len(recoveries) < domain.MinEMASamples {
		recoveries, err = s.history.BreakRecoverySamples(ctx, "")
		if err != nil {
			return 0, err
		}
	}
	if len(recoveries) >= domain.MinEMASamples {
		sum := 0.0
		for _, r := range recoveries {
			sum += r
		}
		return sum / float64(len(recoveries)), nil
	}

	block, _, err := s.Predict(domain.TargetFocusBlockLength, categoryID)
	if err != nil {
		return 0, err
	}
	return domain.ResearchBreakLength(block), nil
}

// Models reports the active set sorted deterministically enough for
// display; callers sort for stable output.
func (s *PredictService) Models() []domain.ModelVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ModelVersion, 0, len(s.active))
	for _, v := range s.active {
		out = append(out, v)
	}
	return out
}

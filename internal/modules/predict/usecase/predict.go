package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"focusd/internal/modules/predict/domain"
	"focusd/internal/modules/predict/dto"
	predictin "focusd/internal/modules/predict/port/in"
	predictout "focusd/internal/modules/predict/port/out"
	"focusd/internal/modules/predict/service"
	apperrors "focusd/internal/platform/errors"
)

type Interactor struct {
	svc     *service.PredictService
	history predictout.History
}

func NewInteractor(svc *service.PredictService, history predictout.History) predictin.Usecase {
	return &Interactor{svc: svc, history: history}
}

func (i *Interactor) Predict(ctx context.Context, input dto.PredictInput) (dto.PredictOutput, error) {
	target := domain.Target(strings.TrimSpace(input.Target))
	categoryID := ""
	if strings.TrimSpace(input.Category) != "" {
		id, err := i.history.CategoryIDByName(ctx, strings.TrimSpace(input.Category))
		if err != nil {
			return dto.PredictOutput{}, err
		}
		categoryID = id
	}
	minutes, version, err := i.svc.Predict(target, categoryID)
	if err != nil {
		return dto.PredictOutput{}, err
	}
	return dto.PredictOutput{
		Target:      string(target),
		Category:    input.Category,
		Minutes:     minutes,
		Tier:        string(version.Tier),
		SampleCount: version.SampleCount,
		TrainedAt:   version.TrainedAt,
	}, nil
}

func (i *Interactor) TrainAll(ctx context.Context) (dto.TrainOutput, error) {
	trained, failed, err := i.svc.TrainAll(ctx)
	if err != nil {
		return dto.TrainOutput{}, err
	}
	out := dto.TrainOutput{}
	for _, v := range trained {
		out.Trained = append(out.Trained, modelOutput(v))
	}
	for _, v := range failed {
		out.Failed = append(out.Failed, modelOutput(v))
	}
	return out, nil
}

func (i *Interactor) MaybeRetrain(ctx context.Context) (bool, error) {
	due, err := i.svc.ShouldRetrain(ctx)
	if err != nil || !due {
		return false, err
	}
	if _, _, err := i.svc.TrainAll(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (i *Interactor) Advise(ctx context.Context, category string) (dto.AdviceOutput, error) {
	categoryID, err := i.history.CategoryIDByName(ctx, strings.TrimSpace(category))
	if err != nil {
		return dto.AdviceOutput{}, err
	}
	out := dto.AdviceOutput{Category: category}

	net, _, err := i.svc.Predict(domain.TargetNetFocusedTime, categoryID)
	if err != nil {
		return dto.AdviceOutput{}, err
	}
	out.NetFocusedMin = net

	if out.OptimalSessionMin, err = i.svc.OptimalSessionLength(ctx, categoryID); err != nil {
		return dto.AdviceOutput{}, err
	}
	if block, _, err := i.svc.Predict(domain.TargetFocusBlockLength, categoryID); err == nil {
		out.FocusBlockLengthMin = block
	} else if !errors.Is(err, apperrors.ErrInsufficientData) {
		return dto.AdviceOutput{}, err
	}
	if out.BreakInsertionMin, err = i.svc.BreakInsertionPoint(categoryID); err != nil &&
		!errors.Is(err, apperrors.ErrInsufficientData) {
		return dto.AdviceOutput{}, err
	}
	if out.SuggestedBreakMin, err = i.svc.SuggestBreakLength(ctx, categoryID); err != nil &&
		!errors.Is(err, apperrors.ErrInsufficientData) {
		return dto.AdviceOutput{}, err
	}
	if out.SuggestedBreakMin > 0 {
		out.Guidance = domain.BreakAdvice(out.SuggestedBreakMin)
	}
	return out, nil
}

func (i *Interactor) Research(context.Context) []dto.ResearchOutput {
	out := make([]dto.ResearchOutput, 0, len(domain.ResearchEntries))
	for _, e := range domain.ResearchEntries {
		out = append(out, dto.ResearchOutput{
			Title:           e.Title,
			Summary:         e.Summary,
			OptimalWorkMin:  e.OptimalWorkMin,
			OptimalBreakMin: e.OptimalBreakMin,
			Citation:        e.Citation,
			URL:             e.URL,
		})
	}
	return out
}

func (i *Interactor) Models(context.Context) ([]dto.ModelOutput, error) {
	versions := i.svc.Models()
	out := make([]dto.ModelOutput, 0, len(versions))
	for _, v := range versions {
		out = append(out, modelOutput(v))
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Target != out[b].Target {
			return out[a].Target < out[b].Target
		}
		return out[a].Category < out[b].Category
	})
	return out, nil
}

func modelOutput(v domain.ModelVersion) dto.ModelOutput {
	return dto.ModelOutput{
		Target:      string(v.Target),
		Category:    v.CategoryID,
		Version:     v.Version,
		Tier:        string(v.Tier),
		SampleCount: v.SampleCount,
		TrainedAt:   v.TrainedAt,
		FailReason:  v.FailReason,
	}
}

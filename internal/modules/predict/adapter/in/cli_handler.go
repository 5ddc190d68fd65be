package in

import (
	"context"

	"focusd/internal/modules/predict/dto"
	predictin "focusd/internal/modules/predict/port/in"
)

type CLIHandler struct {
	usecase predictin.Usecase
}

func NewCLIHandler(usecase predictin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Predict(ctx context.Context, target, category string) (dto.PredictOutput, error) {
	return h.usecase.Predict(ctx, dto.PredictInput{Target: target, Category: category})
}

func (h CLIHandler) Train(ctx context.Context) (dto.TrainOutput, error) {
	return h.usecase.TrainAll(ctx)
}

func (h CLIHandler) Advise(ctx context.Context, category string) (dto.AdviceOutput, error) {
	return h.usecase.Advise(ctx, category)
}

func (h CLIHandler) Research(ctx context.Context) []dto.ResearchOutput {
	return h.usecase.Research(ctx)
}

func (h CLIHandler) Models(ctx context.Context) ([]dto.ModelOutput, error) {
	return h.usecase.Models(ctx)
}

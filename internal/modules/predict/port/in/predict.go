package in

import (
	"context"

	"focusd/internal/modules/predict/dto"
)

type Usecase interface {
	// Predict evaluates the active model set; apperrors.ErrInsufficientData
	// is a normal outcome, not a failure.
	Predict(ctx context.Context, input dto.PredictInput) (dto.PredictOutput, error)
	TrainAll(ctx context.Context) (dto.TrainOutput, error)
	// MaybeRetrain retrains when the completed-session count crossed the
	// retrain stride since the last training run.
	MaybeRetrain(ctx context.Context) (bool, error)
	Advise(ctx context.Context, category string) (dto.AdviceOutput, error)
	// Research lists the built-in break-timing study summaries.
	Research(ctx context.Context) []dto.ResearchOutput
	Models(ctx context.Context) ([]dto.ModelOutput, error)
}

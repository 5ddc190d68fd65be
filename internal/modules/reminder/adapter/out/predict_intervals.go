package out

import (
	"context"
	"time"

	predictdomain "focusd/internal/modules/predict/domain"
	predictdto "focusd/internal/modules/predict/dto"
	predictin "focusd/internal/modules/predict/port/in"
	reminderout "focusd/internal/modules/reminder/port/out"
)

// PredictIntervalAdapter turns model predictions into check intervals.
// Any prediction failure simply reports "no learned interval".
type PredictIntervalAdapter struct {
	predictor predictin.Usecase
}

func NewPredictIntervalAdapter(predictor predictin.Usecase) reminderout.IntervalSource {
	return &PredictIntervalAdapter{predictor: predictor}
}

func (a *PredictIntervalAdapter) TimeToBurnout(ctx context.Context, category string) (time.Duration, bool) {
	return a.predict(ctx, predictdomain.TargetTimeToBurnout, category)
}

func (a *PredictIntervalAdapter) TimeToBreak(ctx context.Context, category string) (time.Duration, bool) {
	return a.predict(ctx, predictdomain.TargetTimeToBreak, category)
}

func (a *PredictIntervalAdapter) predict(ctx context.Context, target predictdomain.Target, category string) (time.Duration, bool) {
	out, err := a.predictor.Predict(ctx, predictdto.PredictInput{
		Target:   string(target),
		Category: category,
	})
	if err != nil || out.Minutes <= 0 {
		return 0, false
	}
	return time.Duration(out.Minutes * float64(time.Minute)), true
}

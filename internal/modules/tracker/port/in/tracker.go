package in

import (
	"context"
	"time"

	"focusd/internal/modules/tracker/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	BeginBreak(ctx context.Context) (dto.StateOutput, error)
	EndBreak(ctx context.Context) (dto.StateOutput, error)
	BeginProcrastination(ctx context.Context) (dto.StateOutput, error)
	EndProcrastination(ctx context.Context) (dto.StateOutput, error)
	End(ctx context.Context) (dto.EndOutput, error)
	Active(ctx context.Context) (dto.StateOutput, error)
	RecordBurnoutResult(ctx context.Context, input dto.BurnoutResultInput) (dto.StateOutput, error)

	ListSessions(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error)
	Recompute(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	Stats(ctx context.Context, input dto.ListInput) (dto.StatsOutput, error)
	ListCategories(ctx context.Context) ([]dto.CategoryOutput, error)
	ListTasks(ctx context.Context, categoryID string) ([]dto.TaskOutput, error)

	DeleteSession(ctx context.Context, sessionID string) error
	DeleteRange(ctx context.Context, from, to time.Time) (int, error)
	ResetAll(ctx context.Context) error
}

package in

import (
	"context"
	"time"

	"focusd/internal/modules/tracker/dto"
	trackerin "focusd/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, category, task string) (dto.StateOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{Category: category, Task: task})
}

func (h CLIHandler) Break(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.BeginBreak(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.StateOutput, error) {
	active, err := h.usecase.Active(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if active.State == "procrastinating" {
		return h.usecase.EndProcrastination(ctx)
	}
	return h.usecase.EndBreak(ctx)
}

func (h CLIHandler) Distract(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.BeginProcrastination(ctx)
}

func (h CLIHandler) End(ctx context.Context) (dto.EndOutput, error) {
	return h.usecase.End(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.Active(ctx)
}

func (h CLIHandler) Sessions(ctx context.Context, category string, from, to time.Time, limit int) ([]dto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx, dto.ListInput{Category: category, From: from, To: to, Limit: limit})
}

func (h CLIHandler) Stats(ctx context.Context, category string, from, to time.Time) (dto.StatsOutput, error) {
	return h.usecase.Stats(ctx, dto.ListInput{Category: category, From: from, To: to})
}

func (h CLIHandler) Categories(ctx context.Context) ([]dto.CategoryOutput, error) {
	return h.usecase.ListCategories(ctx)
}

func (h CLIHandler) Tasks(ctx context.Context, categoryID string) ([]dto.TaskOutput, error) {
	return h.usecase.ListTasks(ctx, categoryID)
}

func (h CLIHandler) Recompute(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	return h.usecase.Recompute(ctx, sessionID)
}

func (h CLIHandler) Delete(ctx context.Context, sessionID string) error {
	return h.usecase.DeleteSession(ctx, sessionID)
}

func (h CLIHandler) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	return h.usecase.DeleteRange(ctx, from, to)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.ResetAll(ctx)
}

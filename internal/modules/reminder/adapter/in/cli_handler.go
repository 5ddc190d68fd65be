package in

import (
	"context"

	"focusd/internal/modules/reminder/dto"
	reminderin "focusd/internal/modules/reminder/port/in"
)

type CLIHandler struct {
	usecase reminderin.Usecase
}

func NewCLIHandler(usecase reminderin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Logs(ctx context.Context, sessionID string) ([]dto.LogOutput, error) {
	return h.usecase.Logs(ctx, sessionID)
}

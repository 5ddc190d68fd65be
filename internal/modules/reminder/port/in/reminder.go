package in

import (
	"context"

	"focusd/internal/modules/reminder/dto"
)

type Usecase interface {
	Logs(ctx context.Context, sessionID string) ([]dto.LogOutput, error)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"focusd/internal/modules/reminder/dto"
	reminderin "focusd/internal/modules/reminder/port/in"
	reminderout "focusd/internal/modules/reminder/port/out"
)

type Interactor struct {
	logs reminderout.LogStore
}

func NewInteractor(logs reminderout.LogStore) reminderin.Usecase {
	return &Interactor{logs: logs}
}

func (i *Interactor) Logs(ctx context.Context, sessionID string) ([]dto.LogOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	entries, err := i.logs.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LogOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LogOutput{
			ID:           e.ID,
			SessionID:    e.SessionID,
			Kind:         string(e.Kind),
			FiredAt:      e.FiredAt,
			PredictedMin: e.PredictedMin,
			Response:     e.Response,
			RespondedAt:  e.RespondedAt,
		})
	}
	return out, nil
}

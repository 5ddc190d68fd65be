package out

import (
	"context"

	reminderout "focusd/internal/modules/reminder/port/out"
	trackerdto "focusd/internal/modules/tracker/dto"
	trackerin "focusd/internal/modules/tracker/port/in"
)

// TrackerControlAdapter feeds confirmed prompts into the session machine.
type TrackerControlAdapter struct {
	tracker trackerin.Usecase
}

func NewTrackerControlAdapter(tracker trackerin.Usecase) reminderout.SessionControl {
	return &TrackerControlAdapter{tracker: tracker}
}

func (a *TrackerControlAdapter) RecordBurnout(ctx context.Context, confirmed bool) error {
	_, err := a.tracker.RecordBurnoutResult(ctx, trackerdto.BurnoutResultInput{Confirmed: confirmed})
	return err
}

func (a *TrackerControlAdapter) EndProcrastination(ctx context.Context) error {
	_, err := a.tracker.EndProcrastination(ctx)
	return err
}

func (a *TrackerControlAdapter) EndBreak(ctx context.Context) error {
	_, err := a.tracker.EndBreak(ctx)
	return err
}

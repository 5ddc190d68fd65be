package out

import (
	"context"
	"fmt"

	"focusd/internal/modules/predict/domain"
	predictout "focusd/internal/modules/predict/port/out"
	trackerdomain "focusd/internal/modules/tracker/domain"
	trackerout "focusd/internal/modules/tracker/port/out"
)

// TrackerHistoryAdapter feeds finalized tracker sessions to the trainer.
type TrackerHistoryAdapter struct {
	sessions   trackerout.SessionStore
	events     trackerout.EventStore
	categories trackerout.CategoryStore
}

func NewTrackerHistoryAdapter(sessions trackerout.SessionStore, events trackerout.EventStore, categories trackerout.CategoryStore) predictout.History {
	return &TrackerHistoryAdapter{sessions: sessions, events: events, categories: categories}
}

func (a *TrackerHistoryAdapter) Samples(ctx context.Context, target domain.Target) ([]domain.Sample, error) {
	sessions, err := a.sessions.ListCompleted(ctx, trackerout.ListQuery{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sample, 0, len(sessions))
	for _, session := range sessions {
		value, ok, err := a.observe(ctx, target, session)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.Sample{
			StartedAt:  session.StartedAt,
			CategoryID: session.CategoryID,
			Value:      value,
		})
	}
	return out, nil
}

// observe extracts one target value from a session. Sessions that never
// exhibited the behavior (no break, no burnout) contribute no sample.
func (a *TrackerHistoryAdapter) observe(ctx context.Context, target domain.Target, session trackerdomain.Session) (float64, bool, error) {
	switch target {
	case domain.TargetNetFocusedTime:
		return session.Aggregates.NetFocusedMin, true, nil
	case domain.TargetFocusBlockLength:
		return session.Aggregates.LongestFocusBlockMin, true, nil
	}

	events, err := a.events.ListBySession(ctx, session.ID)
	if err != nil {
		return 0, false, err
	}
	switch target {
	case domain.TargetTimeToBurnout:
		v, ok := trackerdomain.FirstEventMinutes(events, trackerdomain.EventBurnoutConfirmed)
		return v, ok, nil
	case domain.TargetTimeToProcrastination:
		v, ok := trackerdomain.FirstEventMinutes(events, trackerdomain.EventProcBegin)
		return v, ok, nil
	case domain.TargetTimeToBreak:
		v, ok := trackerdomain.FirstEventMinutes(events, trackerdomain.EventBreakBegin)
		return v, ok, nil
	case domain.TargetTimeToInterruption:
		v, ok := trackerdomain.FirstInterruptionMinutes(events)
		return v, ok, nil
	default:
		return 0, false, fmt.Errorf("unknown prediction target %q", target)
	}
}

func (a *TrackerHistoryAdapter) CompletedCount(ctx context.Context) (int, error) {
	return a.sessions.CountCompleted(ctx)
}

func (a *TrackerHistoryAdapter) CategoryFocusRatio(ctx context.Context, categoryID string) (float64, error) {
	sessions, err := a.sessions.ListCompleted(ctx, trackerout.ListQuery{CategoryID: categoryID})
	if err != nil {
		return 0, err
	}
	if len(sessions) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, s := range sessions {
		sum += s.Aggregates.FocusRatio
	}
	return sum / float64(len(sessions)), nil
}

func (a *TrackerHistoryAdapter) BreakRecoverySamples(ctx context.Context, categoryID string) ([]float64, error) {
	sessions, err := a.sessions.ListCompleted(ctx, trackerout.ListQuery{CategoryID: categoryID})
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, s := range sessions {
		if s.Aggregates.BreakMin <= 0 {
			continue
		}
		interruptions := s.Aggregates.InterruptionCount
		if interruptions < 1 {
			interruptions = 1
		}
		out = append(out, s.Aggregates.BreakMin/float64(interruptions))
	}
	return out, nil
}

func (a *TrackerHistoryAdapter) CategoryIDByName(ctx context.Context, name string) (string, error) {
	category, err := a.categories.GetOrCreate(ctx, name)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

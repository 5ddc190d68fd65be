package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"focusd/internal/modules/tracker/domain"
	"focusd/internal/modules/tracker/dto"
	trackerin "focusd/internal/modules/tracker/port/in"
	trackerout "focusd/internal/modules/tracker/port/out"
	"focusd/internal/modules/tracker/service"
	"focusd/internal/platform/clock"
	apperrors "focusd/internal/platform/errors"
)

type Interactor struct {
	svc         *service.TrackerService
	clock       clock.Clock
	categories  trackerout.CategoryStore
	tasks       trackerout.TaskStore
	sessions    trackerout.SessionStore
	events      trackerout.EventStore
	activeStore trackerout.ActiveStateStore
	notes       trackerout.NoteStore
}

func NewInteractor(
	svc *service.TrackerService,
	clk clock.Clock,
	categories trackerout.CategoryStore,
	tasks trackerout.TaskStore,
	sessions trackerout.SessionStore,
	events trackerout.EventStore,
	activeStore trackerout.ActiveStateStore,
	notes trackerout.NoteStore,
) trackerin.Usecase {
	return &Interactor{
		svc:         svc,
		clock:       clk,
		categories:  categories,
		tasks:       tasks,
		sessions:    sessions,
		events:      events,
		activeStore: activeStore,
		notes:       notes,
	}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error) {
	if strings.TrimSpace(input.Category) == "" {
		return dto.StateOutput{}, fmt.Errorf("category is required")
	}
	_, err := i.activeStore.Load(ctx)
	if err == nil {
		return dto.StateOutput{}, apperrors.ErrActiveSessionExists
	}
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		return dto.StateOutput{}, err
	}

	category, err := i.categories.GetOrCreate(ctx, strings.TrimSpace(input.Category))
	if err != nil {
		return dto.StateOutput{}, err
	}
	taskID := ""
	if strings.TrimSpace(input.Task) != "" {
		task, err := i.tasks.GetOrCreate(ctx, category.ID, strings.TrimSpace(input.Task))
		if err != nil {
			return dto.StateOutput{}, err
		}
		taskID = task.ID
	}

	active, err := i.svc.Start(ctx, category, taskID)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if err := i.activeStore.Save(ctx, active); err != nil {
		return dto.StateOutput{}, err
	}
	return i.stateOutput(active), nil
}

func (i *Interactor) BeginBreak(ctx context.Context) (dto.StateOutput, error) {
	return i.apply(ctx, domain.EventBreakBegin)
}

func (i *Interactor) EndBreak(ctx context.Context) (dto.StateOutput, error) {
	return i.apply(ctx, domain.EventBreakEnd)
}

func (i *Interactor) BeginProcrastination(ctx context.Context) (dto.StateOutput, error) {
	return i.apply(ctx, domain.EventProcBegin)
}

func (i *Interactor) EndProcrastination(ctx context.Context) (dto.StateOutput, error) {
	return i.apply(ctx, domain.EventProcEnd)
}

func (i *Interactor) RecordBurnoutResult(ctx context.Context, input dto.BurnoutResultInput) (dto.StateOutput, error) {
	kind := domain.EventBurnoutDenied
	if input.Confirmed {
		kind = domain.EventBurnoutConfirmed
	}
	return i.apply(ctx, kind)
}

func (i *Interactor) apply(ctx context.Context, kind domain.EventKind) (dto.StateOutput, error) {
	active, err := i.activeStore.Load(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	next, err := i.svc.Apply(ctx, active, kind)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if err := i.activeStore.Save(ctx, next); err != nil {
		return dto.StateOutput{}, err
	}
	return i.stateOutput(next), nil
}

func (i *Interactor) End(ctx context.Context) (dto.EndOutput, error) {
	active, err := i.activeStore.Load(ctx)
	if err != nil {
		return dto.EndOutput{}, err
	}
	session, err := i.svc.End(ctx, active)
	if err != nil {
		return dto.EndOutput{}, err
	}
	if err := i.activeStore.Clear(ctx); err != nil {
		return dto.EndOutput{}, err
	}

	out := dto.EndOutput{Session: i.sessionOutput(ctx, session)}
	if i.notes != nil {
		path, err := i.notes.Save(ctx, session, out.Session.CategoryName, out.Session.TaskName)
		if err != nil {
			// The session is already durable; a failed note is log-worthy
			// but not fatal.
			log.Printf("tracker: session note for %s failed: %v", session.ID, err)
		} else {
			out.NotePath = path
		}
	}
	return out, nil
}

func (i *Interactor) Active(ctx context.Context) (dto.StateOutput, error) {
	active, err := i.activeStore.Load(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return i.stateOutput(active), nil
}

func (i *Interactor) ListSessions(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error) {
	query, err := i.listQuery(ctx, input)
	if err != nil {
		return nil, err
	}
	sessions, err := i.sessions.ListCompleted(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, i.sessionOutput(ctx, session))
	}
	return out, nil
}

func (i *Interactor) Recompute(ctx context.Context, sessionID string) (dto.SessionOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return dto.SessionOutput{}, fmt.Errorf("session id is required")
	}
	session, err := i.svc.Recompute(ctx, sessionID)
	if err != nil {
		return dto.SessionOutput{}, err
	}
	return i.sessionOutput(ctx, session), nil
}

func (i *Interactor) Stats(ctx context.Context, input dto.ListInput) (dto.StatsOutput, error) {
	query, err := i.listQuery(ctx, input)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	sessions, err := i.sessions.ListCompleted(ctx, query)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	stats := dto.StatsOutput{SessionCount: len(sessions)}
	if len(sessions) == 0 {
		return stats, nil
	}
	n := float64(len(sessions))
	for _, s := range sessions {
		stats.AvgGrossMin += s.Aggregates.GrossMin / n
		stats.AvgNetFocusedMin += s.Aggregates.NetFocusedMin / n
		stats.AvgBreakMin += s.Aggregates.BreakMin / n
		stats.AvgProcrastinationMin += s.Aggregates.ProcrastinationMin / n
		stats.AvgLongestFocusBlock += s.Aggregates.LongestFocusBlockMin / n
		stats.AvgInterruptions += float64(s.Aggregates.InterruptionCount) / n
		stats.AvgFocusRatio += s.Aggregates.FocusRatio / n

		events, err := i.events.ListBySession(ctx, s.ID)
		if err != nil {
			return dto.StatsOutput{}, err
		}
		if m, ok := domain.FirstEventMinutes(events, domain.EventBreakBegin); ok {
			stats.AvgTimeToBreakMin += m
			stats.TimeToBreakSamples++
		}
		if m, ok := domain.FirstEventMinutes(events, domain.EventProcBegin); ok {
			stats.AvgTimeToProcMin += m
			stats.TimeToProcSamples++
		}
		if m, ok := domain.FirstEventMinutes(events, domain.EventBurnoutConfirmed); ok {
			stats.AvgTimeToBurnoutMin += m
			stats.TimeToBurnoutSamples++
		}
	}
	if stats.TimeToBreakSamples > 0 {
		stats.AvgTimeToBreakMin /= float64(stats.TimeToBreakSamples)
	}
	if stats.TimeToProcSamples > 0 {
		stats.AvgTimeToProcMin /= float64(stats.TimeToProcSamples)
	}
	if stats.TimeToBurnoutSamples > 0 {
		stats.AvgTimeToBurnoutMin /= float64(stats.TimeToBurnoutSamples)
	}
	return stats, nil
}

func (i *Interactor) ListCategories(ctx context.Context) ([]dto.CategoryOutput, error) {
	categories, err := i.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryOutput, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.CategoryOutput{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (i *Interactor) ListTasks(ctx context.Context, categoryID string) ([]dto.TaskOutput, error) {
	tasks, err := i.tasks.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dto.TaskOutput{ID: t.ID, CategoryID: t.CategoryID, Name: t.Name})
	}
	return out, nil
}

func (i *Interactor) DeleteSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return i.sessions.Delete(ctx, sessionID)
}

func (i *Interactor) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	if !from.Before(to) {
		return 0, fmt.Errorf("from must precede to")
	}
	return i.sessions.DeleteRange(ctx, from, to)
}

func (i *Interactor) ResetAll(ctx context.Context) error {
	if err := i.activeStore.Clear(ctx); err != nil {
		return err
	}
	return i.sessions.ResetAll(ctx)
}

func (i *Interactor) listQuery(ctx context.Context, input dto.ListInput) (trackerout.ListQuery, error) {
	query := trackerout.ListQuery{From: input.From, To: input.To, Limit: input.Limit}
	if strings.TrimSpace(input.Category) != "" {
		category, err := i.categories.GetOrCreate(ctx, strings.TrimSpace(input.Category))
		if err != nil {
			return trackerout.ListQuery{}, err
		}
		query.CategoryID = category.ID
	}
	return query, nil
}

func (i *Interactor) stateOutput(active domain.ActiveState) dto.StateOutput {
	now := i.clock.Now()
	out := dto.StateOutput{
		SessionID:    active.SessionID,
		CategoryID:   active.CategoryID,
		CategoryName: active.CategoryName,
		TaskID:       active.TaskID,
		State:        string(active.State),
		StartedAt:    active.StartedAt,
		ElapsedMin:   now.Sub(active.StartedAt).Minutes(),
	}
	if !active.IntervalStartedAt.IsZero() {
		out.IntervalMin = now.Sub(active.IntervalStartedAt).Minutes()
	}
	return out
}

func (i *Interactor) sessionOutput(ctx context.Context, session domain.Session) dto.SessionOutput {
	out := dto.SessionOutput{
		SessionID:               session.ID,
		CategoryID:              session.CategoryID,
		TaskID:                  session.TaskID,
		StartedAt:               session.StartedAt,
		EndedAt:                 session.EndedAt,
		GrossMin:                session.Aggregates.GrossMin,
		NetFocusedMin:           session.Aggregates.NetFocusedMin,
		BreakMin:                session.Aggregates.BreakMin,
		ProcrastinationMin:      session.Aggregates.ProcrastinationMin,
		LongestFocusBlockMin:    session.Aggregates.LongestFocusBlockMin,
		InterruptionCount:       session.Aggregates.InterruptionCount,
		FocusRatio:              session.Aggregates.FocusRatio,
		BurnoutDetected:         session.Aggregates.BurnoutDetected,
		ProcrastinationDetected: session.Aggregates.ProcrastinationDetected,
	}
	if category, err := i.categories.Get(ctx, session.CategoryID); err == nil {
		out.CategoryName = category.Name
	}
	if session.TaskID != "" {
		if task, err := i.tasks.Get(ctx, session.TaskID); err == nil {
			out.TaskName = task.Name
		}
	}
	return out
}

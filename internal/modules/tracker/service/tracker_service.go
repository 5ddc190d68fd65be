package service

import (
	"context"
	"fmt"
	"time"

	"focusd/internal/modules/tracker/domain"
	trackerout "focusd/internal/modules/tracker/port/out"
	"focusd/internal/platform/clock"
	"focusd/internal/platform/id"
	"focusd/internal/platform/tx"
)

// TrackerService applies lifecycle transitions. Every mutation appends
// its event inside one transaction so the in-memory machine never
// advances past what the log durably holds.
type TrackerService struct {
	clock    clock.Clock
	idGen    id.Generator
	events   trackerout.EventStore
	sessions trackerout.SessionStore
	txm      tx.Manager
}

func NewTrackerService(clock clock.Clock, idGen id.Generator, events trackerout.EventStore, sessions trackerout.SessionStore, txm tx.Manager) *TrackerService {
	return &TrackerService{clock: clock, idGen: idGen, events: events, sessions: sessions, txm: txm}
}

func (s *TrackerService) Start(ctx context.Context, category domain.Category, taskID string) (domain.ActiveState, error) {
	now := s.clock.Now()
	session := domain.Session{
		ID:         s.idGen.New(),
		CategoryID: category.ID,
		TaskID:     taskID,
		StartedAt:  now,
	}
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		if err := s.sessions.Create(ctx, session); err != nil {
			return err
		}
		return s.events.Append(ctx, domain.Event{
			ID:        s.idGen.New(),
			SessionID: session.ID,
			Kind:      domain.EventStart,
			At:        now,
		})
	})
	if err != nil {
		return domain.ActiveState{}, err
	}
	return domain.ActiveState{
		SchemaVersion: domain.SchemaVersion,
		SessionID:     session.ID,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		TaskID:        taskID,
		State:         domain.StateWorking,
		StartedAt:     now,
	}, nil
}

// Apply validates the transition, appends the event, and returns the
// advanced machine state. Interval begin/end markers are kept on the
// active state so elapsed-interval queries stay cheap.
func (s *TrackerService) Apply(ctx context.Context, active domain.ActiveState, kind domain.EventKind) (domain.ActiveState, error) {
	next, err := domain.Next(active.State, kind)
	if err != nil {
		return domain.ActiveState{}, err
	}
	now := s.clock.Now()
	if err := s.events.Append(ctx, domain.Event{
		ID:        s.idGen.New(),
		SessionID: active.SessionID,
		Kind:      kind,
		At:        now,
	}); err != nil {
		return domain.ActiveState{}, err
	}
	active.State = next
	switch kind {
	case domain.EventBreakBegin, domain.EventProcBegin:
		active.IntervalStartedAt = now
	case domain.EventBreakEnd, domain.EventProcEnd:
		active.IntervalStartedAt = time.Time{}
	}
	return active, nil
}

// End finalizes the session: an open interval is closed with a synthetic
// event stamped at the end time, the end event is appended, and the
// aggregates are derived from the full event log, all in one commit.
func (s *TrackerService) End(ctx context.Context, active domain.ActiveState) (domain.Session, error) {
	if _, err := domain.Next(active.State, domain.EventEnd); err != nil {
		return domain.Session{}, err
	}
	now := s.clock.Now()
	session := domain.Session{
		ID:         active.SessionID,
		CategoryID: active.CategoryID,
		TaskID:     active.TaskID,
		StartedAt:  active.StartedAt,
		EndedAt:    now,
		Finalized:  true,
	}
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		switch active.State {
		case domain.StateOnBreak:
			if err := s.append(ctx, active.SessionID, domain.EventBreakEnd, now); err != nil {
				return err
			}
		case domain.StateProcrastinating:
			if err := s.append(ctx, active.SessionID, domain.EventProcEnd, now); err != nil {
				return err
			}
		}
		if err := s.append(ctx, active.SessionID, domain.EventEnd, now); err != nil {
			return err
		}
		events, err := s.events.ListBySession(ctx, active.SessionID)
		if err != nil {
			return err
		}
		agg, err := domain.ComputeAggregates(events)
		if err != nil {
			return fmt.Errorf("derive aggregates: %w", err)
		}
		session.Aggregates = agg
		return s.sessions.Finalize(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Recompute rebuilds a finalized session's aggregates from its events.
// Corrective only; the event log stays untouched.
func (s *TrackerService) Recompute(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	events, err := s.events.ListBySession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	agg, err := domain.ComputeAggregates(events)
	if err != nil {
		return domain.Session{}, fmt.Errorf("derive aggregates: %w", err)
	}
	session.Aggregates = agg
	session.Finalized = true
	if err := s.sessions.Finalize(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *TrackerService) append(ctx context.Context, sessionID string, kind domain.EventKind, at time.Time) error {
	return s.events.Append(ctx, domain.Event{
		ID:        s.idGen.New(),
		SessionID: sessionID,
		Kind:      kind,
		At:        at,
	})
}

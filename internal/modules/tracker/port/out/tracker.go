package out

import (
	"context"
	"time"

	"focusd/internal/modules/tracker/domain"
)

type CategoryStore interface {
	GetOrCreate(ctx context.Context, name string) (domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type TaskStore interface {
	GetOrCreate(ctx context.Context, categoryID, name string) (domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	List(ctx context.Context, categoryID string) ([]domain.Task, error)
}

// EventStore is append-only; rows are never updated or deleted outside
// of whole-session maintenance deletes.
type EventStore interface {
	Append(ctx context.Context, event domain.Event) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Event, error)
}

type ListQuery struct {
	CategoryID string
	From       time.Time
	To         time.Time
	Limit      int
}

type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Finalize(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	ListCompleted(ctx context.Context, query ListQuery) ([]domain.Session, error)
	CountCompleted(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteRange(ctx context.Context, from, to time.Time) (int, error)
	ResetAll(ctx context.Context) error
}

type ActiveStateStore interface {
	Save(ctx context.Context, state domain.ActiveState) error
	Load(ctx context.Context) (domain.ActiveState, error)
	Clear(ctx context.Context) error
}

// NoteStore renders a finalized session as a durable note. Optional.
type NoteStore interface {
	Save(ctx context.Context, session domain.Session, categoryName, taskName string) (string, error)
}

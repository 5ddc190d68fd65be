package out

import (
	"context"
	"time"

	"focusd/internal/modules/reminder/domain"
)

// Notifier delivers one prompt and blocks for the answer.
type Notifier interface {
	Notify(ctx context.Context, prompt domain.Prompt) (domain.Answer, error)
}

// LogStore persists firings. SetResponse updates the row in place; a log
// row is otherwise immutable.
type LogStore interface {
	Append(ctx context.Context, entry domain.Log) error
	SetResponse(ctx context.Context, logID, response string, respondedAt time.Time) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Log, error)
}

// IntervalSource supplies learned check intervals by category name. ok is
// false when no model can answer, leaving the configured default in charge.
type IntervalSource interface {
	TimeToBurnout(ctx context.Context, category string) (time.Duration, bool)
	TimeToBreak(ctx context.Context, category string) (time.Duration, bool)
}

// SessionControl feeds confirmed prompts back into the session machine.
type SessionControl interface {
	RecordBurnout(ctx context.Context, confirmed bool) error
	EndProcrastination(ctx context.Context) error
	EndBreak(ctx context.Context) error
}

package out

import (
	"context"

	"focusd/internal/modules/notify/domain"
	reminderdomain "focusd/internal/modules/reminder/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host drives one external notifier process per call.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Deliver(ctx context.Context, manifest domain.Manifest, prompt reminderdomain.Prompt) (reminderdomain.Answer, error)
}

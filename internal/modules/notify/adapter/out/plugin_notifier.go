package out

import (
	"context"
	"errors"

	"focusd/internal/modules/notify/service"
	reminderdomain "focusd/internal/modules/reminder/domain"
	reminderout "focusd/internal/modules/reminder/port/out"
	apperrors "focusd/internal/platform/errors"
)

// PluginNotifier satisfies the reminder module's notifier port with the
// configured external binary, falling back when none is enabled.
type PluginNotifier struct {
	svc      *service.NotifyService
	fallback reminderout.Notifier
}

func NewPluginNotifier(svc *service.NotifyService, fallback reminderout.Notifier) reminderout.Notifier {
	return &PluginNotifier{svc: svc, fallback: fallback}
}

func (n *PluginNotifier) Notify(ctx context.Context, prompt reminderdomain.Prompt) (reminderdomain.Answer, error) {
	answer, err := n.svc.Deliver(ctx, prompt)
	if err == nil {
		return answer, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) && n.fallback != nil {
		return n.fallback.Notify(ctx, prompt)
	}
	return "", err
}

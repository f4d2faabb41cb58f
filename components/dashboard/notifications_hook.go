package dashboard

import (
	"context"
	"errors"
	"slices"
)

// NotificationsClient defines the minimal interface needed from go-notifications (or similar).
type NotificationsClient interface {
	PublishSettingsEvent(ctx context.Context, channel string, event SettingsEvent) error
}

// NotificationsHook forwards settings events to an external notifications client.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
	// Reasons limits forwarding to the listed reasons. Empty forwards everything.
	Reasons []string
}

// SettingsChanged publishes events to the configured notifications client.
func (h *NotificationsHook) SettingsChanged(ctx context.Context, event SettingsEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Reasons) > 0 && !slices.Contains(h.Reasons, event.Reason) {
		return nil
	}
	return h.Client.PublishSettingsEvent(ctx, h.Channel, event)
}

// MultiRefreshHook calls every hook and joins their errors.
func MultiRefreshHook(hooks ...RefreshHook) RefreshHook {
	out := make(multiRefreshHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

type multiRefreshHook []RefreshHook

func (m multiRefreshHook) SettingsChanged(ctx context.Context, event SettingsEvent) error {
	var err error
	for _, hook := range m {
		err = errors.Join(err, hook.SettingsChanged(ctx, event))
	}
	return err
}

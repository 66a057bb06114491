// Package app assembles the services from their dependencies and registers
// the event handlers on the bus.
package app

import (
	"github.com/demonyhq/demony/pkg/handler/notification"
)

// setupEventBus registers the post-commit subscribers.
func (a *App) setupEventBus() {
	if a.Deps.EventBus == nil || a.Deps.Notifier == nil {
		return
	}
	h := notification.New(
		a.Deps.Uow,
		a.Deps.Notifier,
		a.Deps.Policy.Currency,
		a.Deps.Logger,
	)
	if a.Config != nil && a.Config.Notify != nil {
		h.WithLimits(a.Config.Notify.SendTimeout, a.Config.Notify.MaxInFlight)
	}
	h.Register(a.Deps.EventBus)
	a.notifications = h
}

// Drain waits for in-flight notifications, each bounded by its send timeout.
func (a *App) Drain() {
	if a.notifications != nil {
		a.notifications.Wait()
	}
}

// Package app wires the services and registers event handlers with the
// bus.
package app

import (
	"context"

	"github.com/amirasaad/axeria/pkg/domain/events"
)

// setupEventBus registers the audit log and every configured subscriber.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("handler", "audit")
	for eventType := range events.EventTypes {
		bus.Register(eventType, func(_ context.Context, evt events.Event) error {
			logger.Info("📨 Event", "type", evt.Type())
			return nil
		})
	}
	for _, s := range a.Deps.Subscribers {
		s.Subscribe(bus)
	}
}

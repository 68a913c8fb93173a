package eventbus

import (
	"context"
	"log/slog"

	"github.com/amirasaad/axeria/pkg/domain/events"
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}

// Publish emits evts in order once the producing transaction has
// committed. A nil bus is a no-op. Failures are logged, never returned:
// the state change they describe is already durable.
func Publish(ctx context.Context, bus Bus, logger *slog.Logger, evts ...events.Event) {
	if bus == nil {
		return
	}
	for _, evt := range evts {
		if err := bus.Emit(ctx, evt); err != nil {
			logger.Warn("failed to emit event", "type", evt.Type(), "error", err)
		}
	}
}

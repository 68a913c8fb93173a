// Command kafka_smoketest pushes a domain event through the Kafka event bus
// and waits for it to come back, to check a local broker setup end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	infraeventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/infra/initializer"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/google/uuid"
)

// RunSmokeTest emits a UserRegistered event and blocks until the bus
// delivers it back to a handler or the timeout expires.
func RunSmokeTest(ctx context.Context, cfg *config.App, logger *slog.Logger) error {
	marker := "smoke-" + uuid.NewString()[:8]
	bus, err := infraeventbus.NewWithKafka(cfg.Kafka.Brokers, infraeventbus.KafkaEventBusConfig{
		GroupID:     cfg.Kafka.GroupID + "." + marker,
		TopicPrefix: cfg.Kafka.TopicPrefix,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	received := make(chan events.Event, 1)
	bus.Register(events.EventTypeUserRegistered.String(), func(_ context.Context, evt events.Event) error {
		if reg, ok := evt.(*events.UserRegistered); ok && reg.Username == marker {
			select {
			case received <- evt:
			default:
			}
		}
		return nil
	})

	evt := events.UserRegistered{
		Meta:  events.NewMeta(uuid.New(), marker),
		Email: marker + "@example.com",
	}
	if err := bus.Emit(ctx, evt); err != nil {
		return err
	}
	logger.Info("produced", "type", evt.Type(), "username", marker)

	select {
	case got := <-received:
		logger.Info("consumed", "type", got.Type(), "username", marker)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("no event consumed for %s: %w", marker, ctx.Err())
	}
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := initializer.SetupLogger(cfg.Log, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := RunSmokeTest(ctx, cfg, logger); err != nil {
		logger.Error("kafka smoke test failed", "error", err)
		os.Exit(1)
	}
	logger.Info("kafka smoke test passed")
}

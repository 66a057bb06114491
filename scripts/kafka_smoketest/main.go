//go:build kafka

// Command kafka_smoketest publishes a ledger event through the Kafka event bus
// and waits for it to come back through a consumer group.
//
//	go run -tags kafka ./scripts/kafka_smoketest
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	infraeventbus "github.com/demonyhq/demony/infra/eventbus"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/google/uuid"
)

// RunSmokeTest round-trips one DepositCompleted event.
func RunSmokeTest(logger *slog.Logger) error {
	brokers := strings.TrimSpace(os.Getenv("EVENT_BUS_KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	cfg := &config.Kafka{
		Brokers:     strings.Split(brokers, ","),
		GroupID:     "demony-smoketest-" + uuid.NewString()[:8],
		TopicPrefix: "demony-smoketest",
	}

	bus, err := infraeventbus.NewWithKafka(cfg, logger)
	if err != nil {
		logger.Error("connect failed", "error", err)
		return err
	}
	defer func() { _ = bus.Close() }()

	sent := &events.DepositCompleted{
		DepositID: uuid.New(),
		UserID:    uuid.New(),
		Amount:    10000,
		Reference: "DEP_SMOKE",
		Timestamp: time.Now().UTC(),
	}
	got := make(chan *events.DepositCompleted, 1)
	bus.Register(events.EventTypeDepositCompleted, func(_ context.Context, e events.Event) error {
		if ev, ok := e.(*events.DepositCompleted); ok && ev.DepositID == sent.DepositID {
			select {
			case got <- ev:
			default:
			}
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bus.Emit(ctx, sent); err != nil {
		logger.Error("emit failed", "error", err)
		return err
	}
	logger.Info("produced", "deposit_id", sent.DepositID)

	select {
	case ev := <-got:
		logger.Info("consumed", "deposit_id", ev.DepositID, "amount", ev.Amount)
	case <-ctx.Done():
		logger.Error("no event consumed before timeout")
		return ctx.Err()
	}
	logger.Info("kafka smoke test passed")
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := RunSmokeTest(logger); err != nil {
		os.Exit(1)
	}
}

//go:build !kafka

package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/eventbus"
)

var errKafkaDisabled = fmt.Errorf("kafka event bus: build with -tags kafka to enable")

// KafkaEventBus is a placeholder when the kafka build tag is absent.
type KafkaEventBus struct{}

// NewWithKafka always fails without the kafka build tag.
func NewWithKafka(_ *config.Kafka, _ *slog.Logger) (*KafkaEventBus, error) {
	return nil, errKafkaDisabled
}

func (b *KafkaEventBus) Register(events.EventType, eventbus.HandlerFunc) {}

func (b *KafkaEventBus) Emit(context.Context, events.Event) error { return errKafkaDisabled }

func (b *KafkaEventBus) Close() error { return nil }

var _ eventbus.Bus = (*KafkaEventBus)(nil)

package eventbus

import (
	"context"
	"log/slog"

	"github.com/demonyhq/demony/pkg/domain/events"
)

// Publish emits events after a commit. Delivery failures are logged and
// never undo the committed change. A nil bus drops the events.
func Publish(ctx context.Context, bus Bus, logger *slog.Logger, evts ...events.Event) {
	if bus == nil {
		return
	}
	for _, e := range evts {
		if err := bus.Emit(ctx, e); err != nil && logger != nil {
			logger.Warn("event not published", "type", e.Type(), "error", err)
		}
	}
}

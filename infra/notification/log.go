// Package notification provides notifier implementations.
package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/demonyhq/demony/pkg/notification"
)

// Sent is a delivered message as recorded by LogNotifier.
type Sent struct {
	Template notification.Template
	To       notification.Recipient
	Data     map[string]any
}

// LogNotifier writes messages to the log and keeps them in memory.
type LogNotifier struct {
	logger *slog.Logger
	mu     sync.Mutex
	sent   []Sent
}

// NewLogNotifier returns a notifier that only logs.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("notifier", "log")}
}

// Send implements notification.Notifier.
func (n *LogNotifier) Send(
	_ context.Context,
	template notification.Template,
	to notification.Recipient,
	data map[string]any,
) error {
	n.mu.Lock()
	n.sent = append(n.sent, Sent{Template: template, To: to, Data: data})
	n.mu.Unlock()
	n.logger.Info("📧 notification", "template", template, "to", to.Email, "subject", notification.Subjects[template])
	return nil
}

// Sent returns a copy of every message sent so far.
func (n *LogNotifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

var _ notification.Notifier = (*LogNotifier)(nil)

package notification

import (
	"context"
	"log/slog"
)

const (
	// KindPassIssued is sent when a new pass becomes active.
	KindPassIssued = "pass_issued"
	// KindPassRenewed is sent after a pass expiry is extended.
	KindPassRenewed = "pass_renewed"
	// KindPassDeleted is sent when a holder removes a pass.
	KindPassDeleted = "pass_deleted"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	PassID      string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger instead of
// delivering them.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", message.Kind),
		slog.String("destination", message.Destination),
		slog.String("pass_id", message.PassID),
		slog.String("body", message.Body),
	)
	return nil
}

package notify

import (
	"context"

	"investmate-backend/internal/logging"
)

// LogNotifier writes notifications to the log instead of delivering them.
// It is used when no e-mail provider is configured.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.Info(ctx, "notification (not delivered)", "to", msg.To, "subject", msg.Subject)
	return nil
}

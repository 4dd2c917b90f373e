package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingNotifier implements harvest.Notifier.
var _ harvest.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with logging of delivery attempts.
type LoggingNotifier struct {
	next   harvest.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next harvest.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// Notify delegates to the wrapped notifier and logs the attempt.
func (n *LoggingNotifier) Notify(ctx context.Context, target, subject string, summary *harvest.Summary) (err error) {
	defer func(begin time.Time) {
		n.logger.Info("notify",
			"target", target,
			"subject", subject,
			"success", summary.SuccessCount,
			"failed", summary.FailureCount,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Notify(ctx, target, subject, summary)
}

package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of harvest.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, target, subject string, summary *harvest.Summary) error
}

func (n *Notifier) Notify(ctx context.Context, target, subject string, summary *harvest.Summary) error {
	return n.NotifyFn(ctx, target, subject, summary)
}

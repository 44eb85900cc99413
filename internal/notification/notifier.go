// Package notification emails customers about their orders. Delivery is
// best effort: failures are logged and counted, never returned to callers.
package notification

import (
	"context"
	"sync"
	"time"

	"dzgamezone-be/internal/logger"
	"dzgamezone-be/internal/metrics"
	"dzgamezone-be/internal/order"

	"go.uber.org/zap"
)

const (
	MetricSent   = "notifications_sent"
	MetricFailed = "notifications_failed"
)

// Notifier dispatches order emails on background goroutines.
type Notifier struct {
	sender  Sender
	timeout time.Duration
	metrics *metrics.Registry
	wg      sync.WaitGroup
}

func NewNotifier(sender Sender, reg *metrics.Registry, timeout time.Duration) *Notifier {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Notifier{sender: sender, timeout: timeout, metrics: reg}
}

var _ order.Notifier = (*Notifier)(nil)

func (n *Notifier) OrderPlaced(ctx context.Context, o *order.Order) {
	n.dispatch(ctx, "order_placed", o, PlacedMessage)
}

func (n *Notifier) StatusChanged(ctx context.Context, o *order.Order) {
	n.dispatch(ctx, "status_changed", o, StatusMessage)
}

// Wait blocks until every dispatched email has been handed over or failed.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context, kind string, o *order.Order, build func(*order.Order) (Message, error)) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notification"),
		zap.String("kind", kind),
		zap.String("order_id", o.ID),
	)

	msg, err := build(o)
	if err != nil {
		n.metrics.Counter(MetricFailed).Inc()
		log.Error("failed to build email", zap.Error(err))
		return
	}

	// The request may finish before the mail is out.
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		timer := metrics.StartTimer()
		if err := n.sender.Send(sendCtx, msg); err != nil {
			n.metrics.Counter(MetricFailed).Inc()
			log.Warn("email not sent", zap.Duration("elapsed", timer.Duration()), zap.Error(err))
			return
		}

		n.metrics.Counter(MetricSent).Inc()
		log.Info("email sent", zap.Duration("elapsed", timer.Duration()))
	}()
}

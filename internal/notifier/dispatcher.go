package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaharia-lab/mailcast/internal/metrics"
	"github.com/shaharia-lab/mailcast/internal/storage"
	"github.com/shaharia-lab/mailcast/internal/transport"
)

// SendFailure records one failed per-recipient delivery within a batch.
type SendFailure struct {
	Recipient string `json:"recipient"`
	Err       error  `json:"-"`
}

// Report is the outcome of dispatching one notification. Failures are
// collected here and logged; they are never raised past the batch boundary,
// so a best-effort broadcast is not blocked by a handful of bad addresses.
type Report struct {
	NotificationID string
	Sent           []string
	Failed         []SendFailure
}

// Dispatcher orchestrates the pipeline for each incoming notification:
// resolve recipients, render the message, and send one individually
// addressed copy per recipient. The transport is constructed once and
// shared by all in-flight dispatches.
type Dispatcher struct {
	resolver  *Resolver
	transport transport.Transport
	sender    string
	replyTo   string
	store     storage.DeliveryStore
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. store may be nil to disable the
// delivery audit log.
func NewDispatcher(
	resolver *Resolver,
	tr transport.Transport,
	sender, replyTo string,
	store storage.DeliveryStore,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		resolver:  resolver,
		transport: tr,
		sender:    sender,
		replyTo:   replyTo,
		store:     store,
		logger:    logger,
	}
}

// Dispatch processes one notification best-effort. Each send is independent:
// a failure for one address is recorded and the remaining addresses are
// still attempted. The notification itself is never mutated.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) Report {
	metrics.NotificationsDispatched.Inc()
	report := Report{NotificationID: n.Event.ID}

	recipients, err := d.resolver.Resolve(ctx, n.Recipients)
	if err != nil {
		d.logger.Error("recipient resolution failed",
			slog.String("notification_id", n.Event.ID),
			slog.String("error", err.Error()),
		)
		return report
	}

	if len(recipients) == 0 {
		d.logger.Debug("no recipients resolved, skipping send",
			slog.String("notification_id", n.Event.ID),
		)
		return report
	}

	for _, addr := range recipients.Addresses() {
		msg := renderMessage(d.sender, d.replyTo, addr, n.Event.Payload)

		sendErr := d.transport.Send(ctx, msg)
		if sendErr != nil {
			metrics.MessagesFailed.WithLabelValues(d.transport.Name()).Inc()
			report.Failed = append(report.Failed, SendFailure{Recipient: addr, Err: sendErr})
			d.logger.Warn("message send failed",
				slog.String("notification_id", n.Event.ID),
				slog.String("recipient", addr),
				slog.String("transport", d.transport.Name()),
				slog.String("error", sendErr.Error()),
			)
		} else {
			metrics.MessagesSent.WithLabelValues(d.transport.Name()).Inc()
			report.Sent = append(report.Sent, addr)
		}

		d.logDelivery(n, addr, sendErr)
	}

	if len(report.Failed) > 0 {
		d.logger.Warn("notification delivered with failures",
			slog.String("notification_id", n.Event.ID),
			slog.Int("sent", len(report.Sent)),
			slog.Int("failed", len(report.Failed)),
		)
	} else {
		d.logger.Info("notification delivered",
			slog.String("notification_id", n.Event.ID),
			slog.Int("sent", len(report.Sent)),
		)
	}
	return report
}

// logDelivery records one send attempt in the delivery audit log.
func (d *Dispatcher) logDelivery(n Notification, recipient string, sendErr error) {
	if d.store == nil {
		return
	}

	entry := storage.DeliveryEntry{
		NotificationID: n.Event.ID,
		Origin:         n.Event.Origin,
		Recipient:      recipient,
		Transport:      d.transport.Name(),
		Subject:        n.Event.Payload.Title,
		Status:         storage.StatusSent,
		CreatedAt:      time.Now(),
	}
	if sendErr != nil {
		entry.Status = storage.StatusFailed
		entry.ErrorMsg = sendErr.Error()
	}

	// The audit log is best-effort too; use a fresh context so a canceled
	// dispatch still records its outcome.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.LogDelivery(ctx, entry); err != nil {
		d.logger.Warn("failed to record delivery",
			slog.String("notification_id", n.Event.ID),
			slog.String("recipient", recipient),
			slog.String("error", err.Error()),
		)
	}
}

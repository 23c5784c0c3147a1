// Package worker drains the durable queue and delivers messages to their
// chat platform, retrying with fixed sleeps and alerting the operator when
// a message exhausts its in-pass retry budget.
package worker

import (
	"context"
	"fmt"
	"time"

	"chatrelay/internal/alert"
	"chatrelay/internal/constants"
	apperrors "chatrelay/internal/errors"
	"chatrelay/internal/metrics"
	"chatrelay/internal/models"
	"chatrelay/internal/queue"
	"chatrelay/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Sender delivers one message body to a chat platform.
type Sender interface {
	Send(ctx context.Context, body string) error
}

// Worker is the single background delivery loop. Exactly one instance runs
// per process; delivery inside a pass is strictly sequential so alerts
// reach the operator in queue order.
type Worker struct {
	store        *queue.Store
	senders      map[models.Platform]Sender
	alerter      alert.Alerter
	retry        models.RetryConfig
	pollInterval time.Duration
	logger       *logrus.Logger
}

// New creates a delivery worker. senders maps each configured platform to
// its outbound client; platforms absent from the map never deliver.
func New(store *queue.Store, senders map[models.Platform]Sender, alerter alert.Alerter, retry models.RetryConfig, logger *logrus.Logger) *Worker {
	return &Worker{
		store:        store,
		senders:      senders,
		alerter:      alerter,
		retry:        retry,
		pollInterval: constants.QueuePollIntervalSec * time.Second,
		logger:       logger,
	}
}

// Run executes queue passes until ctx is cancelled. A failed pass is
// logged and the loop continues with the next cycle; only cancellation
// stops the worker.
func (w *Worker) Run(ctx context.Context) {
	w.logger.WithField("poll_interval", w.pollInterval.String()).Info("Delivery worker started")

	for {
		if err := w.RunPass(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Delivery worker stopped")
				return
			}
			apperrors.LogError(w.logger, err, "Queue pass failed")
		}

		if err := sleepCtx(ctx, w.pollInterval); err != nil {
			w.logger.Info("Delivery worker stopped")
			return
		}
	}
}

// RunPass processes one snapshot of the queue: every pending message gets
// up to SendRetryNum delivery attempts with SendRetrySleepSec between
// them. A message that exhausts its attempts triggers one alert, a
// SendRetryWaitSec pause, and stays queued for the next pass. Retry
// counters are per-pass and never persisted; a restart merely starts
// counting from zero again.
func (w *Worker) RunPass(ctx context.Context) error {
	passCtx, span := tracing.WithSpan(ctx, "queue_pass")
	defer span.End()

	snapshot, err := w.store.Snapshot()
	if err != nil {
		tracing.RecordError(passCtx, err)
		return err
	}

	tracing.AddSpanAttributes(passCtx, attribute.Int("queue.depth", len(snapshot)))
	metrics.SetGauge("queue_depth", float64(len(snapshot)), nil, "Pending messages at pass start")

	for _, msg := range snapshot {
		if err := w.deliver(passCtx, msg); err != nil {
			return err
		}
	}

	return nil
}

// deliver runs the retry loop for one message. The returned error is only
// ever a context error; delivery failure is handled in place.
func (w *Worker) deliver(ctx context.Context, msg models.QueuedMessage) error {
	logger := w.logger.WithField("platform", string(msg.Platform))

	for attempt := 1; attempt <= w.retry.SendRetryNum; attempt++ {
		err := w.send(ctx, msg)
		if err == nil {
			w.markDelivered(msg, logger)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": w.retry.SendRetryNum,
		}).WithError(err).Warn("Delivery attempt failed")
		metrics.IncrementCounter("delivery_attempts_failed_total", map[string]string{
			"platform": string(msg.Platform),
		}, "Failed delivery attempts")

		if err := sleepCtx(ctx, time.Duration(w.retry.SendRetrySleepSec)*time.Second); err != nil {
			return err
		}
	}

	// Retries exhausted: alert once and leave the message queued. It gets
	// a fresh retry budget on the next pass.
	logger.Error("Delivery retries exhausted, alerting operator")
	metrics.IncrementCounter("delivery_exhausted_total", map[string]string{
		"platform": string(msg.Platform),
	}, "Messages that exhausted in-pass retries")

	subject := "Message Delivery Failed"
	body := fmt.Sprintf("Failed to send: %+v", msg)
	if err := w.alerter.Notify(ctx, subject, body); err != nil {
		// Best effort only; a broken alert channel must not stop delivery.
		apperrors.LogWarn(w.logger, err, "Failed to send delivery alert")
	} else {
		metrics.IncrementCounter("alerts_sent_total", nil, "Operator alerts sent")
	}

	return sleepCtx(ctx, time.Duration(w.retry.SendRetryWaitSec)*time.Second)
}

// send dispatches one attempt to the platform's sender. An unrecognized
// platform never succeeds and therefore alerts on every pass.
func (w *Worker) send(ctx context.Context, msg models.QueuedMessage) error {
	sender, ok := w.senders[msg.Platform]
	if !ok {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "no sender for platform").
			WithContext("platform", string(msg.Platform))
	}
	return sender.Send(ctx, msg.Body)
}

// markDelivered removes the message from the queue and records it in the
// sent log. The two writes are separate locked operations: a crash in
// between loses the audit record but never re-delivers, because queue
// state is authoritative.
func (w *Worker) markDelivered(msg models.QueuedMessage, logger *logrus.Entry) {
	if err := w.store.Remove(msg); err != nil {
		apperrors.LogError(w.logger, err, "Failed to remove delivered message from queue")
		return
	}
	if err := w.store.AppendSent(msg); err != nil {
		apperrors.LogWarn(w.logger, err, "Failed to record message in sent log")
	}

	logger.Info("Message delivered")
	metrics.IncrementCounter("delivery_success_total", map[string]string{
		"platform": string(msg.Platform),
	}, "Successfully delivered messages")
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

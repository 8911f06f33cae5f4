package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"spendtrend/internal/amqp"
	"spendtrend/internal/budget"
	"spendtrend/internal/log"
)

// AlertSink stores a budget alert somewhere a person will see it.
type AlertSink interface {
	AppendAlert(ctx context.Context, a budget.Alert) error
}

// LogSink writes alerts to the log only.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogSink{logger: logger.WithComponent(log.ComponentWorker)}
}

func (s *LogSink) AppendAlert(ctx context.Context, a budget.Alert) error {
	s.logger.WarnContext(ctx, "Budget exceeded",
		log.FieldMonth, a.Month.String(),
		log.FieldSessionID, a.SessionID,
		log.FieldCategory, a.Category,
		"spent", a.Spent.StringFixed(2),
		log.FieldThreshold, a.Threshold.StringFixed(2),
		"overage", a.Overage.StringFixed(2))
	return nil
}

// AlertProcessor handles alert messages taken off the queue.
type AlertProcessor struct {
	sink      AlertSink
	logger    *log.Logger
	processed atomic.Int64
	failed    atomic.Int64
}

func NewAlertProcessor(sink AlertSink, logger *log.Logger) *AlertProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertProcessor{sink: sink, logger: logger.WithComponent(log.ComponentWorker)}
}

// Handle satisfies amqp.AlertHandler. A returned error asks for a requeue.
func (p *AlertProcessor) Handle(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if err := p.sink.AppendAlert(ctx, msg.Alert); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("store alert for %s: %w", msg.Alert.Month, err)
	}
	p.processed.Add(1)
	return nil
}

// Stats returns how many alerts were stored and how many failed.
func (p *AlertProcessor) Stats() (processed, failed int64) {
	return p.processed.Load(), p.failed.Load()
}

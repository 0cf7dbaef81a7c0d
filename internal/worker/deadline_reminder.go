package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/service"
)

// DeadlineReminderWorker periodically sweeps task deadlines and sends the
// 8 hour and 2 hour reminder emails.
type DeadlineReminderWorker struct {
	reminders *service.ReminderService
	cfg       config.ReminderConfig
	logger    *zap.Logger
}

// NewDeadlineReminderWorker constructs the worker.
func NewDeadlineReminderWorker(reminders *service.ReminderService, cfg config.ReminderConfig, logger *zap.Logger) *DeadlineReminderWorker {
	return &DeadlineReminderWorker{reminders: reminders, cfg: cfg, logger: logger}
}

// Start launches the sweep loop in a goroutine. The loop delays its first
// run so startup traffic settles, then polls until the context is canceled.
// A failed sweep is logged and retried on the next tick, never fatal.
func (w *DeadlineReminderWorker) Start(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("deadline reminder worker disabled")
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.StartupDelay()):
		}

		ticker := time.NewTicker(w.cfg.PollInterval())
		defer ticker.Stop()

		w.logger.Info("deadline reminder worker started",
			zap.Duration("interval", w.cfg.PollInterval()))

		w.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("deadline reminder worker stopped")
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

func (w *DeadlineReminderWorker) sweep(ctx context.Context) {
	result, err := w.reminders.Sweep(ctx, false)
	if err != nil {
		w.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	if result.Sent8h > 0 || result.Sent2h > 0 || result.Failed > 0 {
		w.logger.Info("reminder sweep finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("sent_8h", result.Sent8h),
			zap.Int("sent_2h", result.Sent2h),
			zap.Int("failed", result.Failed),
			zap.Int("skipped", result.Skipped))
	}
}

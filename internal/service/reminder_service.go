package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/identity"
	"github.com/pticket/helpdesk/internal/observability"
	"github.com/pticket/helpdesk/internal/repository"
)

// Reminder windows. A reminder fires while the remaining time sits inside
// its band; tasks closer than the lower bound of the last band are left
// alone because the reminder would arrive too late to act on.
const (
	window8hUpper = 8*time.Hour + 30*time.Minute
	window8hLower = 7*time.Hour + 30*time.Minute
	window2hUpper = 2*time.Hour + 30*time.Minute
	window2hLower = 1*time.Hour + 30*time.Minute
)

// ReminderService scans tasks with deadlines and sends the 8-hour and
// 2-hour warnings. Each window fires at most once per task: the sent flag is
// persisted only after the email goes out, so a failed delivery is retried
// on the next sweep.
type ReminderService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	mailer     Mailer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ReminderDependencies bundles requirements for the reminder service.
type ReminderDependencies struct {
	TaskRepo   repository.TaskRepository
	UserRepo   repository.UserRepository
	Mailer     Mailer
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewReminderService constructs the service.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		tasks:      deps.TaskRepo,
		users:      deps.UserRepo,
		mailer:     deps.Mailer,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        now,
	}
}

// SweepResult summarizes one reminder pass.
type SweepResult struct {
	Scanned int
	Sent8h  int
	Sent2h  int
	Failed  int
	Skipped int
}

// Sweep runs one reminder pass. With dryRun set it reports what would be
// sent without delivering anything or touching the flags.
func (s *ReminderService) Sweep(ctx context.Context, dryRun bool) (SweepResult, error) {
	var result SweepResult

	candidates, err := s.tasks.ListReminderCandidates(ctx)
	if err != nil {
		return result, err
	}
	result.Scanned = len(candidates)

	now := s.now()
	for i := range candidates {
		task := &candidates[i]
		remaining := task.Deadline.Sub(now)

		// The two windows are independent: a task created inside the 2h
		// band gets its 2h warning even though the 8h one never fired.
		if !task.Reminder8hSent && remaining > window8hLower && remaining <= window8hUpper {
			s.fire(ctx, task, "8h", remaining, dryRun, &result)
		}
		if !task.Reminder2hSent && remaining > window2hLower && remaining <= window2hUpper {
			s.fire(ctx, task, "2h", remaining, dryRun, &result)
		}
		if remaining <= window2hLower {
			result.Skipped++
		}
	}
	return result, nil
}

func (s *ReminderService) fire(ctx context.Context, task *domain.TicketTask, window string, remaining time.Duration, dryRun bool, result *SweepResult) {
	if dryRun {
		s.logger.Info("reminder dry run",
			zap.String("task_id", task.ID),
			zap.String("window", window),
			zap.Duration("remaining", remaining))
		s.count(window, result)
		return
	}

	assignee, err := s.users.GetByID(ctx, task.AssignedToID)
	if err != nil {
		s.logger.Warn("reminder assignee lookup failed",
			zap.String("task_id", task.ID), zap.Error(err))
		result.Failed++
		return
	}

	if assignee.Email != "" {
		subject, body := reminderEmail(task, assignee, remaining)
		if err := s.mailer.Send(ctx, []string{assignee.Email}, subject, body); err != nil {
			// Flag stays unset so the next sweep retries while the task is
			// still inside the window.
			result.Failed++
			return
		}
	}

	if err := s.tasks.MarkReminderSent(ctx, task.ID, window); err != nil {
		s.logger.Error("reminder flag update failed",
			zap.String("task_id", task.ID),
			zap.String("window", window),
			zap.Error(err))
		result.Failed++
		return
	}

	if s.metrics != nil {
		s.metrics.RecordReminder(window)
	}
	s.publishDeadlineNear(ctx, task, window, remaining)
	s.count(window, result)
}

func (s *ReminderService) count(window string, result *SweepResult) {
	switch window {
	case "8h":
		result.Sent8h++
	case "2h":
		result.Sent2h++
	}
}

func (s *ReminderService) publishDeadlineNear(ctx context.Context, task *domain.TicketTask, window string, remaining time.Duration) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTaskDeadlineNear,
		ActorID:   task.AssignedToID,
		TaskID:    &task.ID,
		Timestamp: s.now(),
		Payload: events.DeadlineNearPayload{
			Window:    window,
			Deadline:  *task.Deadline,
			Remaining: remaining.Round(time.Minute).String(),
		},
	})
}

func reminderEmail(task *domain.TicketTask, assignee *domain.User, remaining time.Duration) (string, string) {
	hoursLeft := identity.ToPersianDigits(fmt.Sprintf("%.0f", remaining.Hours()))
	subject := fmt.Sprintf("یادآوری مهلت وظیفه: %s", task.Title)
	body := RenderRTLEmail("یادآوری مهلت انجام وظیفه", []string{
		fmt.Sprintf("%s عزیز،", assignee.FullName()),
		fmt.Sprintf("حدود %s ساعت تا پایان مهلت وظیفه «%s» باقی مانده است.", hoursLeft, task.Title),
		"لطفاً وضعیت وظیفه را بررسی و در صورت نیاز درخواست تمدید ثبت کنید.",
	})
	return subject, body
}

package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// NotificationService turns domain events into per-recipient in-app
// notifications plus RTL email to the people the original flow mailed,
// and keeps the Redis unread counters in step.
type NotificationService struct {
	notifications repository.NotificationRepository
	tickets       repository.TicketRepository
	tasks         repository.TaskRepository
	users         repository.UserRepository
	departments   repository.DepartmentRepository
	dispatcher    events.Dispatcher
	mailer        Mailer
	redis         *redis.Client
	logger        *zap.Logger
}

// NotificationDependencies bundles requirements for the service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	TicketRepo       repository.TicketRepository
	TaskRepo         repository.TaskRepository
	UserRepo         repository.UserRepository
	DepartmentRepo   repository.DepartmentRepository
	Dispatcher       events.Dispatcher
	Mailer           Mailer
	Redis            *redis.Client
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		tickets:       deps.TicketRepo,
		tasks:         deps.TaskRepo,
		users:         deps.UserRepo,
		departments:   deps.DepartmentRepo,
		dispatcher:    deps.Dispatcher,
		mailer:        deps.Mailer,
		redis:         deps.Redis,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketApprovalRequested, n.handleApprovalRequested)
	n.dispatcher.Subscribe(events.EventTicketApprovalDecided, n.handleApprovalDecided)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketReplyAdded, n.handleTicketReplyAdded)
	n.dispatcher.Subscribe(events.EventTaskCreated, n.handleTaskCreated)
	n.dispatcher.Subscribe(events.EventTaskStatusChanged, n.handleTaskStatusChanged)
	n.dispatcher.Subscribe(events.EventTaskReplyAdded, n.handleTaskReplyAdded)
	n.dispatcher.Subscribe(events.EventTaskDeadlineNear, n.handleDeadlineNear)
	n.dispatcher.Subscribe(events.EventExtensionRequested, n.handleExtensionRequested)
	n.dispatcher.Subscribe(events.EventExtensionDecided, n.handleExtensionDecided)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleUserLoggedIn)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	recipients := n.itManagerIDs(ctx)
	if ticket.TargetDepartmentID != nil {
		// The department's ticket responder hears about new work too.
		if dept, err := n.departments.GetByID(ctx, *ticket.TargetDepartmentID); err == nil && dept.TicketResponderID != nil {
			recipients = append(recipients, *dept.TicketResponderID)
		}
	}
	n.emailUser(ctx, ticket.CreatedByID, "ثبت تیکت",
		fmt.Sprintf("تیکت «%s» با شماره پیگیری %s ثبت شد و به زودی بررسی می‌شود.", ticket.Title, ticket.ExternalKey))
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:     domain.NotificationTicketCreated,
		Title:    "تیکت جدید",
		Message:  fmt.Sprintf("تیکت «%s» ثبت شد.", ticket.Title),
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleApprovalRequested(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	recipients := n.itManagerIDs(ctx)
	if creator, err := n.users.GetByID(ctx, ticket.CreatedByID); err == nil && creator.DepartmentID != nil {
		recipients = append(recipients, n.supervisorIDs(ctx, *creator.DepartmentID)...)
	}
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:     domain.NotificationApprovalRequested,
		Title:    "درخواست تایید دسترسی",
		Message:  fmt.Sprintf("تیکت «%s» در انتظار تایید سرپرست است.", ticket.Title),
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleApprovalDecided(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, _ := event.Payload.(events.ApprovalDecidedPayload)
	message := fmt.Sprintf("درخواست دسترسی تیکت «%s» تایید شد.", ticket.Title)
	if payload.Decision == domain.AccessApprovalRejected {
		message = fmt.Sprintf("درخواست دسترسی تیکت «%s» رد شد.", ticket.Title)
	}
	return n.deliver(ctx, []string{ticket.CreatedByID}, event.ActorID, domain.Notification{
		Type:     domain.NotificationApprovalDecided,
		Title:    "نتیجه تایید دسترسی",
		Message:  message,
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, _ := event.Payload.(events.StatusChangedPayload)
	recipients := []string{ticket.CreatedByID}
	if ticket.AssignedToID != nil {
		recipients = append(recipients, *ticket.AssignedToID)
	}
	if event.ActorID != ticket.CreatedByID {
		n.emailUser(ctx, ticket.CreatedByID, "تغییر وضعیت تیکت",
			fmt.Sprintf("وضعیت تیکت «%s» به «%s» تغییر کرد.", ticket.Title, payload.NewStatus.Persian()))
	}
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:     domain.NotificationTicketStatus,
		Title:    "تغییر وضعیت تیکت",
		Message:  fmt.Sprintf("وضعیت تیکت «%s» تغییر کرد.", ticket.Title),
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	n.emailUser(ctx, ticket.CreatedByID, "ارجاع تیکت",
		fmt.Sprintf("تیکت «%s» به کارشناس ارجاع شد و در حال بررسی است.", ticket.Title))
	return n.deliver(ctx, []string{payload.AssigneeID}, event.ActorID, domain.Notification{
		Type:     domain.NotificationTicketAssigned,
		Title:    "ارجاع تیکت",
		Message:  fmt.Sprintf("تیکت «%s» به شما ارجاع شد.", ticket.Title),
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleTicketReplyAdded(ctx context.Context, event events.Event) error {
	ticket, err := n.ticketFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, _ := event.Payload.(events.ReplyAddedPayload)
	recipients := []string{ticket.CreatedByID}
	if ticket.AssignedToID != nil {
		recipients = append(recipients, *ticket.AssignedToID)
	}
	if payload.AuthorID != ticket.CreatedByID {
		// Private reply bodies never leave the system in clear text.
		preview := payload.BodyPreview
		if payload.IsPrivate {
			preview = privateReplyMask
		}
		n.emailUser(ctx, ticket.CreatedByID, "پاسخ جدید",
			fmt.Sprintf("برای تیکت «%s» پاسخ جدیدی ثبت شد: %s", ticket.Title, preview))
	}
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:     domain.NotificationTicketReplied,
		Title:    "پاسخ جدید",
		Message:  fmt.Sprintf("پاسخ جدیدی برای تیکت «%s» ثبت شد.", ticket.Title),
		TicketID: &ticket.ID,
	})
}

func (n *NotificationService) handleTaskCreated(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	n.emailUser(ctx, task.AssignedToID, "وظیفه جدید",
		fmt.Sprintf("وظیفه «%s» به شما واگذار شد.", task.Title))
	return n.deliver(ctx, []string{task.AssignedToID}, event.ActorID, domain.Notification{
		Type:    domain.NotificationTaskAssigned,
		Title:   "وظیفه جدید",
		Message: fmt.Sprintf("وظیفه «%s» به شما واگذار شد.", task.Title),
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleTaskStatusChanged(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	recipients := []string{task.CreatedByID, task.AssignedToID}
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:    domain.NotificationTaskStatus,
		Title:   "تغییر وضعیت وظیفه",
		Message: fmt.Sprintf("وضعیت وظیفه «%s» تغییر کرد.", task.Title),
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleTaskReplyAdded(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	recipients := []string{task.CreatedByID, task.AssignedToID}
	return n.deliver(ctx, recipients, event.ActorID, domain.Notification{
		Type:    domain.NotificationTaskReplied,
		Title:   "پاسخ جدید وظیفه",
		Message: fmt.Sprintf("پاسخ جدیدی برای وظیفه «%s» ثبت شد.", task.Title),
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleDeadlineNear(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, _ := event.Payload.(events.DeadlineNearPayload)
	return n.deliver(ctx, []string{task.AssignedToID}, "", domain.Notification{
		Type:    domain.NotificationTaskDeadline,
		Title:   "یادآوری مهلت",
		Message: fmt.Sprintf("مهلت وظیفه «%s» رو به پایان است (%s).", task.Title, payload.Remaining),
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleExtensionRequested(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	return n.deliver(ctx, []string{task.CreatedByID}, event.ActorID, domain.Notification{
		Type:    domain.NotificationExtensionRequest,
		Title:   "درخواست تمدید مهلت",
		Message: fmt.Sprintf("برای وظیفه «%s» درخواست تمدید مهلت ثبت شد.", task.Title),
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleExtensionDecided(ctx context.Context, event events.Event) error {
	task, err := n.taskFromEvent(ctx, event)
	if err != nil {
		return err
	}
	payload, _ := event.Payload.(events.ExtensionPayload)
	message := fmt.Sprintf("درخواست تمدید وظیفه «%s» تایید شد.", task.Title)
	if payload.Status == domain.ExtensionRejected {
		message = fmt.Sprintf("درخواست تمدید وظیفه «%s» رد شد.", task.Title)
	}
	return n.deliver(ctx, []string{task.AssignedToID}, event.ActorID, domain.Notification{
		Type:    domain.NotificationExtensionDecided,
		Title:   "نتیجه درخواست تمدید",
		Message: message,
		TaskID:  &task.ID,
	})
}

func (n *NotificationService) handleUserLoggedIn(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.UserLoggedInPayload)
	return n.deliver(ctx, n.itManagerIDs(ctx), event.ActorID, domain.Notification{
		Type:    domain.NotificationUserLogin,
		Title:   "ورود کاربر",
		Message: fmt.Sprintf("%s وارد سامانه شد.", payload.UserName),
	})
}

// privateReplyMask replaces private reply bodies in outbound email.
const privateReplyMask = "[پاسخ محرمانه]"

// emailUser sends one RTL notification mail to a single user. Delivery
// problems are logged and swallowed so event handling never fails on SMTP.
func (n *NotificationService) emailUser(ctx context.Context, userID, subject, body string) {
	if n.mailer == nil || userID == "" {
		return
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil || user.Email == "" {
		return
	}
	msg := RenderRTLEmail(subject, []string{
		fmt.Sprintf("سلام %s،", user.FullName()),
		body,
	})
	if err := n.mailer.Send(ctx, []string{user.Email}, subject, msg); err != nil {
		n.logger.Warn("notification email failed",
			zap.String("recipient", userID), zap.Error(err))
	}
}

// deliver persists one notification per distinct recipient, skipping the
// actor who caused the event, and bumps the Redis counters.
func (n *NotificationService) deliver(ctx context.Context, recipients []string, actorID string, template domain.Notification) error {
	seen := make(map[string]struct{}, len(recipients))
	for _, recipient := range recipients {
		if recipient == "" || recipient == actorID {
			continue
		}
		if _, dup := seen[recipient]; dup {
			continue
		}
		seen[recipient] = struct{}{}

		notification := template
		notification.RecipientID = recipient
		if err := n.notifications.Create(ctx, &notification); err != nil {
			n.logger.Warn("notification persist failed",
				zap.String("recipient", recipient), zap.Error(err))
			continue
		}
		n.bumpUnread(ctx, recipient, 1)
	}
	return nil
}

// Inbox returns the recipient's notifications, optionally narrowed to one
// notification type and to unread entries.
func (n *NotificationService) Inbox(ctx context.Context, userID string, filter repository.NotificationFilter) ([]domain.Notification, error) {
	list, err := n.notifications.ListByRecipient(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return list, nil
}

// UnreadCount returns the unread badge value, served from Redis when the
// counter is warm and recomputed from Postgres otherwise.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if n.redis != nil {
		if val, err := n.redis.Get(ctx, unreadKey(userID)).Int(); err == nil {
			return val, nil
		}
	}
	count, err := n.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.ToDomainError(err)
	}
	if n.redis != nil {
		n.redis.Set(ctx, unreadKey(userID), count, 0)
	}
	return count, nil
}

// MarkRead marks one notification read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		return apperrors.ToDomainError(err)
	}
	n.bumpUnread(ctx, userID, -1)
	return nil
}

// MarkAllRead marks unread notifications read, all of them or only one
// type, and adjusts the counter accordingly.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string, typ *domain.NotificationType) (int, error) {
	count, err := n.notifications.MarkAllRead(ctx, userID, typ)
	if err != nil {
		return 0, apperrors.ToDomainError(err)
	}
	if n.redis != nil {
		if typ == nil {
			n.redis.Set(ctx, unreadKey(userID), 0, 0)
		} else {
			n.bumpUnread(ctx, userID, -int64(count))
		}
	}
	return count, nil
}

// Delete removes one notification owned by the user. The counter is dropped
// rather than decremented because the row may already have been read; the
// next UnreadCount recomputes it.
func (n *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.Delete(ctx, notificationID, userID); err != nil {
		return apperrors.ToDomainError(err)
	}
	if n.redis != nil {
		n.redis.Del(ctx, unreadKey(userID))
	}
	return nil
}

// DeleteAll clears the inbox, optionally only one notification type.
func (n *NotificationService) DeleteAll(ctx context.Context, userID string, typ *domain.NotificationType) (int, error) {
	count, err := n.notifications.DeleteAll(ctx, userID, typ)
	if err != nil {
		return 0, apperrors.ToDomainError(err)
	}
	if n.redis != nil {
		n.redis.Del(ctx, unreadKey(userID))
	}
	return count, nil
}

func (n *NotificationService) bumpUnread(ctx context.Context, userID string, delta int64) {
	if n.redis == nil {
		return
	}
	if err := n.redis.IncrBy(ctx, unreadKey(userID), delta).Err(); err != nil {
		// Counter drifts are healed on the next UnreadCount recompute.
		n.redis.Del(ctx, unreadKey(userID))
	}
}

func unreadKey(userID string) string {
	return "notifications:unread:" + userID
}

func (n *NotificationService) ticketFromEvent(ctx context.Context, event events.Event) (*domain.Ticket, error) {
	if event.TicketID == nil {
		return nil, fmt.Errorf("event %s without ticket id", event.Type)
	}
	return n.tickets.GetByID(ctx, *event.TicketID)
}

func (n *NotificationService) taskFromEvent(ctx context.Context, event events.Event) (*domain.TicketTask, error) {
	if event.TaskID == nil {
		return nil, fmt.Errorf("event %s without task id", event.Type)
	}
	return n.tasks.GetByID(ctx, *event.TaskID)
}

func (n *NotificationService) itManagerIDs(ctx context.Context) []string {
	managers, err := n.users.ListByRole(ctx, domain.RoleITManager)
	if err != nil {
		n.logger.Warn("it manager lookup failed", zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}
	return ids
}

func (n *NotificationService) supervisorIDs(ctx context.Context, departmentID string) []string {
	users, err := n.users.List(ctx, repository.UserFilter{ActiveOnly: true, Limit: 500})
	if err != nil {
		return nil
	}
	var ids []string
	for i := range users {
		if users[i].Supervises(departmentID) {
			ids = append(ids, users[i].ID)
		}
	}
	return ids
}

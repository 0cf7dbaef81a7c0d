package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/policy"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// TaskService coordinates the task-tracking flow that runs alongside
// tickets: assigned work items with deadlines and extension requests.
type TaskService struct {
	tasks       repository.TaskRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	activity    repository.ActivityLogRepository
	dispatcher  events.Dispatcher
}

// TaskDependencies bundles repositories for the task service.
type TaskDependencies struct {
	TaskRepo       repository.TaskRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	ActivityRepo   repository.ActivityLogRepository
	Dispatcher     events.Dispatcher
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:       deps.TaskRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		activity:    deps.ActivityRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// TaskCreateInput describes the task creation payload.
type TaskCreateInput struct {
	Title        string
	Description  string
	Priority     domain.TicketPriority
	AssignedToID string
	DepartmentID *string
	Deadline     *time.Time
}

// CreateTask creates a task. Only the IT manager or the department's
// designated task creator may do so.
func (s *TaskService) CreateTask(ctx context.Context, user *domain.User, input TaskCreateInput) (*domain.TicketTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", nil)
	}
	if input.Deadline != nil && input.Deadline.Before(time.Now()) {
		return nil, apperrors.NewValidationError("deadline must be in the future", nil)
	}

	var dept *domain.Department
	if input.DepartmentID != nil {
		d, err := s.departments.GetByID(ctx, *input.DepartmentID)
		if err != nil {
			return nil, apperrors.ToDomainError(err)
		}
		dept = d
	}
	if !policy.CanCreateTask(user, dept) {
		return nil, apperrors.NewForbidden("access denied")
	}

	assignee, err := s.users.GetByID(ctx, input.AssignedToID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewValidationError("assignee is inactive", nil)
	}

	task := &domain.TicketTask{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Priority:     input.Priority,
		Status:       domain.TicketStatusOpen,
		CreatedByID:  user.ID,
		AssignedToID: assignee.ID,
		DepartmentID: input.DepartmentID,
		Deadline:     input.Deadline,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID: user.ID,
		Action:  domain.ActivityCreated,
		TaskID:  &task.ID,
	})
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTaskCreated,
		ActorID: user.ID,
		TaskID:  &task.ID,
		Payload: events.TaskCreatedPayload{
			Title:      task.Title,
			Priority:   task.Priority,
			AssigneeID: task.AssignedToID,
			Deadline:   task.Deadline,
		},
	})
	return task, nil
}

// GetTask fetches a task with its replies.
func (s *TaskService) GetTask(ctx context.Context, user *domain.User, taskID string) (*domain.TicketTask, []domain.TaskReply, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).View {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	replies, err := s.tasks.ListReplies(ctx, taskID)
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}
	return task, replies, nil
}

// ListTasks returns tasks within the caller's scope.
func (s *TaskService) ListTasks(ctx context.Context, user *domain.User, filter repository.TaskFilter) ([]domain.TicketTask, error) {
	if !user.IsAdmin && user.Role != domain.RoleITManager {
		// Non-managers see only tasks they created or carry.
		if filter.CreatedByID == nil {
			filter.AssignedToID = &user.ID
		} else if *filter.CreatedByID != user.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	tasks, err := s.tasks.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tasks, nil
}

// AddReply appends a reply to the task conversation.
func (s *TaskService) AddReply(ctx context.Context, user *domain.User, taskID, content string, attachmentKey *string) (*domain.TaskReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("reply content is required", nil)
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).Reply {
		return nil, apperrors.NewForbidden("access denied")
	}

	reply := &domain.TaskReply{
		TaskID:        task.ID,
		AuthorID:      user.ID,
		Content:       content,
		AttachmentKey: attachmentKey,
	}
	if err := s.tasks.CreateReply(ctx, reply); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID: user.ID,
		Action:  domain.ActivityReplied,
		TaskID:  &task.ID,
	})
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTaskReplyAdded,
		ActorID: user.ID,
		TaskID:  &task.ID,
		Payload: events.ReplyAddedPayload{
			ReplyID:     reply.ID,
			AuthorID:    user.ID,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return reply, nil
}

// UpdateStatus moves the task along the lifecycle graph.
func (s *TaskService) UpdateStatus(ctx context.Context, user *domain.User, taskID string, newStatus domain.TicketStatus, comment string) (*domain.TicketTask, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", nil)
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).ChangeStatus {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !domain.CanTransitionStatus(task.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition")
	}

	oldStatus := task.Status
	task.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		now := time.Now()
		task.ResolvedAt = &now
	case domain.TicketStatusInProgress:
		task.ResolvedAt = nil
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityStatusChanged,
		TaskID:   &task.ID,
		Field:    "status",
		OldValue: string(oldStatus),
		NewValue: string(newStatus),
		Note:     comment,
	})
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTaskStatusChanged,
		ActorID: user.ID,
		TaskID:  &task.ID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return task, nil
}

// RequestExtension files a deadline extension request by the assignee.
func (s *TaskService) RequestExtension(ctx context.Context, user *domain.User, taskID string, requestedDeadline time.Time, reason string) (*domain.DeadlineExtensionRequest, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).RequestExtend {
		return nil, apperrors.NewForbidden("access denied")
	}
	if task.Deadline != nil && !requestedDeadline.After(*task.Deadline) {
		return nil, apperrors.NewValidationError("requested deadline must be after the current one", nil)
	}

	req := &domain.DeadlineExtensionRequest{
		TaskID:            task.ID,
		RequestedByID:     user.ID,
		RequestedDeadline: requestedDeadline,
		Reason:            strings.TrimSpace(reason),
		Status:            domain.ExtensionPending,
	}
	if err := s.tasks.CreateExtension(ctx, req); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventExtensionRequested,
		ActorID: user.ID,
		TaskID:  &task.ID,
		Payload: events.ExtensionPayload{
			RequestID:         req.ID,
			RequestedDeadline: req.RequestedDeadline,
			Status:            req.Status,
		},
	})
	return req, nil
}

// DecideExtension approves or rejects a pending extension request. Approval
// replaces the task deadline and re-arms both reminder flags atomically.
func (s *TaskService) DecideExtension(ctx context.Context, user *domain.User, requestID string, approve bool) (*domain.DeadlineExtensionRequest, error) {
	req, err := s.tasks.GetExtension(ctx, requestID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if req.Status != domain.ExtensionPending {
		return nil, apperrors.NewConflict("extension request already decided")
	}
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).DecideExtend {
		return nil, apperrors.NewForbidden("access denied")
	}

	now := time.Now()
	req.DecidedByID = &user.ID
	req.DecidedAt = &now
	if approve {
		req.Status = domain.ExtensionApproved
		if err := s.tasks.ApplyExtension(ctx, req); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
	} else {
		req.Status = domain.ExtensionRejected
		if err := s.tasks.UpdateExtension(ctx, req); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventExtensionDecided,
		ActorID: user.ID,
		TaskID:  &req.TaskID,
		Payload: events.ExtensionPayload{
			RequestID:         req.ID,
			RequestedDeadline: req.RequestedDeadline,
			Status:            req.Status,
		},
	})
	return req, nil
}

// ListExtensions returns the extension history of a task.
func (s *TaskService) ListExtensions(ctx context.Context, user *domain.User, taskID string) ([]domain.DeadlineExtensionRequest, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !policy.ForTask(user, task).View {
		return nil, apperrors.NewForbidden("access denied")
	}
	reqs, err := s.tasks.ListExtensions(ctx, taskID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return reqs, nil
}

func (s *TaskService) logActivity(ctx context.Context, entry *domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Create(ctx, entry)
}

func (s *TaskService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

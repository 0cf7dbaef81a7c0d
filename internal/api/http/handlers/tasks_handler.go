package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// TasksHandler serves internal task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// Create POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TaskCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     domain.TicketPriority(req.Priority),
		AssignedToID: req.AssignedToID,
		DepartmentID: req.DepartmentID,
		Deadline:     req.Deadline,
	}
	task, err := h.service.CreateTask(c.Context(), user, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": taskSummary(task)})
}

// List GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := repository.TaskFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	tasks, err := h.service.ListTasks(c.Context(), user, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TaskSummary, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskSummary(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	task, replies, err := h.service.GetTask(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TaskReplyResponse, 0, len(replies))
	for i := range replies {
		items = append(items, taskReplyResponse(&replies[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TaskDetailResponse{
		TaskSummary: taskSummary(task),
		Description: task.Description,
		Replies:     items,
	}})
}

// AddReply POST /tasks/:id/replies.
func (h *TasksHandler) AddReply(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTaskReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	reply, err := h.service.AddReply(c.Context(), user, c.Params("id"), req.Content, req.AttachmentKey)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": taskReplyResponse(reply)})
}

// UpdateStatus PATCH /tasks/:id/status.
func (h *TasksHandler) UpdateStatus(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.service.UpdateStatus(c.Context(), user, c.Params("id"), domain.TicketStatus(req.Status), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskSummary(task)})
}

// RequestExtension POST /tasks/:id/extensions.
func (h *TasksHandler) RequestExtension(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.RequestExtensionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}
	request, err := h.service.RequestExtension(c.Context(), user, c.Params("id"), req.RequestedDeadline, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": extensionResponse(request)})
}

// ListExtensions GET /tasks/:id/extensions.
func (h *TasksHandler) ListExtensions(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.service.ListExtensions(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ExtensionResponse, 0, len(requests))
	for i := range requests {
		items = append(items, extensionResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DecideExtension POST /extensions/:id/decision.
func (h *TasksHandler) DecideExtension(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DecideExtensionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.service.DecideExtension(c.Context(), user, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": extensionResponse(request)})
}

func taskSummary(task *domain.TicketTask) dto.TaskSummary {
	return dto.TaskSummary{
		ID:             task.ID,
		Title:          task.Title,
		Priority:       string(task.Priority),
		Status:         string(task.Status),
		CreatedByID:    task.CreatedByID,
		AssignedToID:   task.AssignedToID,
		DepartmentID:   task.DepartmentID,
		Deadline:       task.Deadline,
		Reminder8hSent: task.Reminder8hSent,
		Reminder2hSent: task.Reminder2hSent,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		ResolvedAt:     task.ResolvedAt,
	}
}

func taskReplyResponse(reply *domain.TaskReply) dto.TaskReplyResponse {
	return dto.TaskReplyResponse{
		ID:            reply.ID,
		AuthorID:      reply.AuthorID,
		Content:       reply.Content,
		AttachmentKey: reply.AttachmentKey,
		CreatedAt:     reply.CreatedAt,
	}
}

func extensionResponse(request *domain.DeadlineExtensionRequest) dto.ExtensionResponse {
	return dto.ExtensionResponse{
		ID:                request.ID,
		TaskID:            request.TaskID,
		RequestedByID:     request.RequestedByID,
		RequestedDeadline: request.RequestedDeadline,
		Reason:            request.Reason,
		Status:            string(request.Status),
		DecidedByID:       request.DecidedByID,
		DecidedAt:         request.DecidedAt,
		CreatedAt:         request.CreatedAt,
	}
}

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

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	replies     repository.ReplyRepository
	categories  repository.CategoryRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	activity    repository.ActivityLogRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ReplyRepo      repository.ReplyRepository
	CategoryRepo   repository.CategoryRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	ActivityRepo   repository.ActivityLogRepository
	Dispatcher     events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		replies:     deps.ReplyRepo,
		categories:  deps.CategoryRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		activity:    deps.ActivityRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Title              string
	Description        string
	CategoryID         *string
	Category           domain.LegacyCategory
	Priority           domain.TicketPriority
	TargetDepartmentID *string
	BranchID           *string
	AttachmentKey      *string
}

// TicketListFilter describes listing filters on top of the caller's scope.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// ReplyView is a reply plus the visibility the caller has to it. A masked
// reply keeps its metadata but hides the content.
type ReplyView struct {
	Reply  domain.Reply
	Masked bool
}

// CreateTicket creates a ticket for the user. Tickets in categories that
// require supervisor approval start gated behind the pending state.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
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

	approval := domain.AccessApprovalNotRequired
	if input.CategoryID != nil {
		cat, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, apperrors.ToDomainError(err)
		}
		if !cat.IsActive {
			return nil, apperrors.NewValidationError("category inactive", nil)
		}
		if input.TargetDepartmentID != nil && cat.DepartmentID != *input.TargetDepartmentID {
			return nil, apperrors.NewValidationError("category does not belong to the target department", nil)
		}
		if input.TargetDepartmentID == nil {
			input.TargetDepartmentID = &cat.DepartmentID
		}
		if cat.RequiresSupervisorApproval {
			approval = domain.AccessApprovalPending
		}
	}
	if input.TargetDepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *input.TargetDepartmentID)
		if err != nil {
			return nil, apperrors.ToDomainError(err)
		}
		if !dept.IsActive || !dept.CanReceiveTickets {
			return nil, apperrors.NewValidationError("department cannot receive tickets", nil)
		}
	}

	ticket := &domain.Ticket{
		ExternalKey:          generateTicketKey(),
		Title:                title,
		Description:          strings.TrimSpace(input.Description),
		Category:             input.Category,
		CategoryID:           input.CategoryID,
		Priority:             input.Priority,
		Status:               domain.TicketStatusOpen,
		AccessApprovalStatus: approval,
		CreatedByID:          user.ID,
		BranchID:             input.BranchID,
		TargetDepartmentID:   input.TargetDepartmentID,
		AttachmentKey:        input.AttachmentKey,
	}
	if ticket.Category == "" {
		ticket.Category = domain.CategoryOther
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityCreated,
		TicketID: &ticket.ID,
	})

	eventType := events.EventTicketCreated
	if approval == domain.AccessApprovalPending {
		eventType = events.EventTicketApprovalRequested
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:              ticket.Title,
			Priority:           ticket.Priority,
			TargetDepartmentID: ticket.TargetDepartmentID,
			ApprovalStatus:     approval,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with the replies visible to the caller.
func (s *TicketService) GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, []ReplyView, error) {
	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	caps := policy.ForTicket(user, tctx)
	if !caps.View {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	all, err := s.replies.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.ToDomainError(err)
	}
	views := make([]ReplyView, 0, len(all))
	for _, reply := range all {
		switch policy.ForReply(user, tctx, &reply) {
		case policy.ReplyFull:
			views = append(views, ReplyView{Reply: reply})
		case policy.ReplyExistenceOnly:
			masked := reply
			masked.Content = ""
			masked.AttachmentKey = nil
			views = append(views, ReplyView{Reply: masked, Masked: true})
		}
	}
	return ticket, views, nil
}

// ListTickets returns the tickets within the caller's scope.
func (s *TicketService) ListTickets(ctx context.Context, user *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch {
	case user.IsAdmin || user.Role == domain.RoleITManager:
		// unrestricted
	case user.Role == domain.RoleTechnician:
		repoFilter.AssignedToID = &user.ID
	default:
		repoFilter.CreatedByID = &user.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return tickets, nil
}

// ListPendingApprovals returns tickets awaiting the supervisor's decision
// for the departments the user supervises.
func (s *TicketService) ListPendingApprovals(ctx context.Context, user *domain.User) ([]domain.Ticket, error) {
	pending, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		ApprovalStatuses: []domain.AccessApprovalStatus{domain.AccessApprovalPending},
		Limit:            200,
	})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if user.IsAdmin || user.Role == domain.RoleITManager {
		return pending, nil
	}

	var result []domain.Ticket
	for _, ticket := range pending {
		creator, err := s.users.GetByID(ctx, ticket.CreatedByID)
		if err != nil {
			continue
		}
		if creator.DepartmentID != nil && user.Supervises(*creator.DepartmentID) {
			result = append(result, ticket)
		}
	}
	return result, nil
}

// AddReply appends a reply to the ticket conversation.
func (s *TicketService) AddReply(ctx context.Context, user *domain.User, ticketID, content string, isPrivate bool, attachmentKey *string) (*domain.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("reply content is required", nil)
	}

	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	caps := policy.ForTicket(user, tctx)
	if !caps.Reply {
		return nil, apperrors.NewForbidden("access denied")
	}
	if isPrivate && !caps.ReplyPrivate {
		return nil, apperrors.NewForbidden("private replies not allowed for this user")
	}

	reply := &domain.Reply{
		TicketID:      ticket.ID,
		AuthorID:      user.ID,
		Content:       content,
		IsPrivate:     isPrivate,
		AttachmentKey: attachmentKey,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityReplied,
		TicketID: &ticket.ID,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplyAdded,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload: events.ReplyAddedPayload{
			ReplyID:     reply.ID,
			AuthorID:    user.ID,
			IsPrivate:   isPrivate,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return reply, nil
}

// UpdateStatus moves the ticket along the lifecycle graph.
func (s *TicketService) UpdateStatus(ctx context.Context, user *domain.User, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", nil)
	}
	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.ForTicket(user, tctx).ChangeStatus {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !domain.CanTransitionStatus(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition")
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		now := time.Now()
		ticket.ResolvedAt = &now
	case domain.TicketStatusInProgress:
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityStatusChanged,
		TicketID: &ticket.ID,
		Field:    "status",
		OldValue: string(oldStatus),
		NewValue: string(newStatus),
		Note:     comment,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority changes the ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, user *domain.User, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", nil)
	}
	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.ForTicket(user, tctx).ChangePriority {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityPriorityChanged,
		TicketID: &ticket.ID,
		Field:    "priority",
		OldValue: string(oldPriority),
		NewValue: string(newPriority),
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload: events.PriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// Assign hands the ticket to a technician. A freshly opened ticket moves to
// in_progress as part of the same update.
func (s *TicketService) Assign(ctx context.Context, user *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.ForTicket(user, tctx).Assign {
		return nil, apperrors.NewForbidden("access denied")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if assignee.Role != domain.RoleTechnician || !assignee.IsActive {
		return nil, apperrors.NewValidationError("assignee must be an active technician", nil)
	}

	oldStatus := ticket.Status
	ticket.AssignedToID = &assignee.ID
	ticket.Status = domain.StatusAfterAssignment(ticket.Status)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   domain.ActivityAssigned,
		TicketID: &ticket.ID,
		Field:    "assigned_to",
		NewValue: assignee.ID,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assignee.ID},
	})
	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			ActorID:  user.ID,
			TicketID: &ticket.ID,
			Payload: events.StatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
				Comment:   "assigned",
			},
		})
	}
	return ticket, nil
}

// DecideAccess records the supervisor's approval decision. Decisions are
// final: a decided ticket never returns to pending.
func (s *TicketService) DecideAccess(ctx context.Context, user *domain.User, ticketID string, approve bool, note string) (*domain.Ticket, error) {
	ticket, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.ForTicket(user, tctx).ApproveAccess {
		return nil, apperrors.NewForbidden("access denied")
	}

	decision := domain.AccessApprovalApproved
	action := domain.ActivityApproved
	if !approve {
		decision = domain.AccessApprovalRejected
		action = domain.ActivityRejected
	}
	if !domain.CanTransitionApproval(ticket.AccessApprovalStatus, decision) {
		return nil, apperrors.NewConflict("approval already decided")
	}

	ticket.AccessApprovalStatus = decision
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	s.logActivity(ctx, &domain.ActivityLog{
		ActorID:  user.ID,
		Action:   action,
		TicketID: &ticket.ID,
		Field:    "access_approval_status",
		OldValue: string(domain.AccessApprovalPending),
		NewValue: string(decision),
		Note:     note,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketApprovalDecided,
		ActorID:  user.ID,
		TicketID: &ticket.ID,
		Payload: events.ApprovalDecidedPayload{
			Decision: decision,
			Note:     note,
		},
	})
	return ticket, nil
}

// History returns the audit trail of a ticket.
func (s *TicketService) History(ctx context.Context, user *domain.User, ticketID string) ([]domain.ActivityLog, error) {
	_, tctx, err := s.loadWithContext(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.ForTicket(user, tctx).View {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.activity.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return entries, nil
}

// loadWithContext loads the ticket plus the relationship data capability
// checks need.
func (s *TicketService) loadWithContext(ctx context.Context, ticketID string) (*domain.Ticket, policy.TicketContext, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, policy.TicketContext{}, apperrors.ToDomainError(err)
	}
	tctx := policy.TicketContext{Ticket: ticket}

	if creator, err := s.users.GetByID(ctx, ticket.CreatedByID); err == nil {
		tctx.CreatorDepartmentID = creator.DepartmentID
	}
	if ticket.TargetDepartmentID != nil {
		if dept, err := s.departments.GetByID(ctx, *ticket.TargetDepartmentID); err == nil {
			tctx.TargetResponderID = dept.TicketResponderID
		}
	}
	return ticket, tctx, nil
}

func (s *TicketService) logActivity(ctx context.Context, entry *domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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

func generateTicketKey() string {
	return "TK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

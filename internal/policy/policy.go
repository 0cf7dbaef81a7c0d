// Package policy is the single place where role and relationship checks
// live. Handlers and services ask the resolver what a user may do instead of
// re-deriving role logic inline.
package policy

import (
	"github.com/pticket/helpdesk/internal/domain"
)

// TicketCapabilities describes what a user may do with one ticket.
type TicketCapabilities struct {
	View           bool
	Reply          bool
	ReplyPrivate   bool
	ChangeStatus   bool
	ChangePriority bool
	Assign         bool
	ApproveAccess  bool
}

// ReplyVisibility is the access level a user has to one reply.
type ReplyVisibility int

const (
	// ReplyHidden means the reply is not listed at all.
	ReplyHidden ReplyVisibility = iota
	// ReplyExistenceOnly lists the reply with its content masked.
	ReplyExistenceOnly
	// ReplyFull shows the reply content.
	ReplyFull
)

// TicketContext carries the relationship data capability checks need beyond
// the ticket row itself.
type TicketContext struct {
	Ticket *domain.Ticket
	// CreatorDepartmentID is the department of the ticket creator, used for
	// supervisor checks.
	CreatorDepartmentID *string
	// TargetResponderID is the ticket responder of the target department,
	// when the ticket is routed to one.
	TargetResponderID *string
}

// ForTicket resolves the full capability set of user over the ticket in ctx.
func ForTicket(user *domain.User, ctx TicketContext) TicketCapabilities {
	t := ctx.Ticket
	caps := TicketCapabilities{}
	if user == nil || t == nil {
		return caps
	}

	isCreator := t.CreatedByID == user.ID
	isAssignee := t.AssignedToID != nil && *t.AssignedToID == user.ID
	isManager := user.Role == domain.RoleITManager
	isResponder := ctx.TargetResponderID != nil && *ctx.TargetResponderID == user.ID
	supervisesCreator := ctx.CreatorDepartmentID != nil && user.Supervises(*ctx.CreatorDepartmentID)

	caps.View = isCreator || isAssignee || isManager || isResponder || supervisesCreator ||
		user.Role == domain.RoleTechnician

	// Nobody interacts with a ticket still waiting on supervisor approval,
	// except the people who decide it.
	blocked := t.AccessApprovalStatus == domain.AccessApprovalPending ||
		t.AccessApprovalStatus == domain.AccessApprovalRejected
	canAct := caps.View && !blocked

	caps.Reply = canAct && (isCreator || isAssignee || isManager || isResponder)
	caps.ReplyPrivate = caps.Reply && !isCreator
	caps.ChangeStatus = canAct && (isAssignee || isManager || isResponder)
	caps.ChangePriority = canAct && (isAssignee || isManager || isResponder)
	caps.Assign = isManager
	caps.ApproveAccess = t.AccessApprovalStatus == domain.AccessApprovalPending &&
		(isManager || supervisesCreator)
	return caps
}

// ForReply resolves how much of a reply the user may see. Private reply
// content is limited to the author, the ticket creator, general managers and
// the IT manager. A supervisor of the creator's department learns that the
// reply exists but not what it says. Technicians outside that circle do not
// see it at all.
func ForReply(user *domain.User, ctx TicketContext, reply *domain.Reply) ReplyVisibility {
	if user == nil || reply == nil {
		return ReplyHidden
	}
	if !ForTicket(user, ctx).View {
		return ReplyHidden
	}
	if !reply.IsPrivate {
		return ReplyFull
	}
	switch {
	case reply.AuthorID == user.ID,
		ctx.Ticket.CreatedByID == user.ID,
		user.Role == domain.RoleITManager,
		user.DepartmentRole == domain.DepartmentRoleManager:
		return ReplyFull
	case ctx.CreatorDepartmentID != nil && user.Supervises(*ctx.CreatorDepartmentID):
		return ReplyExistenceOnly
	default:
		return ReplyHidden
	}
}

// TaskCapabilities describes what a user may do with one task.
type TaskCapabilities struct {
	View          bool
	Reply         bool
	ChangeStatus  bool
	RequestExtend bool
	DecideExtend  bool
}

// ForTask resolves the capability set of user over task.
func ForTask(user *domain.User, task *domain.TicketTask) TaskCapabilities {
	caps := TaskCapabilities{}
	if user == nil || task == nil {
		return caps
	}
	isCreator := task.CreatedByID == user.ID
	isAssignee := task.AssignedToID == user.ID
	isManager := user.Role == domain.RoleITManager

	caps.View = isCreator || isAssignee || isManager ||
		(task.DepartmentID != nil && user.Supervises(*task.DepartmentID))
	caps.Reply = isCreator || isAssignee || isManager
	caps.ChangeStatus = isCreator || isAssignee || isManager
	caps.RequestExtend = isAssignee && task.Deadline != nil &&
		task.Status != domain.TicketStatusClosed
	caps.DecideExtend = isCreator || isManager
	return caps
}

// CanCreateTask reports whether user may create tasks in the department:
// the IT manager anywhere, otherwise only the designated task creator.
func CanCreateTask(user *domain.User, dept *domain.Department) bool {
	if user == nil {
		return false
	}
	if user.Role == domain.RoleITManager {
		return true
	}
	return dept != nil && dept.TaskCreatorID != nil && *dept.TaskCreatorID == user.ID
}

// CanManageOrg reports whether user may administer branches, departments and
// employees.
func CanManageOrg(user *domain.User) bool {
	return user != nil && (user.Role == domain.RoleITManager || user.IsAdmin)
}

// CanViewStatistics reports whether user may open the statistics views.
func CanViewStatistics(user *domain.User) bool {
	if user == nil {
		return false
	}
	return user.Role == domain.RoleITManager || user.IsAdmin ||
		user.DepartmentRole == domain.DepartmentRoleManager
}

// CanManageInventory reports whether user may manage a department warehouse:
// the IT manager, or a supervisor of that department when it has one.
func CanManageInventory(user *domain.User, dept *domain.Department) bool {
	if user == nil || dept == nil || !dept.HasWarehouse {
		return false
	}
	if user.Role == domain.RoleITManager {
		return true
	}
	return user.Supervises(dept.ID)
}

// CanManageEmailConfig reports whether user may read or change the SMTP
// settings row.
func CanManageEmailConfig(user *domain.User) bool {
	return user != nil && (user.Role == domain.RoleITManager || user.IsAdmin)
}

package policy

import (
	"testing"
	"time"

	"github.com/pticket/helpdesk/internal/domain"
)

func strPtr(s string) *string { return &s }

func timeRef() time.Time {
	return time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)
}

func employee(id, deptID string) *domain.User {
	return &domain.User{
		ID:             id,
		Role:           domain.RoleEmployee,
		DepartmentRole: domain.DepartmentRoleEmployee,
		DepartmentID:   strPtr(deptID),
		IsActive:       true,
	}
}

func supervisor(id string, deptIDs ...string) *domain.User {
	return &domain.User{
		ID:                      id,
		Role:                    domain.RoleEmployee,
		DepartmentRole:          domain.DepartmentRoleSenior,
		SupervisedDepartmentIDs: deptIDs,
		IsActive:                true,
	}
}

func itManager(id string) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleITManager, IsActive: true}
}

func ticketCtx(t *domain.Ticket, creatorDept string) TicketContext {
	return TicketContext{Ticket: t, CreatorDepartmentID: strPtr(creatorDept)}
}

func TestForTicket_Creator(t *testing.T) {
	tk := &domain.Ticket{
		ID:                   "t1",
		CreatedByID:          "u1",
		Status:               domain.TicketStatusOpen,
		AccessApprovalStatus: domain.AccessApprovalNotRequired,
	}
	caps := ForTicket(employee("u1", "d1"), ticketCtx(tk, "d1"))
	if !caps.View || !caps.Reply {
		t.Fatal("creator should view and reply")
	}
	if caps.ChangeStatus || caps.Assign || caps.ApproveAccess || caps.ReplyPrivate {
		t.Error("creator must not change status, assign, approve, or write private replies")
	}
}

func TestForTicket_PendingApprovalBlocksInteraction(t *testing.T) {
	tk := &domain.Ticket{
		ID:                   "t1",
		CreatedByID:          "u1",
		Status:               domain.TicketStatusOpen,
		AccessApprovalStatus: domain.AccessApprovalPending,
	}
	caps := ForTicket(employee("u1", "d1"), ticketCtx(tk, "d1"))
	if !caps.View {
		t.Error("creator should still see a pending ticket")
	}
	if caps.Reply || caps.ChangeStatus {
		t.Error("pending approval must block replies and status changes")
	}
}

func TestForTicket_SupervisorApproves(t *testing.T) {
	tk := &domain.Ticket{
		ID:                   "t1",
		CreatedByID:          "u1",
		Status:               domain.TicketStatusOpen,
		AccessApprovalStatus: domain.AccessApprovalPending,
	}
	sup := supervisor("sup1", "d1")
	caps := ForTicket(sup, ticketCtx(tk, "d1"))
	if !caps.ApproveAccess {
		t.Error("supervisor of creator's department should decide pending approvals")
	}

	other := supervisor("sup2", "d9")
	if ForTicket(other, ticketCtx(tk, "d1")).ApproveAccess {
		t.Error("unrelated supervisor must not approve")
	}

	tk.AccessApprovalStatus = domain.AccessApprovalApproved
	if ForTicket(sup, ticketCtx(tk, "d1")).ApproveAccess {
		t.Error("already-decided ticket must not be approvable again")
	}
}

func TestForTicket_AssigneeAndManager(t *testing.T) {
	tk := &domain.Ticket{
		ID:                   "t1",
		CreatedByID:          "u1",
		AssignedToID:         strPtr("tech1"),
		Status:               domain.TicketStatusInProgress,
		AccessApprovalStatus: domain.AccessApprovalNotRequired,
	}
	tech := &domain.User{ID: "tech1", Role: domain.RoleTechnician, IsActive: true}
	caps := ForTicket(tech, ticketCtx(tk, "d1"))
	if !caps.ChangeStatus || !caps.ChangePriority || !caps.ReplyPrivate {
		t.Error("assignee should act on the ticket")
	}
	if caps.Assign {
		t.Error("assignee must not reassign")
	}

	mgr := ForTicket(itManager("m1"), ticketCtx(tk, "d1"))
	if !mgr.Assign || !mgr.ChangeStatus {
		t.Error("it_manager should assign and change status")
	}
}

func TestForReply_PrivateVisibility(t *testing.T) {
	tk := &domain.Ticket{
		ID:                   "t1",
		CreatedByID:          "creator",
		AssignedToID:         strPtr("tech1"),
		Status:               domain.TicketStatusInProgress,
		AccessApprovalStatus: domain.AccessApprovalNotRequired,
	}
	ctx := ticketCtx(tk, "d1")
	private := &domain.Reply{ID: "r1", TicketID: "t1", AuthorID: "tech1", IsPrivate: true}

	cases := []struct {
		name string
		user *domain.User
		want ReplyVisibility
	}{
		{"author", &domain.User{ID: "tech1", Role: domain.RoleTechnician}, ReplyFull},
		{"ticket creator", employee("creator", "d1"), ReplyFull},
		{"it manager", itManager("m1"), ReplyFull},
		{"general manager", &domain.User{ID: "gm", Role: domain.RoleEmployee, DepartmentRole: domain.DepartmentRoleManager, DepartmentID: strPtr("d2")}, ReplyFull},
		{"supervisor existence only", supervisor("sup1", "d1"), ReplyExistenceOnly},
		{"other technician", &domain.User{ID: "tech2", Role: domain.RoleTechnician}, ReplyHidden},
	}
	for _, tc := range cases {
		if got := ForReply(tc.user, ctx, private); got != tc.want {
			t.Errorf("%s: visibility = %v, want %v", tc.name, got, tc.want)
		}
	}

	public := &domain.Reply{ID: "r2", TicketID: "t1", AuthorID: "tech1"}
	if got := ForReply(&domain.User{ID: "tech2", Role: domain.RoleTechnician}, ctx, public); got != ReplyFull {
		t.Errorf("public reply visibility = %v, want full", got)
	}
}

func TestForTask(t *testing.T) {
	deadline := timeRef()
	task := &domain.TicketTask{
		ID:           "k1",
		CreatedByID:  "boss",
		AssignedToID: "worker",
		Status:       domain.TicketStatusInProgress,
		Deadline:     &deadline,
	}
	assignee := employee("worker", "d1")
	caps := ForTask(assignee, task)
	if !caps.View || !caps.Reply || !caps.ChangeStatus || !caps.RequestExtend {
		t.Error("assignee should act on the task and request extensions")
	}
	if caps.DecideExtend {
		t.Error("assignee must not decide their own extension")
	}

	creator := ForTask(employee("boss", "d1"), task)
	if !creator.DecideExtend {
		t.Error("task creator should decide extensions")
	}

	stranger := ForTask(employee("nobody", "d9"), task)
	if stranger.View {
		t.Error("unrelated user must not see the task")
	}

	task.Deadline = nil
	if ForTask(assignee, task).RequestExtend {
		t.Error("no deadline means no extension request")
	}
}

func TestCanCreateTask(t *testing.T) {
	dept := &domain.Department{ID: "d1", TaskCreatorID: strPtr("lead")}
	if !CanCreateTask(itManager("m1"), dept) {
		t.Error("it_manager can always create tasks")
	}
	if !CanCreateTask(employee("lead", "d1"), dept) {
		t.Error("designated task creator should create tasks")
	}
	if CanCreateTask(employee("other", "d1"), dept) {
		t.Error("ordinary employee must not create tasks")
	}
}

func TestCanManageInventory(t *testing.T) {
	dept := &domain.Department{ID: "d1", HasWarehouse: true}
	if !CanManageInventory(itManager("m1"), dept) {
		t.Error("it_manager manages any warehouse")
	}
	if !CanManageInventory(supervisor("sup1", "d1"), dept) {
		t.Error("department supervisor manages its warehouse")
	}
	if CanManageInventory(supervisor("sup1", "d1"), &domain.Department{ID: "d1"}) {
		t.Error("department without warehouse has no inventory to manage")
	}
}

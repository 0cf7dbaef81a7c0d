package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/pticket/helpdesk/internal/domain"
)

type ticketFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	replies  *fakeReplyRepo
	activity *fakeActivityRepo

	employee   *domain.User
	supervisor *domain.User
	manager    *domain.User
	technician *domain.User
}

func newTicketFixture() *ticketFixture {
	f := &ticketFixture{
		tickets:  newFakeTicketRepo(),
		replies:  &fakeReplyRepo{},
		activity: &fakeActivityRepo{},
		employee: &domain.User{
			ID:             "emp-1",
			Role:           domain.RoleEmployee,
			DepartmentRole: domain.DepartmentRoleEmployee,
			DepartmentID:   strPtr("d1"),
			IsActive:       true,
		},
		supervisor: &domain.User{
			ID:                      "sup-1",
			Role:                    domain.RoleEmployee,
			DepartmentRole:          domain.DepartmentRoleSenior,
			DepartmentID:            strPtr("d1"),
			SupervisedDepartmentIDs: []string{"d1"},
			IsActive:                true,
		},
		manager:    &domain.User{ID: "mgr-1", Role: domain.RoleITManager, IsActive: true},
		technician: &domain.User{ID: "tech-1", Role: domain.RoleTechnician, IsActive: true},
	}

	depts := newFakeDepartmentRepo(&domain.Department{
		ID:                "d1",
		Name:              "پشتیبانی فنی",
		Type:              domain.DepartmentTypeTechnician,
		IsActive:          true,
		CanReceiveTickets: true,
	})
	cats := newFakeCategoryRepo(
		&domain.TicketCategory{
			ID:           "cat-plain",
			DepartmentID: "d1",
			Name:         "نرم‌افزار",
			IsActive:     true,
		},
		&domain.TicketCategory{
			ID:                         "cat-gated",
			DepartmentID:               "d1",
			Name:                       "دسترسی",
			RequiresSupervisorApproval: true,
			IsActive:                   true,
		},
	)
	users := newFakeUserRepo(f.employee, f.supervisor, f.manager, f.technician)

	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		ReplyRepo:      f.replies,
		CategoryRepo:   cats,
		DepartmentRepo: depts,
		UserRepo:       users,
		ActivityRepo:   f.activity,
	})
	return f
}

func (f *ticketFixture) create(t *testing.T, categoryID string) *domain.Ticket {
	t.Helper()
	input := TicketCreateInput{Title: "مشکل دسترسی به شبکه"}
	if categoryID != "" {
		input.CategoryID = &categoryID
	}
	ticket, err := f.svc.CreateTicket(context.Background(), f.employee, input)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestCreateTicketDefaults(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s", ticket.Status)
	}
	if ticket.AccessApprovalStatus != domain.AccessApprovalNotRequired {
		t.Errorf("approval = %s", ticket.AccessApprovalStatus)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %s", ticket.Priority)
	}
	if ticket.TargetDepartmentID == nil || *ticket.TargetDepartmentID != "d1" {
		t.Error("target department should default to the category's department")
	}
	if ticket.ExternalKey == "" {
		t.Error("external key must be generated")
	}
}

func TestCreateTicketGatedCategoryStartsPending(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-gated")

	if ticket.AccessApprovalStatus != domain.AccessApprovalPending {
		t.Errorf("approval = %s, want pending", ticket.AccessApprovalStatus)
	}
}

func TestCreateTicketRejectsNonReceivingDepartment(t *testing.T) {
	f := newTicketFixture()
	depts := newFakeDepartmentRepo(&domain.Department{ID: "d2", IsActive: true, CanReceiveTickets: false})
	f.svc.departments = depts

	_, err := f.svc.CreateTicket(context.Background(), f.employee, TicketCreateInput{
		Title:              "درخواست",
		TargetDepartmentID: strPtr("d2"),
	})
	expectStatus(t, err, http.StatusBadRequest)
}

func TestAddReplyBlockedWhilePendingApproval(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-gated")

	_, err := f.svc.AddReply(context.Background(), f.employee, ticket.ID, "پیگیری", false, nil)
	expectStatus(t, err, http.StatusForbidden)
}

func TestDecideAccessApproveUnblocksTicket(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-gated")

	decided, err := f.svc.DecideAccess(context.Background(), f.supervisor, ticket.ID, true, "بلامانع")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.AccessApprovalStatus != domain.AccessApprovalApproved {
		t.Fatalf("approval = %s", decided.AccessApprovalStatus)
	}

	// Creator can interact again once approved.
	if _, err := f.svc.AddReply(context.Background(), f.employee, ticket.ID, "ممنون", false, nil); err != nil {
		t.Errorf("reply after approval: %v", err)
	}

	// Decisions are final.
	if _, err := f.svc.DecideAccess(context.Background(), f.supervisor, ticket.ID, false, ""); err == nil {
		t.Error("second decision must be rejected")
	}
}

func TestAssignMovesOpenTicketToInProgress(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	assigned, err := f.svc.Assign(context.Background(), f.manager, ticket.ID, f.technician.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want in_progress", assigned.Status)
	}
	if assigned.AssignedToID == nil || *assigned.AssignedToID != "tech-1" {
		t.Error("assignee not recorded")
	}
}

func TestAssignRejectsNonTechnician(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	_, err := f.svc.Assign(context.Background(), f.manager, ticket.ID, f.employee.ID)
	expectStatus(t, err, http.StatusBadRequest)
}

func TestAssignRequiresManager(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	_, err := f.svc.Assign(context.Background(), f.technician, ticket.ID, f.technician.ID)
	expectStatus(t, err, http.StatusForbidden)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")
	ticket.Status = domain.TicketStatusClosed
	f.tickets.tickets[ticket.ID] = ticket

	_, err := f.svc.UpdateStatus(context.Background(), f.manager, ticket.ID, domain.TicketStatusInProgress, "")
	expectStatus(t, err, http.StatusConflict)
}

func TestUpdateStatusResolvedSetsTimestamp(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	updated, err := f.svc.UpdateStatus(context.Background(), f.manager, ticket.ID, domain.TicketStatusResolved, "انجام شد")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if updated.ResolvedAt == nil {
		t.Error("resolved_at must be set")
	}

	reopened, err := f.svc.UpdateStatus(context.Background(), f.manager, ticket.ID, domain.TicketStatusInProgress, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.ResolvedAt != nil {
		t.Error("reopening must clear resolved_at")
	}
}

func TestGetTicketMasksPrivateReplies(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")
	if _, err := f.svc.Assign(context.Background(), f.manager, ticket.ID, f.technician.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := f.svc.AddReply(context.Background(), f.technician, ticket.ID, "بررسی شد", false, nil); err != nil {
		t.Fatalf("public reply: %v", err)
	}
	if _, err := f.svc.AddReply(context.Background(), f.technician, ticket.ID, "یادداشت داخلی", true, nil); err != nil {
		t.Fatalf("private reply: %v", err)
	}

	// The creator reads the full conversation.
	_, views, err := f.svc.GetTicket(context.Background(), f.employee, ticket.ID)
	if err != nil {
		t.Fatalf("get as creator: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("creator should see both replies, got %d", len(views))
	}
	for _, v := range views {
		if v.Masked {
			t.Error("creator must see reply content")
		}
	}

	// A supervisor of the creator's department learns the private reply
	// exists but not what it says.
	_, views, err = f.svc.GetTicket(context.Background(), f.supervisor, ticket.ID)
	if err != nil {
		t.Fatalf("get as supervisor: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("supervisor should see both entries, got %d", len(views))
	}
	var maskedSeen bool
	for _, v := range views {
		if v.Masked {
			maskedSeen = true
			if v.Reply.Content != "" {
				t.Error("masked reply must not leak content")
			}
		}
	}
	if !maskedSeen {
		t.Error("private reply should be masked for the supervisor")
	}

	// An uninvolved technician does not see the private reply at all.
	other := &domain.User{ID: "tech-2", Role: domain.RoleTechnician, IsActive: true}
	_, views, err = f.svc.GetTicket(context.Background(), other, ticket.ID)
	if err != nil {
		t.Fatalf("get as other technician: %v", err)
	}
	if len(views) != 1 || views[0].Reply.IsPrivate {
		t.Errorf("uninvolved technician should see only the public reply, got %d", len(views))
	}
}

func TestPrivateReplyForbiddenForCreator(t *testing.T) {
	f := newTicketFixture()
	ticket := f.create(t, "cat-plain")

	_, err := f.svc.AddReply(context.Background(), f.employee, ticket.ID, "محرمانه", true, nil)
	expectStatus(t, err, http.StatusForbidden)
}

func TestListTicketsScopesByRole(t *testing.T) {
	f := newTicketFixture()
	mine := f.create(t, "cat-plain")
	other := &domain.Ticket{
		ID:          "ticket-x",
		ExternalKey: "TK-OTHER",
		Title:       "تیکت دیگر",
		Status:      domain.TicketStatusOpen,
		CreatedByID: "someone-else",
	}
	f.tickets.tickets[other.ID] = other

	list, err := f.svc.ListTickets(context.Background(), f.employee, TicketListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("employee should see only own tickets, got %d", len(list))
	}

	list, err = f.svc.ListTickets(context.Background(), f.manager, TicketListFilter{})
	if err != nil {
		t.Fatalf("list as manager: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("manager should see all tickets, got %d", len(list))
	}
}

func TestListPendingApprovalsForSupervisor(t *testing.T) {
	f := newTicketFixture()
	f.create(t, "cat-gated")

	pending, err := f.svc.ListPendingApprovals(context.Background(), f.supervisor)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("supervisor should see the pending ticket, got %d", len(pending))
	}

	outsider := &domain.User{
		ID:             "sup-2",
		Role:           domain.RoleEmployee,
		DepartmentRole: domain.DepartmentRoleSenior,
		IsActive:       true,
	}
	pending, err = f.svc.ListPendingApprovals(context.Background(), outsider)
	if err != nil {
		t.Fatalf("pending as outsider: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("outsider supervisor should see nothing, got %d", len(pending))
	}
}

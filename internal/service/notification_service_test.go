package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/repository"
)

type notificationFixture struct {
	svc           *NotificationService
	notifications *fakeNotificationRepo
	tickets       *fakeTicketRepo
	tasks         *fakeTaskRepo
	mailer        *fakeMailer

	creator  *domain.User
	assignee *domain.User
	manager  *domain.User
}

func newNotificationFixture() *notificationFixture {
	f := &notificationFixture{
		notifications: &fakeNotificationRepo{},
		tasks:         newFakeTaskRepo(),
		mailer:        &fakeMailer{},
		creator: &domain.User{
			ID:        "emp-1",
			FirstName: "سارا",
			LastName:  "محمدی",
			Email:     "sara@example.com",
			Role:      domain.RoleEmployee,
			IsActive:  true,
		},
		assignee: &domain.User{
			ID:       "tech-1",
			Email:    "reza@example.com",
			Role:     domain.RoleTechnician,
			IsActive: true,
		},
		manager: &domain.User{
			ID:       "mgr-1",
			Role:     domain.RoleITManager,
			IsActive: true,
		},
	}
	f.tickets = newFakeTicketRepo(&domain.Ticket{
		ID:           "ticket-1",
		ExternalKey:  "TCK-1001",
		Title:        "مشکل چاپگر",
		Status:       domain.TicketStatusInProgress,
		CreatedByID:  f.creator.ID,
		AssignedToID: strPtr(f.assignee.ID),
	})
	users := newFakeUserRepo(f.creator, f.assignee, f.manager)
	f.svc = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.notifications,
		TicketRepo:       f.tickets,
		TaskRepo:         f.tasks,
		UserRepo:         users,
		DepartmentRepo:   newFakeDepartmentRepo(),
		Mailer:           f.mailer,
		Logger:           zap.NewNop(),
	})
	return f
}

func ticketEvent(eventType events.EventType, actorID string, payload any) events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      eventType,
		ActorID:   actorID,
		TicketID:  strPtr("ticket-1"),
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func TestDeliverSkipsActorAndDuplicates(t *testing.T) {
	f := newNotificationFixture()

	err := f.svc.deliver(context.Background(),
		[]string{"emp-1", "emp-1", "tech-1", "", "tech-1"}, "tech-1",
		domain.Notification{Type: domain.NotificationTicketCreated, Title: "x"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	rows, err := f.notifications.ListByRecipient(context.Background(), "emp-1", repository.NotificationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("duplicate recipient must collapse to one row, got %d", len(rows))
	}
	if rows, _ := f.notifications.ListByRecipient(context.Background(), "tech-1", repository.NotificationFilter{}); len(rows) != 0 {
		t.Errorf("the actor must not be notified about their own action, got %d rows", len(rows))
	}
}

func TestUnreadCountRecomputedFromStore(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{
			Type:  domain.NotificationTicketReplied,
			Title: "x",
		}); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}

	count, err := f.svc.UnreadCount(ctx, "emp-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d", count)
	}

	rows, _ := f.notifications.ListByRecipient(ctx, "emp-1", repository.NotificationFilter{})
	if err := f.svc.MarkRead(ctx, "emp-1", rows[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count, _ = f.svc.UnreadCount(ctx, "emp-1"); count != 2 {
		t.Errorf("count after read = %d", count)
	}
}

func TestTicketReplyEmailMasksPrivateBody(t *testing.T) {
	f := newNotificationFixture()

	event := ticketEvent(events.EventTicketReplyAdded, "tech-1", events.ReplyAddedPayload{
		ReplyID:     "reply-1",
		AuthorID:    "tech-1",
		IsPrivate:   true,
		BodyPreview: "گزارش محرمانه امنیتی",
	})
	if err := f.svc.handleTicketReplyAdded(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("creator must get an email, sent=%d", len(f.mailer.sent))
	}
	mail := f.mailer.sent[0]
	if len(mail.To) != 1 || mail.To[0] != "sara@example.com" {
		t.Errorf("email went to %v", mail.To)
	}
	if strings.Contains(mail.Body, "گزارش محرمانه امنیتی") {
		t.Error("private reply body must never appear in email")
	}
	if !strings.Contains(mail.Body, "[پاسخ محرمانه]") {
		t.Error("private replies are announced with the masked marker")
	}
}

func TestTicketReplyEmailCarriesPublicPreview(t *testing.T) {
	f := newNotificationFixture()

	event := ticketEvent(events.EventTicketReplyAdded, "tech-1", events.ReplyAddedPayload{
		ReplyID:     "reply-1",
		AuthorID:    "tech-1",
		BodyPreview: "درایور چاپگر به‌روزرسانی شد",
	})
	if err := f.svc.handleTicketReplyAdded(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(f.mailer.sent) != 1 || !strings.Contains(f.mailer.sent[0].Body, "درایور چاپگر به‌روزرسانی شد") {
		t.Errorf("public preview missing from email: %+v", f.mailer.sent)
	}
}

func TestTicketCreatedEmailsCreator(t *testing.T) {
	f := newNotificationFixture()

	event := ticketEvent(events.EventTicketCreated, "emp-1", events.TicketCreatedPayload{Title: "مشکل چاپگر"})
	if err := f.svc.handleTicketCreated(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(f.mailer.sent) != 1 || f.mailer.sent[0].To[0] != "sara@example.com" {
		t.Fatalf("creator confirmation email missing: %+v", f.mailer.sent)
	}
	if !strings.Contains(f.mailer.sent[0].Body, "TCK-1001") {
		t.Error("confirmation must carry the tracking key")
	}
	// In-app alert goes to the manager, not to the creator who acted.
	if rows, _ := f.notifications.ListByRecipient(context.Background(), "mgr-1", repository.NotificationFilter{}); len(rows) != 1 {
		t.Errorf("manager rows = %d", len(rows))
	}
	if rows, _ := f.notifications.ListByRecipient(context.Background(), "emp-1", repository.NotificationFilter{}); len(rows) != 0 {
		t.Errorf("creator should get email only, rows = %d", len(rows))
	}
}

func TestTicketStatusChangeEmailsCreatorWithLabel(t *testing.T) {
	f := newNotificationFixture()

	event := ticketEvent(events.EventTicketStatusChanged, "tech-1", events.StatusChangedPayload{
		OldStatus: domain.TicketStatusInProgress,
		NewStatus: domain.TicketStatusResolved,
	})
	if err := f.svc.handleTicketStatusChanged(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(f.mailer.sent) != 1 || !strings.Contains(f.mailer.sent[0].Body, "حل شده") {
		t.Errorf("status email must carry the Persian label: %+v", f.mailer.sent)
	}
}

func TestInboxFiltersByType(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTicketReplied, Title: "a"})
	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTaskAssigned, Title: "b"})

	replied := domain.NotificationTicketReplied
	rows, err := f.svc.Inbox(ctx, "emp-1", repository.NotificationFilter{Type: &replied})
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != replied {
		t.Errorf("type filter broken: %+v", rows)
	}
}

func TestMarkAllReadByType(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTicketReplied, Title: "a"})
	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTaskAssigned, Title: "b"})

	replied := domain.NotificationTicketReplied
	count, err := f.svc.MarkAllRead(ctx, "emp-1", &replied)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 1 {
		t.Errorf("marked = %d", count)
	}
	if unread, _ := f.svc.UnreadCount(ctx, "emp-1"); unread != 1 {
		t.Errorf("the other category must stay unread, got %d", unread)
	}
}

func TestDeleteSingleAndByType(t *testing.T) {
	f := newNotificationFixture()
	ctx := context.Background()

	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTicketReplied, Title: "a"})
	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTicketReplied, Title: "b"})
	_ = f.svc.deliver(ctx, []string{"emp-1"}, "", domain.Notification{Type: domain.NotificationTaskAssigned, Title: "c"})

	rows, _ := f.svc.Inbox(ctx, "emp-1", repository.NotificationFilter{})
	if err := f.svc.Delete(ctx, "emp-1", rows[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(ctx, "emp-1", rows[0].ID); err == nil {
		t.Error("second delete must report missing row")
	}
	// Deleting someone else's notification must not be possible.
	if err := f.svc.Delete(ctx, "tech-1", rows[1].ID); err == nil {
		t.Error("cross-user delete must fail")
	}

	replied := domain.NotificationTicketReplied
	count, err := f.svc.DeleteAll(ctx, "emp-1", &replied)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d", count)
	}
	left, _ := f.svc.Inbox(ctx, "emp-1", repository.NotificationFilter{})
	if len(left) != 1 || left[0].Type != domain.NotificationTaskAssigned {
		t.Errorf("only the task notification should remain: %+v", left)
	}
}

func TestDeliverSurvivesPersistFailure(t *testing.T) {
	f := newNotificationFixture()
	f.notifications.createErr = context.DeadlineExceeded

	err := f.svc.deliver(context.Background(), []string{"emp-1"}, "",
		domain.Notification{Type: domain.NotificationTicketCreated, Title: "x"})
	if err != nil {
		t.Fatalf("persist failures are logged, not returned: %v", err)
	}
}

package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
)

type taskFixture struct {
	svc   *TaskService
	tasks *fakeTaskRepo

	manager  *domain.User
	assignee *domain.User
	creator  *domain.User
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		tasks:   newFakeTaskRepo(),
		manager: &domain.User{ID: "mgr-1", Role: domain.RoleITManager, IsActive: true},
		assignee: &domain.User{
			ID:       "emp-1",
			Role:     domain.RoleEmployee,
			IsActive: true,
		},
		creator: &domain.User{
			ID:       "creator-1",
			Role:     domain.RoleEmployee,
			IsActive: true,
		},
	}
	users := newFakeUserRepo(f.manager, f.assignee, f.creator)
	depts := newFakeDepartmentRepo(&domain.Department{
		ID:            "d1",
		IsActive:      true,
		TaskCreatorID: strPtr("creator-1"),
	})
	f.svc = NewTaskService(TaskDependencies{
		TaskRepo:       f.tasks,
		UserRepo:       users,
		DepartmentRepo: depts,
		ActivityRepo:   &fakeActivityRepo{},
	})
	return f
}

func (f *taskFixture) createTask(t *testing.T, actor *domain.User, deadline *time.Time) *domain.TicketTask {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), actor, TaskCreateInput{
		Title:        "نصب آنتی‌ویروس",
		AssignedToID: f.assignee.ID,
		Deadline:     deadline,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateTaskByManager(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(48 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	if task.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s", task.Status)
	}
	if task.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %s", task.Priority)
	}
	if task.Reminder8hSent || task.Reminder2hSent {
		t.Error("reminder flags must start unset")
	}
}

func TestCreateTaskByDepartmentTaskCreator(t *testing.T) {
	f := newTaskFixture()
	_, err := f.svc.CreateTask(context.Background(), f.creator, TaskCreateInput{
		Title:        "جابجایی تجهیزات",
		AssignedToID: f.assignee.ID,
		DepartmentID: strPtr("d1"),
	})
	if err != nil {
		t.Fatalf("designated task creator should be allowed: %v", err)
	}
}

func TestCreateTaskForbiddenForOthers(t *testing.T) {
	f := newTaskFixture()
	_, err := f.svc.CreateTask(context.Background(), f.assignee, TaskCreateInput{
		Title:        "کار",
		AssignedToID: f.assignee.ID,
	})
	expectStatus(t, err, http.StatusForbidden)
}

func TestCreateTaskRejectsPastDeadline(t *testing.T) {
	f := newTaskFixture()
	past := time.Now().Add(-time.Hour)
	_, err := f.svc.CreateTask(context.Background(), f.manager, TaskCreateInput{
		Title:        "کار",
		AssignedToID: f.assignee.ID,
		Deadline:     &past,
	})
	expectStatus(t, err, http.StatusBadRequest)
}

func TestListTasksScopesToAssignee(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	mine := f.createTask(t, f.manager, &deadline)

	other := &domain.TicketTask{
		ID:           "task-other",
		Title:        "کار دیگر",
		Status:       domain.TicketStatusOpen,
		CreatedByID:  "mgr-1",
		AssignedToID: "someone-else",
	}
	f.tasks.tasks[other.ID] = other

	list, err := f.svc.ListTasks(context.Background(), f.assignee, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("assignee should see only carried tasks, got %d", len(list))
	}

	list, err = f.svc.ListTasks(context.Background(), f.manager, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("list as manager: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("manager should see all tasks, got %d", len(list))
	}
}

func TestRequestExtensionMustPushDeadlineForward(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	_, err := f.svc.RequestExtension(context.Background(), f.assignee, task.ID, deadline.Add(-time.Hour), "دلیل")
	expectStatus(t, err, http.StatusBadRequest)

	req, err := f.svc.RequestExtension(context.Background(), f.assignee, task.ID, deadline.Add(24*time.Hour), "حجم کار زیاد است")
	if err != nil {
		t.Fatalf("request extension: %v", err)
	}
	if req.Status != domain.ExtensionPending {
		t.Errorf("status = %s", req.Status)
	}
}

func TestRequestExtensionOnlyByAssignee(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	_, err := f.svc.RequestExtension(context.Background(), f.creator, task.ID, deadline.Add(time.Hour), "")
	expectStatus(t, err, http.StatusForbidden)
}

func TestDecideExtensionApproveReplacesDeadlineAndRearmsFlags(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	// Pretend both reminders already fired for the old deadline.
	stored := f.tasks.tasks[task.ID]
	stored.Reminder8hSent = true
	stored.Reminder2hSent = true

	newDeadline := deadline.Add(48 * time.Hour)
	req, err := f.svc.RequestExtension(context.Background(), f.assignee, task.ID, newDeadline, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	decided, err := f.svc.DecideExtension(context.Background(), f.manager, req.ID, true)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != domain.ExtensionApproved {
		t.Errorf("status = %s", decided.Status)
	}
	if decided.DecidedByID == nil || *decided.DecidedByID != "mgr-1" {
		t.Error("decider must be recorded")
	}

	updated := f.tasks.tasks[task.ID]
	if updated.Deadline == nil || !updated.Deadline.Equal(newDeadline) {
		t.Error("deadline must be replaced by the approved one")
	}
	if updated.Reminder8hSent || updated.Reminder2hSent {
		t.Error("approval must re-arm both reminder flags")
	}
}

func TestDecideExtensionRejectKeepsDeadline(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	req, err := f.svc.RequestExtension(context.Background(), f.assignee, task.ID, deadline.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	decided, err := f.svc.DecideExtension(context.Background(), f.manager, req.ID, false)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != domain.ExtensionRejected {
		t.Errorf("status = %s", decided.Status)
	}
	updated := f.tasks.tasks[task.ID]
	if updated.Deadline == nil || !updated.Deadline.Equal(deadline) {
		t.Error("rejection must leave the deadline untouched")
	}
}

func TestDecideExtensionAlreadyDecided(t *testing.T) {
	f := newTaskFixture()
	deadline := time.Now().Add(24 * time.Hour)
	task := f.createTask(t, f.manager, &deadline)

	req, err := f.svc.RequestExtension(context.Background(), f.assignee, task.ID, deadline.Add(time.Hour), "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.svc.DecideExtension(context.Background(), f.manager, req.ID, false); err != nil {
		t.Fatalf("first decide: %v", err)
	}

	_, err = f.svc.DecideExtension(context.Background(), f.manager, req.ID, true)
	expectStatus(t, err, http.StatusConflict)
}

func TestTaskUpdateStatusInvalidTransition(t *testing.T) {
	f := newTaskFixture()
	task := f.createTask(t, f.manager, nil)
	stored := f.tasks.tasks[task.ID]
	stored.Status = domain.TicketStatusClosed

	_, err := f.svc.UpdateStatus(context.Background(), f.manager, task.ID, domain.TicketStatusInProgress, "")
	expectStatus(t, err, http.StatusConflict)
}

func TestTaskAddReplyByAssignee(t *testing.T) {
	f := newTaskFixture()
	task := f.createTask(t, f.manager, nil)

	reply, err := f.svc.AddReply(context.Background(), f.assignee, task.ID, "در حال انجام است", nil)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.TaskID != task.ID || reply.AuthorID != "emp-1" {
		t.Errorf("unexpected reply: %+v", reply)
	}

	outsider := &domain.User{ID: "other", Role: domain.RoleEmployee, IsActive: true}
	_, err = f.svc.AddReply(context.Background(), outsider, task.ID, "فضولی", nil)
	expectStatus(t, err, http.StatusForbidden)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateWithSupervision(ctx context.Context, user *domain.User, supervisedIDs []string) error {
	user.SupervisedDepartmentIDs = supervisedIDs
	return r.Update(ctx, user)
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByNationalID(_ context.Context, nationalID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.NationalID == nationalID {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByAdminUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.AdminUsername != nil && *u.AdminUsername == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fakeTaskRepo is an in-memory TaskRepository.
type fakeTaskRepo struct {
	tasks      map[string]*domain.TicketTask
	replies    map[string][]domain.TaskReply
	extensions map[string]*domain.DeadlineExtensionRequest
	markCalls  []string
	markErr    error
}

func newFakeTaskRepo(tasks ...*domain.TicketTask) *fakeTaskRepo {
	repo := &fakeTaskRepo{
		tasks:      make(map[string]*domain.TicketTask),
		replies:    make(map[string][]domain.TaskReply),
		extensions: make(map[string]*domain.DeadlineExtensionRequest),
	}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.TicketTask) error {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%d", len(r.tasks)+1)
	}
	task.CreatedAt = time.Now()
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.TicketTask) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.TicketTask, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) ListWithFilter(_ context.Context, filter repository.TaskFilter) ([]domain.TicketTask, error) {
	var out []domain.TicketTask
	for _, task := range r.tasks {
		if filter.CreatedByID != nil && task.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.AssignedToID != nil && task.AssignedToID != *filter.AssignedToID {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) ListReminderCandidates(_ context.Context) ([]domain.TicketTask, error) {
	var out []domain.TicketTask
	for _, task := range r.tasks {
		if task.Deadline == nil || (task.Reminder8hSent && task.Reminder2hSent) {
			continue
		}
		if task.Status == domain.TicketStatusResolved || task.Status == domain.TicketStatusClosed {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) MarkReminderSent(_ context.Context, taskID, window string) error {
	if r.markErr != nil {
		return r.markErr
	}
	task, ok := r.tasks[taskID]
	if !ok {
		return pgx.ErrNoRows
	}
	switch window {
	case "8h":
		task.Reminder8hSent = true
	case "2h":
		task.Reminder2hSent = true
	}
	r.markCalls = append(r.markCalls, taskID+"/"+window)
	return nil
}

func (r *fakeTaskRepo) CreateReply(_ context.Context, reply *domain.TaskReply) error {
	if reply.ID == "" {
		reply.ID = fmt.Sprintf("task-reply-%d", len(r.replies[reply.TaskID])+1)
	}
	reply.CreatedAt = time.Now()
	r.replies[reply.TaskID] = append(r.replies[reply.TaskID], *reply)
	return nil
}

func (r *fakeTaskRepo) ListReplies(_ context.Context, taskID string) ([]domain.TaskReply, error) {
	return r.replies[taskID], nil
}

func (r *fakeTaskRepo) CreateExtension(_ context.Context, req *domain.DeadlineExtensionRequest) error {
	if req.ID == "" {
		req.ID = fmt.Sprintf("ext-%d", len(r.extensions)+1)
	}
	req.CreatedAt = time.Now()
	r.extensions[req.ID] = req
	return nil
}

func (r *fakeTaskRepo) GetExtension(_ context.Context, id string) (*domain.DeadlineExtensionRequest, error) {
	req, ok := r.extensions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (r *fakeTaskRepo) ListExtensions(_ context.Context, taskID string) ([]domain.DeadlineExtensionRequest, error) {
	var out []domain.DeadlineExtensionRequest
	for _, req := range r.extensions {
		if req.TaskID == taskID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ApplyExtension(_ context.Context, req *domain.DeadlineExtensionRequest) error {
	task, ok := r.tasks[req.TaskID]
	if !ok {
		return pgx.ErrNoRows
	}
	deadline := req.RequestedDeadline
	task.Deadline = &deadline
	task.Reminder8hSent = false
	task.Reminder2hSent = false
	r.extensions[req.ID] = req
	return nil
}

func (r *fakeTaskRepo) UpdateExtension(_ context.Context, req *domain.DeadlineExtensionRequest) error {
	if _, ok := r.extensions[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.extensions[req.ID] = req
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	repo := &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
	for _, ticket := range tickets {
		repo.tickets[ticket.ID] = ticket
	}
	return repo
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("ticket-%d", len(r.tickets)+1)
	}
	ticket.CreatedAt = time.Now()
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.ExternalKey == key {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.AssignedToID != nil && (ticket.AssignedToID == nil || *ticket.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if len(filter.ApprovalStatuses) > 0 && !containsApproval(filter.ApprovalStatuses, ticket.AccessApprovalStatus) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.CreatedByID == userID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func containsApproval(set []domain.AccessApprovalStatus, s domain.AccessApprovalStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

// fakeReplyRepo is an in-memory ReplyRepository.
type fakeReplyRepo struct {
	replies []domain.Reply
}

func (r *fakeReplyRepo) Create(_ context.Context, reply *domain.Reply) error {
	if reply.ID == "" {
		reply.ID = fmt.Sprintf("reply-%d", len(r.replies)+1)
	}
	reply.CreatedAt = time.Now()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *fakeReplyRepo) GetByID(_ context.Context, id string) (*domain.Reply, error) {
	for i := range r.replies {
		if r.replies[i].ID == id {
			return &r.replies[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeReplyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Reply, error) {
	var out []domain.Reply
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			out = append(out, reply)
		}
	}
	return out, nil
}

// fakeCategoryRepo is an in-memory CategoryRepository.
type fakeCategoryRepo struct {
	cats map[string]*domain.TicketCategory
}

func newFakeCategoryRepo(cats ...*domain.TicketCategory) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{cats: make(map[string]*domain.TicketCategory)}
	for _, cat := range cats {
		repo.cats[cat.ID] = cat
	}
	return repo
}

func (r *fakeCategoryRepo) Create(_ context.Context, cat *domain.TicketCategory) error {
	if cat.ID == "" {
		cat.ID = fmt.Sprintf("cat-%d", len(r.cats)+1)
	}
	r.cats[cat.ID] = cat
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, cat *domain.TicketCategory) error {
	if _, ok := r.cats[cat.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.cats[cat.ID] = cat
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.TicketCategory, error) {
	cat, ok := r.cats[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cat, nil
}

func (r *fakeCategoryRepo) ListByDepartment(_ context.Context, departmentID string, activeOnly bool) ([]domain.TicketCategory, error) {
	var out []domain.TicketCategory
	for _, cat := range r.cats {
		if cat.DepartmentID != departmentID {
			continue
		}
		if activeOnly && !cat.IsActive {
			continue
		}
		out = append(out, *cat)
	}
	return out, nil
}

// fakeDepartmentRepo is an in-memory DepartmentRepository.
type fakeDepartmentRepo struct {
	depts map[string]*domain.Department
}

func newFakeDepartmentRepo(depts ...*domain.Department) *fakeDepartmentRepo {
	repo := &fakeDepartmentRepo{depts: make(map[string]*domain.Department)}
	for _, dept := range depts {
		repo.depts[dept.ID] = dept
	}
	return repo
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	if dept.ID == "" {
		dept.ID = fmt.Sprintf("dept-%d", len(r.depts)+1)
	}
	r.depts[dept.ID] = dept
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	if _, ok := r.depts[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.depts[dept.ID] = dept
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dept, nil
}

func (r *fakeDepartmentRepo) List(_ context.Context, branchID *string, activeOnly bool) ([]domain.Department, error) {
	var out []domain.Department
	for _, dept := range r.depts {
		if activeOnly && !dept.IsActive {
			continue
		}
		if branchID != nil && (dept.BranchID == nil || *dept.BranchID != *branchID) {
			continue
		}
		out = append(out, *dept)
	}
	return out, nil
}

func (r *fakeDepartmentRepo) ListTicketReceivers(_ context.Context) ([]domain.Department, error) {
	var out []domain.Department
	for _, dept := range r.depts {
		if dept.IsActive && dept.CanReceiveTickets {
			out = append(out, *dept)
		}
	}
	return out, nil
}

// fakeActivityRepo records activity log entries.
type fakeActivityRepo struct {
	entries []domain.ActivityLog
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("log-%d", len(r.entries)+1)
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	for _, entry := range r.entries {
		if entry.TicketID != nil && *entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) ListByTask(_ context.Context, taskID string) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	for _, entry := range r.entries {
		if entry.TaskID != nil && *entry.TaskID == taskID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// fakeMailer records sent mail and can be told to fail.
type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, htmlBody string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *fakeMailer) TestConnection(_ context.Context) error {
	return m.sendErr
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	notifications []*domain.Notification
	createErr     error
	nextID        int
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	n.ID = fmt.Sprintf("notif-%d", r.nextID)
	n.CreatedAt = time.Now()
	stored := *n
	r.notifications = append(r.notifications, &stored)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, filter repository.NotificationFilter) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID string) error {
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string, typ *domain.NotificationType) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		if typ != nil && n.Type != *typ {
			continue
		}
		n.IsRead = true
		count++
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id, recipientID string) error {
	for i, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) DeleteAll(_ context.Context, recipientID string, typ *domain.NotificationType) (int, error) {
	var kept []*domain.Notification
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && (typ == nil || n.Type == *typ) {
			count++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return count, nil
}

// fakeCalendarRepo is an in-memory CalendarRepository keyed by Gregorian
// day. It records every lookup key.
type fakeCalendarRepo struct {
	days    map[string]*domain.CalendarDay
	lookups []string
}

func newFakeCalendarRepo(days ...*domain.CalendarDay) *fakeCalendarRepo {
	repo := &fakeCalendarRepo{days: make(map[string]*domain.CalendarDay)}
	for _, day := range days {
		repo.days[day.GregorianDay.Format("2006-01-02")] = day
	}
	return repo
}

func (r *fakeCalendarRepo) GetByGregorian(_ context.Context, day time.Time) (*domain.CalendarDay, error) {
	key := day.Format("2006-01-02")
	r.lookups = append(r.lookups, key)
	if cached, ok := r.days[key]; ok {
		return cached, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCalendarRepo) Upsert(_ context.Context, day *domain.CalendarDay) error {
	r.days[day.GregorianDay.Format("2006-01-02")] = day
	return nil
}

// fakeBranchRepo is an in-memory BranchRepository.
type fakeBranchRepo struct {
	branches map[string]*domain.Branch
}

func newFakeBranchRepo(branches ...*domain.Branch) *fakeBranchRepo {
	repo := &fakeBranchRepo{branches: make(map[string]*domain.Branch)}
	for _, branch := range branches {
		repo.branches[branch.ID] = branch
	}
	return repo
}

func (r *fakeBranchRepo) Create(_ context.Context, branch *domain.Branch) error {
	if branch.ID == "" {
		branch.ID = fmt.Sprintf("branch-%d", len(r.branches)+1)
	}
	r.branches[branch.ID] = branch
	return nil
}

func (r *fakeBranchRepo) Update(_ context.Context, branch *domain.Branch) error {
	if _, ok := r.branches[branch.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.branches[branch.ID] = branch
	return nil
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id string) (*domain.Branch, error) {
	branch, ok := r.branches[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return branch, nil
}

func (r *fakeBranchRepo) GetByCode(_ context.Context, code string) (*domain.Branch, error) {
	for _, branch := range r.branches {
		if branch.BranchCode == code {
			return branch, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeBranchRepo) List(_ context.Context, activeOnly bool) ([]domain.Branch, error) {
	var out []domain.Branch
	for _, branch := range r.branches {
		if activeOnly && !branch.IsActive {
			continue
		}
		out = append(out, *branch)
	}
	return out, nil
}

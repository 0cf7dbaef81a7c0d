package domain

// statusTransitions is the lifecycle graph shared by tickets and tasks.
// Closed is terminal; resolved may be reopened into in_progress.
var statusTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:           {TicketStatusInProgress, TicketStatusWaitingForUser, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress:     {TicketStatusWaitingForUser, TicketStatusResolved, TicketStatusClosed},
	TicketStatusWaitingForUser: {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:       {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:         {},
}

// approvalTransitions is the access-approval graph. Once decided, a request
// never returns to pending.
var approvalTransitions = map[AccessApprovalStatus][]AccessApprovalStatus{
	AccessApprovalNotRequired: {AccessApprovalPending},
	AccessApprovalPending:     {AccessApprovalApproved, AccessApprovalRejected},
	AccessApprovalApproved:    {},
	AccessApprovalRejected:    {},
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s TicketStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// CanTransitionStatus reports whether from may move to to. Staying put is
// never a transition.
func CanTransitionStatus(from, to TicketStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from TicketStatus) []TicketStatus {
	return statusTransitions[from]
}

// CanTransitionApproval reports whether the approval state may move from
// from to to.
func CanTransitionApproval(from, to AccessApprovalStatus) bool {
	for _, next := range approvalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transitions exist.
func IsTerminalStatus(s TicketStatus) bool {
	return len(statusTransitions[s]) == 0
}

// StatusAfterAssignment returns the status a ticket should carry after being
// assigned to a technician: a fresh ticket moves straight to in_progress,
// anything else keeps its current status.
func StatusAfterAssignment(current TicketStatus) TicketStatus {
	if current == TicketStatusOpen {
		return TicketStatusInProgress
	}
	return current
}

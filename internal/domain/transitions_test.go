package domain

import "testing"

func TestCanTransitionStatus(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusClosed, true},
		{TicketStatusInProgress, TicketStatusWaitingForUser, true},
		{TicketStatusInProgress, TicketStatusOpen, false},
		{TicketStatusWaitingForUser, TicketStatusInProgress, true},
		{TicketStatusResolved, TicketStatusInProgress, true},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusWaitingForUser, false},
		{TicketStatusClosed, TicketStatusOpen, false},
		{TicketStatusClosed, TicketStatusInProgress, false},
		{TicketStatusOpen, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		if got := CanTransitionStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionApproval(t *testing.T) {
	cases := []struct {
		from, to AccessApprovalStatus
		want     bool
	}{
		{AccessApprovalNotRequired, AccessApprovalPending, true},
		{AccessApprovalPending, AccessApprovalApproved, true},
		{AccessApprovalPending, AccessApprovalRejected, true},
		{AccessApprovalApproved, AccessApprovalPending, false},
		{AccessApprovalRejected, AccessApprovalPending, false},
		{AccessApprovalApproved, AccessApprovalRejected, false},
		{AccessApprovalNotRequired, AccessApprovalApproved, false},
	}
	for _, tc := range cases {
		if got := CanTransitionApproval(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionApproval(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(TicketStatusClosed) {
		t.Error("closed should be terminal")
	}
	for _, s := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingForUser, TicketStatusResolved} {
		if IsTerminalStatus(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestStatusAfterAssignment(t *testing.T) {
	if got := StatusAfterAssignment(TicketStatusOpen); got != TicketStatusInProgress {
		t.Errorf("open after assignment = %s, want in_progress", got)
	}
	for _, s := range []TicketStatus{TicketStatusInProgress, TicketStatusWaitingForUser, TicketStatusResolved, TicketStatusClosed} {
		if got := StatusAfterAssignment(s); got != s {
			t.Errorf("StatusAfterAssignment(%s) = %s, want unchanged", s, got)
		}
	}
}

func TestValidStatusAndPriority(t *testing.T) {
	if !ValidStatus(TicketStatusOpen) || ValidStatus("bogus") {
		t.Error("ValidStatus mismatch")
	}
	if !ValidPriority(TicketPriorityUrgent) || ValidPriority("bogus") {
		t.Error("ValidPriority mismatch")
	}
}

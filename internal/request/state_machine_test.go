package request

import "testing"

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusPending, StatusApproved) {
		t.Fatalf("expected pending -> approved allowed")
	}
	if !CanTransition(StatusPending, StatusRejected) {
		t.Fatalf("expected pending -> rejected allowed")
	}
	if CanTransition(StatusApproved, StatusRejected) {
		t.Fatalf("expected approved -> rejected not allowed")
	}
	if CanTransition(StatusRejected, StatusPending) {
		t.Fatalf("expected rejected -> pending not allowed")
	}

	r := &Request{Status: StatusPending}
	if err := ApplyTransition(r, StatusApproved); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if r.Status != StatusApproved {
		t.Fatalf("expected status approved, got %s", r.Status)
	}

	if err := ApplyTransition(r, StatusRejected); err == nil {
		t.Fatalf("expected transition out of terminal state to fail")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatusPending) {
		t.Fatalf("pending must not be terminal")
	}
	if !IsTerminal(StatusApproved) || !IsTerminal(StatusRejected) {
		t.Fatalf("approved/rejected must be terminal")
	}
}

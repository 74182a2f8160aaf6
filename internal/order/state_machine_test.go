package order

import (
	"errors"
	"testing"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusCancelled, false},
		{StatusFailed, StatusPaid, false},
		{StatusCancelled, StatusPending, false},
		{StatusPaid, StatusPaid, true},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionStampsTimes(t *testing.T) {
	now := time.Now()

	o := &Order{Status: StatusPending}
	if err := ApplyTransition(o, StatusPaid, now); err != nil {
		t.Fatalf("ApplyTransition to paid failed: %v", err)
	}
	if o.Status != StatusPaid || o.PaidAt == nil {
		t.Fatalf("expected paid with PaidAt set, got %s %v", o.Status, o.PaidAt)
	}

	o = &Order{Status: StatusPending}
	if err := ApplyTransition(o, StatusCancelled, now); err != nil {
		t.Fatalf("ApplyTransition to cancelled failed: %v", err)
	}
	if o.CancelledAt == nil {
		t.Fatal("expected CancelledAt set")
	}
}

func TestApplyTransitionSameStateIsNoop(t *testing.T) {
	now := time.Now()
	o := &Order{Status: StatusPaid, PaidAt: &now}
	before := *o.PaidAt

	if err := ApplyTransition(o, StatusPaid, now.Add(time.Hour)); err != nil {
		t.Fatalf("same-state transition should be a no-op, got %v", err)
	}
	if !o.PaidAt.Equal(before) {
		t.Fatal("same-state transition must not restamp PaidAt")
	}
}

func TestApplyTransitionInvalid(t *testing.T) {
	o := &Order{Status: StatusPaid}
	err := ApplyTransition(o, StatusCancelled, time.Now())
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if o.Status != StatusPaid {
		t.Fatalf("invalid transition must not mutate status, got %s", o.Status)
	}
}

func TestTerminal(t *testing.T) {
	if (&Order{Status: StatusPending}).Terminal() {
		t.Fatal("pending is not terminal")
	}
	for _, s := range []Status{StatusPaid, StatusFailed, StatusCancelled} {
		if !(&Order{Status: s}).Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

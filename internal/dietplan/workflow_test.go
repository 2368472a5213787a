package dietplan

import (
	"errors"
	"testing"

	"github.com/ward-diet/api/internal/enum"
)

func TestRequestTransition(t *testing.T) {
	tests := []struct {
		current, next string
		wantErr       error
	}{
		{enum.RequestStatusPending, enum.RequestStatusOrderPlaced, nil},
		{enum.RequestStatusPending, enum.RequestStatusRejected, nil},
		{enum.RequestStatusRejected, enum.RequestStatusOrderPlaced, nil},
		{enum.RequestStatusOrderPlaced, enum.RequestStatusRejected, nil},
		{enum.RequestStatusOrderPlaced, enum.RequestStatusPending, ErrInvalidTransition},
		{"Unknown", enum.RequestStatusRejected, ErrUnknownStatus},
	}
	for _, tt := range tests {
		err := RequestTransition(tt.current, tt.next)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s -> %s: expected %v, got %v", tt.current, tt.next, tt.wantErr, err)
		}
	}
}

func TestApprovalTransition_TerminalStates(t *testing.T) {
	if err := ApprovalTransition(enum.ApprovalStatusPending, enum.ApprovalStatusApproved); err != nil {
		t.Fatalf("pending -> approved should be allowed: %v", err)
	}
	if err := ApprovalTransition(enum.ApprovalStatusPending, enum.ApprovalStatusRejected); err != nil {
		t.Fatalf("pending -> rejected should be allowed: %v", err)
	}
	for _, from := range []string{enum.ApprovalStatusApproved, enum.ApprovalStatusRejected} {
		for _, to := range []string{enum.ApprovalStatusApproved, enum.ApprovalStatusRejected, enum.ApprovalStatusPending} {
			if err := ApprovalTransition(from, to); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestCanPauseOrRestart(t *testing.T) {
	if err := CanPauseOrRestart(enum.ApprovalStatusApproved); err != nil {
		t.Fatalf("approved order should pause: %v", err)
	}
	for _, s := range []string{enum.ApprovalStatusPending, enum.ApprovalStatusRejected, ""} {
		if err := CanPauseOrRestart(s); !errors.Is(err, ErrNotApproved) {
			t.Errorf("%q: expected ErrNotApproved, got %v", s, err)
		}
	}
}

func TestCanteenTransition_ForwardOnly(t *testing.T) {
	if !CanMarkPreparing(enum.CanteenStatusPending) {
		t.Error("pending should allow preparing")
	}
	if CanMarkPreparing(enum.CanteenStatusPreparing) || CanMarkPreparing(enum.CanteenStatusDelivered) {
		t.Error("preparing must not be offered twice or after delivery")
	}
	if !CanMarkDelivered(enum.CanteenStatusPreparing) {
		t.Error("preparing should allow delivered")
	}
	if CanMarkDelivered(enum.CanteenStatusPending) {
		t.Error("pending must not jump to delivered")
	}
	if CanMarkDelivered(enum.CanteenStatusDelivered) {
		t.Error("delivered is terminal")
	}
	if err := CanteenTransition(enum.CanteenStatusDelivered, enum.CanteenStatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

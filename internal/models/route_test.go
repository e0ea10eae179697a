package models

import "testing"

func TestRouteIsComplete(t *testing.T) {
	tests := []struct {
		total     int
		completed int
		want      bool
	}{
		{4, 4, true},
		{4, 3, false},
		{4, 0, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		r := Route{TotalBins: tt.total, CompletedBins: tt.completed}
		if got := r.IsComplete(); got != tt.want {
			t.Errorf("IsComplete with %d/%d = %v, want %v", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestRouteGetCompletionPercentage(t *testing.T) {
	r := Route{TotalBins: 4, CompletedBins: 1}
	if got := r.GetCompletionPercentage(); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}

	empty := Route{}
	if got := empty.GetCompletionPercentage(); got != 0 {
		t.Errorf("expected 0 for route without bins, got %f", got)
	}
}

func TestWasteRequestEligible(t *testing.T) {
	tests := []struct {
		status        string
		paymentStatus string
		want          bool
	}{
		{RequestStatusApproved, PaymentStatusPaid, true},
		{RequestStatusApproved, PaymentStatusPending, false},
		{RequestStatusPending, PaymentStatusPaid, false},
		{RequestStatusCompleted, PaymentStatusPaid, false},
		{RequestStatusCancelled, PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		r := WasteRequest{Status: tt.status, PaymentStatus: tt.paymentStatus}
		if got := r.Eligible(); got != tt.want {
			t.Errorf("Eligible with status=%s payment=%s = %v, want %v", tt.status, tt.paymentStatus, got, tt.want)
		}
	}
}

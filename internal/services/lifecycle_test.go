package services

import (
	"testing"

	"ecobin-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    models.RouteStatus
		to      models.RouteStatus
		allowed bool
	}{
		{models.RouteStatusAssigned, models.RouteStatusInProgress, true},
		{models.RouteStatusAssigned, models.RouteStatusCancelled, true},
		{models.RouteStatusAssigned, models.RouteStatusCompleted, false},
		{models.RouteStatusInProgress, models.RouteStatusCompleted, true},
		{models.RouteStatusInProgress, models.RouteStatusCancelled, true},
		{models.RouteStatusInProgress, models.RouteStatusAssigned, false},
		{models.RouteStatusCompleted, models.RouteStatusInProgress, false},
		{models.RouteStatusCompleted, models.RouteStatusCancelled, false},
		{models.RouteStatusCancelled, models.RouteStatusAssigned, false},
		{models.RouteStatusCancelled, models.RouteStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	all := []models.RouteStatus{
		models.RouteStatusAssigned,
		models.RouteStatusInProgress,
		models.RouteStatusCompleted,
		models.RouteStatusCancelled,
	}

	for _, terminal := range []models.RouteStatus{models.RouteStatusCompleted, models.RouteStatusCancelled} {
		for _, to := range all {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s should not transition to %s", terminal, to)
			}
		}
	}
}

func TestCancelRouteRevertsPendingRequests(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1 FOR UPDATE`).
		WithArgs("r1").
		WillReturnRows(routeRows("assigned", 3, 0))
	// Pending stops' requests go back to the pool before the route flips
	mock.ExpectExec(`SET status = 'pending', assigned_worker_id = NULL`).
		WithArgs(sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM active_bin_assignments`).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`SET status = 'cancelled'`).
		WithArgs("truck breakdown", sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(routeRows("cancelled", 3, 0))

	route, err := CancelRoute(db, "r1", "truck breakdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Status != models.RouteStatusCancelled {
		t.Errorf("expected cancelled, got %s", route.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelRouteRequiresReason(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := CancelRoute(db, "r1", "")
	if err != ErrReasonRequired {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if !models.RouteStatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !models.RouteStatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
	if models.RouteStatusAssigned.IsTerminal() {
		t.Error("assigned should not be terminal")
	}
	if models.RouteStatusInProgress.IsTerminal() {
		t.Error("in_progress should not be terminal")
	}
}

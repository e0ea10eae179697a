package services

import (
	"testing"

	"ecobin-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRouteCode(t *testing.T) {
	tests := []struct {
		date string
		seq  int
		want string
	}{
		{"2026-08-29", 1, "RT-20260829-001"},
		{"2026-08-29", 12, "RT-20260829-012"},
		{"2026-12-01", 103, "RT-20261201-103"},
	}

	for _, tt := range tests {
		if got := RouteCode(tt.date, tt.seq); got != tt.want {
			t.Errorf("RouteCode(%q, %d) = %q, want %q", tt.date, tt.seq, got, tt.want)
		}
	}
}

func TestEstimateRouteDuration(t *testing.T) {
	if got := EstimateRouteDuration(4); got != 4*models.EstimatedMinutesPerStop {
		t.Errorf("expected %d minutes for 4 stops, got %d", 4*models.EstimatedMinutesPerStop, got)
	}
	if got := EstimateRouteDuration(0); got != 0 {
		t.Errorf("expected 0 minutes for 0 stops, got %d", got)
	}
}

func TestStopMinutes(t *testing.T) {
	if got := StopMinutes(20); got != 20 {
		t.Errorf("expected override 20, got %d", got)
	}
	if got := StopMinutes(0); got != models.EstimatedMinutesPerStop {
		t.Errorf("expected default %d, got %d", models.EstimatedMinutesPerStop, got)
	}
	if got := StopMinutes(-5); got != models.EstimatedMinutesPerStop {
		t.Errorf("expected default for negative override, got %d", got)
	}
}

func TestCreateRouteBuildsSequencedRoute(t *testing.T) {
	db, mock := newMockDB(t)

	req := models.CreateRouteRequest{
		CollectorID:      "w1",
		AssignedDate:     "2026-08-29",
		Area:             "Dehiwala",
		BinIDs:           []string{"b1"},
		EstimatedMinutes: map[string]int{"b1": 20},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow("w1", "Kasun Silva", "wc1@ecobin.lk", "wc1"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM collection_routes`).
		WithArgs("w1", "2026-08-29").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// Sequence numbers come from the locked counter row, never a COUNT
	mock.ExpectQuery(`INSERT INTO route_date_counters`).
		WithArgs("2026-08-29").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO collection_routes`).
		WithArgs(sqlmock.AnyArg(), "RT-20260829-003", "w1", "2026-08-29", "Dehiwala",
			1, 20, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM bins WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "bin_id", "area", "status"}).
			AddRow("b1", "BIN-0001", "Dehiwala", "Full"))
	mock.ExpectQuery(`WHERE bin_id = \$1`).
		WithArgs("b1", "2026-08-29").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "customer_name", "customer_email", "collection_type", "cost"}).
			AddRow("q1", "WR-20260829-001", "Nimal Perera", "nimal@example.com", "household", 1500.0))
	mock.ExpectExec(`INSERT INTO active_bin_assignments`).
		WithArgs("b1", "2026-08-29", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO route_bin_entries`).
		WithArgs(sqlmock.AnyArg(), "b1", "q1", 1, "high", 20, "Nimal Perera",
			"nimal@example.com", "household", 1500.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET assigned_worker_id = \$1`).
		WithArgs("w1", "2026-08-29", sqlmock.AnyArg(), "q1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "collector_id", "status", "total_bins", "completed_bins", "estimated_duration_mins"}).
			AddRow("r-new", "RT-20260829-003", "w1", "assigned", 1, 0, 20))
	mock.ExpectQuery(`INNER JOIN bins b`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "bin_id", "request_id", "sequence_order", "priority", "estimated_minutes", "bin_code", "area"}).
			AddRow(1, "r-new", "b1", "q1", 1, "high", 20, "BIN-0001", "Dehiwala"))

	route, err := CreateRoute(db, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.RouteID != "RT-20260829-003" {
		t.Errorf("expected RT-20260829-003, got %s", route.RouteID)
	}
	if len(route.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(route.Entries))
	}
	if route.Entries[0].EstimatedMinutes != 20 {
		t.Errorf("expected overridden estimate 20, got %d", route.Entries[0].EstimatedMinutes)
	}
	if route.Entries[0].Priority != models.PriorityHigh {
		t.Errorf("expected high priority for a full bin, got %s", route.Entries[0].Priority)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEntryPriority(t *testing.T) {
	tests := []struct {
		binStatus string
		want      string
	}{
		{models.BinStatusOverflow, models.PriorityUrgent},
		{models.BinStatusFull, models.PriorityHigh},
		{models.BinStatusHalfFull, models.PriorityNormal},
		{models.BinStatusEmpty, models.PriorityNormal},
		{"", models.PriorityNormal},
	}

	for _, tt := range tests {
		if got := EntryPriority(tt.binStatus); got != tt.want {
			t.Errorf("EntryPriority(%q) = %q, want %q", tt.binStatus, got, tt.want)
		}
	}
}

package services

import (
	"errors"
	"testing"

	"ecobin-backend/internal/middleware"
	"ecobin-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func routeRows(status string, totalBins, completedBins int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "route_id", "collector_id", "status", "total_bins", "completed_bins"}).
		AddRow("r1", "RT-20260829-001", "w1", status, totalBins, completedBins)
}

func entryRows(collectionStatus string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "route_id", "bin_id", "request_id", "collection_status"}).
		AddRow(1, "r1", "b1", "q1", collectionStatus)
}

func requestRows(status, paymentStatus string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "payment_status"}).
		AddRow("q1", status, paymentStatus)
}

var collector = middleware.UserClaims{UserID: "w1", Email: "w1@ecobin.lk", Role: "wc1"}

func TestScanCollectionSecondAttemptRejected(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1 FOR UPDATE`).
		WithArgs("r1").
		WillReturnRows(routeRows("in_progress", 3, 1))
	mock.ExpectQuery(`SELECT \* FROM route_bin_entries`).
		WithArgs("r1", "b1").
		WillReturnRows(entryRows("collected"))
	mock.ExpectQuery(`SELECT \* FROM waste_requests WHERE id = \$1 FOR UPDATE`).
		WithArgs("q1").
		WillReturnRows(requestRows("completed", "paid"))
	mock.ExpectRollback()

	_, err := RecordScanCollection(db, collector, models.ScanCollectionRequest{RouteID: "r1", BinID: "b1"})
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestScanCollectionConditionalUpdateLoses(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1 FOR UPDATE`).
		WithArgs("r1").
		WillReturnRows(routeRows("in_progress", 3, 1))
	mock.ExpectQuery(`SELECT \* FROM route_bin_entries`).
		WithArgs("r1", "b1").
		WillReturnRows(entryRows("pending"))
	mock.ExpectQuery(`SELECT \* FROM waste_requests WHERE id = \$1 FOR UPDATE`).
		WithArgs("q1").
		WillReturnRows(requestRows("approved", "paid"))
	// A concurrent event already flipped the entry, so the conditional
	// update touches zero rows
	mock.ExpectExec(`SET collection_status = 'collected'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := RecordScanCollection(db, collector, models.ScanCollectionRequest{RouteID: "r1", BinID: "b1"})
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFailedStopBlocksAutoCompletion(t *testing.T) {
	db, mock := newMockDB(t)

	// 3-bin route: one collected, one failed, one pending. Collecting the
	// last pending stop promotes the route but must not complete it.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM collection_routes WHERE id = \$1 FOR UPDATE`).
		WithArgs("r1").
		WillReturnRows(routeRows("assigned", 3, 1))
	mock.ExpectExec(`SET status = 'in_progress'`).
		WithArgs(sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM route_bin_entries`).
		WithArgs("r1", "b1").
		WillReturnRows(entryRows("pending"))
	mock.ExpectQuery(`SELECT \* FROM waste_requests WHERE id = \$1 FOR UPDATE`).
		WithArgs("q1").
		WillReturnRows(requestRows("approved", "paid"))
	mock.ExpectExec(`SET collection_status = 'collected'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE waste_requests SET status = 'completed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO collection_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM route_bin_entries`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`SET completed_bins = \$1`).
		WithArgs(2, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := RecordScanCollection(db, collector, models.ScanCollectionRequest{RouteID: "r1", BinID: "b1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Progress.RouteStatus != models.RouteStatusInProgress {
		t.Errorf("expected route to stay in_progress, got %s", result.Progress.RouteStatus)
	}
	if result.Progress.CompletedBins != 2 || result.Progress.TotalBins != 3 {
		t.Errorf("expected progress 2/3, got %d/%d", result.Progress.CompletedBins, result.Progress.TotalBins)
	}

	// ExpectationsWereMet also proves no completion statement ran
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

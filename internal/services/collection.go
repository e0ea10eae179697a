package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ecobin-backend/internal/database"
	"ecobin-backend/internal/middleware"
	"ecobin-backend/internal/models"
	"ecobin-backend/pkg/geo"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// proximityMaxKm is the advisory radius for the worker-to-bin distance check.
// A failed check is recorded on the event, never a rejection.
const proximityMaxKm = 0.5

// CollectionResult is returned by every processor entry point.
type CollectionResult struct {
	Event     models.CollectionEvent    `json:"event"`
	Progress  models.CollectionProgress `json:"progress"`
	Proximity *geo.ProximityResult      `json:"proximity,omitempty"`
}

// RecordScanCollection closes out one stop via bin scan.
func RecordScanCollection(db *sqlx.DB, caller middleware.UserClaims, req models.ScanCollectionRequest) (*CollectionResult, error) {
	return recordCollection(db, caller, req.RouteID, req.BinID, models.MethodScan, nil, req.Geolocation)
}

// RecordManualCollection closes out one stop without a scan, with the
// worker's stated reason on the event.
func RecordManualCollection(db *sqlx.DB, caller middleware.UserClaims, req models.ManualCollectionRequest) (*CollectionResult, error) {
	reason := req.Reason
	return recordCollection(db, caller, req.RouteID, req.BinID, models.MethodManual, &reason, req.Geolocation)
}

// recordCollection is the shared scan/manual path. The entry flips
// pending -> collected behind a conditional UPDATE, so a second call for the
// same stop loses with ErrAlreadyProcessed and changes nothing.
func recordCollection(db *sqlx.DB, caller middleware.UserClaims, routeID, binID, method string, reason *string, loc *models.Geolocation) (*CollectionResult, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(tx, routeID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && caller.UserID != route.CollectorID {
		return nil, ErrNotRouteCollector
	}

	now := time.Now().Unix()
	if err := promoteRouteIfAssigned(tx, route, now); err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusInProgress {
		return nil, fmt.Errorf("%w: route is %s", ErrInvalidTransition, route.Status)
	}

	entry, err := database.GetEntryForUpdate(tx, routeID, binID)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	// Eligibility is re-checked against the live request at event time; the
	// snapshot on the entry is never trusted for this
	var request models.WasteRequest
	err = tx.Get(&request, `SELECT * FROM waste_requests WHERE id = $1 FOR UPDATE`, entry.RequestID)
	if err == sql.ErrNoRows {
		return nil, ErrRequestIneligible
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	if !request.Eligible() {
		if entry.CollectionStatus != models.CollectionStatusPending {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("%w: status=%s payment=%s", ErrRequestIneligible,
			request.Status, request.PaymentStatus)
	}

	result, err := tx.Exec(`
		UPDATE route_bin_entries
		SET collection_status = 'collected', completed_at = $1
		WHERE id = $2 AND collection_status = 'pending'
	`, now, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry collected: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrAlreadyProcessed
	}

	_, err = tx.Exec(`
		UPDATE waste_requests SET status = 'completed', updated_at = $1 WHERE id = $2
	`, now, entry.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete request: %w", err)
	}

	proximity := checkProximity(tx, binID, loc)

	event := newEvent(route.ID, entry, caller.UserID, method, models.OutcomeCollected, now)
	event.Reason = reason
	applyGeolocation(&event, loc, proximity)
	if err := insertEvent(tx, &event); err != nil {
		return nil, err
	}

	completed, err := database.RecomputeCompletedBins(tx, routeID, now)
	if err != nil {
		return nil, err
	}

	status := route.Status
	if completed == route.TotalBins && status == models.RouteStatusInProgress {
		if err := finishRoute(tx, route, now); err != nil {
			return nil, err
		}
		status = models.RouteStatusCompleted
		log.Printf("🏁 Route auto-completed: %s (last bin collected)", route.RouteID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit collection: %w", err)
	}

	log.Printf("✅ Bin collected (%s): route %s, bin %s, %d/%d", method, route.RouteID, binID, completed, route.TotalBins)

	return &CollectionResult{
		Event: event,
		Progress: models.CollectionProgress{
			CompletedBins:        completed,
			TotalBins:            route.TotalBins,
			CompletionPercentage: completionPct(completed, route.TotalBins),
			RouteStatus:          status,
		},
		Proximity: proximity,
	}, nil
}

// ReportIssue marks one stop as failed and records the issue payload on an
// event. A failed stop is terminal: it never counts toward completed_bins and
// permanently blocks auto-completion of the route.
func ReportIssue(db *sqlx.DB, caller middleware.UserClaims, req models.ReportIssueRequest) (*CollectionResult, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(tx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && caller.UserID != route.CollectorID {
		return nil, ErrNotRouteCollector
	}

	now := time.Now().Unix()
	if err := promoteRouteIfAssigned(tx, route, now); err != nil {
		return nil, err
	}
	if route.Status != models.RouteStatusInProgress {
		return nil, fmt.Errorf("%w: route is %s", ErrInvalidTransition, route.Status)
	}

	entry, err := database.GetEntryForUpdate(tx, req.RouteID, req.BinID)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	result, err := tx.Exec(`
		UPDATE route_bin_entries
		SET collection_status = 'failed', completed_at = $1
		WHERE id = $2 AND collection_status = 'pending'
	`, now, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry failed: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrAlreadyProcessed
	}

	proximity := checkProximity(tx, req.BinID, req.Geolocation)

	event := newEvent(route.ID, entry, caller.UserID, models.MethodManual, models.OutcomeFailed, now)
	event.IssueType = &req.IssueType
	event.IssueDescription = &req.Description
	event.RequiresAdmin = req.RequiresAdmin
	applyGeolocation(&event, req.Geolocation, proximity)
	if err := insertEvent(tx, &event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit issue report: %w", err)
	}

	log.Printf("🚨 Issue reported: route %s, bin %s, type %s (requires_admin=%v)",
		route.RouteID, req.BinID, req.IssueType, req.RequiresAdmin)

	return &CollectionResult{
		Event: event,
		Progress: models.CollectionProgress{
			CompletedBins:        route.CompletedBins,
			TotalBins:            route.TotalBins,
			CompletionPercentage: completionPct(route.CompletedBins, route.TotalBins),
			RouteStatus:          route.Status,
		},
		Proximity: proximity,
	}, nil
}

// promoteRouteIfAssigned moves an assigned route to in_progress on its first
// collection event, stamping the start time.
func promoteRouteIfAssigned(tx *sqlx.Tx, route *models.Route, now int64) error {
	if route.Status != models.RouteStatusAssigned {
		return nil
	}

	_, err := tx.Exec(`
		UPDATE collection_routes
		SET status = 'in_progress', start_time = $1, updated_at = $1
		WHERE id = $2
	`, now, route.ID)
	if err != nil {
		return fmt.Errorf("failed to promote route: %w", err)
	}

	route.Status = models.RouteStatusInProgress
	route.StartTime = &now
	log.Printf("▶️  Route auto-promoted to in_progress: %s", route.RouteID)
	return nil
}

// checkProximity runs the advisory worker-to-bin distance check. A missing
// geolocation or a lookup failure degrades to "no result".
func checkProximity(tx *sqlx.Tx, binID string, loc *models.Geolocation) *geo.ProximityResult {
	if loc == nil {
		return nil
	}

	var bin struct {
		Latitude  float64 `db:"latitude"`
		Longitude float64 `db:"longitude"`
	}
	if err := tx.Get(&bin, `SELECT latitude, longitude FROM bins WHERE id = $1`, binID); err != nil {
		log.Printf("⚠️  Proximity check skipped, bin lookup failed: %v", err)
		return nil
	}

	res := geo.ValidateProximity(loc.Latitude, loc.Longitude, bin.Latitude, bin.Longitude, proximityMaxKm)
	if !res.IsValid {
		log.Printf("⚠️  Proximity check failed (advisory): worker at %s is %.2f km from bin %s",
			geo.FormatCoordinates(loc.Latitude, loc.Longitude), res.DistanceKm, binID)
	}
	return &res
}

func newEvent(routeID string, entry *models.RouteBinEntry, workerID, method, outcome string, now int64) models.CollectionEvent {
	return models.CollectionEvent{
		ID:         uuid.New().String(),
		RouteID:    routeID,
		EntryID:    entry.ID,
		BinID:      entry.BinID,
		RequestID:  entry.RequestID,
		WorkerID:   workerID,
		Method:     method,
		Outcome:    outcome,
		RecordedAt: now,
	}
}

func applyGeolocation(event *models.CollectionEvent, loc *models.Geolocation, proximity *geo.ProximityResult) {
	if loc == nil {
		return
	}
	event.Latitude = &loc.Latitude
	event.Longitude = &loc.Longitude
	if loc.AccuracyM > 0 {
		event.AccuracyM = &loc.AccuracyM
	}
	if loc.Timestamp > 0 {
		event.LocationTime = &loc.Timestamp
	}
	if proximity != nil {
		event.ProximityKm = &proximity.DistanceKm
		event.ProximityOK = &proximity.IsValid
	}
}

func insertEvent(tx *sqlx.Tx, event *models.CollectionEvent) error {
	_, err := tx.Exec(`
		INSERT INTO collection_events (id, route_id, entry_id, bin_id, request_id,
		                               worker_id, method, outcome, reason, issue_type,
		                               issue_description, requires_admin, latitude,
		                               longitude, accuracy_m, location_time,
		                               proximity_km, proximity_ok, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, event.ID, event.RouteID, event.EntryID, event.BinID, event.RequestID,
		event.WorkerID, event.Method, event.Outcome, event.Reason, event.IssueType,
		event.IssueDescription, event.RequiresAdmin, event.Latitude, event.Longitude,
		event.AccuracyM, event.LocationTime, event.ProximityKm, event.ProximityOK,
		event.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert collection event: %w", err)
	}
	return nil
}

func completionPct(completed, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(completed) / float64(total)
}

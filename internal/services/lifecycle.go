package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ecobin-backend/internal/database"
	"ecobin-backend/internal/middleware"
	"ecobin-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// CanTransition is the route status state machine. Terminal states accept
// nothing; the admin reopen is a forced transition handled separately.
func CanTransition(from, to models.RouteStatus) bool {
	switch from {
	case models.RouteStatusAssigned:
		return to == models.RouteStatusInProgress || to == models.RouteStatusCancelled
	case models.RouteStatusInProgress:
		return to == models.RouteStatusCompleted || to == models.RouteStatusCancelled
	default:
		return false
	}
}

// StartRoute moves a route from assigned to in_progress and stamps the start
// time. Only the assigned collector or an admin may start a route.
func StartRoute(db *sqlx.DB, routeID string, caller middleware.UserClaims) (*models.Route, error) {
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
	if !CanTransition(route.Status, models.RouteStatusInProgress) {
		return nil, fmt.Errorf("%w: %s -> in_progress", ErrInvalidTransition, route.Status)
	}

	now := time.Now().Unix()
	_, err = tx.Exec(`
		UPDATE collection_routes
		SET status = 'in_progress', start_time = $1, updated_at = $1
		WHERE id = $2
	`, now, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to start route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route start: %w", err)
	}

	log.Printf("▶️  Route started: %s by %s", route.RouteID, caller.UserID)
	return database.GetRouteByID(db, routeID)
}

// CompleteRoute closes out an in_progress route. Allowed only once every stop
// is collected; stamps the end time and the actual duration.
func CompleteRoute(db *sqlx.DB, routeID string) (*models.Route, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(tx, routeID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(route.Status, models.RouteStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, route.Status)
	}
	if route.CompletedBins != route.TotalBins {
		return nil, fmt.Errorf("%w: %d of %d bins collected", ErrInvalidTransition,
			route.CompletedBins, route.TotalBins)
	}

	now := time.Now().Unix()
	if err := finishRoute(tx, route, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route completion: %w", err)
	}

	log.Printf("🏁 Route completed: %s (%d bins)", route.RouteID, route.TotalBins)
	return database.GetRouteByID(db, routeID)
}

// CancelRoute cancels an assigned or in_progress route. Requires a non-empty
// reason. Every still-pending stop has its originating request reverted to
// pending and its bin slot released, inside the same transaction — a
// half-cancelled route is never left behind.
func CancelRoute(db *sqlx.DB, routeID, reason string) (*models.Route, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(tx, routeID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(route.Status, models.RouteStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, route.Status)
	}

	now := time.Now().Unix()
	if err := revertPendingEntries(tx, routeID, now); err != nil {
		return nil, err
	}
	if err := database.ReleaseBinAssignments(tx, routeID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE collection_routes
		SET status = 'cancelled', cancellation_reason = $1, end_time = $2, updated_at = $2
		WHERE id = $3
	`, reason, now, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route cancellation: %w", err)
	}

	log.Printf("🚫 Route cancelled: %s (%s)", route.RouteID, reason)
	return database.GetRouteByID(db, routeID)
}

// ReopenRoute is the admin force back to assigned from any state. Pending
// stops have their requests reverted per the cancel rule, so the route starts
// over from a clean eligibility slate.
func ReopenRoute(db *sqlx.DB, routeID string) (*models.Route, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	route, err := lockRoute(tx, routeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if err := revertPendingEntries(tx, routeID, now); err != nil {
		return nil, err
	}
	if err := database.ReleaseBinAssignments(tx, routeID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE collection_routes
		SET status = 'assigned', start_time = NULL, end_time = NULL,
		    actual_duration_mins = NULL, cancellation_reason = NULL, updated_at = $1
		WHERE id = $2
	`, now, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route reopen: %w", err)
	}

	log.Printf("♻️  Route reopened: %s", route.RouteID)
	return database.GetRouteByID(db, routeID)
}

// UpdateRouteStatus dispatches an admin status change to the matching
// transition. Reopening (target assigned) is always the forced variant.
func UpdateRouteStatus(db *sqlx.DB, routeID string, req models.UpdateRouteStatusRequest, caller middleware.UserClaims) (*models.Route, error) {
	switch req.Status {
	case models.RouteStatusInProgress:
		return StartRoute(db, routeID, caller)
	case models.RouteStatusCompleted:
		return CompleteRoute(db, routeID)
	case models.RouteStatusCancelled:
		reason := req.Reason
		if reason == "" {
			reason = req.Notes
		}
		return CancelRoute(db, routeID, reason)
	case models.RouteStatusAssigned:
		return ReopenRoute(db, routeID)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
	}
}

// lockRoute fetches a route FOR UPDATE so concurrent transitions serialize.
func lockRoute(tx *sqlx.Tx, routeID string) (*models.Route, error) {
	var route models.Route
	err := tx.Get(&route, `SELECT * FROM collection_routes WHERE id = $1 FOR UPDATE`, routeID)
	if err == sql.ErrNoRows {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}
	return &route, nil
}

// revertPendingEntries puts the originating requests of all still-pending
// stops back to pending and unassigned so they can be re-routed.
func revertPendingEntries(tx *sqlx.Tx, routeID string, now int64) error {
	_, err := tx.Exec(`
		UPDATE waste_requests
		SET status = 'pending', assigned_worker_id = NULL, scheduled_date = NULL, updated_at = $1
		WHERE id IN (
			SELECT request_id FROM route_bin_entries
			WHERE route_id = $2 AND collection_status = 'pending'
		)
	`, now, routeID)
	if err != nil {
		return fmt.Errorf("failed to revert pending requests: %w", err)
	}
	return nil
}

// finishRoute stamps completion fields and frees the bin slots.
func finishRoute(tx *sqlx.Tx, route *models.Route, now int64) error {
	var actual *int
	if route.StartTime != nil {
		mins := int((now - *route.StartTime) / 60)
		actual = &mins
	}

	_, err := tx.Exec(`
		UPDATE collection_routes
		SET status = 'completed', end_time = $1, actual_duration_mins = $2, updated_at = $1
		WHERE id = $3
	`, now, actual, route.ID)
	if err != nil {
		return fmt.Errorf("failed to complete route: %w", err)
	}

	return database.ReleaseBinAssignments(tx, route.ID)
}

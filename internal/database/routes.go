package database

import (
	"database/sql"
	"fmt"

	"ecobin-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetRouteByID fetches a route by its internal id.
func GetRouteByID(db *sqlx.DB, routeID string) (*models.Route, error) {
	var route models.Route
	err := db.Get(&route, `SELECT * FROM collection_routes WHERE id = $1`, routeID)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// GetRouteEntries retrieves all stops for a route ordered by sequence, joined
// with live bin details for the worker app map view.
func GetRouteEntries(db *sqlx.DB, routeID string) ([]models.RouteBinEntryDetails, error) {
	var entries []models.RouteBinEntryDetails
	query := `SELECT e.id, e.route_id, e.bin_id, e.request_id, e.sequence_order,
	                 e.priority, e.estimated_minutes, e.customer_name, e.customer_email,
	                 e.collection_type, e.cost, e.customer_notes, e.collection_status,
	                 e.completed_at, e.created_at,
	                 b.bin_id AS bin_code, b.address, b.area, b.latitude, b.longitude, b.fill_level
	          FROM route_bin_entries e
	          INNER JOIN bins b ON b.id = e.bin_id
	          WHERE e.route_id = $1
	          ORDER BY e.sequence_order ASC`

	err := db.Select(&entries, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route entries: %w", err)
	}

	return entries, nil
}

// GetRouteWithEntries fetches a route and its ordered stops in one call.
func GetRouteWithEntries(db *sqlx.DB, routeID string) (*models.RouteWithEntries, error) {
	route, err := GetRouteByID(db, routeID)
	if err != nil {
		return nil, err
	}

	entries, err := GetRouteEntries(db, routeID)
	if err != nil {
		return nil, err
	}

	return &models.RouteWithEntries{Route: *route, Entries: entries}, nil
}

// RecomputeCompletedBins re-derives completed_bins from the entry rows inside
// the caller's transaction and returns the fresh count. The counter is never
// incremented blindly; it is always recounted from collection_status.
func RecomputeCompletedBins(tx *sqlx.Tx, routeID string, now int64) (int, error) {
	var completed int
	err := tx.Get(&completed, `
		SELECT COUNT(*) FROM route_bin_entries
		WHERE route_id = $1 AND collection_status = 'collected'
	`, routeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count collected entries: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE collection_routes SET completed_bins = $1, updated_at = $2 WHERE id = $3
	`, completed, now, routeID)
	if err != nil {
		return 0, fmt.Errorf("failed to update completed_bins: %w", err)
	}

	return completed, nil
}

// ReleaseBinAssignments frees the (bin, date) slots held by a route so its
// bins can be routed again. Called on cancel, complete, and reopen.
func ReleaseBinAssignments(tx *sqlx.Tx, routeID string) error {
	_, err := tx.Exec(`DELETE FROM active_bin_assignments WHERE route_id = $1`, routeID)
	if err != nil {
		return fmt.Errorf("failed to release bin assignments: %w", err)
	}
	return nil
}

// GetEntryForUpdate locks one stop row inside the caller's transaction.
func GetEntryForUpdate(tx *sqlx.Tx, routeID, binID string) (*models.RouteBinEntry, error) {
	var entry models.RouteBinEntry
	err := tx.Get(&entry, `
		SELECT * FROM route_bin_entries
		WHERE route_id = $1 AND bin_id = $2
		FOR UPDATE
	`, routeID, binID)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route entry: %w", err)
	}
	return &entry, nil
}

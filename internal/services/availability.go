package services

import (
	"fmt"
	"sort"

	"ecobin-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// workerDailyRouteCap is the number of non-terminal routes a collector may
// hold for one date before being reported as unavailable.
const workerDailyRouteCap = 2

// ListAvailableAreas groups bins with at least one eligible waste request
// (approved, paid, unassigned, preferred date on or before the target date)
// by geographic area. Empty output is a valid answer, not an error.
func ListAvailableAreas(db *sqlx.DB, date string) ([]models.AreaGroup, error) {
	var rows []models.AreaBin
	query := `
		SELECT b.id, b.bin_id, b.address, b.area, b.latitude, b.longitude,
		       b.fill_level, b.status, COUNT(r.id) AS pending_requests
		FROM bins b
		INNER JOIN waste_requests r ON r.bin_id = b.id
		WHERE r.status = 'approved'
		  AND r.payment_status = 'paid'
		  AND r.assigned_worker_id IS NULL
		  AND r.preferred_date <= $1
		  AND NOT EXISTS (
		      SELECT 1 FROM active_bin_assignments a
		      WHERE a.bin_id = b.id AND a.assigned_date = $1
		  )
		GROUP BY b.id, b.bin_id, b.address, b.area, b.latitude, b.longitude,
		         b.fill_level, b.status
		ORDER BY b.area, b.bin_id
	`
	if err := db.Select(&rows, query, date); err != nil {
		return nil, fmt.Errorf("failed to list eligible bins: %w", err)
	}

	return GroupBinsByArea(rows), nil
}

// GroupBinsByArea folds the eligible-bin rows into per-area groups with
// request totals and the fixed per-stop duration estimate.
func GroupBinsByArea(rows []models.AreaBin) []models.AreaGroup {
	byArea := make(map[string]*models.AreaGroup)
	for _, row := range rows {
		group, ok := byArea[row.Area]
		if !ok {
			group = &models.AreaGroup{Area: row.Area}
			byArea[row.Area] = group
		}
		group.Bins = append(group.Bins, row)
		group.TotalRequests += row.PendingRequests
	}

	groups := make([]models.AreaGroup, 0, len(byArea))
	for _, group := range byArea {
		group.EstimatedDuration = EstimateRouteDuration(len(group.Bins))
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Area < groups[j].Area
	})

	return groups
}

// ListAvailableWorkers returns collectors whose non-terminal route count for
// the date is below capacity, with their current load.
func ListAvailableWorkers(db *sqlx.DB, date string) ([]models.AvailableWorker, error) {
	var workers []models.AvailableWorker
	query := `
		SELECT u.id, u.name, u.email, u.role,
		       (SELECT COUNT(*) FROM collection_routes cr
		        WHERE cr.collector_id = u.id
		          AND cr.assigned_date = $1
		          AND cr.status IN ('assigned', 'in_progress')) AS current_load
		FROM users u
		WHERE u.role IN ('wc1', 'wc2', 'wc3')
		ORDER BY u.name
	`
	if err := db.Select(&workers, query, date); err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	return FilterAvailableWorkers(workers), nil
}

// FilterAvailableWorkers keeps only workers below the daily route cap.
func FilterAvailableWorkers(workers []models.AvailableWorker) []models.AvailableWorker {
	available := make([]models.AvailableWorker, 0, len(workers))
	for _, w := range workers {
		if w.CurrentLoad < workerDailyRouteCap {
			available = append(available, w)
		}
	}
	return available
}

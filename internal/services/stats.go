package services

import (
	"fmt"

	"ecobin-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// RouteStatRow is one route's contribution to the stats rollup.
type RouteStatRow struct {
	Status        string `db:"status"`
	TotalBins     int    `db:"total_bins"`
	CompletedBins int    `db:"completed_bins"`
	Area          string `db:"area"`
	WorkerRole    string `db:"worker_role"`
}

// GetRouteStats aggregates route counts, bin progress, areas, and worker
// category distribution, optionally restricted to one date.
func GetRouteStats(db *sqlx.DB, date string) (*models.RouteStats, error) {
	query := `
		SELECT cr.status, cr.total_bins, cr.completed_bins, cr.area, u.role AS worker_role
		FROM collection_routes cr
		INNER JOIN users u ON u.id = cr.collector_id
	`
	args := []interface{}{}
	if date != "" {
		query += ` WHERE cr.assigned_date = $1`
		args = append(args, date)
	}

	var rows []RouteStatRow
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch route stats: %w", err)
	}

	stats := RollupRouteStats(rows)
	return &stats, nil
}

// RollupRouteStats folds route rows into the aggregate stats payload.
func RollupRouteStats(rows []RouteStatRow) models.RouteStats {
	stats := models.RouteStats{
		ByStatus:    make(map[string]int),
		WorkerTypes: make(map[string]int),
		Areas:       []string{},
	}

	seenAreas := make(map[string]bool)
	for _, row := range rows {
		stats.TotalRoutes++
		stats.ByStatus[row.Status]++
		stats.TotalBins += row.TotalBins
		stats.CompletedBins += row.CompletedBins
		stats.WorkerTypes[row.WorkerRole]++
		if !seenAreas[row.Area] {
			seenAreas[row.Area] = true
			stats.Areas = append(stats.Areas, row.Area)
		}
	}

	if stats.TotalBins > 0 {
		stats.CompletionRate = float64(stats.CompletedBins) / float64(stats.TotalBins)
	}

	return stats
}

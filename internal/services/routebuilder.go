package services

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"ecobin-backend/internal/database"
	"ecobin-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// RouteCode builds the human route code for the n-th route of a date,
// e.g. RT-20260829-003.
func RouteCode(date string, seq int) string {
	return fmt.Sprintf("RT-%s-%03d", strings.ReplaceAll(date, "-", ""), seq)
}

// EstimateRouteDuration returns the duration estimate for a route of n stops,
// using the fixed per-stop constant.
func EstimateRouteDuration(n int) int {
	return n * models.EstimatedMinutesPerStop
}

// StopMinutes resolves one stop's duration estimate: the admin's override
// when given, the fixed default otherwise.
func StopMinutes(override int) int {
	if override > 0 {
		return override
	}
	return models.EstimatedMinutesPerStop
}

// EntryPriority derives a stop's priority from the live fill state of its bin
// at route-creation time.
func EntryPriority(binStatus string) string {
	switch binStatus {
	case models.BinStatusOverflow:
		return models.PriorityUrgent
	case models.BinStatusFull:
		return models.PriorityHigh
	default:
		return models.PriorityNormal
	}
}

// CreateRoute builds a route for one collector, one date, and one area from
// an explicit bin selection. Stops are sequenced in caller-supplied order and
// each carries an immutable snapshot of its oldest eligible request. The
// whole construction is one transaction: the route either exists completely
// or not at all.
func CreateRoute(db *sqlx.DB, req models.CreateRouteRequest) (*models.RouteWithEntries, error) {
	if len(req.BinIDs) == 0 {
		return nil, ErrNoBinsSelected
	}

	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Collector must exist, be a collector, and have capacity left for the date
	var worker models.User
	err = tx.Get(&worker, `SELECT * FROM users WHERE id = $1`, req.CollectorID)
	if err == sql.ErrNoRows {
		return nil, ErrWorkerUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collector: %w", err)
	}
	if !models.IsWorkerRole(worker.Role) {
		return nil, ErrWorkerUnavailable
	}

	var load int
	err = tx.Get(&load, `
		SELECT COUNT(*) FROM collection_routes
		WHERE collector_id = $1 AND assigned_date = $2 AND status IN ('assigned', 'in_progress')
	`, req.CollectorID, req.AssignedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check collector load: %w", err)
	}
	if load >= workerDailyRouteCap {
		return nil, ErrWorkerUnavailable
	}

	routeID := uuid.New().String()
	now := time.Now().Unix()

	// The counter upsert holds the row lock until commit, so concurrent
	// creations for the same date get distinct sequence numbers
	var dateSeq int
	err = tx.Get(&dateSeq, `
		INSERT INTO route_date_counters (assigned_date, seq)
		VALUES ($1, 1)
		ON CONFLICT (assigned_date) DO UPDATE SET seq = route_date_counters.seq + 1
		RETURNING seq
	`, req.AssignedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to number route: %w", err)
	}

	totalBins := len(req.BinIDs)
	totalEstimate := 0
	for _, binID := range req.BinIDs {
		totalEstimate += StopMinutes(req.EstimatedMinutes[binID])
	}

	routeQuery := `
		INSERT INTO collection_routes (id, route_id, collector_id, assigned_date, area,
		                               status, total_bins, completed_bins,
		                               estimated_duration_mins, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'assigned', $6, 0, $7, $8, $9, $10)
	`
	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	_, err = tx.Exec(routeQuery, routeID, RouteCode(req.AssignedDate, dateSeq),
		req.CollectorID, req.AssignedDate, req.Area, totalBins,
		totalEstimate, notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	for i, binID := range req.BinIDs {
		var bin models.Bin
		err = tx.Get(&bin, `SELECT * FROM bins WHERE id = $1`, binID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: bin %s does not exist", ErrBinNotEligible, binID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bin %s: %w", binID, err)
		}
		if bin.Area != req.Area {
			return nil, fmt.Errorf("%w: bin %s is in %s, not %s", ErrBinNotEligible, bin.BinID, bin.Area, req.Area)
		}

		// Oldest eligible request wins; its customer info becomes the
		// entry's frozen snapshot
		var request models.WasteRequest
		err = tx.Get(&request, `
			SELECT * FROM waste_requests
			WHERE bin_id = $1
			  AND status = 'approved'
			  AND payment_status = 'paid'
			  AND assigned_worker_id IS NULL
			  AND preferred_date <= $2
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE
		`, binID, req.AssignedDate)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: bin %s", ErrBinNotEligible, bin.BinID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch request for bin %s: %w", bin.BinID, err)
		}

		// The (bin, date) primary key makes a concurrent creation for the
		// same bin lose here instead of racing the SELECT above
		_, err = tx.Exec(`
			INSERT INTO active_bin_assignments (bin_id, assigned_date, route_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, binID, req.AssignedDate, routeID, now)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
				return nil, fmt.Errorf("%w: bin %s", ErrBinAlreadyRouted, bin.BinID)
			}
			return nil, fmt.Errorf("failed to reserve bin %s: %w", bin.BinID, err)
		}

		_, err = tx.Exec(`
			INSERT INTO route_bin_entries (route_id, bin_id, request_id, sequence_order,
			                               priority, estimated_minutes, customer_name,
			                               customer_email, collection_type, cost,
			                               customer_notes, collection_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', $12)
		`, routeID, binID, request.ID, i+1, EntryPriority(bin.Status),
			StopMinutes(req.EstimatedMinutes[binID]), request.CustomerName, request.CustomerEmail,
			request.CollectionType, request.Cost, request.Notes, now)
		if err != nil {
			return nil, fmt.Errorf("failed to add bin %s to route: %w", bin.BinID, err)
		}

		_, err = tx.Exec(`
			UPDATE waste_requests
			SET assigned_worker_id = $1, scheduled_date = $2, updated_at = $3
			WHERE id = $4
		`, req.CollectorID, req.AssignedDate, now, request.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to assign request %s: %w", request.RequestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit route: %w", err)
	}

	log.Printf("✅ Route created: %s for collector %s (%d bins in %s on %s)",
		routeID, req.CollectorID, totalBins, req.Area, req.AssignedDate)

	return database.GetRouteWithEntries(db, routeID)
}

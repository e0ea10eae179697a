package models

// RouteStatus represents the current status of a collection route
type RouteStatus string

const (
	RouteStatusAssigned   RouteStatus = "assigned"    // Created, worker not started
	RouteStatusInProgress RouteStatus = "in_progress" // Worker on the road
	RouteStatusCompleted  RouteStatus = "completed"   // Every stop collected
	RouteStatusCancelled  RouteStatus = "cancelled"   // Cancelled by admin, with reason
)

// IsTerminal reports whether no further transitions are allowed from s
// (except an admin reopen).
func (s RouteStatus) IsTerminal() bool {
	return s == RouteStatusCompleted || s == RouteStatusCancelled
}

// Per-stop collection statuses
const (
	CollectionStatusPending   = "pending"
	CollectionStatusCollected = "collected"
	CollectionStatusFailed    = "failed"
)

// Entry priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// EstimatedMinutesPerStop is the fixed per-bin duration estimate used by the
// availability aggregator and the route builder.
const EstimatedMinutesPerStop = 15

// Route is an ordered worklist of bin stops assigned to one worker for one date.
type Route struct {
	ID                 string      `json:"id" db:"id"`
	RouteID            string      `json:"route_id" db:"route_id"` // human code, e.g. RT-20260815-001
	CollectorID        string      `json:"collector_id" db:"collector_id"`
	AssignedDate       string      `json:"assigned_date" db:"assigned_date"` // YYYY-MM-DD
	Area               string      `json:"area" db:"area"`
	Status             RouteStatus `json:"status" db:"status"`
	TotalBins          int         `json:"total_bins" db:"total_bins"`
	CompletedBins      int         `json:"completed_bins" db:"completed_bins"`
	EstimatedDuration  int         `json:"estimated_duration_mins" db:"estimated_duration_mins"`
	ActualDuration     *int        `json:"actual_duration_mins,omitempty" db:"actual_duration_mins"`
	Notes              *string     `json:"notes,omitempty" db:"notes"`
	CancellationReason *string     `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	StartTime          *int64      `json:"start_time" db:"start_time"`
	EndTime            *int64      `json:"end_time" db:"end_time"`
	CreatedAt          int64       `json:"created_at" db:"created_at"`
	UpdatedAt          int64       `json:"updated_at" db:"updated_at"`
}

// IsComplete returns true if all stops are collected
func (r *Route) IsComplete() bool {
	return r.TotalBins > 0 && r.CompletedBins >= r.TotalBins
}

// GetCompletionPercentage returns completion as 0.0-1.0
func (r *Route) GetCompletionPercentage() float64 {
	if r.TotalBins == 0 {
		return 0.0
	}
	return float64(r.CompletedBins) / float64(r.TotalBins)
}

// CustomerInfo is the requester/payment snapshot captured at route-creation
// time. It is embedded on the entry row and never re-read from the live
// request afterwards, so route history stays stable.
type CustomerInfo struct {
	Name           string  `json:"name" db:"customer_name"`
	Email          string  `json:"email" db:"customer_email"`
	CollectionType string  `json:"collection_type" db:"collection_type"`
	Cost           float64 `json:"cost" db:"cost"`
	Notes          *string `json:"notes,omitempty" db:"customer_notes"`
}

// RouteBinEntry is one stop inside a route. It has no identity outside its
// parent route.
type RouteBinEntry struct {
	ID               int     `json:"id" db:"id"`
	RouteID          string  `json:"route_id" db:"route_id"`
	BinID            string  `json:"bin_id" db:"bin_id"`
	RequestID        string  `json:"request_id" db:"request_id"`
	SequenceOrder    int     `json:"sequence_order" db:"sequence_order"`
	Priority         string  `json:"priority" db:"priority"`
	EstimatedMinutes int     `json:"estimated_minutes" db:"estimated_minutes"`
	CustomerInfo     `json:"customer_info"`
	CollectionStatus string `json:"collection_status" db:"collection_status"`
	CompletedAt      *int64 `json:"completed_at" db:"completed_at"`
	CreatedAt        int64  `json:"created_at" db:"created_at"`
}

// RouteBinEntryDetails extends RouteBinEntry with bin details for API responses
type RouteBinEntryDetails struct {
	RouteBinEntry
	BinCode   string  `json:"bin_code" db:"bin_code"`
	Address   string  `json:"address" db:"address"`
	Area      string  `json:"area" db:"area"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	FillLevel int     `json:"fill_level" db:"fill_level"`
}

// RouteWithEntries is a route with its ordered stops
type RouteWithEntries struct {
	Route
	Entries []RouteBinEntryDetails `json:"entries"`
}

// CreateRouteRequest is the request body for POST /api/admin/routes.
// EstimatedMinutes overrides the per-stop duration for specific bins, keyed
// by bin id; unlisted bins use the default.
type CreateRouteRequest struct {
	CollectorID      string         `json:"collector_id"`
	AssignedDate     string         `json:"assigned_date"`
	Area             string         `json:"area"`
	BinIDs           []string       `json:"bin_ids"`
	EstimatedMinutes map[string]int `json:"estimated_minutes,omitempty"`
	Notes            string         `json:"notes"`
}

// UpdateRouteStatusRequest is the request body for PATCH /api/admin/routes/:id/status
type UpdateRouteStatusRequest struct {
	Status RouteStatus `json:"status"`
	Notes  string      `json:"notes"`
	Reason string      `json:"reason"`
}

// CancelRouteRequest is the request body for POST /api/admin/routes/:id/cancel
type CancelRouteRequest struct {
	Reason string `json:"reason"`
}

// RouteStats is the aggregate returned by GET /api/admin/routes/stats
type RouteStats struct {
	TotalRoutes    int            `json:"total_routes"`
	ByStatus       map[string]int `json:"by_status"`
	TotalBins      int            `json:"total_bins"`
	CompletedBins  int            `json:"completed_bins"`
	CompletionRate float64        `json:"completion_rate"`
	Areas          []string       `json:"areas"`
	WorkerTypes    map[string]int `json:"worker_types"`
}

// CollectionProgress is returned to the worker app after every event.
type CollectionProgress struct {
	CompletedBins        int         `json:"completed_bins"`
	TotalBins            int         `json:"total_bins"`
	CompletionPercentage float64     `json:"completion_percentage"`
	RouteStatus          RouteStatus `json:"route_status"`
}

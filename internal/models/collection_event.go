package models

// Collection methods
const (
	MethodScan   = "scan"
	MethodManual = "manual"
)

// Event outcomes
const (
	OutcomeCollected = "collected"
	OutcomeFailed    = "failed"
)

// Issue types a worker can report from the field
const (
	IssueBinNotFound     = "bin_not_found"
	IssueBinInaccessible = "bin_inaccessible"
	IssueBinDamaged      = "bin_damaged"
	IssueBinContaminated = "bin_contaminated"
	IssueCustomerDispute = "customer_dispute"
	IssueOther           = "other"
)

// ValidIssueTypes is used to validate report-issue payloads.
var ValidIssueTypes = map[string]bool{
	IssueBinNotFound:     true,
	IssueBinInaccessible: true,
	IssueBinDamaged:      true,
	IssueBinContaminated: true,
	IssueCustomerDispute: true,
	IssueOther:           true,
}

// Geolocation is an optional coordinate snapshot attached to a collection
// event by the worker app.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// CollectionEvent is an immutable record of one collect/fail attempt at a
// stop. Rows are inserted once and never updated.
type CollectionEvent struct {
	ID               string   `json:"id" db:"id"`
	RouteID          string   `json:"route_id" db:"route_id"`
	EntryID          int      `json:"entry_id" db:"entry_id"`
	BinID            string   `json:"bin_id" db:"bin_id"`
	RequestID        string   `json:"request_id" db:"request_id"`
	WorkerID         string   `json:"worker_id" db:"worker_id"`
	Method           string   `json:"method" db:"method"`
	Outcome          string   `json:"outcome" db:"outcome"`
	Reason           *string  `json:"reason,omitempty" db:"reason"`
	IssueType        *string  `json:"issue_type,omitempty" db:"issue_type"`
	IssueDescription *string  `json:"issue_description,omitempty" db:"issue_description"`
	RequiresAdmin    bool     `json:"requires_admin" db:"requires_admin"`
	Latitude         *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64 `json:"longitude,omitempty" db:"longitude"`
	AccuracyM        *float64 `json:"accuracy_m,omitempty" db:"accuracy_m"`
	LocationTime     *int64   `json:"location_time,omitempty" db:"location_time"`
	ProximityKm      *float64 `json:"proximity_km,omitempty" db:"proximity_km"`
	ProximityOK      *bool    `json:"proximity_ok,omitempty" db:"proximity_ok"`
	RecordedAt       int64    `json:"recorded_at" db:"recorded_at"`
}

// ScanCollectionRequest is the request body for POST /api/worker/collections/scan
type ScanCollectionRequest struct {
	RouteID     string       `json:"route_id"`
	BinID       string       `json:"bin_id"`
	Geolocation *Geolocation `json:"geolocation,omitempty"`
}

// ManualCollectionRequest is the request body for POST /api/worker/collections/manual
type ManualCollectionRequest struct {
	RouteID     string       `json:"route_id"`
	BinID       string       `json:"bin_id"`
	Reason      string       `json:"reason"`
	Geolocation *Geolocation `json:"geolocation,omitempty"`
}

// ReportIssueRequest is the request body for POST /api/worker/collections/issue
type ReportIssueRequest struct {
	RouteID       string       `json:"route_id"`
	BinID         string       `json:"bin_id"`
	IssueType     string       `json:"issue_type"`
	Description   string       `json:"description"`
	RequiresAdmin bool         `json:"requires_admin"`
	Geolocation   *Geolocation `json:"geolocation,omitempty"`
}

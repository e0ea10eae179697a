package models

// Bin statuses reported by the monitoring collaborators. The route core only
// reads these.
const (
	BinStatusEmpty    = "Empty"
	BinStatusHalfFull = "Half-Full"
	BinStatusFull     = "Full"
	BinStatusOverflow = "Overflow"
)

type Bin struct {
	ID          string   `json:"id" db:"id"`
	BinID       string   `json:"bin_id" db:"bin_id"` // human code, e.g. BIN-0042
	OwnerUserID string   `json:"owner_user_id" db:"owner_user_id"`
	Address     string   `json:"address" db:"address"`
	Area        string   `json:"area" db:"area"`
	Latitude    float64  `json:"latitude" db:"latitude"`
	Longitude   float64  `json:"longitude" db:"longitude"`
	CapacityL   int      `json:"capacity_l" db:"capacity_l"`
	BinType     string   `json:"bin_type" db:"bin_type"`
	FillLevel   int      `json:"fill_level" db:"fill_level"`
	Battery     *int     `json:"battery,omitempty" db:"battery"`
	Status      string   `json:"status" db:"status"`
	CreatedAt   int64    `json:"created_at" db:"created_at"`
	UpdatedAt   int64    `json:"updated_at" db:"updated_at"`
}

// AreaBin is a bin inside an area availability group, carrying the number of
// eligible requests waiting on it.
type AreaBin struct {
	ID              string  `json:"id" db:"id"`
	BinID           string  `json:"bin_id" db:"bin_id"`
	Address         string  `json:"address" db:"address"`
	Area            string  `json:"area" db:"area"`
	Latitude        float64 `json:"latitude" db:"latitude"`
	Longitude       float64 `json:"longitude" db:"longitude"`
	FillLevel       int     `json:"fill_level" db:"fill_level"`
	Status          string  `json:"status" db:"status"`
	PendingRequests int     `json:"pending_requests" db:"pending_requests"`
}

// AreaGroup is one entry of the route-creation area listing.
type AreaGroup struct {
	Area              string    `json:"area"`
	Bins              []AreaBin `json:"bins"`
	TotalRequests     int       `json:"total_requests"`
	EstimatedDuration int       `json:"estimated_duration_mins"`
}

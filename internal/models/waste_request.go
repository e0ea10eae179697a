package models

// WasteRequest statuses
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusCompleted = "completed"
	RequestStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// WasteRequest is a customer's ask for pickup of one bin. The route core only
// consumes requests that are approved and paid; payment capture and admin
// approval happen elsewhere.
type WasteRequest struct {
	ID               string  `json:"id" db:"id"`
	RequestID        string  `json:"request_id" db:"request_id"` // human code, e.g. WR-20260815-001
	BinID            string  `json:"bin_id" db:"bin_id"`
	UserID           string  `json:"user_id" db:"user_id"`
	CustomerName     string  `json:"customer_name" db:"customer_name"`
	CustomerEmail    string  `json:"customer_email" db:"customer_email"`
	CollectionType   string  `json:"collection_type" db:"collection_type"`
	PreferredDate    string  `json:"preferred_date" db:"preferred_date"` // YYYY-MM-DD
	Status           string  `json:"status" db:"status"`
	PaymentStatus    string  `json:"payment_status" db:"payment_status"`
	AssignedWorkerID *string `json:"assigned_worker_id,omitempty" db:"assigned_worker_id"`
	ScheduledDate    *string `json:"scheduled_date,omitempty" db:"scheduled_date"`
	Cost             float64 `json:"cost" db:"cost"`
	Notes            *string `json:"notes,omitempty" db:"notes"`
	CreatedAt        int64   `json:"created_at" db:"created_at"`
	UpdatedAt        int64   `json:"updated_at" db:"updated_at"`
}

// Eligible reports whether the request can be put on (or collected from) a
// route: admin-approved, paid for, and not yet closed out.
func (r *WasteRequest) Eligible() bool {
	return r.Status == RequestStatusApproved && r.PaymentStatus == PaymentStatusPaid
}

package models

// Worker roles. wc1/wc2/wc3 are collector categories, admin manages routes.
const (
	RoleAdmin = "admin"
	RoleWC1   = "wc1"
	RoleWC2   = "wc2"
	RoleWC3   = "wc3"
)

// IsWorkerRole reports whether a role is one of the collector categories.
func IsWorkerRole(role string) bool {
	return role == RoleWC1 || role == RoleWC2 || role == RoleWC3
}

type User struct {
	ID        string  `json:"id" db:"id"`
	Email     string  `json:"email" db:"email"`
	Password  string  `json:"-" db:"password"` // Never return password in JSON
	Name      string  `json:"name" db:"name"`
	Role      string  `json:"role" db:"role"`
	Phone     *string `json:"phone,omitempty" db:"phone"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// AvailableWorker is a collector with capacity left for a given date.
type AvailableWorker struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Email       string `json:"email" db:"email"`
	Role        string `json:"role" db:"role"`
	CurrentLoad int    `json:"current_load" db:"current_load"`
}

// FCMToken represents a Firebase Cloud Messaging token for a user
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"` // "ios" or "android"
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}

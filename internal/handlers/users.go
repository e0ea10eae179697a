package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ecobin-backend/internal/models"
	"ecobin-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // "admin", "wc1", "wc2" or "wc3"
	Phone    string `json:"phone"`
}

// CreateUser creates a new admin or collector account.
// Requires admin authentication.
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
			utils.RespondError(w, http.StatusBadRequest, "Email, password, name, and role are required")
			return
		}

		if req.Role != models.RoleAdmin && !models.IsWorkerRole(req.Role) {
			utils.RespondError(w, http.StatusBadRequest, "Role must be 'admin', 'wc1', 'wc2', or 'wc3'")
			return
		}

		var existing string
		if err := db.Get(&existing, "SELECT id FROM users WHERE email = $1", req.Email); err == nil {
			log.Printf("❌ User already exists: %s", req.Email)
			utils.RespondError(w, http.StatusConflict, "User with this email already exists")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		id := uuid.New().String()
		now := time.Now().Unix()
		var phone *string
		if req.Phone != "" {
			phone = &req.Phone
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, req.Email, string(hash), req.Name, req.Role, phone, now, now)
		if err != nil {
			log.Printf("❌ Error creating user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		var user models.User
		if err := db.Get(&user, "SELECT * FROM users WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch created user")
			return
		}

		log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
		utils.RespondData(w, http.StatusCreated, user.ToUserResponse())
	}
}

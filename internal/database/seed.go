package database

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding users...")

	users := []struct {
		email, password, name, role string
	}{
		{"admin@ecobin.lk", "admin123", "System Admin", "admin"},
		{"kasun@ecobin.lk", "worker123", "Kasun Perera", "wc1"},
		{"nimal@ecobin.lk", "worker123", "Nimal Fernando", "wc2"},
		{"sunil@ecobin.lk", "worker123", "Sunil Jayawardena", "wc3"},
	}

	now := time.Now().Unix()
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.email, err)
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), u.email, string(hash), u.name, u.role, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
	}

	log.Printf("✅ Seeded %d users", len(users))
	return nil
}

func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding bins...")

	var ownerID string
	if err := db.Get(&ownerID, "SELECT id FROM users WHERE role = 'admin' LIMIT 1"); err != nil {
		return fmt.Errorf("failed to find seed owner: %w", err)
	}

	bins := []struct {
		binID, address, area string
		lat, lon             float64
		fill                 int
		status               string
	}{
		{"BIN-0001", "45 Galle Face Terrace", "Colombo 3", 6.9226, 79.8482, 85, "Full"},
		{"BIN-0002", "120 Marine Drive", "Colombo 3", 6.9180, 79.8505, 60, "Half-Full"},
		{"BIN-0003", "8 Kollupitiya Road", "Colombo 3", 6.9145, 79.8510, 92, "Overflow"},
		{"BIN-0004", "67 Duplication Road", "Colombo 4", 6.8952, 79.8551, 40, "Half-Full"},
		{"BIN-0005", "310 Galle Road", "Colombo 4", 6.8890, 79.8568, 15, "Empty"},
		{"BIN-0006", "22 Havelock Road", "Colombo 5", 6.8881, 79.8664, 73, "Full"},
		{"BIN-0007", "140 Park Road", "Colombo 5", 6.8874, 79.8736, 55, "Half-Full"},
		{"BIN-0008", "5 Station Road", "Mount Lavinia", 6.8485, 79.9053, 88, "Full"},
		{"BIN-0009", "89 Hotel Road", "Mount Lavinia", 6.8391, 79.8637, 30, "Half-Full"},
		{"BIN-0010", "17 Temple Lane", "Dehiwala", 6.8560, 79.8650, 66, "Full"},
	}

	now := time.Now().Unix()
	for _, b := range bins {
		_, err := db.Exec(`
			INSERT INTO bins (id, bin_id, owner_user_id, address, area, latitude, longitude,
			                  capacity_l, bin_type, fill_level, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 120, 'general', $8, $9, $10, $11)
		`, uuid.New().String(), b.binID, ownerID, b.address, b.area, b.lat, b.lon, b.fill, b.status, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed bin %s: %w", b.binID, err)
		}
	}

	log.Printf("✅ Seeded %d bins", len(bins))
	return nil
}

// SeedWasteRequests creates approved+paid sample requests so route creation
// works against a fresh database.
func SeedWasteRequests(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM waste_requests"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Waste requests already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding waste requests...")

	type binRow struct {
		ID    string `db:"id"`
		BinID string `db:"bin_id"`
	}
	var bins []binRow
	if err := db.Select(&bins, "SELECT id, bin_id FROM bins ORDER BY bin_id"); err != nil {
		return err
	}

	var ownerID string
	if err := db.Get(&ownerID, "SELECT id FROM users WHERE role = 'admin' LIMIT 1"); err != nil {
		return err
	}

	now := time.Now().Unix()
	date := time.Now().Format("2006-01-02")
	for i, b := range bins {
		_, err := db.Exec(`
			INSERT INTO waste_requests (id, request_id, bin_id, user_id, customer_name,
			                            customer_email, collection_type, preferred_date,
			                            status, payment_status, cost, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'general', $7, 'approved', 'paid', 500, $8, $9)
		`, uuid.New().String(), fmt.Sprintf("WR-%s-%03d", time.Now().Format("20060102"), i+1),
			b.ID, ownerID, "Sample Customer", "customer@example.com", date, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed request for %s: %w", b.BinID, err)
		}
	}

	log.Printf("✅ Seeded %d waste requests", len(bins))
	return nil
}

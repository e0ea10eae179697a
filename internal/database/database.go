package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to database...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table (admins + wc1/wc2/wc3 collectors)
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('admin', 'wc1', 'wc2', 'wc3')),
			phone TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create bins table
		`CREATE TABLE IF NOT EXISTS bins (
			id TEXT PRIMARY KEY,
			bin_id TEXT NOT NULL UNIQUE,
			owner_user_id TEXT NOT NULL,
			address TEXT NOT NULL,
			area TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			capacity_l INT NOT NULL DEFAULT 120,
			bin_type TEXT NOT NULL DEFAULT 'general',
			fill_level INT NOT NULL DEFAULT 0,
			battery INT,
			status TEXT NOT NULL DEFAULT 'Empty' CHECK(status IN ('Empty', 'Half-Full', 'Full', 'Overflow')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create waste_requests table
		`CREATE TABLE IF NOT EXISTS waste_requests (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL UNIQUE,
			bin_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			collection_type TEXT NOT NULL,
			preferred_date TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'approved', 'completed', 'cancelled')),
			payment_status TEXT NOT NULL DEFAULT 'pending' CHECK(payment_status IN ('pending', 'paid', 'failed')),
			assigned_worker_id TEXT,
			scheduled_date TEXT,
			cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE
		)`,

		// Create collection_routes table
		`CREATE TABLE IF NOT EXISTS collection_routes (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL UNIQUE,
			collector_id TEXT NOT NULL,
			assigned_date TEXT NOT NULL,
			area TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'assigned' CHECK(status IN ('assigned', 'in_progress', 'completed', 'cancelled')),
			total_bins INT NOT NULL DEFAULT 0,
			completed_bins INT NOT NULL DEFAULT 0,
			estimated_duration_mins INT NOT NULL DEFAULT 0,
			actual_duration_mins INT,
			notes TEXT,
			cancellation_reason TEXT,
			start_time BIGINT,
			end_time BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (collector_id) REFERENCES users(id) ON DELETE CASCADE,
			CHECK (completed_bins >= 0),
			CHECK (completed_bins <= total_bins)
		)`,

		// Create route_bin_entries table with the customer snapshot captured
		// at route-creation time
		`CREATE TABLE IF NOT EXISTS route_bin_entries (
			id SERIAL PRIMARY KEY,
			route_id TEXT NOT NULL,
			bin_id TEXT NOT NULL,
			request_id TEXT NOT NULL,
			sequence_order INT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'normal' CHECK(priority IN ('normal', 'high', 'urgent')),
			estimated_minutes INT NOT NULL DEFAULT 15,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			collection_type TEXT NOT NULL,
			cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			customer_notes TEXT,
			collection_status TEXT NOT NULL DEFAULT 'pending' CHECK(collection_status IN ('pending', 'collected', 'failed')),
			completed_at BIGINT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (route_id) REFERENCES collection_routes(id) ON DELETE CASCADE,
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			UNIQUE (route_id, bin_id)
		)`,

		// One non-terminal route per (bin, date). Rows are inserted when a
		// route is created and released when it completes, is cancelled, or
		// is reopened. The primary key is what makes concurrent route
		// creation for the same bin lose cleanly instead of racing.
		`CREATE TABLE IF NOT EXISTS active_bin_assignments (
			bin_id TEXT NOT NULL,
			assigned_date TEXT NOT NULL,
			route_id TEXT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			PRIMARY KEY (bin_id, assigned_date),
			FOREIGN KEY (bin_id) REFERENCES bins(id) ON DELETE CASCADE,
			FOREIGN KEY (route_id) REFERENCES collection_routes(id) ON DELETE CASCADE
		)`,

		// Per-date route numbering. The counter row is upserted under its
		// row lock, so concurrent creations never reuse a sequence number.
		`CREATE TABLE IF NOT EXISTS route_date_counters (
			assigned_date TEXT PRIMARY KEY,
			seq INT NOT NULL DEFAULT 0
		)`,

		// Create collection_events table (immutable, insert-only)
		`CREATE TABLE IF NOT EXISTS collection_events (
			id TEXT PRIMARY KEY,
			route_id TEXT NOT NULL,
			entry_id INT NOT NULL,
			bin_id TEXT NOT NULL,
			request_id TEXT NOT NULL,
			worker_id TEXT NOT NULL,
			method TEXT NOT NULL CHECK(method IN ('scan', 'manual')),
			outcome TEXT NOT NULL CHECK(outcome IN ('collected', 'failed')),
			reason TEXT,
			issue_type TEXT,
			issue_description TEXT,
			requires_admin BOOLEAN NOT NULL DEFAULT FALSE,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			accuracy_m DOUBLE PRECISION,
			location_time BIGINT,
			proximity_km DOUBLE PRECISION,
			proximity_ok BOOLEAN,
			recorded_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (route_id) REFERENCES collection_routes(id) ON DELETE CASCADE,
			FOREIGN KEY (entry_id) REFERENCES route_bin_entries(id) ON DELETE CASCADE
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Indexes for the hot lookups
		`CREATE INDEX IF NOT EXISTS idx_waste_requests_bin ON waste_requests(bin_id)`,
		`CREATE INDEX IF NOT EXISTS idx_waste_requests_eligibility ON waste_requests(status, payment_status, preferred_date)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_collector_date ON collection_routes(collector_id, assigned_date)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_date_status ON collection_routes(assigned_date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_route ON route_bin_entries(route_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_route ON collection_events(route_id)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

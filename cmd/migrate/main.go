package main

import (
	"log"
	"os"

	"ecobin-backend/internal/database"

	"github.com/joho/godotenv"
)

// Standalone migration runner for environments where the server binary
// should not apply schema changes on boot (CI pipelines, release jobs).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")
}

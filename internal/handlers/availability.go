package handlers

import (
	"log"
	"net/http"
	"time"

	"ecobin-backend/internal/services"
	"ecobin-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// queryDate pulls a YYYY-MM-DD date from the query string, defaulting to today.
func queryDate(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return time.Now().Format("2006-01-02"), true
	}
	return date, validDate(date)
}

// GetAvailableAreas lists areas with eligible collection requests for route
// creation. An empty list is a normal answer.
func GetAvailableAreas(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := queryDate(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		areas, err := services.ListAvailableAreas(db, date)
		if err != nil {
			log.Printf("❌ Error listing available areas: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list areas")
			return
		}

		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"date":  date,
			"areas": areas,
		})
	}
}

// GetAvailableWorkers lists collectors with capacity left for the date.
func GetAvailableWorkers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := queryDate(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		workers, err := services.ListAvailableWorkers(db, date)
		if err != nil {
			log.Printf("❌ Error listing available workers: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list workers")
			return
		}

		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"date":    date,
			"workers": workers,
		})
	}
}

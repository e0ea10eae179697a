package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"ecobin-backend/internal/database"
	"ecobin-backend/internal/middleware"
	"ecobin-backend/internal/models"
	"ecobin-backend/internal/services"
	"ecobin-backend/internal/websocket"
	"ecobin-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// CreateRoute builds a route from an explicit bin selection and pushes the
// assignment to the collector.
func CreateRoute(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.CollectorID == "" || req.AssignedDate == "" || req.Area == "" {
			utils.RespondError(w, http.StatusBadRequest, "collector_id, assigned_date, and area are required")
			return
		}
		if !validDate(req.AssignedDate) {
			utils.RespondError(w, http.StatusBadRequest, "assigned_date must be YYYY-MM-DD")
			return
		}

		log.Printf("📋 Creating route: %d bins in %s for collector %s on %s",
			len(req.BinIDs), req.Area, req.CollectorID, req.AssignedDate)

		route, err := services.CreateRoute(db, req)
		if err != nil {
			log.Printf("❌ Route creation failed: %v", err)
			respondServiceError(w, err)
			return
		}

		// Push notification; absence or failure never fails the creation
		notificationSent := false
		if fcmService != nil {
			var fcmToken models.FCMToken
			tokenErr := db.Get(&fcmToken, `SELECT * FROM fcm_tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, req.CollectorID)
			if tokenErr == nil {
				if err := fcmService.SendRouteAssignedNotification(fcmToken.Token, route.RouteID, route.Area, route.TotalBins); err != nil {
					log.Printf("⚠️  Failed to send FCM notification: %v", err)
				} else {
					notificationSent = true
				}
			}
		}

		hub.BroadcastToUser(req.CollectorID, map[string]interface{}{
			"type": "route_assigned",
			"data": route,
		})
		if !hub.IsUserConnected(req.CollectorID) {
			log.Printf("📴 Collector %s offline, assignment will surface on next app sync", req.CollectorID)
		}
		hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "route_created",
			"data": map[string]interface{}{
				"route_id":     route.ID,
				"route_code":   route.RouteID,
				"collector_id": route.CollectorID,
				"area":         route.Area,
				"total_bins":   route.TotalBins,
			},
		})

		utils.RespondData(w, http.StatusCreated, map[string]interface{}{
			"route":             route,
			"notification_sent": notificationSent,
		})
	}
}

// GetRoutes lists routes with optional date/status/collector/area filters and
// page/limit pagination.
func GetRoutes(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT * FROM collection_routes WHERE 1=1`
		countQuery := `SELECT COUNT(*) FROM collection_routes WHERE 1=1`
		args := []interface{}{}
		argCount := 0

		addFilter := func(clause, value string) {
			argCount++
			cond := fmt.Sprintf(" AND %s = $%d", clause, argCount)
			query += cond
			countQuery += cond
			args = append(args, value)
		}

		if date := r.URL.Query().Get("date"); date != "" {
			if !validDate(date) {
				utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			addFilter("assigned_date", date)
		}
		if status := r.URL.Query().Get("status"); status != "" {
			addFilter("status", status)
		}
		if collectorID := r.URL.Query().Get("collector_id"); collectorID != "" {
			addFilter("collector_id", collectorID)
		}
		if area := r.URL.Query().Get("area"); area != "" {
			addFilter("area", area)
		}

		page := 1
		if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
			page = p
		}
		limit := 20
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
			limit = l
		}

		var total int
		if err := db.Get(&total, countQuery, args...); err != nil {
			log.Printf("❌ Error counting routes: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch routes")
			return
		}

		query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
		args = append(args, limit, (page-1)*limit)

		routes := []models.Route{}
		if err := db.Select(&routes, query, args...); err != nil {
			log.Printf("❌ Error fetching routes: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch routes")
			return
		}

		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"routes": routes,
			"page":   page,
			"limit":  limit,
			"total":  total,
		})
	}
}

// GetRoute returns a single route with its ordered stops
func GetRoute(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "id")

		route, err := database.GetRouteWithEntries(db, routeID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Route not found")
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching route %s: %v", routeID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route")
			return
		}

		utils.RespondData(w, http.StatusOK, route)
	}
}

// UpdateRouteStatus applies an admin status change (start, complete, cancel,
// or reopen to assigned).
func UpdateRouteStatus(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		routeID := chi.URLParam(r, "id")

		var req models.UpdateRouteStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Status == "" {
			utils.RespondError(w, http.StatusBadRequest, "status is required")
			return
		}

		route, err := services.UpdateRouteStatus(db, routeID, req, userClaims)
		if err != nil {
			log.Printf("❌ Status change failed for route %s: %v", routeID, err)
			respondServiceError(w, err)
			return
		}

		broadcastRouteUpdate(hub, route)
		utils.RespondData(w, http.StatusOK, route)
	}
}

// CancelRoute cancels a route with a mandatory reason and reverts its pending
// requests.
func CancelRoute(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "id")

		var req models.CancelRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Reason == "" {
			utils.RespondError(w, http.StatusBadRequest, "reason is required")
			return
		}

		route, err := services.CancelRoute(db, routeID, req.Reason)
		if err != nil {
			log.Printf("❌ Cancellation failed for route %s: %v", routeID, err)
			respondServiceError(w, err)
			return
		}

		broadcastRouteUpdate(hub, route)
		utils.RespondData(w, http.StatusOK, route)
	}
}

// GetRouteStats returns aggregate route counts, optionally for one date
func GetRouteStats(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date != "" && !validDate(date) {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		stats, err := services.GetRouteStats(db, date)
		if err != nil {
			log.Printf("❌ Error computing route stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
			return
		}

		utils.RespondData(w, http.StatusOK, stats)
	}
}

// GetActiveRoute returns the caller's current route for the date, or null
// when none is assigned.
func GetActiveRoute(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		date, valid := queryDate(r)
		if !valid {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		var route models.Route
		err := db.Get(&route, `
			SELECT * FROM collection_routes
			WHERE collector_id = $1
			  AND assigned_date = $2
			  AND status IN ('assigned', 'in_progress')
			ORDER BY
				CASE status WHEN 'in_progress' THEN 1 WHEN 'assigned' THEN 2 END ASC,
				created_at DESC
			LIMIT 1
		`, userClaims.UserID, date)
		if err == sql.ErrNoRows {
			utils.RespondData(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching active route: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		entries, err := database.GetRouteEntries(db, route.ID)
		if err != nil {
			log.Printf("❌ Error fetching route entries: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch route entries")
			return
		}

		utils.RespondData(w, http.StatusOK, models.RouteWithEntries{Route: route, Entries: entries})
	}
}

// broadcastRouteUpdate tells the collector and all admins about a status change.
func broadcastRouteUpdate(hub *websocket.Hub, route *models.Route) {
	payload := map[string]interface{}{
		"type": "route_status_change",
		"data": map[string]interface{}{
			"route_id":       route.ID,
			"route_code":     route.RouteID,
			"status":         route.Status,
			"completed_bins": route.CompletedBins,
			"total_bins":     route.TotalBins,
			"updated_at":     time.Now().Unix(),
		},
	}
	hub.BroadcastToUser(route.CollectorID, payload)
	hub.BroadcastToRole(models.RoleAdmin, payload)
}

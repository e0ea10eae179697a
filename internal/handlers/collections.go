package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ecobin-backend/internal/middleware"
	"ecobin-backend/internal/models"
	"ecobin-backend/internal/services"
	"ecobin-backend/internal/websocket"
	"ecobin-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// ScanCollection records a scan collection event for one stop
func ScanCollection(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.ScanCollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.RouteID == "" || req.BinID == "" {
			utils.RespondError(w, http.StatusBadRequest, "route_id and bin_id are required")
			return
		}

		result, err := services.RecordScanCollection(db, userClaims, req)
		if err != nil {
			log.Printf("❌ Scan collection failed: route %s, bin %s: %v", req.RouteID, req.BinID, err)
			respondServiceError(w, err)
			return
		}

		broadcastProgress(hub, result)
		utils.RespondData(w, http.StatusOK, result)
	}
}

// ManualCollection records a manual collection event with the worker's reason
func ManualCollection(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.ManualCollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.RouteID == "" || req.BinID == "" {
			utils.RespondError(w, http.StatusBadRequest, "route_id and bin_id are required")
			return
		}
		if req.Reason == "" {
			utils.RespondError(w, http.StatusBadRequest, "reason is required for manual collection")
			return
		}

		result, err := services.RecordManualCollection(db, userClaims, req)
		if err != nil {
			log.Printf("❌ Manual collection failed: route %s, bin %s: %v", req.RouteID, req.BinID, err)
			respondServiceError(w, err)
			return
		}

		broadcastProgress(hub, result)
		utils.RespondData(w, http.StatusOK, result)
	}
}

// ReportIssue marks a stop as failed and escalates to admins when asked to.
// The escalation is best-effort: a dispatch failure downgrades admin_notified
// in the response but never fails the report itself.
func ReportIssue(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.ReportIssueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.RouteID == "" || req.BinID == "" {
			utils.RespondError(w, http.StatusBadRequest, "route_id and bin_id are required")
			return
		}
		if !models.ValidIssueTypes[req.IssueType] {
			utils.RespondError(w, http.StatusBadRequest, "Invalid issue_type")
			return
		}
		if req.Description == "" {
			utils.RespondError(w, http.StatusBadRequest, "description is required")
			return
		}

		result, err := services.ReportIssue(db, userClaims, req)
		if err != nil {
			log.Printf("❌ Issue report failed: route %s, bin %s: %v", req.RouteID, req.BinID, err)
			respondServiceError(w, err)
			return
		}

		adminNotified := false
		if req.RequiresAdmin {
			adminNotified = escalateToAdmins(db, hub, fcmService, result, req.IssueType)
		}

		hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "collection_issue",
			"data": result.Event,
		})

		utils.RespondData(w, http.StatusOK, map[string]interface{}{
			"event":          result.Event,
			"progress":       result.Progress,
			"proximity":      result.Proximity,
			"admin_notified": adminNotified,
		})
	}
}

// escalateToAdmins pushes the issue to every registered admin device.
func escalateToAdmins(db *sqlx.DB, hub *websocket.Hub, fcmService *services.FCMService, result *services.CollectionResult, issueType string) bool {
	if fcmService == nil {
		log.Println("⚠️  FCM disabled, issue escalation sent over WebSocket only")
		return hubNotifyAdmins(hub, result)
	}

	var tokens []string
	err := db.Select(&tokens, `
		SELECT t.token FROM fcm_tokens t
		INNER JOIN users u ON u.id = t.user_id
		WHERE u.role = 'admin'
	`)
	if err != nil || len(tokens) == 0 {
		log.Printf("⚠️  No admin FCM tokens available: %v", err)
		return hubNotifyAdmins(hub, result)
	}

	if err := fcmService.SendIssueEscalation(tokens, result.Event.RouteID, result.Event.BinID, issueType); err != nil {
		log.Printf("⚠️  Failed to send issue escalation: %v", err)
		return hubNotifyAdmins(hub, result)
	}

	return true
}

func hubNotifyAdmins(hub *websocket.Hub, result *services.CollectionResult) bool {
	hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
		"type": "issue_escalation",
		"data": result.Event,
	})
	return hub.GetClientCount() > 0
}

// broadcastProgress pushes fresh counters to admin dashboards after a
// collection event.
func broadcastProgress(hub *websocket.Hub, result *services.CollectionResult) {
	hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
		"type": "collection_progress",
		"data": map[string]interface{}{
			"route_id": result.Event.RouteID,
			"bin_id":   result.Event.BinID,
			"progress": result.Progress,
		},
	})
}

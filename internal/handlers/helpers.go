package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"ecobin-backend/internal/services"
	"ecobin-backend/pkg/utils"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validDate checks the YYYY-MM-DD shape used for assigned/preferred dates.
func validDate(date string) bool {
	return dateRe.MatchString(date)
}

// respondServiceError maps the core's typed errors onto HTTP statuses. Every
// error is terminal for the operation; callers refresh and retry themselves.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRouteNotFound),
		errors.Is(err, services.ErrEntryNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNoBinsSelected),
		errors.Is(err, services.ErrReasonRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrWorkerUnavailable),
		errors.Is(err, services.ErrBinAlreadyRouted),
		errors.Is(err, services.ErrBinNotEligible),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrRequestIneligible):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotRouteCollector):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

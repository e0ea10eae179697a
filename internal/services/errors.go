package services

import "errors"

// Typed failures of the route core. Handlers map these to HTTP statuses; none
// of them is retried automatically.
var (
	ErrNoBinsSelected    = errors.New("no bins selected")
	ErrWorkerUnavailable = errors.New("worker unavailable for the date")
	ErrBinAlreadyRouted  = errors.New("bin already on a non-terminal route for the date")
	ErrBinNotEligible    = errors.New("bin has no eligible waste request")
	ErrInvalidTransition = errors.New("invalid route status transition")
	ErrRouteNotFound     = errors.New("route not found")
	ErrEntryNotFound     = errors.New("route entry not found")
	ErrAlreadyProcessed  = errors.New("entry already processed")
	ErrRequestIneligible = errors.New("waste request no longer eligible")
	ErrNotRouteCollector = errors.New("route belongs to another collector")
	ErrReasonRequired    = errors.New("a non-empty reason is required")
)

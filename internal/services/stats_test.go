package services

import (
	"testing"
)

func TestRollupRouteStats(t *testing.T) {
	rows := []RouteStatRow{
		{Status: "completed", TotalBins: 4, CompletedBins: 4, Area: "Dehiwala", WorkerRole: "wc1"},
		{Status: "in_progress", TotalBins: 3, CompletedBins: 1, Area: "Colombo 03", WorkerRole: "wc2"},
		{Status: "assigned", TotalBins: 3, CompletedBins: 0, Area: "Dehiwala", WorkerRole: "wc1"},
	}

	stats := RollupRouteStats(rows)

	if stats.TotalRoutes != 3 {
		t.Errorf("expected 3 total routes, got %d", stats.TotalRoutes)
	}
	if stats.ByStatus["completed"] != 1 || stats.ByStatus["in_progress"] != 1 || stats.ByStatus["assigned"] != 1 {
		t.Errorf("unexpected status counts: %v", stats.ByStatus)
	}
	if stats.TotalBins != 10 {
		t.Errorf("expected 10 total bins, got %d", stats.TotalBins)
	}
	if stats.CompletedBins != 5 {
		t.Errorf("expected 5 completed bins, got %d", stats.CompletedBins)
	}
	if stats.CompletionRate != 0.5 {
		t.Errorf("expected completion rate 0.5, got %f", stats.CompletionRate)
	}
	if len(stats.Areas) != 2 {
		t.Errorf("expected 2 distinct areas, got %v", stats.Areas)
	}
	if stats.WorkerTypes["wc1"] != 2 || stats.WorkerTypes["wc2"] != 1 {
		t.Errorf("unexpected worker type counts: %v", stats.WorkerTypes)
	}
}

func TestRollupRouteStatsEmpty(t *testing.T) {
	stats := RollupRouteStats(nil)

	if stats.TotalRoutes != 0 {
		t.Errorf("expected 0 routes, got %d", stats.TotalRoutes)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("expected zero completion rate without bins, got %f", stats.CompletionRate)
	}
	if stats.Areas == nil || len(stats.Areas) != 0 {
		t.Errorf("expected empty (non-nil) areas slice, got %v", stats.Areas)
	}
}

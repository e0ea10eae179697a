package services

import (
	"testing"

	"ecobin-backend/internal/models"
)

func TestGroupBinsByArea(t *testing.T) {
	rows := []models.AreaBin{
		{ID: "b1", BinID: "BIN-0001", Area: "Dehiwala", PendingRequests: 2},
		{ID: "b2", BinID: "BIN-0002", Area: "Colombo 03", PendingRequests: 1},
		{ID: "b3", BinID: "BIN-0003", Area: "Dehiwala", PendingRequests: 1},
	}

	groups := GroupBinsByArea(rows)

	if len(groups) != 2 {
		t.Fatalf("expected 2 area groups, got %d", len(groups))
	}

	// Sorted by area name
	if groups[0].Area != "Colombo 03" || groups[1].Area != "Dehiwala" {
		t.Errorf("expected areas sorted alphabetically, got %q, %q", groups[0].Area, groups[1].Area)
	}

	dehiwala := groups[1]
	if len(dehiwala.Bins) != 2 {
		t.Errorf("expected 2 bins in Dehiwala, got %d", len(dehiwala.Bins))
	}
	if dehiwala.TotalRequests != 3 {
		t.Errorf("expected 3 total requests in Dehiwala, got %d", dehiwala.TotalRequests)
	}
	if dehiwala.EstimatedDuration != 2*models.EstimatedMinutesPerStop {
		t.Errorf("expected estimated duration %d, got %d", 2*models.EstimatedMinutesPerStop, dehiwala.EstimatedDuration)
	}
}

func TestGroupBinsByAreaEmpty(t *testing.T) {
	groups := GroupBinsByArea(nil)
	if len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}

func TestFilterAvailableWorkers(t *testing.T) {
	workers := []models.AvailableWorker{
		{ID: "w1", Name: "Kasun", Role: "wc1", CurrentLoad: 0},
		{ID: "w2", Name: "Nimal", Role: "wc2", CurrentLoad: 1},
		{ID: "w3", Name: "Saman", Role: "wc3", CurrentLoad: 2},
	}

	available := FilterAvailableWorkers(workers)

	if len(available) != 2 {
		t.Fatalf("expected 2 available workers, got %d", len(available))
	}
	for _, w := range available {
		if w.CurrentLoad >= workerDailyRouteCap {
			t.Errorf("worker %s at load %d should have been filtered out", w.ID, w.CurrentLoad)
		}
	}
}

func TestFilterAvailableWorkersAllBusy(t *testing.T) {
	workers := []models.AvailableWorker{
		{ID: "w1", CurrentLoad: 2},
		{ID: "w2", CurrentLoad: 3},
	}

	available := FilterAvailableWorkers(workers)
	if len(available) != 0 {
		t.Errorf("expected no available workers, got %d", len(available))
	}
}

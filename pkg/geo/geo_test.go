package geo

import (
	"math"
	"testing"
)

func TestDistanceKmZero(t *testing.T) {
	d := DistanceKm(6.9271, 79.8612, 6.9271, 79.8612)
	if d != 0.00 {
		t.Fatalf("expected 0.00 for identical coordinates, got %v", d)
	}
}

func TestDistanceKmColomboMountLavinia(t *testing.T) {
	// Colombo Fort to Mount Lavinia, roughly 10.9 km great-circle
	d := DistanceKm(6.9271, 79.8612, 6.8485, 79.9053)
	if math.Abs(d-10.9) > 0.5 {
		t.Fatalf("expected ~10.9 km, got %v", d)
	}
}

func TestDistanceKmRounded(t *testing.T) {
	d := DistanceKm(6.9271, 79.8612, 6.8485, 79.9053)
	if Round2(d) != d {
		t.Errorf("distance not rounded to 2 decimal places: %v", d)
	}
}

func TestValidateProximity(t *testing.T) {
	// ~100m apart
	res := ValidateProximity(6.9271, 79.8612, 6.9280, 79.8612, 0.5)
	if !res.IsValid {
		t.Errorf("expected locations ~100m apart to be valid within 0.5 km, got %+v", res)
	}

	far := ValidateProximity(6.9271, 79.8612, 6.8485, 79.9053, 0.5)
	if far.IsValid {
		t.Errorf("expected ~10.9 km to fail a 0.5 km check, got %+v", far)
	}
	if far.DistanceKm < 10 {
		t.Errorf("distance should be reported even on failure, got %v", far.DistanceKm)
	}
}

func TestFormatCoordinates(t *testing.T) {
	got := FormatCoordinates(6.9271, 79.8612)
	want := "6.927100, 79.861200"
	if got != want {
		t.Errorf("FormatCoordinates = %q, want %q", got, want)
	}
}

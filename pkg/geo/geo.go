package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance between two GPS coordinates
// in kilometers using the Haversine formula, rounded to 2 decimal places.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Round2(earthRadiusKm * c)
}

// Round2 rounds a value to 2 decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProximityResult is the outcome of an advisory distance check between a
// worker's reported location and a bin.
type ProximityResult struct {
	IsValid    bool    `json:"is_valid"`
	DistanceKm float64 `json:"distance_km"`
}

// ValidateProximity checks that the user location is within maxDistanceKm of
// the bin location. Callers must guard against NaN inputs; they propagate.
func ValidateProximity(userLat, userLon, binLat, binLon, maxDistanceKm float64) ProximityResult {
	d := DistanceKm(userLat, userLon, binLat, binLon)
	return ProximityResult{
		IsValid:    d <= maxDistanceKm,
		DistanceKm: d,
	}
}

// FormatCoordinates renders a lat/lng pair for logs and responses.
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

package geo

import (
	"math"

	"propertyservices/models"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers between a and b.
// Callers validate coordinates first.
func Haversine(a, b models.Location) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180)
	lat1Rad := a.Latitude * (math.Pi / 180)
	lat2Rad := b.Latitude * (math.Pi / 180)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// EstimateArrivalMinutes converts a distance into a travel estimate at speedKmh,
// never below minMinutes.
func EstimateArrivalMinutes(distanceKm, speedKmh float64, minMinutes int) int {
	if speedKmh <= 0 {
		return minMinutes
	}
	minutes := int(math.Round(distanceKm / speedKmh * 60))
	if minutes < minMinutes {
		return minMinutes
	}
	return minutes
}

// PolygonContains reports whether p lies inside the polygon's outer ring, excluding holes.
// Rings are GeoJSON [longitude, latitude] pairs.
func PolygonContains(poly models.GeoPolygon, p models.Location) bool {
	if len(poly.Coordinates) == 0 {
		return false
	}
	if !ringContains(poly.Coordinates[0], p) {
		return false
	}
	for _, hole := range poly.Coordinates[1:] {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains is the even-odd ray casting test.
func ringContains(ring [][]float64, p models.Location) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := p.Longitude, p.Latitude
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if len(ring[i]) < 2 || len(ring[j]) < 2 {
			continue
		}
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

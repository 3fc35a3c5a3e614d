package pricing

import (
	"propertyservices/models"
	"propertyservices/services/geo"
)

// Distance bucket labels, upper bounds inclusive.
const (
	bucketVeryClose = "0-2km"
	bucketClose     = "2-5km"
	bucketNearby    = "5-10km"
	bucketModerate  = "10-15km"
	bucketFar       = "15km+"
)

func bucketOf(d float64) string {
	switch {
	case d <= 2:
		return bucketVeryClose
	case d <= 5:
		return bucketClose
	case d <= 10:
		return bucketNearby
	case d <= 15:
		return bucketModerate
	default:
		return bucketFar
	}
}

// SummarizeDistances builds the distance distribution of priced requests. Every bucket is
// present, with zero counts when no sample falls in it.
func SummarizeDistances(samples []models.QuoteSample) models.DistanceDistribution {
	out := models.DistanceDistribution{
		TotalRequests: len(samples),
		Buckets: map[string]int{
			bucketVeryClose: 0,
			bucketClose:     0,
			bucketNearby:    0,
			bucketModerate:  0,
			bucketFar:       0,
		},
	}
	if len(samples) == 0 {
		return out
	}

	var sumDistance, sumMultiplier, maxDistance float64
	for _, s := range samples {
		out.Buckets[bucketOf(s.DistanceKm)]++
		sumDistance += s.DistanceKm
		sumMultiplier += s.Multiplier
		if s.DistanceKm > maxDistance {
			maxDistance = s.DistanceKm
		}
	}
	n := float64(len(samples))
	out.AverageDistanceKm = geo.Round(sumDistance/n, 2)
	out.MaxDistanceKm = geo.Round(maxDistance, 2)
	out.AverageProximityMultiplier = geo.Round(sumMultiplier/n, 3)
	return out
}

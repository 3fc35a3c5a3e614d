package matching

import (
	"math"
	"sort"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/geo"
)

func ratingComponent(rating, weight float64) float64 {
	if rating > 5 {
		rating = 5
	}
	if rating < 0 {
		rating = 0
	}
	return (rating / 5) * weight
}

func distanceComponent(distanceKm, maxPoints, decay float64) float64 {
	return math.Max(0, maxPoints-distanceKm*decay)
}

func experienceComponent(completedJobs int, maxPoints, divisor float64) float64 {
	return math.Min(maxPoints, float64(completedJobs)/divisor)
}

// BasicMatchScore is the lightweight score used by the discovery flow:
// rating, distance and experience only.
func BasicMatchScore(p *models.ServiceProvider, distanceKm float64, w config.ScoreWeights) float64 {
	score := ratingComponent(p.RatingAverage, w.RatingWeight) +
		distanceComponent(distanceKm, w.DistanceCap, w.DistanceDecayPerKm) +
		experienceComponent(p.CompletedJobs, w.ExperienceCap, w.ExperienceDivisor)
	return geo.Round(score, 2)
}

// FullMatchScore is the matching-flow score. On top of the basic components it adds the
// category-fit, emergency and live-location bonuses.
func FullMatchScore(p *models.ServiceProvider, distanceKm float64, serviceType string, priority models.Priority, fresh bool, w config.ScoreWeights) float64 {
	score := ratingComponent(p.RatingAverage, w.RatingWeight) +
		distanceComponent(distanceKm, w.DistanceCap, w.DistanceDecayPerKm) +
		experienceComponent(p.CompletedJobs, w.ExperienceCap, w.ExperienceDivisor)

	if p.OffersService(serviceType) {
		score += w.CategoryBonus
	}
	if priority == models.PriorityEmergency && p.AcceptsEmergencyRequests {
		score += w.PriorityBonus
	}
	if fresh {
		score += w.FreshnessBonus
	}
	return geo.Round(score, 2)
}

// Rank orders results by descending score, then ascending distance, then provider id, and
// keeps at most limit entries. A non-positive limit keeps everything.
func Rank(results []models.MatchResult, limit int) []models.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ProviderID < b.ProviderID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

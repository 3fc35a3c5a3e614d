package pricing

import (
	"fmt"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/geo"

	"github.com/shopspring/decimal"
)

// ProximityBonus pays the highest bonus percentage among the tiers whose minimum distance is
// met. Tier order does not matter.
func ProximityBonus(cfg config.ProximityBonuses, distanceKm float64, serviceCost decimal.Decimal) models.ProximityBonus {
	bonus := models.ProximityBonus{Amount: decimal.Zero, DistanceKm: distanceKm}
	if !cfg.Enabled {
		bonus.Reason = "Proximity bonuses disabled"
		return bonus
	}

	for _, t := range cfg.BonusTiers {
		if distanceKm >= t.MinDistance && t.BonusPercentage > bonus.Percentage {
			bonus.Percentage = t.BonusPercentage
			bonus.AppliedTier = &models.BonusTier{MinDistanceKm: t.MinDistance, BonusPercentage: t.BonusPercentage}
		}
	}
	if bonus.Percentage == 0 {
		bonus.Reason = "No distance bonus applicable"
		return bonus
	}
	bonus.Amount = percentOf(serviceCost, decimal.NewFromFloat(bonus.Percentage))
	bonus.Reason = fmt.Sprintf("Distance bonus for %skm service", formatNumber(geo.Round(distanceKm, 2)))
	return bonus
}

// CoverageBonus pays a per-km percentage for service radius beyond the threshold and a flat
// percentage when fewer than the minimum number of providers serve the area. Both stack.
func CoverageBonus(cfg config.CoverageIncentives, serviceRadiusKm float64, providerCount int, serviceCost decimal.Decimal) models.CoverageBonus {
	bonus := models.CoverageBonus{
		Amount:          decimal.Zero,
		ServiceRadiusKm: serviceRadiusKm,
		ProviderCount:   providerCount,
		Reasons:         []string{},
	}
	if !cfg.Enabled {
		bonus.Reasons = append(bonus.Reasons, "Coverage incentives disabled")
		return bonus
	}

	if serviceRadiusKm > cfg.LargeRadiusThresholdKm {
		extraKm := serviceRadiusKm - cfg.LargeRadiusThresholdKm
		bonus.LargeRadiusPct = geo.Round(extraKm*cfg.LargeRadiusBonus*100, 2)
		bonus.Reasons = append(bonus.Reasons, fmt.Sprintf("Large service area bonus: %s%% for %skm over %skm",
			formatNumber(bonus.LargeRadiusPct), formatNumber(geo.Round(extraKm, 2)), formatNumber(cfg.LargeRadiusThresholdKm)))
	}
	if providerCount < cfg.MinProviders {
		bonus.UnderservedPct = geo.Round(cfg.UnderservedAreaBonus*100, 2)
		bonus.Reasons = append(bonus.Reasons, fmt.Sprintf("Underserved area bonus: %s%% (only %d providers)",
			formatNumber(bonus.UnderservedPct), providerCount))
	}

	bonus.Percentage = geo.Round(bonus.LargeRadiusPct+bonus.UnderservedPct, 2)
	bonus.Amount = percentOf(serviceCost, decimal.NewFromFloat(bonus.Percentage))
	return bonus
}

// TotalBonus adds the proximity and optional coverage bonuses.
func TotalBonus(proximity models.ProximityBonus, coverage *models.CoverageBonus) models.ProviderBonus {
	total := proximity.Amount
	if coverage != nil {
		total = total.Add(coverage.Amount)
	}
	return models.ProviderBonus{Proximity: proximity, Coverage: coverage, TotalAmount: total}
}

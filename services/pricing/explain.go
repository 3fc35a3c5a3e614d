package pricing

import (
	"fmt"
	"strings"

	"propertyservices/models"
	"propertyservices/services/geo"
)

const standardPricing = "Standard pricing (provider within base service area)"

func increasePct(factor float64) float64 {
	return geo.Round((factor-1)*100, 1)
}

// neutral reports whether every computed factor is exactly 1.0. Factors that cancel out are
// not neutral.
func neutral(b models.ProximityBreakdown) bool {
	switch {
	case b.Distance != nil && b.Distance.Multiplier != 1.0:
		return false
	case b.Market != nil && b.Market.Factor != 1.0:
		return false
	case b.ServiceType != nil && b.ServiceType.Factor != 1.0:
		return false
	case b.Time != nil && b.Time.Factor != 1.0:
		return false
	case b.Priority != nil && b.Priority.Factor != 1.0:
		return false
	}
	return true
}

// ExplainProximity renders the customer-facing sentence for a proximity result. The distance
// surcharge, time premium and service type adjustment are named whenever their factor is above
// 1.0, even when other factors offset them; market and priority adjustments are named whenever
// they are not neutral.
func ExplainProximity(r models.ProximityResult) string {
	if neutral(r.Breakdown) {
		return standardPricing
	}

	b := r.Breakdown
	var parts []string
	if b.Distance != nil && b.Distance.Multiplier > 1.0 {
		parts = append(parts, fmt.Sprintf("Distance surcharge: %s%% for %skm",
			formatNumber(increasePct(b.Distance.Multiplier)), formatNumber(geo.Round(r.DistanceKm, 2))))
	}
	if b.Time != nil && b.Time.Factor > 1.0 {
		descriptions := make([]string, 0, len(b.Time.Adjustments))
		for _, adj := range b.Time.Adjustments {
			descriptions = append(descriptions, adj.Description)
		}
		parts = append(parts, "Time premium: "+strings.Join(descriptions, ", "))
	}
	if b.ServiceType != nil && b.ServiceType.Factor > 1.0 {
		parts = append(parts, fmt.Sprintf("Service type adjustment: %s%% for %s",
			formatNumber(increasePct(b.ServiceType.Factor)), b.ServiceType.ServiceType))
	}
	if b.Market != nil && b.Market.Factor != 1.0 {
		parts = append(parts, fmt.Sprintf("Market adjustment: %s%% for %s",
			formatNumber(increasePct(b.Market.Factor)), b.Market.Description))
	}
	if b.Priority != nil && b.Priority.Factor != 1.0 {
		parts = append(parts, fmt.Sprintf("Priority adjustment: %s%% for %s",
			formatNumber(increasePct(b.Priority.Factor)), b.Priority.Description))
	}

	if len(parts) == 0 {
		return standardPricing
	}
	return fmt.Sprintf("Total %s%% increase: %s", formatNumber(r.TotalIncreasePct), strings.Join(parts, "; "))
}

func impact(factor float64) string {
	pct := increasePct(factor)
	if pct >= 0 {
		return "+" + formatNumber(pct) + "%"
	}
	return formatNumber(pct) + "%"
}

// ExplainProximityItems is the structured form of ExplainProximity. Only non-neutral factors
// produce items.
func ExplainProximityItems(r models.ProximityResult) models.ProximityExplanation {
	out := models.ProximityExplanation{Summary: ExplainProximity(r)}
	if neutral(r.Breakdown) {
		out.Message = "Standard pricing applies"
		return out
	}

	out.HasProximityCharge = true
	out.TotalIncrease = impact(r.Multiplier)
	out.Distance = formatNumber(geo.Round(r.DistanceKm, 2)) + " km"
	out.Tier = r.Tier

	b := r.Breakdown
	if b.Distance != nil && b.Distance.Multiplier != 1.0 {
		out.Items = append(out.Items, models.ExplanationItem{
			Type:        "distance",
			Label:       "Distance",
			Description: fmt.Sprintf("%s tier (%s)", b.Distance.Tier, b.Distance.Range),
			Impact:      impact(b.Distance.Multiplier),
		})
	}
	if b.Market != nil && b.Market.Factor != 1.0 {
		out.Items = append(out.Items, models.ExplanationItem{
			Type:        "market",
			Label:       "Market",
			Description: b.Market.Description,
			Impact:      impact(b.Market.Factor),
		})
	}
	if b.ServiceType != nil && b.ServiceType.Factor != 1.0 {
		out.Items = append(out.Items, models.ExplanationItem{
			Type:        "service_type",
			Label:       "Service type",
			Description: fmt.Sprintf("Adjustment for %s services", b.ServiceType.ServiceType),
			Impact:      impact(b.ServiceType.Factor),
		})
	}
	if b.Time != nil {
		for _, adj := range b.Time.Adjustments {
			out.Items = append(out.Items, models.ExplanationItem{
				Type:        adj.Type,
				Label:       "Time",
				Description: adj.Description,
				Impact:      impact(adj.Multiplier),
			})
		}
	}
	if b.Priority != nil && b.Priority.Factor != 1.0 {
		out.Items = append(out.Items, models.ExplanationItem{
			Type:        "priority",
			Label:       "Priority",
			Description: b.Priority.Description,
			Impact:      impact(b.Priority.Factor),
		})
	}
	return out
}

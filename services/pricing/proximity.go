package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/geo"
)

const (
	disabledTier          = "base"
	standardMarketType    = "standard"
	standardMarketDetails = "Standard market"
)

// ProximityInput is everything the proximity calculator needs for one provider and request.
// DistanceKm, when set, is used instead of recomputing the distance between Property and
// ProviderLocation.
type ProximityInput struct {
	Property         models.PropertyLocation
	Market           *models.Market
	ProviderLocation models.Location
	DistanceKm       *float64
	ServiceType      string
	RequestedAt      time.Time
	Priority         models.Priority
}

func (in ProximityInput) distance() float64 {
	if in.DistanceKm != nil {
		return *in.DistanceKm
	}
	return geo.Haversine(in.Property.Location, in.ProviderLocation)
}

// CalculateProximityMultiplier composes the distance, market, service type, time and priority
// factors into one multiplier rounded to three decimals. When proximity pricing is disabled the
// multiplier is 1.0, the tier is "base" and the breakdown is empty.
func CalculateProximityMultiplier(cfg *config.EngineConfig, in ProximityInput) models.ProximityResult {
	d := in.distance()
	pm := &cfg.ProximityMultipliers
	if !pm.Enabled {
		return models.ProximityResult{Multiplier: 1.0, DistanceKm: d, Tier: disabledTier}
	}

	distance := DistanceTierFactor(pm.DistanceTiers, d)
	market := marketFactor(cfg, in.Market)
	service := serviceTypeFactor(cfg, in.ServiceType)
	timing := timeFactor(pm.TimeBasedAdjustments, in.Market.LocalTime(in.RequestedAt))
	priority := priorityFactor(cfg, in.Priority)

	raw := distance.Multiplier * market.Factor * service.Factor * timing.Factor * priority.Factor
	return models.ProximityResult{
		Multiplier: geo.Round(raw, 3),
		DistanceKm: d,
		Tier:       distance.Tier,
		Breakdown: models.ProximityBreakdown{
			Distance:    &distance,
			Market:      &market,
			ServiceType: &service,
			Time:        &timing,
			Priority:    &priority,
		},
		TotalIncreasePct: geo.Round((raw-1)*100, 1),
	}
}

// DistanceTierFactor finds the [Min, Max) tier containing distanceKm. Distances past the last
// tier use the last tier. An empty table is neutral.
func DistanceTierFactor(tiers []config.DistanceTier, distanceKm float64) models.DistanceFactor {
	for _, t := range tiers {
		if distanceKm >= t.Min && distanceKm < t.Max {
			return models.DistanceFactor{
				Multiplier: t.Multiplier,
				Tier:       t.Label,
				Range:      fmt.Sprintf("%s-%skm", formatNumber(t.Min), formatNumber(t.Max)),
				DistanceKm: distanceKm,
			}
		}
	}
	if len(tiers) == 0 {
		return models.DistanceFactor{Multiplier: 1.0, Tier: disabledTier, DistanceKm: distanceKm}
	}
	last := tiers[len(tiers)-1]
	return models.DistanceFactor{
		Multiplier: last.Multiplier,
		Tier:       last.Label,
		Range:      fmt.Sprintf(">%skm", formatNumber(last.Min)),
		DistanceKm: distanceKm,
	}
}

func marketFactor(cfg *config.EngineConfig, market *models.Market) models.MarketFactor {
	if market != nil {
		if class, adj, ok := cfg.MarketClass(market.MarketKey()); ok {
			return models.MarketFactor{Factor: adj.AdjustmentFactor, Type: class, Description: adj.Description}
		}
	}
	return models.MarketFactor{Factor: 1.0, Type: standardMarketType, Description: standardMarketDetails}
}

func serviceTypeFactor(cfg *config.EngineConfig, serviceType string) models.ServiceTypeFactor {
	adj := cfg.ServiceTypeAdjustment(serviceType)
	return models.ServiceTypeFactor{Factor: adj.MultiplierFactor, MaxDistanceKm: adj.MaxDistanceKm, ServiceType: serviceType}
}

// timeFactor stacks every matched rule: peak hours, then off-peak, then weekend.
func timeFactor(rules config.TimeBasedAdjustments, at time.Time) models.TimeFactor {
	tf := models.TimeFactor{Factor: 1.0, Adjustments: []models.TimeAdjustment{}, RequestedAt: at}
	apply := func(kind string, multiplier float64, description string) {
		tf.Adjustments = append(tf.Adjustments, models.TimeAdjustment{Type: kind, Multiplier: multiplier, Description: description})
		tf.Factor *= multiplier
	}
	if rules.PeakHours.Matches(at) {
		apply("peak_hours", rules.PeakHours.AdditionalMultiplier, rules.PeakHours.Description)
	}
	if rules.OffPeak.Matches(at) {
		apply("off_peak", rules.OffPeak.AdditionalMultiplier, rules.OffPeak.Description)
	}
	if rules.Weekend.Matches(at) {
		apply("weekend", rules.Weekend.AdditionalMultiplier, rules.Weekend.Description)
	}
	return tf
}

func priorityFactor(cfg *config.EngineConfig, p models.Priority) models.PriorityFactor {
	if p == "" {
		p = models.PriorityStandard
	}
	name := string(p)
	return models.PriorityFactor{
		Factor:      cfg.PriorityMultiplier(name),
		Priority:    p,
		Description: strings.ToUpper(name[:1]) + name[1:] + " priority service",
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

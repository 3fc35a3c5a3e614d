package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistanceFactor is the tier matched by the raw distance.
type DistanceFactor struct {
	Multiplier float64 `json:"multiplier"`
	Tier       string  `json:"tier"`
	Range      string  `json:"range"`
	DistanceKm float64 `json:"distanceKm"`
}

// MarketFactor is the density-class adjustment of the property's market.
type MarketFactor struct {
	Factor      float64 `json:"factor"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
}

// ServiceTypeFactor is the per-service-type multiplier and distance cap.
type ServiceTypeFactor struct {
	Factor        float64 `json:"factor"`
	MaxDistanceKm float64 `json:"maxDistanceKm"`
	ServiceType   string  `json:"serviceType"`
}

// TimeAdjustment is one matched time-of-day or weekend rule.
type TimeAdjustment struct {
	Type        string  `json:"type"`
	Multiplier  float64 `json:"multiplier"`
	Description string  `json:"description"`
}

// TimeFactor is the product of every matched time rule.
type TimeFactor struct {
	Factor      float64          `json:"factor"`
	Adjustments []TimeAdjustment `json:"adjustments"`
	RequestedAt time.Time        `json:"requestedAt"`
}

// PriorityFactor is the request priority multiplier.
type PriorityFactor struct {
	Factor      float64  `json:"factor"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
}

// ProximityBreakdown keeps every intermediate factor. All fields are nil when proximity
// pricing is disabled.
type ProximityBreakdown struct {
	Distance    *DistanceFactor    `json:"distance,omitempty"`
	Market      *MarketFactor      `json:"market,omitempty"`
	ServiceType *ServiceTypeFactor `json:"serviceType,omitempty"`
	Time        *TimeFactor        `json:"time,omitempty"`
	Priority    *PriorityFactor    `json:"priority,omitempty"`
}

// IsEmpty reports whether no factor was computed.
func (b ProximityBreakdown) IsEmpty() bool {
	return b.Distance == nil && b.Market == nil && b.ServiceType == nil && b.Time == nil && b.Priority == nil
}

// ProximityResult is the derived, never-persisted outcome of proximity pricing.
type ProximityResult struct {
	Multiplier       float64            `json:"multiplier"`
	DistanceKm       float64            `json:"distanceKm"`
	Tier             string             `json:"tier"`
	Breakdown        ProximityBreakdown `json:"breakdown"`
	TotalIncreasePct float64            `json:"totalIncreasePercentage"`
}

// BonusTier is one proximity bonus step.
type BonusTier struct {
	MinDistanceKm   float64 `json:"minDistanceKm"`
	BonusPercentage float64 `json:"bonusPercentage"`
}

// ProximityBonus is the provider-side payment for serving a distant property.
type ProximityBonus struct {
	Amount      decimal.Decimal `json:"bonusAmount"`
	Percentage  float64         `json:"bonusPercentage"`
	AppliedTier *BonusTier      `json:"appliedTier,omitempty"`
	DistanceKm  float64         `json:"distanceKm"`
	Reason      string          `json:"reason"`
}

// CoverageBonus is the provider-side payment for a large service radius or an under-served area.
type CoverageBonus struct {
	Amount          decimal.Decimal `json:"bonusAmount"`
	Percentage      float64         `json:"bonusPercentage"`
	ServiceRadiusKm float64         `json:"serviceRadiusKm"`
	ProviderCount   int             `json:"providerCount"`
	LargeRadiusPct  float64         `json:"largeRadiusBonus"`
	UnderservedPct  float64         `json:"underservedBonus"`
	Reasons         []string        `json:"reasons"`
}

// ProviderBonus groups the incentive payments. It never changes the customer price.
type ProviderBonus struct {
	Proximity   ProximityBonus  `json:"proximity"`
	Coverage    *CoverageBonus  `json:"coverage,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CostDetails records the inputs behind a PriceBreakdown.
type CostDetails struct {
	BaseRate             decimal.Decimal `json:"baseRate"`
	BaseDurationMinutes  int             `json:"baseDuration"`
	SizeFactor           float64         `json:"sizeFactor"`
	PriorityMultiplier   float64         `json:"priorityMultiplier"`
	ProximityMultiplier  float64         `json:"proximityMultiplier"`
	MinimumFeeApplied    bool            `json:"minimumFeeApplied"`
	ProximityExplanation string          `json:"proximityExplanation,omitempty"`
}

// PriceBreakdown is the customer-facing price.
type PriceBreakdown struct {
	QuoteID       string           `json:"quoteId,omitempty"`
	ServiceCost   decimal.Decimal  `json:"serviceCost"`
	PlatformFee   decimal.Decimal  `json:"platformFee"`
	ProcessingFee decimal.Decimal  `json:"processingFee"`
	Taxes         decimal.Decimal  `json:"taxes"`
	TotalCost     decimal.Decimal  `json:"totalCost"`
	Currency      string           `json:"currency"`
	Proximity     *ProximityResult `json:"proximity,omitempty"`
	ProviderBonus *ProviderBonus   `json:"providerBonus,omitempty"`
	Details       CostDetails      `json:"breakdown"`
}

// ExplanationItem is one customer-facing line of a proximity explanation.
type ExplanationItem struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// ProximityExplanation is the structured form of the proximity explanation.
type ProximityExplanation struct {
	HasProximityCharge bool              `json:"hasProximityCharge"`
	Message            string            `json:"message,omitempty"`
	TotalIncrease      string            `json:"totalIncrease,omitempty"`
	Distance           string            `json:"distance,omitempty"`
	Tier               string            `json:"tier,omitempty"`
	Items              []ExplanationItem `json:"items,omitempty"`
	Summary            string            `json:"summary"`
}

// DistanceDistribution summarizes distances and multipliers of priced requests.
type DistanceDistribution struct {
	TotalRequests              int            `json:"totalRequests"`
	Buckets                    map[string]int `json:"distanceDistribution"`
	AverageDistanceKm          float64        `json:"averageDistance"`
	MaxDistanceKm              float64        `json:"maxDistance"`
	AverageProximityMultiplier float64        `json:"averageProximityMultiplier"`
}

// QuoteSample is the slice of a priced request kept for proximity analytics.
type QuoteSample struct {
	QuoteID     string    `json:"quoteId"`
	ServiceType string    `json:"serviceType"`
	DistanceKm  float64   `json:"distanceKm"`
	Multiplier  float64   `json:"multiplier"`
	CreatedAt   time.Time `json:"createdAt"`
}

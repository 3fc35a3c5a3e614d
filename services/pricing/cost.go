package pricing

import (
	"errors"

	"propertyservices/config"
	"propertyservices/models"
	"propertyservices/services/geo"

	"github.com/shopspring/decimal"
)

// ErrNoMarket is returned when a price cannot be composed because the property has no market.
var ErrNoMarket = errors.New("cannot price: no market")

const (
	minSizeFactor = 0.7
	maxSizeFactor = 2.0
)

var (
	hundred      = decimal.NewFromInt(100)
	minutesPerHr = decimal.NewFromInt(60)
)

// SizeFactor scales the base cost by property size, room count (cleaning only) and property
// type. The result is clamped to [0.7, 2.0].
func SizeFactor(p models.PropertyLocation, serviceType string) float64 {
	factor := 1.0
	if p.SquareFootage != nil {
		switch sq := *p.SquareFootage; {
		case sq > 2000:
			factor += 0.3
		case sq > 1500:
			factor += 0.2
		case sq < 800:
			factor -= 0.1
		}
	}
	if serviceType == "cleaning" {
		switch rooms := p.Rooms(); {
		case rooms > 6:
			factor += 0.2
		case rooms > 4:
			factor += 0.1
		}
	}
	switch p.PropertyType {
	case models.PropertyCommercial:
		factor += 0.25
	case models.PropertyVacation:
		factor += 0.1
	}
	return clampSizeFactor(geo.Round(factor, 2))
}

func clampSizeFactor(f float64) float64 {
	if f < minSizeFactor {
		return minSizeFactor
	}
	if f > maxSizeFactor {
		return maxSizeFactor
	}
	return f
}

// CostInput is the input of ComposeCost. Provider and Proximity are optional; proximity is
// applied only when present.
type CostInput struct {
	Property    models.PropertyLocation
	Market      *models.Market
	ServiceType string
	Priority    models.Priority
	Provider    *models.ServiceProvider
	Proximity   *models.ProximityResult
}

// ComposeCost prices one request. The market minimum fee is applied once, after the size,
// priority and proximity multipliers. Every amount is rounded to cents and the total is the
// sum of the rounded parts.
func ComposeCost(cfg *config.EngineConfig, in CostInput) (models.PriceBreakdown, error) {
	if in.Market == nil {
		return models.PriceBreakdown{}, ErrNoMarket
	}
	market := in.Market

	baseRate := decimal.NewFromFloat(cfg.DefaultRate(in.ServiceType, market.CountryCode))
	if in.Provider != nil && in.Provider.BaseHourlyRate != nil {
		baseRate = *in.Provider.BaseHourlyRate
	}
	duration := cfg.BaseDurationMinutes(in.ServiceType)
	sizeFactor := SizeFactor(in.Property, in.ServiceType)
	priorityMultiplier := priorityFactor(cfg, in.Priority).Factor

	cost := baseRate.Mul(decimal.NewFromInt(int64(duration))).Div(minutesPerHr).
		Mul(decimal.NewFromFloat(sizeFactor)).
		Mul(decimal.NewFromFloat(priorityMultiplier))

	proximityMultiplier := 1.0
	if in.Proximity != nil {
		proximityMultiplier = in.Proximity.Multiplier
		cost = cost.Mul(decimal.NewFromFloat(proximityMultiplier))
	}

	serviceCost := cost.Round(2)
	minimumFeeApplied := cost.LessThan(market.MinServiceFeeAmount)
	if minimumFeeApplied {
		serviceCost = market.MinServiceFeeAmount
	}

	commission := decimal.NewFromFloat(cfg.PaymentSettings.PlatformCommission)
	if market.CommissionRatePct.Valid {
		commission = market.CommissionRatePct.Decimal
	}
	platformFee := percentOf(serviceCost, commission)
	processingFee := percentOf(serviceCost, decimal.NewFromFloat(cfg.PaymentSettings.ProcessingFee)).
		Add(decimal.NewFromFloat(cfg.PaymentSettings.FixedFee)).Round(2)
	taxes := percentOf(serviceCost, market.TaxRatePct)

	details := models.CostDetails{
		BaseRate:            baseRate,
		BaseDurationMinutes: duration,
		SizeFactor:          sizeFactor,
		PriorityMultiplier:  priorityMultiplier,
		ProximityMultiplier: proximityMultiplier,
		MinimumFeeApplied:   minimumFeeApplied,
	}
	if in.Proximity != nil {
		details.ProximityExplanation = ExplainProximity(*in.Proximity)
	}

	return models.PriceBreakdown{
		ServiceCost:   serviceCost,
		PlatformFee:   platformFee,
		ProcessingFee: processingFee,
		Taxes:         taxes,
		TotalCost:     serviceCost.Add(platformFee).Add(processingFee).Add(taxes),
		Currency:      market.CurrencyCode,
		Proximity:     in.Proximity,
		Details:       details,
	}, nil
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

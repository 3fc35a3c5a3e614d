package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market carries the per-market money settings used by cost composition. An unset
// CommissionRatePct falls back to the platform commission; an explicit zero is kept.
type Market struct {
	ID                  string              `json:"id"`
	CountryCode         string              `json:"countryCode"`
	CurrencyCode        string              `json:"currencyCode"`
	CommissionRatePct   decimal.NullDecimal `json:"commissionRatePct"`
	TaxRatePct          decimal.Decimal     `json:"taxRatePct"`
	MinServiceFeeAmount decimal.Decimal     `json:"minServiceFeeAmount"`
	EmergencyMultiplier float64             `json:"emergencyMultiplier"`
	CityNameKey         string              `json:"cityNameKey"`
	Timezone            string              `json:"timezone,omitempty"`
}

// Validate rejects negative rates and fees.
func (m *Market) Validate() error {
	if m.CommissionRatePct.Valid && m.CommissionRatePct.Decimal.IsNegative() {
		return fmt.Errorf("%w: market %s commissionRatePct is %s", ErrInvalidMarket, m.ID, m.CommissionRatePct.Decimal)
	}
	if m.TaxRatePct.IsNegative() {
		return fmt.Errorf("%w: market %s taxRatePct is %s", ErrInvalidMarket, m.ID, m.TaxRatePct)
	}
	if m.MinServiceFeeAmount.IsNegative() {
		return fmt.Errorf("%w: market %s minServiceFeeAmount is %s", ErrInvalidMarket, m.ID, m.MinServiceFeeAmount)
	}
	return nil
}

// MarketKey is the lowercase city key used for density-class membership.
func (m *Market) MarketKey() string {
	return strings.ToLower(strings.TrimSpace(m.CityNameKey))
}

// LocalTime converts t into the market's timezone. Unknown or empty zones leave t unchanged.
func (m *Market) LocalTime(t time.Time) time.Time {
	if m == nil || m.Timezone == "" {
		return t
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return t
	}
	return t.In(loc)
}

// GeoPolygon represents a GeoJSON Polygon. Rings are lists of [longitude, latitude].
type GeoPolygon struct {
	Type        string        `bson:"type" json:"type"`
	Coordinates [][][]float64 `bson:"coordinates" json:"coordinates"`
}

// ServiceArea is a polygon that assigns points to a market.
type ServiceArea struct {
	ID       string     `bson:"id" json:"id"`
	MarketID string     `bson:"marketId" json:"marketId"`
	AreaName string     `bson:"areaName" json:"areaName"`
	Boundary GeoPolygon `bson:"boundary" json:"boundary"`
	IsActive bool       `bson:"isActive" json:"isActive"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaySchedule is one weekday entry of a provider's weekly availability.
type DaySchedule struct {
	Available bool   `bson:"available" json:"available"`
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty"` // "HH:MM", defaults to 08:00
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`     // "HH:MM", defaults to 18:00
}

// ServiceProvider is the read-only provider snapshot the engine scores and prices.
type ServiceProvider struct {
	ID                       string                       `bson:"id" json:"id"`
	Name                     string                       `bson:"name" json:"name,omitempty"`
	RatingAverage            float64                      `bson:"ratingAverage" json:"ratingAverage"`
	TotalReviews             int                          `bson:"totalReviews" json:"totalReviews"`
	CompletedJobs            int                          `bson:"completedJobs" json:"completedJobs"`
	ServiceCategories        []string                     `bson:"serviceCategories" json:"serviceCategories"`
	AcceptsEmergencyRequests bool                         `bson:"acceptsEmergencyRequests" json:"acceptsEmergencyRequests"`
	BaseHourlyRate           *decimal.Decimal             `bson:"-" json:"baseHourlyRate,omitempty"`
	AvailabilitySchedule     map[time.Weekday]DaySchedule `bson:"availabilitySchedule,omitempty" json:"availabilitySchedule,omitempty"`
	ServiceRadiusKm          float64                      `bson:"serviceRadiusKm" json:"serviceRadiusKm"`
}

// OffersService reports whether serviceType is one of the provider's declared categories.
func (p *ServiceProvider) OffersService(serviceType string) bool {
	for _, c := range p.ServiceCategories {
		if c == serviceType {
			return true
		}
	}
	return false
}

// Candidate pairs a located provider with its detail snapshot.
type Candidate struct {
	Provider ServiceProvider
	Location LocatedProvider
}

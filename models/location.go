package models

import (
	"fmt"
	"math"
	"time"
)

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Validate rejects NaN and out-of-range coordinates.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("must be between -90 and 90, got %v", l.Latitude)}
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("must be between -180 and 180, got %v", l.Longitude)}
	}
	return nil
}

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// ToGeoPoint converts the location to GeoJSON order.
func (l Location) ToGeoPoint() GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{l.Longitude, l.Latitude}}
}

// ServiceLocation is a provider's last reported position. One per provider, overwritten in place.
type ServiceLocation struct {
	ProviderID    string    `bson:"providerId" json:"providerId"`
	Location      Location  `bson:"location" json:"location"`
	IsAvailable   bool      `bson:"isAvailable" json:"isAvailable"`
	LastUpdatedAt time.Time `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
}

// IsFresh reports whether the location was updated within window of now.
func (sl ServiceLocation) IsFresh(now time.Time, window time.Duration) bool {
	return !sl.LastUpdatedAt.Before(now.Add(-window))
}

// LocatedProvider is a ServiceLocation annotated with its distance from a search origin.
type LocatedProvider struct {
	ServiceLocation
	DistanceKm float64 `json:"distanceKm"`
}

package models

import "strings"

// PropertyType classifies the customer's service site.
type PropertyType string

const (
	PropertyRental     PropertyType = "rental"
	PropertyVacation   PropertyType = "vacation"
	PropertyCommercial PropertyType = "commercial"
)

// ParsePropertyType validates a property type string.
func ParsePropertyType(s string) (PropertyType, error) {
	switch pt := PropertyType(strings.ToLower(strings.TrimSpace(s))); pt {
	case PropertyRental, PropertyVacation, PropertyCommercial:
		return pt, nil
	}
	return "", NewValidationError("propertyType", "unknown property type %q", s)
}

// PropertyLocation is the customer's service site.
type PropertyLocation struct {
	ID            string       `bson:"id" json:"id,omitempty"`
	Location      Location     `bson:"location" json:"location"`
	SquareFootage *int         `bson:"squareFootage,omitempty" json:"squareFootage,omitempty"`
	Bedrooms      *int         `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms     *int         `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	PropertyType  PropertyType `bson:"propertyType" json:"propertyType"`
	MarketID      string       `bson:"marketId" json:"marketId,omitempty"`
}

// Validate checks coordinates and the property type.
func (p PropertyLocation) Validate() error {
	if err := p.Location.Validate(); err != nil {
		return err
	}
	if _, err := ParsePropertyType(string(p.PropertyType)); err != nil {
		return err
	}
	return nil
}

// Rooms returns bedrooms plus bathrooms, treating missing values as zero.
func (p PropertyLocation) Rooms() int {
	rooms := 0
	if p.Bedrooms != nil {
		rooms += *p.Bedrooms
	}
	if p.Bathrooms != nil {
		rooms += *p.Bathrooms
	}
	return rooms
}

package models

import (
	"strings"
	"time"
)

// Priority is the urgency of a service request.
type Priority string

const (
	PriorityStandard  Priority = "standard"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// ParsePriority validates a priority string. Empty input means standard.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityStandard, nil
	case PriorityStandard, PriorityUrgent, PriorityEmergency:
		return p, nil
	}
	return "", NewValidationError("priority", "must be one of standard, urgent, emergency; got %q", s)
}

// ServiceRequestContext is the transient input to pricing.
type ServiceRequestContext struct {
	ServiceType       string    `json:"serviceType"`
	Priority          Priority  `json:"priority"`
	RequestedDateTime time.Time `json:"requestedDateTime"`
}

// MatchResult is one ranked provider returned by the matching flows.
type MatchResult struct {
	ProviderID              string  `json:"providerId"`
	Score                   float64 `json:"score"`
	DistanceKm              float64 `json:"distanceKm"`
	EstimatedArrivalMinutes int     `json:"estimatedArrivalMinutes"`
}

package matching

import (
	"time"

	"propertyservices/config"
	"propertyservices/models"
)

const (
	scheduleDefaultStart = "08:00"
	scheduleDefaultEnd   = "18:00"
)

// FilterEligible drops candidates that do not offer serviceType, refuse an emergency request,
// or are not scheduled at the requested time. at must already be in the market's local time.
// Order is preserved.
func FilterEligible(candidates []models.Candidate, serviceType string, priority models.Priority, at time.Time, defaultHours config.ClockRange) []models.Candidate {
	eligible := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Provider.OffersService(serviceType) {
			continue
		}
		if priority == models.PriorityEmergency && !c.Provider.AcceptsEmergencyRequests {
			continue
		}
		if !AvailableAt(&c.Provider, at, defaultHours) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// AvailableAt checks the provider's weekly schedule. Without a schedule the provider is
// available within defaultHours. Both range ends are inclusive.
func AvailableAt(p *models.ServiceProvider, at time.Time, defaultHours config.ClockRange) bool {
	minute := at.Hour()*60 + at.Minute()
	if len(p.AvailabilitySchedule) == 0 {
		return defaultHours.Contains(minute)
	}

	day, ok := p.AvailabilitySchedule[at.Weekday()]
	if !ok || !day.Available {
		return false
	}
	start, end := day.StartTime, day.EndTime
	if start == "" {
		start = scheduleDefaultStart
	}
	if end == "" {
		end = scheduleDefaultEnd
	}
	window, err := config.ParseClockRange(start + "-" + end)
	if err != nil {
		return false
	}
	return window.Contains(minute)
}

// WithinServiceLimits drops candidates farther than maxDistanceKm.
func WithinServiceLimits(candidates []models.Candidate, maxDistanceKm float64) []models.Candidate {
	kept := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Location.DistanceKm <= maxDistanceKm {
			kept = append(kept, c)
		}
	}
	return kept
}

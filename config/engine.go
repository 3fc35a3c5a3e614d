package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceTypeConfig describes one bookable service type.
type ServiceTypeConfig struct {
	Name           string `mapstructure:"name" json:"name"`
	Icon           string `mapstructure:"icon" json:"icon,omitempty"`
	Category       string `mapstructure:"category" json:"category"`
	BaseDuration   int    `mapstructure:"base_duration" json:"baseDuration"` // minutes
	RequiresAccess bool   `mapstructure:"requires_access" json:"requiresAccess"`
}

// ProximitySettings bounds the search radius of the matching flows.
type ProximitySettings struct {
	DefaultRadiusKm         float64 `mapstructure:"default_radius" json:"defaultRadius"`
	MaxRadiusKm             float64 `mapstructure:"max_radius" json:"maxRadius"`
	MinProvidersForMatching int     `mapstructure:"min_providers_for_matching" json:"minProvidersForMatching"`
}

// DistanceTier is one half-open [Min, Max) distance band.
type DistanceTier struct {
	Min        float64 `mapstructure:"min" json:"min"`
	Max        float64 `mapstructure:"max" json:"max"`
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
	Label      string  `mapstructure:"label" json:"label"`
}

// MarketAdjustment is one market density class.
type MarketAdjustment struct {
	Description      string   `mapstructure:"description" json:"description"`
	AdjustmentFactor float64  `mapstructure:"adjustment_factor" json:"adjustmentFactor"`
	Markets          []string `mapstructure:"markets" json:"markets"`
}

// ServiceTypeAdjustment is the proximity sensitivity of a service type.
type ServiceTypeAdjustment struct {
	MultiplierFactor float64 `mapstructure:"multiplier_factor" json:"multiplierFactor"`
	MaxDistanceKm    float64 `mapstructure:"max_distance_km" json:"maxDistanceKm"`
}

// TimeWindowRule applies AdditionalMultiplier when the request time falls in any of Hours.
type TimeWindowRule struct {
	Hours                []string `mapstructure:"hours" json:"hours"` // "HH:MM-HH:MM", may wrap past midnight
	AdditionalMultiplier float64  `mapstructure:"additional_multiplier" json:"additionalMultiplier"`
	Description          string   `mapstructure:"description" json:"description"`
}

// Matches reports whether the clock time of t falls in one of the rule's ranges.
func (r TimeWindowRule) Matches(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	for _, h := range r.Hours {
		cr, err := ParseClockRange(h)
		if err != nil {
			continue
		}
		if cr.Contains(minute) {
			return true
		}
	}
	return false
}

// WeekendRule applies AdditionalMultiplier on the named days.
type WeekendRule struct {
	Days                 []string `mapstructure:"days" json:"days"`
	AdditionalMultiplier float64  `mapstructure:"additional_multiplier" json:"additionalMultiplier"`
	Description          string   `mapstructure:"description" json:"description"`
}

// Matches reports whether t falls on one of the rule's days.
func (r WeekendRule) Matches(t time.Time) bool {
	for _, d := range r.Days {
		if wd, ok := weekdays[strings.ToLower(d)]; ok && wd == t.Weekday() {
			return true
		}
	}
	return false
}

type TimeBasedAdjustments struct {
	PeakHours TimeWindowRule `mapstructure:"peak_hours" json:"peakHours"`
	OffPeak   TimeWindowRule `mapstructure:"off_peak" json:"offPeak"`
	Weekend   WeekendRule    `mapstructure:"weekend" json:"weekend"`
}

// ProximityMultipliers configures the proximity pricing calculator.
type ProximityMultipliers struct {
	Enabled                bool                             `mapstructure:"enabled" json:"enabled"`
	BaseRadiusKm           float64                          `mapstructure:"base_radius_km" json:"baseRadiusKm"`
	MaxRadiusKm            float64                          `mapstructure:"max_radius_km" json:"maxRadiusKm"`
	DistanceTiers          []DistanceTier                   `mapstructure:"distance_tiers" json:"distanceTiers"`
	MarketAdjustments      map[string]MarketAdjustment      `mapstructure:"market_adjustments" json:"marketAdjustments"`
	ServiceTypeAdjustments map[string]ServiceTypeAdjustment `mapstructure:"service_type_adjustments" json:"serviceTypeAdjustments"`
	TimeBasedAdjustments   TimeBasedAdjustments             `mapstructure:"time_based_adjustments" json:"timeBasedAdjustments"`
}

// BonusTierConfig pays BonusPercentage of the service cost from MinDistance km.
type BonusTierConfig struct {
	MinDistance     float64 `mapstructure:"min_distance" json:"minDistance"`
	BonusPercentage float64 `mapstructure:"bonus_percentage" json:"bonusPercentage"`
}

type ProximityBonuses struct {
	Enabled    bool              `mapstructure:"enabled" json:"enabled"`
	BonusTiers []BonusTierConfig `mapstructure:"bonus_tiers" json:"bonusTiers"`
}

type CoverageIncentives struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// LargeRadiusBonus is a fraction per km of service radius over LargeRadiusThresholdKm.
	LargeRadiusBonus       float64 `mapstructure:"large_radius_bonus" json:"largeRadiusBonus"`
	LargeRadiusThresholdKm float64 `mapstructure:"large_radius_threshold_km" json:"largeRadiusThresholdKm"`
	// UnderservedAreaBonus is a fraction applied when fewer than MinProviders serve the area.
	UnderservedAreaBonus float64 `mapstructure:"underserved_area_bonus" json:"underservedAreaBonus"`
	MinProviders         int     `mapstructure:"min_providers" json:"minProviders"`
}

// ProviderIncentives configures provider-side bonus payments.
type ProviderIncentives struct {
	ProximityBonuses   ProximityBonuses   `mapstructure:"proximity_bonuses" json:"proximityBonuses"`
	CoverageIncentives CoverageIncentives `mapstructure:"coverage_incentives" json:"coverageIncentives"`
}

// PaymentSettings are the platform-wide fee parameters.
type PaymentSettings struct {
	PlatformCommission float64 `mapstructure:"platform_commission" json:"platformCommission"` // percent, used when a market has none
	ProcessingFee      float64 `mapstructure:"processing_fee" json:"processingFee"`           // percent
	FixedFee           float64 `mapstructure:"fixed_fee" json:"fixedFee"`
}

// ScoreWeights parameterizes a match scorer variant.
type ScoreWeights struct {
	RatingWeight       float64 `mapstructure:"rating_weight" json:"ratingWeight"`
	DistanceCap        float64 `mapstructure:"distance_cap" json:"distanceCap"`
	DistanceDecayPerKm float64 `mapstructure:"distance_decay_per_km" json:"distanceDecayPerKm"`
	ExperienceCap      float64 `mapstructure:"experience_cap" json:"experienceCap"`
	ExperienceDivisor  float64 `mapstructure:"experience_divisor" json:"experienceDivisor"`
	CategoryBonus      float64 `mapstructure:"category_bonus" json:"categoryBonus"`
	PriorityBonus      float64 `mapstructure:"priority_bonus" json:"priorityBonus"`
	FreshnessBonus     float64 `mapstructure:"freshness_bonus" json:"freshnessBonus"`
}

// MatchingConfig holds the constants of the matching and discovery flows.
type MatchingConfig struct {
	Basic                ScoreWeights  `mapstructure:"basic" json:"basic"`
	Full                 ScoreWeights  `mapstructure:"full" json:"full"`
	MatchLimit           int           `mapstructure:"match_limit" json:"matchLimit"`
	DiscoveryLimit       int           `mapstructure:"discovery_limit" json:"discoveryLimit"`
	DiscoveryRadiusKm    float64       `mapstructure:"discovery_radius_km" json:"discoveryRadiusKm"`
	MatchSpeedKmh        float64       `mapstructure:"match_speed_kmh" json:"matchSpeedKmh"`
	DiscoverySpeedKmh    float64       `mapstructure:"discovery_speed_kmh" json:"discoverySpeedKmh"`
	MinArrivalMinutes    int           `mapstructure:"min_arrival_minutes" json:"minArrivalMinutes"`
	FreshnessWindow      time.Duration `mapstructure:"freshness_window" json:"freshnessWindow"`
	DefaultScheduleStart string        `mapstructure:"default_schedule_start" json:"defaultScheduleStart"`
	DefaultScheduleEnd   string        `mapstructure:"default_schedule_end" json:"defaultScheduleEnd"`
}

// EngineConfig is the immutable configuration snapshot consumed by the matching and
// pricing engines. Obtain one from an EngineStore; never mutate it after loading.
type EngineConfig struct {
	Version              string                        `mapstructure:"version" json:"version"`
	ServiceTypes         map[string]ServiceTypeConfig  `mapstructure:"service_types" json:"serviceTypes"`
	PriorityMultipliers  map[string]float64            `mapstructure:"priority_multipliers" json:"priorityMultipliers"`
	ProximitySettings    ProximitySettings             `mapstructure:"proximity_settings" json:"proximitySettings"`
	ProximityMultipliers ProximityMultipliers          `mapstructure:"proximity_multipliers" json:"proximityMultipliers"`
	ProviderIncentives   ProviderIncentives            `mapstructure:"provider_incentives" json:"providerIncentives"`
	PaymentSettings      PaymentSettings               `mapstructure:"payment_settings" json:"paymentSettings"`
	DefaultRates         map[string]map[string]float64 `mapstructure:"default_rates" json:"defaultRates"`
	Matching             MatchingConfig                `mapstructure:"matching" json:"matching"`
}

const (
	defaultBaseDurationMinutes = 120
	defaultRateServiceType     = "cleaning"
	defaultRateKey             = "default"
	defaultServiceMaxKm        = 25
)

// legacyIncentiveKeys are accepted when provider_incentives is absent.
var legacyIncentiveKeys = []string{
	"vendor_incentives",
	"seller_incentives",
	"proximity_multipliers.vendor_incentives",
	"proximity_multipliers.seller_incentives",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DefaultEngineConfig returns the built-in configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Version: "builtin",
		ServiceTypes: map[string]ServiceTypeConfig{
			"cleaning":     {Name: "House Cleaning", Icon: "cleaning-icon", Category: "maintenance", BaseDuration: 120, RequiresAccess: true},
			"maintenance":  {Name: "General Maintenance", Icon: "maintenance-icon", Category: "maintenance", BaseDuration: 180, RequiresAccess: true},
			"landscaping":  {Name: "Landscaping", Icon: "landscaping-icon", Category: "outdoor", BaseDuration: 240},
			"pest-control": {Name: "Pest Control", Icon: "pest-control-icon", Category: "maintenance", BaseDuration: 90, RequiresAccess: true},
			"plumbing":     {Name: "Plumbing Services", Icon: "plumbing-icon", Category: "emergency", BaseDuration: 120, RequiresAccess: true},
			"electrical":   {Name: "Electrical Services", Icon: "electrical-icon", Category: "emergency", BaseDuration: 150, RequiresAccess: true},
		},
		PriorityMultipliers: map[string]float64{
			"standard":  1.0,
			"urgent":    1.25,
			"emergency": 1.5,
		},
		ProximitySettings: ProximitySettings{
			DefaultRadiusKm:         15,
			MaxRadiusKm:             50,
			MinProvidersForMatching: 3,
		},
		ProximityMultipliers: ProximityMultipliers{
			Enabled:      true,
			BaseRadiusKm: 5,
			MaxRadiusKm:  25,
			DistanceTiers: []DistanceTier{
				{Min: 0, Max: 2, Multiplier: 1.0, Label: "Very Close"},
				{Min: 2, Max: 5, Multiplier: 1.1, Label: "Close"},
				{Min: 5, Max: 10, Multiplier: 1.25, Label: "Nearby"},
				{Min: 10, Max: 15, Multiplier: 1.4, Label: "Moderate"},
				{Min: 15, Max: 20, Multiplier: 1.6, Label: "Far"},
				{Min: 20, Max: 25, Multiplier: 1.8, Label: "Very Far"},
			},
			MarketAdjustments: map[string]MarketAdjustment{
				"dense_urban": {Description: "Dense urban areas (high provider density)", AdjustmentFactor: 0.8, Markets: []string{"new_york", "san_francisco", "boston"}},
				"suburban":    {Description: "Suburban areas (medium provider density)", AdjustmentFactor: 1.0, Markets: []string{"austin", "nashville", "denver"}},
				"rural":       {Description: "Rural areas (low provider density)", AdjustmentFactor: 1.3, Markets: []string{"rural_areas"}},
			},
			ServiceTypeAdjustments: map[string]ServiceTypeAdjustment{
				"emergency":   {MultiplierFactor: 1.5, MaxDistanceKm: 15},
				"cleaning":    {MultiplierFactor: 1.0, MaxDistanceKm: 25},
				"maintenance": {MultiplierFactor: 1.2, MaxDistanceKm: 20},
				"landscaping": {MultiplierFactor: 1.3, MaxDistanceKm: 15},
			},
			TimeBasedAdjustments: TimeBasedAdjustments{
				PeakHours: TimeWindowRule{Hours: []string{"08:00-10:00", "17:00-19:00"}, AdditionalMultiplier: 1.2, Description: "High demand periods"},
				OffPeak:   TimeWindowRule{Hours: []string{"22:00-06:00"}, AdditionalMultiplier: 1.4, Description: "Off-hours premium"},
				Weekend:   WeekendRule{Days: []string{"saturday", "sunday"}, AdditionalMultiplier: 1.15, Description: "Weekend service premium"},
			},
		},
		ProviderIncentives: ProviderIncentives{
			ProximityBonuses: ProximityBonuses{
				Enabled: true,
				BonusTiers: []BonusTierConfig{
					{MinDistance: 10, BonusPercentage: 5},
					{MinDistance: 15, BonusPercentage: 10},
					{MinDistance: 20, BonusPercentage: 15},
				},
			},
			CoverageIncentives: CoverageIncentives{
				Enabled:                true,
				LargeRadiusBonus:       0.02,
				LargeRadiusThresholdKm: 15,
				UnderservedAreaBonus:   0.2,
				MinProviders:           3,
			},
		},
		PaymentSettings: PaymentSettings{
			PlatformCommission: 15.0,
			ProcessingFee:      2.9,
			FixedFee:           0.30,
		},
		// Country keys are lowercase; viper folds map keys.
		DefaultRates: map[string]map[string]float64{
			"cleaning":     {"us": 35, defaultRateKey: 30},
			"maintenance":  {"us": 45, defaultRateKey: 40},
			"landscaping":  {"us": 40, defaultRateKey: 35},
			"pest-control": {"us": 50, defaultRateKey: 45},
			"plumbing":     {"us": 75, defaultRateKey: 65},
			"electrical":   {"us": 80, defaultRateKey: 70},
		},
		Matching: MatchingConfig{
			Basic: ScoreWeights{
				RatingWeight: 40, DistanceCap: 30, DistanceDecayPerKm: 2,
				ExperienceCap: 30, ExperienceDivisor: 10,
			},
			Full: ScoreWeights{
				RatingWeight: 30, DistanceCap: 25, DistanceDecayPerKm: 1.5,
				ExperienceCap: 25, ExperienceDivisor: 5,
				CategoryBonus: 10, PriorityBonus: 10, FreshnessBonus: 10,
			},
			MatchLimit:           5,
			DiscoveryLimit:       20,
			DiscoveryRadiusKm:    10,
			MatchSpeedKmh:        25,
			DiscoverySpeedKmh:    30,
			MinArrivalMinutes:    15,
			FreshnessWindow:      30 * time.Minute,
			DefaultScheduleStart: "08:00",
			DefaultScheduleEnd:   "18:00",
		},
	}
}

// LoadEngineConfig decodes an engine configuration from v. Keys missing from v keep their
// built-in values; lists and tables are replaced as a whole, never merged element-wise.
func LoadEngineConfig(v *viper.Viper) (*EngineConfig, error) {
	defaults := DefaultEngineConfig()
	cfg := DefaultEngineConfig()
	cfg.clearCollections()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode engine config: %w", err)
	}
	if !v.IsSet("provider_incentives") {
		for _, key := range legacyIncentiveKeys {
			sub := v.Sub(key)
			if !v.IsSet(key) || sub == nil {
				continue
			}
			if err := sub.Unmarshal(&cfg.ProviderIncentives); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
			break
		}
	}
	cfg.fillCollections(defaults)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEngineConfigFile reads the YAML file at path.
func LoadEngineConfigFile(path string) (*EngineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read engine config %s: %w", path, err)
	}
	return LoadEngineConfig(v)
}

func (c *EngineConfig) clearCollections() {
	c.ServiceTypes = nil
	c.PriorityMultipliers = nil
	c.DefaultRates = nil
	pm := &c.ProximityMultipliers
	pm.DistanceTiers = nil
	pm.MarketAdjustments = nil
	pm.ServiceTypeAdjustments = nil
	pm.TimeBasedAdjustments.PeakHours.Hours = nil
	pm.TimeBasedAdjustments.OffPeak.Hours = nil
	pm.TimeBasedAdjustments.Weekend.Days = nil
	c.ProviderIncentives.ProximityBonuses.BonusTiers = nil
}

func (c *EngineConfig) fillCollections(d *EngineConfig) {
	if len(c.ServiceTypes) == 0 {
		c.ServiceTypes = d.ServiceTypes
	}
	if len(c.PriorityMultipliers) == 0 {
		c.PriorityMultipliers = d.PriorityMultipliers
	}
	if len(c.DefaultRates) == 0 {
		c.DefaultRates = d.DefaultRates
	}
	pm, dpm := &c.ProximityMultipliers, &d.ProximityMultipliers
	if len(pm.DistanceTiers) == 0 {
		pm.DistanceTiers = dpm.DistanceTiers
	}
	if len(pm.MarketAdjustments) == 0 {
		pm.MarketAdjustments = dpm.MarketAdjustments
	}
	if len(pm.ServiceTypeAdjustments) == 0 {
		pm.ServiceTypeAdjustments = dpm.ServiceTypeAdjustments
	}
	if pm.TimeBasedAdjustments.PeakHours.Hours == nil {
		pm.TimeBasedAdjustments.PeakHours.Hours = dpm.TimeBasedAdjustments.PeakHours.Hours
	}
	if pm.TimeBasedAdjustments.OffPeak.Hours == nil {
		pm.TimeBasedAdjustments.OffPeak.Hours = dpm.TimeBasedAdjustments.OffPeak.Hours
	}
	if pm.TimeBasedAdjustments.Weekend.Days == nil {
		pm.TimeBasedAdjustments.Weekend.Days = dpm.TimeBasedAdjustments.Weekend.Days
	}
	if c.ProviderIncentives.ProximityBonuses.BonusTiers == nil {
		c.ProviderIncentives.ProximityBonuses.BonusTiers = d.ProviderIncentives.ProximityBonuses.BonusTiers
	}
}

// Validate rejects configurations the engines cannot evaluate deterministically.
func (c *EngineConfig) Validate() error {
	tiers := c.ProximityMultipliers.DistanceTiers
	if len(tiers) == 0 {
		return fmt.Errorf("proximity_multipliers.distance_tiers: at least one tier is required")
	}
	for i, t := range tiers {
		if t.Min >= t.Max {
			return fmt.Errorf("distance tier %d (%s): min %v must be below max %v", i, t.Label, t.Min, t.Max)
		}
		if t.Multiplier < 0 {
			return fmt.Errorf("distance tier %d (%s): negative multiplier", i, t.Label)
		}
		if i > 0 && t.Min != tiers[i-1].Max {
			return fmt.Errorf("distance tier %d (%s): min %v does not continue previous max %v", i, t.Label, t.Min, tiers[i-1].Max)
		}
	}

	seen := make(map[string]string)
	for class, adj := range c.ProximityMultipliers.MarketAdjustments {
		if adj.AdjustmentFactor < 0 {
			return fmt.Errorf("market class %s: negative adjustment factor", class)
		}
		for _, m := range adj.Markets {
			key := strings.ToLower(strings.TrimSpace(m))
			if other, dup := seen[key]; dup && other != class {
				return fmt.Errorf("market %s belongs to both %s and %s", key, other, class)
			}
			seen[key] = class
		}
	}

	for name, adj := range c.ProximityMultipliers.ServiceTypeAdjustments {
		if adj.MultiplierFactor < 0 || adj.MaxDistanceKm < 0 {
			return fmt.Errorf("service type adjustment %s: negative value", name)
		}
	}

	tb := c.ProximityMultipliers.TimeBasedAdjustments
	for _, rule := range []TimeWindowRule{tb.PeakHours, tb.OffPeak} {
		for _, h := range rule.Hours {
			if _, err := ParseClockRange(h); err != nil {
				return err
			}
		}
	}
	for _, d := range tb.Weekend.Days {
		if _, ok := weekdays[strings.ToLower(d)]; !ok {
			return fmt.Errorf("weekend day %q is not a weekday name", d)
		}
	}

	for p, m := range c.PriorityMultipliers {
		if m < 0 {
			return fmt.Errorf("priority multiplier %s: negative value", p)
		}
	}
	for st, rates := range c.DefaultRates {
		for country, r := range rates {
			if r < 0 {
				return fmt.Errorf("default rate %s/%s: negative value", st, country)
			}
		}
	}
	ps := c.PaymentSettings
	if ps.PlatformCommission < 0 || ps.ProcessingFee < 0 || ps.FixedFee < 0 {
		return fmt.Errorf("payment_settings: negative rate")
	}
	for _, t := range c.ProviderIncentives.ProximityBonuses.BonusTiers {
		if t.BonusPercentage < 0 || t.MinDistance < 0 {
			return fmt.Errorf("bonus tier at %vkm: negative value", t.MinDistance)
		}
	}

	m := c.Matching
	if m.Basic.ExperienceDivisor <= 0 || m.Full.ExperienceDivisor <= 0 {
		return fmt.Errorf("matching: experience divisor must be positive")
	}
	if m.MatchSpeedKmh <= 0 || m.DiscoverySpeedKmh <= 0 {
		return fmt.Errorf("matching: average speeds must be positive")
	}
	if m.MatchLimit <= 0 || m.DiscoveryLimit <= 0 {
		return fmt.Errorf("matching: result limits must be positive")
	}
	if m.FreshnessWindow <= 0 {
		return fmt.Errorf("matching: freshness window must be positive")
	}
	if _, err := ParseClockRange(m.DefaultScheduleStart + "-" + m.DefaultScheduleEnd); err != nil {
		return fmt.Errorf("matching default schedule: %w", err)
	}
	return nil
}

// ServiceType returns the configuration of a known service type.
func (c *EngineConfig) ServiceType(name string) (ServiceTypeConfig, bool) {
	st, ok := c.ServiceTypes[name]
	return st, ok
}

// ServiceTypeNames returns the configured service types in sorted order.
func (c *EngineConfig) ServiceTypeNames() []string {
	names := make([]string, 0, len(c.ServiceTypes))
	for n := range c.ServiceTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BaseDurationMinutes falls back to 120 for unknown or unset service types.
func (c *EngineConfig) BaseDurationMinutes(serviceType string) int {
	if st, ok := c.ServiceTypes[serviceType]; ok && st.BaseDuration > 0 {
		return st.BaseDuration
	}
	return defaultBaseDurationMinutes
}

// PriorityMultiplier returns 1.0 for priorities missing from the table.
func (c *EngineConfig) PriorityMultiplier(priority string) float64 {
	if m, ok := c.PriorityMultipliers[priority]; ok {
		return m
	}
	return 1.0
}

// DefaultRate is the hourly rate used when a provider declares none. Unknown service types
// use the cleaning rates; unknown countries use the "default" column.
func (c *EngineConfig) DefaultRate(serviceType, countryCode string) float64 {
	rates, ok := c.DefaultRates[serviceType]
	if !ok {
		rates = c.DefaultRates[defaultRateServiceType]
	}
	if r, ok := rates[strings.ToLower(countryCode)]; ok {
		return r
	}
	return rates[defaultRateKey]
}

// ServiceTypeAdjustment returns factor 1.0 and a 25 km cap for unknown service types.
func (c *EngineConfig) ServiceTypeAdjustment(serviceType string) ServiceTypeAdjustment {
	if adj, ok := c.ProximityMultipliers.ServiceTypeAdjustments[serviceType]; ok {
		return adj
	}
	maxKm := c.ProximityMultipliers.MaxRadiusKm
	if maxKm <= 0 {
		maxKm = defaultServiceMaxKm
	}
	return ServiceTypeAdjustment{MultiplierFactor: 1.0, MaxDistanceKm: maxKm}
}

// MarketClass finds the density class containing marketKey.
func (c *EngineConfig) MarketClass(marketKey string) (string, MarketAdjustment, bool) {
	key := strings.ToLower(strings.TrimSpace(marketKey))
	classes := make([]string, 0, len(c.ProximityMultipliers.MarketAdjustments))
	for name := range c.ProximityMultipliers.MarketAdjustments {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	for _, name := range classes {
		adj := c.ProximityMultipliers.MarketAdjustments[name]
		for _, m := range adj.Markets {
			if strings.ToLower(strings.TrimSpace(m)) == key {
				return name, adj, true
			}
		}
	}
	return "", MarketAdjustment{}, false
}

// ClockRange is an inclusive minute-of-day range. Start > End wraps past midnight.
type ClockRange struct {
	Start int
	End   int
}

// Contains reports whether minute (0..1439) falls in the range, bounds included.
func (r ClockRange) Contains(minute int) bool {
	if r.Start <= r.End {
		return minute >= r.Start && minute <= r.End
	}
	return minute >= r.Start || minute <= r.End
}

// ParseClockRange parses "HH:MM-HH:MM".
func ParseClockRange(s string) (ClockRange, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return ClockRange{}, fmt.Errorf("time range %q: expected HH:MM-HH:MM", s)
	}
	a, err := ParseClock(start)
	if err != nil {
		return ClockRange{}, fmt.Errorf("time range %q: %w", s, err)
	}
	b, err := ParseClock(end)
	if err != nil {
		return ClockRange{}, fmt.Errorf("time range %q: %w", s, err)
	}
	return ClockRange{Start: a, End: b}, nil
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("clock %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("clock %q: bad hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return h*60 + m, nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viperFromYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestDefaultEngineConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultEngineConfig().Validate())
}

func TestShippedYAMLMatchesDefaults(t *testing.T) {
	cfg, err := LoadEngineConfigFile(filepath.Join(".", "property_services.yaml"))
	require.NoError(t, err)

	def := DefaultEngineConfig()
	assert.Equal(t, "2024.01", cfg.Version)
	assert.Equal(t, def.ProximityMultipliers.DistanceTiers, cfg.ProximityMultipliers.DistanceTiers)
	assert.Equal(t, def.ProviderIncentives, cfg.ProviderIncentives)
	assert.Equal(t, def.Matching, cfg.Matching)
	assert.Equal(t, def.DefaultRates, cfg.DefaultRates)
	assert.Equal(t, def.ServiceTypes, cfg.ServiceTypes)
}

func TestLoadEngineConfigReplacesListsWholesale(t *testing.T) {
	v := viperFromYAML(t, `
proximity_multipliers:
  distance_tiers:
    - { min: 0, max: 3, multiplier: 1.0, label: Near }
    - { min: 3, max: 9, multiplier: 1.5, label: Far }
`)
	cfg, err := LoadEngineConfig(v)
	require.NoError(t, err)

	require.Len(t, cfg.ProximityMultipliers.DistanceTiers, 2)
	assert.Equal(t, "Far", cfg.ProximityMultipliers.DistanceTiers[1].Label)
	// Untouched scalars keep their defaults.
	assert.True(t, cfg.ProximityMultipliers.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Matching.FreshnessWindow)
}

func TestLoadEngineConfigDisabledFlags(t *testing.T) {
	v := viperFromYAML(t, `
proximity_multipliers:
  enabled: false
provider_incentives:
  proximity_bonuses:
    enabled: false
`)
	cfg, err := LoadEngineConfig(v)
	require.NoError(t, err)
	assert.False(t, cfg.ProximityMultipliers.Enabled)
	assert.False(t, cfg.ProviderIncentives.ProximityBonuses.Enabled)
	assert.True(t, cfg.ProviderIncentives.CoverageIncentives.Enabled)
	assert.Len(t, cfg.ProviderIncentives.ProximityBonuses.BonusTiers, 3)
}

func TestLoadEngineConfigLegacyIncentiveKeys(t *testing.T) {
	for _, key := range []string{"seller_incentives", "vendor_incentives"} {
		t.Run(key, func(t *testing.T) {
			v := viperFromYAML(t, key+`:
  proximity_bonuses:
    enabled: true
    bonus_tiers:
      - { min_distance: 5, bonus_percentage: 3 }
`)
			cfg, err := LoadEngineConfig(v)
			require.NoError(t, err)
			require.Len(t, cfg.ProviderIncentives.ProximityBonuses.BonusTiers, 1)
			assert.Equal(t, 3.0, cfg.ProviderIncentives.ProximityBonuses.BonusTiers[0].BonusPercentage)
		})
	}
}

func TestLoadEngineConfigPrefersProviderIncentives(t *testing.T) {
	v := viperFromYAML(t, `
provider_incentives:
  proximity_bonuses:
    bonus_tiers:
      - { min_distance: 1, bonus_percentage: 1 }
seller_incentives:
  proximity_bonuses:
    bonus_tiers:
      - { min_distance: 9, bonus_percentage: 9 }
`)
	cfg, err := LoadEngineConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.ProviderIncentives.ProximityBonuses.BonusTiers[0].BonusPercentage)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *EngineConfig){
		"gap between tiers": func(c *EngineConfig) {
			c.ProximityMultipliers.DistanceTiers = []DistanceTier{{Min: 0, Max: 2, Multiplier: 1}, {Min: 3, Max: 5, Multiplier: 1.1}}
		},
		"overlapping tiers": func(c *EngineConfig) {
			c.ProximityMultipliers.DistanceTiers = []DistanceTier{{Min: 0, Max: 4, Multiplier: 1}, {Min: 2, Max: 5, Multiplier: 1.1}}
		},
		"empty tier table": func(c *EngineConfig) {
			c.ProximityMultipliers.DistanceTiers = nil
		},
		"market in two classes": func(c *EngineConfig) {
			adj := c.ProximityMultipliers.MarketAdjustments["rural"]
			adj.Markets = append(adj.Markets, "austin")
			c.ProximityMultipliers.MarketAdjustments["rural"] = adj
		},
		"bad clock range": func(c *EngineConfig) {
			c.ProximityMultipliers.TimeBasedAdjustments.PeakHours.Hours = []string{"8am-10am"}
		},
		"unknown weekday": func(c *EngineConfig) {
			c.ProximityMultipliers.TimeBasedAdjustments.Weekend.Days = []string{"funday"}
		},
		"negative processing fee": func(c *EngineConfig) {
			c.PaymentSettings.ProcessingFee = -1
		},
		"zero experience divisor": func(c *EngineConfig) {
			c.Matching.Full.ExperienceDivisor = 0
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLookupFallbacks(t *testing.T) {
	cfg := DefaultEngineConfig()

	assert.Equal(t, 180, cfg.BaseDurationMinutes("maintenance"))
	assert.Equal(t, 120, cfg.BaseDurationMinutes("window-washing"))

	assert.Equal(t, 1.25, cfg.PriorityMultiplier("urgent"))
	assert.Equal(t, 1.0, cfg.PriorityMultiplier("whenever"))

	assert.Equal(t, 35.0, cfg.DefaultRate("cleaning", "US"))
	assert.Equal(t, 65.0, cfg.DefaultRate("plumbing", "KE"))
	assert.Equal(t, 30.0, cfg.DefaultRate("window-washing", "KE"))

	adj := cfg.ServiceTypeAdjustment("window-washing")
	assert.Equal(t, 1.0, adj.MultiplierFactor)
	assert.Equal(t, 25.0, adj.MaxDistanceKm)

	class, madj, ok := cfg.MarketClass(" Boston ")
	require.True(t, ok)
	assert.Equal(t, "dense_urban", class)
	assert.Equal(t, 0.8, madj.AdjustmentFactor)

	_, _, ok = cfg.MarketClass("nairobi")
	assert.False(t, ok)
}

func TestClockRange(t *testing.T) {
	r, err := ParseClockRange("22:00-06:00")
	require.NoError(t, err)
	assert.True(t, r.Contains(23*60))
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(6*60))
	assert.False(t, r.Contains(6*60+1))
	assert.False(t, r.Contains(12*60))

	r, err = ParseClockRange("08:00-10:00")
	require.NoError(t, err)
	assert.True(t, r.Contains(8*60))
	assert.True(t, r.Contains(10*60))
	assert.False(t, r.Contains(10*60+1))

	_, err = ParseClockRange("25:00-26:00")
	assert.Error(t, err)
}

func TestTimeRulesMatch(t *testing.T) {
	tb := DefaultEngineConfig().ProximityMultipliers.TimeBasedAdjustments
	sat := time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	wed := time.Date(2024, 1, 3, 17, 30, 0, 0, time.UTC)

	assert.True(t, tb.Weekend.Matches(sat))
	assert.False(t, tb.Weekend.Matches(wed))
	assert.True(t, tb.PeakHours.Matches(wed))
	assert.False(t, tb.OffPeak.Matches(wed))
}

func TestEngineStoreReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: one\n"), 0o600))

	store, err := OpenEngineStore(path, nil)
	require.NoError(t, err)
	first := store.Current()
	assert.Equal(t, "one", first.Version)

	require.NoError(t, os.WriteFile(path, []byte("version: two\n"), 0o600))
	require.NoError(t, store.Reload())
	assert.Equal(t, "two", store.Current().Version)
	// Snapshots already handed out are never mutated.
	assert.Equal(t, "one", first.Version)

	require.NoError(t, os.WriteFile(path, []byte("proximity_multipliers:\n  distance_tiers:\n    - { min: 5, max: 1 }\n"), 0o600))
	assert.Error(t, store.Reload())
	assert.Equal(t, "two", store.Current().Version)
}

func TestEngineStoreSwapValidates(t *testing.T) {
	store := NewEngineStore(nil, nil)
	bad := DefaultEngineConfig()
	bad.ProximityMultipliers.DistanceTiers = nil
	assert.Error(t, store.Swap(bad))
	assert.Equal(t, "builtin", store.Current().Version)
}

package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	pricing "staybook/internal/pricing/domain"
)

// ScheduleTier is one commission tier in file configuration.
type ScheduleTier struct {
	MinNights      int    `yaml:"min_nights"`
	MaxNights      int    `yaml:"max_nights"`
	PlatformFeeBps uint32 `yaml:"platform_fee_bps"`
}

// ScheduleConfig defines the fee schedule configuration.
type ScheduleConfig struct {
	Currency            string         `yaml:"currency"`
	Tiers               []ScheduleTier `yaml:"tiers"`
	FirstBookingFeeBps  uint32         `yaml:"first_booking_fee_bps"`
	PlatformFeeCapMinor int64          `yaml:"platform_fee_cap_minor"`
	StripeVarBps        uint32         `yaml:"stripe_var_bps"`
	StripeFixedMinor    uint32         `yaml:"stripe_fixed_minor"`
	MinGuestTotalMinor  uint32         `yaml:"min_guest_total_minor"`
}

// LoadScheduleConfig loads the fee schedule from yaml or env. Defaults come
// from the standard schedule; a FEE_SCHEDULE_CONFIG yaml file overrides them,
// then individual env vars override the processor fee and floor.
func LoadScheduleConfig() (pricing.FeeSchedule, error) {
	schedule := pricing.DefaultFeeSchedule()

	if path := os.Getenv("FEE_SCHEDULE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return schedule, err
		}
		var cfg ScheduleConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return schedule, err
		}
		applyScheduleConfig(&schedule, cfg)
	}

	schedule.Currency = getenvDefault("CURRENCY", schedule.Currency)
	schedule.StripeVarBps = getenvUint32Default("STRIPE_VAR_BPS", schedule.StripeVarBps)
	schedule.StripeFixedMinor = getenvUint32Default("STRIPE_FIXED_MINOR", schedule.StripeFixedMinor)
	schedule.MinGuestTotalMinor = getenvUint32Default("MIN_GUEST_TOTAL_MINOR", schedule.MinGuestTotalMinor)
	schedule.PlatformFeeCapMinor = getenvInt64Default("PLATFORM_FEE_CAP_MINOR", schedule.PlatformFeeCapMinor)

	if err := schedule.Validate(); err != nil {
		return schedule, err
	}
	return schedule, nil
}

func applyScheduleConfig(schedule *pricing.FeeSchedule, cfg ScheduleConfig) {
	if cfg.Currency != "" {
		schedule.Currency = cfg.Currency
	}
	if len(cfg.Tiers) > 0 {
		tiers := make([]pricing.Tier, 0, len(cfg.Tiers))
		for _, tier := range cfg.Tiers {
			tiers = append(tiers, pricing.Tier{
				MinNights:      tier.MinNights,
				MaxNights:      tier.MaxNights,
				PlatformFeeBps: tier.PlatformFeeBps,
			})
		}
		schedule.Tiers = tiers
	}
	schedule.FirstBookingFeeBps = cfg.FirstBookingFeeBps
	if cfg.PlatformFeeCapMinor > 0 {
		schedule.PlatformFeeCapMinor = cfg.PlatformFeeCapMinor
	}
	if cfg.StripeVarBps > 0 {
		schedule.StripeVarBps = cfg.StripeVarBps
	}
	if cfg.StripeFixedMinor > 0 {
		schedule.StripeFixedMinor = cfg.StripeFixedMinor
	}
	if cfg.MinGuestTotalMinor > 0 {
		schedule.MinGuestTotalMinor = cfg.MinGuestTotalMinor
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvUint32Default(key string, fallback uint32) uint32 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(parsed)
}

func getenvInt64Default(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

package pricing

// Tier is one row of the commission schedule. MaxNights of 0 means no upper
// bound.
type Tier struct {
	MinNights      int
	MaxNights      int
	PlatformFeeBps uint32
}

// FeeSchedule is the single source of fee constants for both the quote and
// booking-create paths. Commission drops with stay length, a host's first
// completed booking carries no commission (processor fees still apply), and
// the reported platform fee is capped per booking.
type FeeSchedule struct {
	Currency string
	Tiers    []Tier

	FirstBookingFeeBps  uint32
	PlatformFeeCapMinor int64
	StripeVarBps        uint32
	StripeFixedMinor    uint32
	MinGuestTotalMinor  uint32
}

// DefaultFeeSchedule returns the standard commission schedule:
// 12% for 1-6 nights, 10% for 7-27, 8% for 28+, zero commission on a host's
// first completed booking, capped at 500.00 per booking.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Currency: "GBP",
		Tiers: []Tier{
			{MinNights: 1, MaxNights: 6, PlatformFeeBps: 1200},
			{MinNights: 7, MaxNights: 27, PlatformFeeBps: 1000},
			{MinNights: 28, MaxNights: 0, PlatformFeeBps: 800},
		},
		FirstBookingFeeBps:  0,
		PlatformFeeCapMinor: 50000,
		StripeVarBps:        150,
		StripeFixedMinor:    20,
		MinGuestTotalMinor:  500,
	}
}

// Validate checks the schedule is usable for quoting.
func (s FeeSchedule) Validate() error {
	if len(s.Tiers) == 0 {
		return ErrEmptySchedule
	}
	for _, tier := range s.Tiers {
		cfg := FeeConfig{
			PlatformFeeBps:     tier.PlatformFeeBps,
			StripeVarBps:       s.StripeVarBps,
			StripeFixedMinor:   s.StripeFixedMinor,
			MinGuestTotalMinor: s.MinGuestTotalMinor,
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ResolveFeeConfig picks the FeeConfig for a stay. The first completed
// booking overrides the tiered rate with FirstBookingFeeBps.
func (s FeeSchedule) ResolveFeeConfig(nights int, firstCompletedBooking bool) (FeeConfig, error) {
	if nights < 1 {
		return FeeConfig{}, ErrInvalidNights
	}
	cfg := FeeConfig{
		StripeVarBps:       s.StripeVarBps,
		StripeFixedMinor:   s.StripeFixedMinor,
		MinGuestTotalMinor: s.MinGuestTotalMinor,
	}
	if firstCompletedBooking {
		cfg.PlatformFeeBps = s.FirstBookingFeeBps
		return cfg, cfg.Validate()
	}
	for _, tier := range s.Tiers {
		if nights < tier.MinNights {
			continue
		}
		if tier.MaxNights != 0 && nights > tier.MaxNights {
			continue
		}
		cfg.PlatformFeeBps = tier.PlatformFeeBps
		return cfg, cfg.Validate()
	}
	return FeeConfig{}, ErrEmptySchedule
}

// CapPlatformFee clamps a reported platform fee estimate to the per-booking
// ceiling. The cap affects only the estimate, never the guest total formula.
func (s FeeSchedule) CapPlatformFee(feeMinor int64) (int64, bool) {
	if s.PlatformFeeCapMinor > 0 && feeMinor > s.PlatformFeeCapMinor {
		return s.PlatformFeeCapMinor, true
	}
	return feeMinor, false
}

package pricing

const (
	// PricingVersion tags quotes for forward-compatible schema evolution.
	PricingVersion = "v1"

	bpsScale  = 10000
	minorUnit = 100

	// marginCorrectionBound caps the increment-and-recheck loop. Each
	// iteration adds one whole currency unit while the combined fee rate
	// consumes strictly less than all of it, so margin increases every
	// pass; exceeding the bound means the fee table is broken.
	marginCorrectionBound = 10
)

// FeeConfig is the fee configuration resolved once per quote. All monetary
// values are minor units (pence).
type FeeConfig struct {
	PlatformFeeBps     uint32
	StripeVarBps       uint32
	StripeFixedMinor   uint32
	MinGuestTotalMinor uint32
}

// Validate rejects configurations whose combined rates reach 100%.
func (c FeeConfig) Validate() error {
	if bpsScale-int64(c.PlatformFeeBps)-int64(c.StripeVarBps) <= 0 {
		return ErrInvalidFeeConfig
	}
	return nil
}

// Quote is the output of ComputeGuestTotal. Created fresh per request and
// never mutated; identical inputs produce identical quotes.
type Quote struct {
	HostNetTotalMinor      int64
	GuestTotalMinor        int64
	PlatformFeeEstMinor    int64
	StripeFeeEstMinor      int64
	PlatformMarginEstMinor int64

	PlatformFeeBps     uint32
	StripeVarBps       uint32
	StripeFixedMinor   uint32
	MinGuestTotalMinor uint32
	PricingVersion     string
}

// ComputeGuestTotal inverts the fee-inclusive pricing formula: given the net
// amount the host must receive, it returns the guest-facing total such that
// the total, less the estimated platform and processor fees, covers the host
// net. All arithmetic is integer, in minor units. It fails only on a
// malformed FeeConfig; valid monetary inputs, including zero, always quote.
func ComputeGuestTotal(hostNetTotalMinor int64, cfg FeeConfig) (Quote, error) {
	if err := cfg.Validate(); err != nil {
		return Quote{}, err
	}
	if hostNetTotalMinor < 0 {
		return Quote{}, ErrNegativeHostNet
	}

	denom := int64(bpsScale) - int64(cfg.PlatformFeeBps) - int64(cfg.StripeVarBps)
	covered := hostNetTotalMinor + int64(cfg.StripeFixedMinor)

	// Ceiling division guarantees the host receives at least hostNetTotal
	// after fees come out of the guest total.
	guest := ceilDiv(covered*bpsScale, denom)
	if guest < covered {
		guest = covered
	}
	if guest < int64(cfg.MinGuestTotalMinor) {
		guest = int64(cfg.MinGuestTotalMinor)
	}

	// Guest-facing prices are whole currency units. Rounding can undershoot
	// the floor, so the floor clamp is re-applied.
	guest = roundToNearestUnit(guest)
	if guest < int64(cfg.MinGuestTotalMinor) {
		guest = int64(cfg.MinGuestTotalMinor)
	}

	platformFee, stripeFee, margin := estimateFees(guest, hostNetTotalMinor, cfg)
	for i := 0; margin < 0; i++ {
		if i >= marginCorrectionBound {
			return Quote{}, ErrMarginCorrectionBound
		}
		guest += minorUnit
		platformFee, stripeFee, margin = estimateFees(guest, hostNetTotalMinor, cfg)
	}

	return Quote{
		HostNetTotalMinor:      hostNetTotalMinor,
		GuestTotalMinor:        guest,
		PlatformFeeEstMinor:    platformFee,
		StripeFeeEstMinor:      stripeFee,
		PlatformMarginEstMinor: margin,
		PlatformFeeBps:         cfg.PlatformFeeBps,
		StripeVarBps:           cfg.StripeVarBps,
		StripeFixedMinor:       cfg.StripeFixedMinor,
		MinGuestTotalMinor:     cfg.MinGuestTotalMinor,
		PricingVersion:         PricingVersion,
	}, nil
}

func estimateFees(guestTotal, hostNetTotal int64, cfg FeeConfig) (platformFee, stripeFee, margin int64) {
	platformFee = guestTotal * int64(cfg.PlatformFeeBps) / bpsScale
	stripeFee = guestTotal*int64(cfg.StripeVarBps)/bpsScale + int64(cfg.StripeFixedMinor)
	margin = guestTotal - hostNetTotal - stripeFee
	return platformFee, stripeFee, margin
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func roundToNearestUnit(v int64) int64 {
	return (v + minorUnit/2) / minorUnit * minorUnit
}

package application

import (
	"context"
	"errors"

	pricing "staybook/internal/pricing/domain"
)

// FeeScheduleProvider resolves the fee schedule in force for a quote.
type FeeScheduleProvider interface {
	Schedule(ctx context.Context) (pricing.FeeSchedule, error)
}

// QuoteRequest carries the inputs for a stay quote.
type QuoteRequest struct {
	HostNetNightlyMinor     int64
	Nights                  int
	IsFirstCompletedBooking bool
}

// QuoteResult is the stay quote surfaced to callers. The unit price is the
// guest-facing nightly price; fee estimates cover the whole stay.
type QuoteResult struct {
	Currency               string
	Nights                 int
	HostNetNightlyMinor    int64
	GuestUnitPriceMinor    int64
	GuestTotalMinor        int64
	PlatformFeeEstMinor    int64
	PlatformFeeCapped      bool
	StripeFeeEstMinor      int64
	PlatformMarginEstMinor int64
	PlatformFeeBps         uint32
	StripeVarBps           uint32
	StripeFixedMinor       uint32
	PricingVersion         string
}

// QuoteService resolves fee configuration and computes stay quotes. It owns
// the single fee schedule used by both the quote and booking-create paths.
type QuoteService struct {
	schedules FeeScheduleProvider
}

// NewQuoteService constructs the service.
func NewQuoteService(schedules FeeScheduleProvider) (*QuoteService, error) {
	if schedules == nil {
		return nil, errors.New("quote service: nil fee schedule provider")
	}
	return &QuoteService{schedules: schedules}, nil
}

// Quote computes the guest-facing price for a stay.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	if req.HostNetNightlyMinor <= 0 {
		return QuoteResult{}, pricing.ErrNonPositiveHostNet
	}
	if req.Nights < 1 {
		return QuoteResult{}, pricing.ErrInvalidNights
	}

	schedule, err := s.schedules.Schedule(ctx)
	if err != nil {
		return QuoteResult{}, err
	}
	cfg, err := schedule.ResolveFeeConfig(req.Nights, req.IsFirstCompletedBooking)
	if err != nil {
		return QuoteResult{}, err
	}

	nightly, err := pricing.ComputeGuestTotal(req.HostNetNightlyMinor, cfg)
	if err != nil {
		return QuoteResult{}, err
	}

	// Stay-level estimates: the variable rates scale with the stay total,
	// the fixed processor fee is charged once per booking, and the platform
	// fee estimate is capped per booking.
	stayGuestTotal := nightly.GuestTotalMinor * int64(req.Nights)
	stayHostNet := req.HostNetNightlyMinor * int64(req.Nights)
	platformFee := stayGuestTotal * int64(cfg.PlatformFeeBps) / 10000
	platformFee, capped := schedule.CapPlatformFee(platformFee)
	stripeFee := stayGuestTotal*int64(cfg.StripeVarBps)/10000 + int64(cfg.StripeFixedMinor)
	margin := stayGuestTotal - stayHostNet - stripeFee

	return QuoteResult{
		Currency:               schedule.Currency,
		Nights:                 req.Nights,
		HostNetNightlyMinor:    req.HostNetNightlyMinor,
		GuestUnitPriceMinor:    nightly.GuestTotalMinor,
		GuestTotalMinor:        stayGuestTotal,
		PlatformFeeEstMinor:    platformFee,
		PlatformFeeCapped:      capped,
		StripeFeeEstMinor:      stripeFee,
		PlatformMarginEstMinor: margin,
		PlatformFeeBps:         cfg.PlatformFeeBps,
		StripeVarBps:           cfg.StripeVarBps,
		StripeFixedMinor:       cfg.StripeFixedMinor,
		PricingVersion:         nightly.PricingVersion,
	}, nil
}

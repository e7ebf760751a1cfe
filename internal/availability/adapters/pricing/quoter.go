package pricing

import (
	"context"
	"errors"

	"staybook/internal/availability/application"
	pricingapp "staybook/internal/pricing/application"
)

// QuoterAdapter adapts the pricing quote service to the booking-creation
// use case's StayQuoter port.
type QuoterAdapter struct {
	quotes *pricingapp.QuoteService
}

// NewQuoterAdapter constructs the adapter.
func NewQuoterAdapter(quotes *pricingapp.QuoteService) (*QuoterAdapter, error) {
	if quotes == nil {
		return nil, errors.New("quoter adapter: nil quote service")
	}
	return &QuoterAdapter{quotes: quotes}, nil
}

// QuoteStay prices a stay for booking creation.
func (a *QuoterAdapter) QuoteStay(ctx context.Context, hostNetNightlyMinor int64, nights int, firstCompletedBooking bool) (application.StayQuote, error) {
	result, err := a.quotes.Quote(ctx, pricingapp.QuoteRequest{
		HostNetNightlyMinor:     hostNetNightlyMinor,
		Nights:                  nights,
		IsFirstCompletedBooking: firstCompletedBooking,
	})
	if err != nil {
		return application.StayQuote{}, err
	}
	return application.StayQuote{
		Currency:            result.Currency,
		GuestUnitPriceMinor: result.GuestUnitPriceMinor,
		GuestTotalMinor:     result.GuestTotalMinor,
		PlatformFeeEstMinor: result.PlatformFeeEstMinor,
		PlatformFeeCapped:   result.PlatformFeeCapped,
		StripeFeeEstMinor:   result.StripeFeeEstMinor,
		PricingVersion:      result.PricingVersion,
	}, nil
}

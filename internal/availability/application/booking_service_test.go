package application

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	availability "staybook/internal/availability/domain"
	"staybook/internal/availability/infrastructure/memory"
)

type fixedQuoter struct {
	quote StayQuote
	err   error
}

func (q fixedQuoter) QuoteStay(ctx context.Context, hostNetNightlyMinor int64, nights int, firstCompletedBooking bool) (StayQuote, error) {
	if q.err != nil {
		return StayQuote{}, q.err
	}
	quote := q.quote
	quote.GuestTotalMinor = quote.GuestUnitPriceMinor * int64(nights)
	return quote, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type capturingPublisher struct {
	events []BookingCreated
}

func (p *capturingPublisher) PublishBookingCreated(ctx context.Context, event BookingCreated) error {
	p.events = append(p.events, event)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestBookingService(t *testing.T, repo EventRepository, publisher BookingPublisher) *BookingService {
	t.Helper()
	quoter := fixedQuoter{quote: StayQuote{
		Currency:            "GBP",
		GuestUnitPriceMinor: 7300,
		PricingVersion:      "v1",
	}}
	service, err := NewBookingService(repo, quoter, publisher, fixedClock{now: day(2025, 2, 1)})
	if err != nil {
		t.Fatalf("new booking service: %v", err)
	}
	return service
}

func TestReserveCreatesPendingBooking(t *testing.T) {
	repo := memory.NewEventRepository()
	publisher := &capturingPublisher{}
	service := newTestBookingService(t, repo, publisher)

	booking, err := service.Reserve(context.Background(), ReserveRequest{
		ListingID:           "listing-1",
		CheckIn:             day(2025, 3, 10),
		CheckOut:            day(2025, 3, 13),
		HostNetNightlyMinor: 6000,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if booking.Nights != 3 {
		t.Fatalf("expected 3 nights, got %d", booking.Nights)
	}
	if booking.Status != availability.StatusPending {
		t.Fatalf("expected pending status, got %s", booking.Status)
	}
	if booking.Quote.GuestTotalMinor != 7300*3 {
		t.Fatalf("expected guest total %d, got %d", 7300*3, booking.Quote.GuestTotalMinor)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].BookingID != booking.ID {
		t.Fatalf("published event booking id mismatch")
	}

	events, err := repo.ListForRange(context.Background(), "listing-1", day(2025, 3, 10), day(2025, 3, 13))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	if events[0].Channel != availability.ChannelDirect || events[0].Status != availability.StatusPending {
		t.Fatalf("expected pending direct event, got channel=%s status=%s", events[0].Channel, events[0].Status)
	}
}

type failingPublisher struct{}

func (failingPublisher) PublishBookingCreated(ctx context.Context, event BookingCreated) error {
	return errors.New("broker down")
}

func TestReservePublishFailureIsLoggedNotFatal(t *testing.T) {
	repo := memory.NewEventRepository()
	var logged bytes.Buffer
	quoter := fixedQuoter{quote: StayQuote{
		Currency:            "GBP",
		GuestUnitPriceMinor: 7300,
		PricingVersion:      "v1",
	}}
	service, err := NewBookingService(repo, quoter, failingPublisher{}, fixedClock{now: day(2025, 2, 1)},
		WithBookingLogger(log.New(&logged, "", 0)))
	if err != nil {
		t.Fatalf("new booking service: %v", err)
	}

	booking, err := service.Reserve(context.Background(), ReserveRequest{
		ListingID:           "listing-1",
		CheckIn:             day(2025, 3, 10),
		CheckOut:            day(2025, 3, 13),
		HostNetNightlyMinor: 6000,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if booking.Status != availability.StatusPending {
		t.Fatalf("expected pending status, got %s", booking.Status)
	}
	if !strings.Contains(logged.String(), "broker down") {
		t.Fatalf("expected publish failure in log output, got %q", logged.String())
	}

	events, err := repo.ListForRange(context.Background(), "listing-1", day(2025, 3, 10), day(2025, 3, 13))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected reservation stored despite publish failure, got %d events", len(events))
	}
}

func TestReserveDoubleBookConflicts(t *testing.T) {
	repo := memory.NewEventRepository()
	service := newTestBookingService(t, repo, nil)

	first := ReserveRequest{
		ListingID:           "listing-1",
		CheckIn:             day(2025, 3, 10),
		CheckOut:            day(2025, 3, 13),
		HostNetNightlyMinor: 6000,
	}
	if _, err := service.Reserve(context.Background(), first); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	// Overlaps the first stay on the 12th only.
	second := ReserveRequest{
		ListingID:           "listing-1",
		CheckIn:             day(2025, 3, 12),
		CheckOut:            day(2025, 3, 15),
		HostNetNightlyMinor: 6000,
	}
	_, err := service.Reserve(context.Background(), second)
	var conflict *availability.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Category != availability.ConflictGuestBooked {
		t.Fatalf("expected guest_booked category, got %s", conflict.Category)
	}
	if !conflict.Day.Equal(day(2025, 3, 12)) {
		t.Fatalf("expected conflict day 2025-03-12, got %v", conflict.Day)
	}
	if conflict.ListingID != "listing-1" {
		t.Fatalf("expected conflict listing id filled in, got %q", conflict.ListingID)
	}
}

func TestReserveConflictCategories(t *testing.T) {
	cases := []struct {
		name     string
		seed     availability.CalendarEvent
		category availability.ConflictCategory
	}{
		{
			name: "host block",
			seed: availability.CalendarEvent{
				ID: "blk-1", ListingID: "listing-1",
				Start: day(2025, 3, 11), End: day(2025, 3, 12),
				Channel: availability.ChannelBlocked, Kind: availability.KindBlock,
			},
			category: availability.ConflictHostBlocked,
		},
		{
			name: "external channel",
			seed: availability.CalendarEvent{
				ID: "ext-1", ListingID: "listing-1",
				Start: day(2025, 3, 11), End: day(2025, 3, 12),
				Channel: availability.ChannelAirbnb, Kind: availability.KindBooking,
			},
			category: availability.ConflictExternalChannel,
		},
	}

	for _, tc := range cases {
		repo := memory.NewEventRepository()
		if err := repo.Insert(context.Background(), tc.seed); err != nil {
			t.Fatalf("%s: seed: %v", tc.name, err)
		}
		service := newTestBookingService(t, repo, nil)

		_, err := service.Reserve(context.Background(), ReserveRequest{
			ListingID:           "listing-1",
			CheckIn:             day(2025, 3, 10),
			CheckOut:            day(2025, 3, 13),
			HostNetNightlyMinor: 6000,
		})
		var conflict *availability.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("%s: expected conflict, got %v", tc.name, err)
		}
		if conflict.Category != tc.category {
			t.Fatalf("%s: expected category %s, got %s", tc.name, tc.category, conflict.Category)
		}
	}
}

func TestReserveValidatesInputs(t *testing.T) {
	repo := memory.NewEventRepository()
	service := newTestBookingService(t, repo, nil)

	_, err := service.Reserve(context.Background(), ReserveRequest{
		CheckIn:  day(2025, 3, 10),
		CheckOut: day(2025, 3, 13),
	})
	if !errors.Is(err, availability.ErrEmptyListingID) {
		t.Fatalf("expected ErrEmptyListingID, got %v", err)
	}

	_, err = service.Reserve(context.Background(), ReserveRequest{
		ListingID: "listing-1",
		CheckIn:   day(2025, 3, 13),
		CheckOut:  day(2025, 3, 13),
	})
	if !errors.Is(err, availability.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for same-day checkout, got %v", err)
	}
}

package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	availability "staybook/internal/availability/domain"
)

// StayQuote is the pricing outcome recorded with a booking.
type StayQuote struct {
	Currency            string
	GuestUnitPriceMinor int64
	GuestTotalMinor     int64
	PlatformFeeEstMinor int64
	PlatformFeeCapped   bool
	StripeFeeEstMinor   int64
	PricingVersion      string
}

// StayQuoter prices a stay before it is reserved.
type StayQuoter interface {
	QuoteStay(ctx context.Context, hostNetNightlyMinor int64, nights int, firstCompletedBooking bool) (StayQuote, error)
}

// BookingCreated is emitted when a reservation is inserted.
type BookingCreated struct {
	BookingID  string
	ListingID  string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestTotal int64
	Currency   string
	OccurredAt time.Time
}

// BookingPublisher emits booking created events.
type BookingPublisher interface {
	PublishBookingCreated(ctx context.Context, event BookingCreated) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ReserveRequest carries the inputs for booking creation.
type ReserveRequest struct {
	ListingID               string
	CheckIn                 time.Time
	CheckOut                time.Time
	HostNetNightlyMinor     int64
	IsFirstCompletedBooking bool
}

// Booking is the reservation recorded by a successful reserve.
type Booking struct {
	ID        string
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Nights    int
	Status    availability.BookingStatus
	Quote     StayQuote
	CreatedAt time.Time
}

// BookingService creates direct reservations. The freshness read of events
// and the insertion of the new pending event happen inside the repository's
// single atomic check-and-reserve; the service has no retry policy, a failed
// reservation surfaces the conflict to the caller.
type BookingService struct {
	events    EventRepository
	quoter    StayQuoter
	publisher BookingPublisher
	clock     Clock
	logger    *log.Logger
}

// BookingOption configures optional service collaborators.
type BookingOption func(*BookingService)

// WithBookingLogger sets the logger used to report publish failures.
func WithBookingLogger(logger *log.Logger) BookingOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

// NewBookingService constructs the service.
func NewBookingService(events EventRepository, quoter StayQuoter, publisher BookingPublisher, clock Clock, opts ...BookingOption) (*BookingService, error) {
	if events == nil {
		return nil, errors.New("booking service: nil event repository")
	}
	if quoter == nil {
		return nil, errors.New("booking service: nil quoter")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	service := &BookingService{events: events, quoter: quoter, publisher: publisher, clock: clock}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Reserve quotes the stay, then atomically checks the target range is free
// and inserts the pending direct booking.
func (s *BookingService) Reserve(ctx context.Context, req ReserveRequest) (Booking, error) {
	if req.ListingID == "" {
		return Booking{}, availability.ErrEmptyListingID
	}
	checkIn := availability.DayOf(req.CheckIn)
	checkOut := availability.DayOf(req.CheckOut)
	if !checkOut.After(checkIn) {
		return Booking{}, availability.ErrInvalidRange
	}
	nights := int(checkOut.Sub(checkIn) / (24 * time.Hour))

	quote, err := s.quoter.QuoteStay(ctx, req.HostNetNightlyMinor, nights, req.IsFirstCompletedBooking)
	if err != nil {
		return Booking{}, err
	}

	now := s.clock.Now().UTC()
	event := availability.CalendarEvent{
		ID:        newBookingID(),
		ListingID: req.ListingID,
		Start:     checkIn,
		End:       checkOut,
		Channel:   availability.ChannelDirect,
		Kind:      availability.KindBooking,
		Status:    availability.StatusPending,
		CreatedAt: now,
	}

	if err := s.events.ReserveRange(ctx, event); err != nil {
		var conflict *availability.ConflictError
		if errors.As(err, &conflict) && conflict.ListingID == "" {
			conflict.ListingID = req.ListingID
		}
		return Booking{}, err
	}

	booking := Booking{
		ID:        event.ID,
		ListingID: req.ListingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Nights:    nights,
		Status:    availability.StatusPending,
		Quote:     quote,
		CreatedAt: now,
	}

	if s.publisher != nil {
		// Publishing is best-effort; the reservation already committed.
		err := s.publisher.PublishBookingCreated(ctx, BookingCreated{
			BookingID:  booking.ID,
			ListingID:  booking.ListingID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			GuestTotal: quote.GuestTotalMinor,
			Currency:   quote.Currency,
			OccurredAt: now,
		})
		if err != nil && s.logger != nil {
			s.logger.Printf("booking %s: publish booking created: %v", booking.ID, err)
		}
	}
	return booking, nil
}

func newBookingID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "booking-" + hex.EncodeToString(buf)
}

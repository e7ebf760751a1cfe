package interfaces

import (
	"context"
	"errors"
	"log"

	"staybook/internal/availability/application"
)

// LoggingPublisher logs booking created events.
type LoggingPublisher struct {
	logger *log.Logger
}

// NewLoggingPublisher constructs a logging publisher.
func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{logger: logger}
}

// PublishBookingCreated logs the event.
func (p *LoggingPublisher) PublishBookingCreated(ctx context.Context, event application.BookingCreated) error {
	_ = ctx
	if p == nil {
		return errors.New("booking publisher: nil publisher")
	}
	p.logger.Printf("booking created: listing=%s booking=%s range=%s..%s total=%d %s",
		event.ListingID, event.BookingID,
		event.CheckIn.Format("2006-01-02"), event.CheckOut.Format("2006-01-02"),
		event.GuestTotal, event.Currency)
	return nil
}

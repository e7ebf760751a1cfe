package application

import (
	"context"
	"errors"
	"time"

	availability "staybook/internal/availability/domain"
)

// EventRepository loads and stores calendar events for listings.
type EventRepository interface {
	// ListForRange returns events overlapping the half-open day range.
	ListForRange(ctx context.Context, listingID string, from, to time.Time) ([]availability.CalendarEvent, error)
	// ReserveRange atomically re-checks that every day in the event's range
	// is free and inserts the event. A non-free day fails the whole
	// reservation with a *availability.ConflictError.
	ReserveRange(ctx context.Context, event availability.CalendarEvent) error
	// ReplaceChannelEvents swaps out a channel's events for a listing, used
	// by calendar feed sync.
	ReplaceChannelEvents(ctx context.Context, listingID string, channel availability.Channel, events []availability.CalendarEvent) error
}

// DayReport buckets the non-free days of a range query. Days resolving to
// conflict appear in every bucket that applies.
type DayReport struct {
	Booked  []time.Time
	Blocked []time.Time
}

// AvailabilityService answers day-state queries over a listing's calendar.
type AvailabilityService struct {
	events EventRepository
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(events EventRepository) (*AvailabilityService, error) {
	if events == nil {
		return nil, errors.New("availability service: nil event repository")
	}
	return &AvailabilityService{events: events}, nil
}

// Query resolves every day in the inclusive range [from, to] and buckets
// non-free days. States are always recomputed from current events.
func (s *AvailabilityService) Query(ctx context.Context, listingID string, from, to time.Time) (DayReport, error) {
	if listingID == "" {
		return DayReport{}, availability.ErrEmptyListingID
	}
	if availability.DayOf(to).Before(availability.DayOf(from)) {
		return DayReport{}, availability.ErrInvalidRange
	}

	end := availability.DayOf(to).AddDate(0, 0, 1)
	events, err := s.events.ListForRange(ctx, listingID, availability.DayOf(from), end)
	if err != nil {
		return DayReport{}, err
	}

	var report DayReport
	for _, resolution := range availability.ResolveRange(events, from, end) {
		occ := resolution.Occupancy
		if occ.DirectConfirmed || occ.DirectPending || occ.External {
			report.Booked = append(report.Booked, resolution.Day)
		}
		if occ.Blocked {
			report.Blocked = append(report.Blocked, resolution.Day)
		}
	}
	return report, nil
}

// Resolutions returns the per-day resolutions for the inclusive range,
// used by the calendar export.
func (s *AvailabilityService) Resolutions(ctx context.Context, listingID string, from, to time.Time) ([]availability.DayResolution, error) {
	if listingID == "" {
		return nil, availability.ErrEmptyListingID
	}
	if availability.DayOf(to).Before(availability.DayOf(from)) {
		return nil, availability.ErrInvalidRange
	}
	end := availability.DayOf(to).AddDate(0, 0, 1)
	events, err := s.events.ListForRange(ctx, listingID, availability.DayOf(from), end)
	if err != nil {
		return nil, err
	}
	return availability.ResolveRange(events, from, end), nil
}

package memory

import (
	"context"
	"sync"
	"time"

	availability "staybook/internal/availability/domain"
)

// EventRepository is an in-memory calendar event store. ReserveRange holds
// the lock across its check and insert, giving the same atomicity the
// Postgres implementation gets from its transaction.
type EventRepository struct {
	mu     sync.RWMutex
	events map[string][]availability.CalendarEvent
}

// NewEventRepository constructs a repository.
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string][]availability.CalendarEvent)}
}

// ListForRange returns events overlapping the half-open day range.
func (r *EventRepository) ListForRange(ctx context.Context, listingID string, from, to time.Time) ([]availability.CalendarEvent, error) {
	_ = ctx
	if listingID == "" {
		return nil, availability.ErrEmptyListingID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var overlapping []availability.CalendarEvent
	for _, event := range r.events[listingID] {
		if event.Start.Before(to) && event.End.After(from) {
			overlapping = append(overlapping, event)
		}
	}
	return overlapping, nil
}

// ReserveRange checks the event's range is free and inserts it, atomically.
func (r *EventRepository) ReserveRange(ctx context.Context, event availability.CalendarEvent) error {
	_ = ctx
	if event.ListingID == "" {
		return availability.ErrEmptyListingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var overlapping []availability.CalendarEvent
	for _, existing := range r.events[event.ListingID] {
		if existing.Start.Before(event.End) && existing.End.After(event.Start) {
			overlapping = append(overlapping, existing)
		}
	}
	if err := availability.CheckRangeFree(overlapping, event.Start, event.End); err != nil {
		return err
	}

	r.events[event.ListingID] = append(r.events[event.ListingID], event)
	return nil
}

// ReplaceChannelEvents swaps a channel's events for a listing.
func (r *EventRepository) ReplaceChannelEvents(ctx context.Context, listingID string, channel availability.Channel, events []availability.CalendarEvent) error {
	_ = ctx
	if listingID == "" {
		return availability.ErrEmptyListingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[listingID][:0:0]
	for _, existing := range r.events[listingID] {
		if existing.Channel != channel {
			kept = append(kept, existing)
		}
	}
	r.events[listingID] = append(kept, events...)
	return nil
}

// Insert adds an event without the free check, used to seed test fixtures.
func (r *EventRepository) Insert(ctx context.Context, event availability.CalendarEvent) error {
	_ = ctx
	if event.ListingID == "" {
		return availability.ErrEmptyListingID
	}
	r.mu.Lock()
	r.events[event.ListingID] = append(r.events[event.ListingID], event)
	r.mu.Unlock()
	return nil
}

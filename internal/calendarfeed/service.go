package calendarfeed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	availabilityapp "staybook/internal/availability/application"
	availability "staybook/internal/availability/domain"
)

// ImportService fetches, parses, and optionally persists external
// calendar feeds.
type ImportService struct {
	fetcher *Fetcher
	events  availabilityapp.EventRepository
	logger  *log.Logger
}

// NewImportService constructs the service. The event repository may be nil
// when only stateless imports are needed.
func NewImportService(fetcher *Fetcher, events availabilityapp.EventRepository, logger *log.Logger) (*ImportService, error) {
	if fetcher == nil {
		return nil, errors.New("import service: nil fetcher")
	}
	if logger == nil {
		return nil, errors.New("import service: nil logger")
	}
	return &ImportService{fetcher: fetcher, events: events, logger: logger}, nil
}

// ImportResult carries the outcome of one feed import.
type ImportResult struct {
	Events  []ParsedEvent
	Skipped int
}

// Import fetches and parses a feed. A fetch failure yields an error and no
// events, never a partial set; malformed blocks are skipped and counted.
func (s *ImportService) Import(ctx context.Context, url string) (ImportResult, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Printf("calendar feed fetch failed url=%s err=%v", url, err)
		return ImportResult{}, err
	}
	events, skipped, err := Parse(body)
	if err != nil {
		s.logger.Printf("calendar feed parse failed url=%s err=%v", url, err)
		return ImportResult{}, err
	}
	s.logger.Printf("calendar feed imported url=%s events=%d skipped=%d", url, len(events), skipped)
	return ImportResult{Events: events, Skipped: skipped}, nil
}

// SyncListing imports a channel feed and replaces that channel's events on
// the listing. The swap is whole-feed: prior events for the channel are
// dropped even when the new feed is smaller.
func (s *ImportService) SyncListing(ctx context.Context, listingID string, channel availability.Channel, url string) (ImportResult, error) {
	if s.events == nil {
		return ImportResult{}, errors.New("import service: no event repository configured")
	}
	if listingID == "" {
		return ImportResult{}, availability.ErrEmptyListingID
	}

	result, err := s.Import(ctx, url)
	if err != nil {
		return ImportResult{}, err
	}

	now := time.Now().UTC()
	stored := make([]availability.CalendarEvent, 0, len(result.Events))
	for i, ev := range result.Events {
		stored = append(stored, availability.CalendarEvent{
			ID:        fmt.Sprintf("%s-%s-%d", listingID, channel, i),
			ListingID: listingID,
			Start:     availability.DayOf(ev.Start),
			End:       availability.DayOf(ev.End).AddDate(0, 0, 1),
			Channel:   channel,
			Kind:      availability.KindBooking,
			UID:       ev.UID,
			Summary:   ev.Summary,
			SourceURL: ev.URL,
			CreatedAt: now,
		})
	}
	if err := s.events.ReplaceChannelEvents(ctx, listingID, channel, stored); err != nil {
		s.logger.Printf("calendar feed sync persist failed listing=%s channel=%s err=%v", listingID, channel, err)
		return ImportResult{}, err
	}
	s.logger.Printf("calendar feed synced listing=%s channel=%s events=%d skipped=%d", listingID, channel, len(stored), result.Skipped)
	return result, nil
}

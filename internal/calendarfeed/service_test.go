package calendarfeed

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	availability "staybook/internal/availability/domain"
	"staybook/internal/availability/infrastructure/memory"
)

const sampleFeed = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:res-1@channel\r\n" +
	"SUMMARY:Reserved\r\n" +
	"DTSTART;VALUE=DATE:20250301\r\n" +
	"DTEND;VALUE=DATE:20250304\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newTestService(t *testing.T, events *memory.EventRepository) *ImportService {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	service, err := NewImportService(NewFetcher(nil), events, logger)
	if err != nil {
		t.Fatalf("new import service: %v", err)
	}
	return service
}

func TestImportFetchesAndParses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	service := newTestService(t, nil)
	result, err := service.Import(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result.Events))
	}
	if result.Events[0].Nights != 3 {
		t.Fatalf("expected 3 nights, got %d", result.Events[0].Nights)
	}
}

func TestImportFetchFailureYieldsNoEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := newTestService(t, nil)
	result, err := service.Import(context.Background(), server.URL)
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if len(result.Events) != 0 {
		t.Fatalf("expected no events on fetch failure, got %d", len(result.Events))
	}
}

func TestSyncListingReplacesChannelEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	repo := memory.NewEventRepository()
	_ = repo.Insert(context.Background(), availability.CalendarEvent{
		ID:        "stale-1",
		ListingID: "listing-1",
		Start:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		Channel:   availability.ChannelAirbnb,
		Kind:      availability.KindBooking,
	})

	service := newTestService(t, repo)
	result, err := service.SyncListing(context.Background(), "listing-1", availability.ChannelAirbnb, server.URL)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result.Events))
	}

	// Prior channel events are gone; the stale January range is free again.
	stored, err := repo.ListForRange(context.Background(), "listing-1",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event after sync, got %d", len(stored))
	}
	ev := stored[0]
	if ev.Channel != availability.ChannelAirbnb {
		t.Fatalf("expected airbnb channel, got %s", ev.Channel)
	}
	wantStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(wantStart) || !ev.End.Equal(wantEnd) {
		t.Fatalf("expected stored half-open range [%v, %v), got [%v, %v)", wantStart, wantEnd, ev.Start, ev.End)
	}

	day := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	covering := availability.EventsCovering(stored, day)
	if state := availability.ResolveDayState(covering); state != availability.DayExternal {
		t.Fatalf("expected external state on %v, got %s", day, state)
	}
}

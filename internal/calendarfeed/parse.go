package calendarfeed

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ParsedEvent is one normalized event from an external calendar feed.
// End is the inclusive local end date; DTEND's exclusive day has already
// been converted.
type ParsedEvent struct {
	UID     string
	Start   time.Time
	End     time.Time
	Summary string
	URL     string
	Nights  int
}

// ErrEmptyFeed is returned for a feed body with no content.
var ErrEmptyFeed = errors.New("calendarfeed: empty feed body")

// Parse extracts events from an ICS payload. Parsing is best-effort: a
// VEVENT missing a parseable start or end is dropped and counted in the
// second return value, never fatal. A body that is not a calendar at all
// returns an error and no events.
func Parse(body []byte) ([]ParsedEvent, int, error) {
	if len(body) == 0 {
		return nil, 0, ErrEmptyFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}

	events := make([]ParsedEvent, 0)
	skipped := 0
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, bool) {
	var out ParsedEvent

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	endProp := ve.GetProperty(ical.ComponentPropertyDtEnd)
	if startProp == nil || endProp == nil {
		return out, false
	}
	start, err := parseFeedTime(startProp.Value)
	if err != nil {
		return out, false
	}
	end, err := parseFeedTime(endProp.Value)
	if err != nil {
		return out, false
	}

	// DTEND is exclusive; step back one calendar day for the inclusive
	// end date used internally.
	inclusiveEnd := dayOf(end).AddDate(0, 0, -1)
	nights := int(math.Round(inclusiveEnd.Sub(dayOf(start)).Hours()/24)) + 1
	if nights < 1 {
		nights = 1
	}

	out.Start = start
	out.End = inclusiveEnd
	out.Nights = nights
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyUrl); p != nil {
		out.URL = p.Value
	}
	return out, true
}

// parseFeedTime accepts the date-only and UTC date-time forms channel
// feeds emit, normalized to UTC.
func parseFeedTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(value, "Z") {
		return time.Parse("20060102T150405Z", value)
	}
	if strings.Contains(value, "T") {
		return time.Parse("20060102T150405", value)
	}
	return time.Parse("20060102", value)
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

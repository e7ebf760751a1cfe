package availability

import "time"

// Channel is the booking source a calendar event originated from.
type Channel string

const (
	ChannelDirect     Channel = "direct"
	ChannelAirbnb     Channel = "airbnb"
	ChannelVrbo       Channel = "vrbo"
	ChannelBookingCom Channel = "bookingcom"
	ChannelExpedia    Channel = "expedia"
	ChannelManual     Channel = "manual"
	ChannelBlocked    Channel = "blocked"
	ChannelOther      Channel = "other"
)

// NormalizeChannel validates a channel string.
func NormalizeChannel(value string) (Channel, bool) {
	switch Channel(value) {
	case ChannelDirect, ChannelAirbnb, ChannelVrbo, ChannelBookingCom,
		ChannelExpedia, ChannelManual, ChannelBlocked, ChannelOther:
		return Channel(value), true
	default:
		return "", false
	}
}

// EventKind distinguishes bookings from host blocks.
type EventKind string

const (
	KindBooking EventKind = "booking"
	KindBlock   EventKind = "block"
)

// BookingStatus applies to direct bookings only.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
)

// CalendarEvent is one claim on a listing's calendar. The date range is
// half-open: Start <= day < End, matching calendar-feed DTEND semantics.
type CalendarEvent struct {
	ID        string
	ListingID string
	Start     time.Time
	End       time.Time
	Channel   Channel
	Kind      EventKind
	Status    BookingStatus
	UID       string
	Summary   string
	SourceURL string
	CreatedAt time.Time
}

// Covers reports whether the event claims the given day.
func (e CalendarEvent) Covers(day time.Time) bool {
	d := DayOf(day)
	return !d.Before(DayOf(e.Start)) && d.Before(DayOf(e.End))
}

// Nights is the number of nights the event spans.
func (e CalendarEvent) Nights() int {
	n := int(DayOf(e.End).Sub(DayOf(e.Start)) / (24 * time.Hour))
	if n < 1 {
		return 1
	}
	return n
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween lists every day in the half-open range [from, to).
func DaysBetween(from, to time.Time) []time.Time {
	start := DayOf(from)
	end := DayOf(to)
	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

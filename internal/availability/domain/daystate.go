package availability

import "time"

// DayState is the derived occupancy classification of a single calendar day.
// It is never stored; it is recomputed from current events on demand.
type DayState string

const (
	DayFree            DayState = "free"
	DayDirectConfirmed DayState = "direct_confirmed"
	DayDirectPending   DayState = "direct_pending"
	DayBlocked         DayState = "blocked"
	DayExternal        DayState = "external"
	DayConflict        DayState = "conflict"
)

// Occupancy records which event buckets claim a day.
type Occupancy struct {
	DirectConfirmed bool
	DirectPending   bool
	Blocked         bool
	External        bool
}

// OccupancyOf partitions events into buckets by (channel, kind, status).
func OccupancyOf(events []CalendarEvent) Occupancy {
	var occ Occupancy
	for _, event := range events {
		switch {
		case event.Channel == ChannelBlocked || event.Kind == KindBlock:
			occ.Blocked = true
		case event.Channel == ChannelDirect && event.Kind == KindBooking && event.Status == StatusConfirmed:
			occ.DirectConfirmed = true
		case event.Channel == ChannelDirect && event.Kind == KindBooking && event.Status == StatusPending:
			occ.DirectPending = true
		case event.Channel == ChannelAirbnb || event.Channel == ChannelVrbo ||
			event.Channel == ChannelBookingCom || event.Channel == ChannelExpedia ||
			event.Channel == ChannelManual || event.Channel == ChannelOther:
			occ.External = true
		}
	}
	return occ
}

func (o Occupancy) buckets() int {
	n := 0
	if o.DirectConfirmed {
		n++
	}
	if o.DirectPending {
		n++
	}
	if o.Blocked {
		n++
	}
	if o.External {
		n++
	}
	return n
}

// State resolves the occupancy to a single day state. Two or more competing
// buckets on the same day always yield a conflict.
func (o Occupancy) State() DayState {
	if o.buckets() > 1 {
		return DayConflict
	}
	switch {
	case o.DirectConfirmed:
		return DayDirectConfirmed
	case o.DirectPending:
		return DayDirectPending
	case o.Blocked:
		return DayBlocked
	case o.External:
		return DayExternal
	default:
		return DayFree
	}
}

// ResolveDayState classifies the events covering a single day. Total
// function: any input, in any order, resolves to exactly one state.
func ResolveDayState(events []CalendarEvent) DayState {
	return OccupancyOf(events).State()
}

// EventsCovering filters events down to those claiming the given day.
func EventsCovering(events []CalendarEvent, day time.Time) []CalendarEvent {
	var covering []CalendarEvent
	for _, event := range events {
		if event.Covers(day) {
			covering = append(covering, event)
		}
	}
	return covering
}

// ResolveRange resolves every day in the half-open range [checkIn, checkOut).
// The returned slice is ordered by day.
func ResolveRange(events []CalendarEvent, checkIn, checkOut time.Time) []DayResolution {
	days := DaysBetween(checkIn, checkOut)
	resolutions := make([]DayResolution, 0, len(days))
	for _, day := range days {
		covering := EventsCovering(events, day)
		resolutions = append(resolutions, DayResolution{
			Day:       day,
			State:     ResolveDayState(covering),
			Occupancy: OccupancyOf(covering),
		})
	}
	return resolutions
}

// DayResolution is one resolved day in a range query.
type DayResolution struct {
	Day       time.Time
	State     DayState
	Occupancy Occupancy
}

// CheckRangeFree verifies every day in [checkIn, checkOut) resolves free.
// Any non-free day fails the whole range with a conflict error carrying the
// first offending day.
func CheckRangeFree(events []CalendarEvent, checkIn, checkOut time.Time) error {
	if !DayOf(checkOut).After(DayOf(checkIn)) {
		return ErrInvalidRange
	}
	for _, resolution := range ResolveRange(events, checkIn, checkOut) {
		if resolution.State != DayFree {
			return &ConflictError{
				Day:      resolution.Day,
				State:    resolution.State,
				Category: CategoryOf(resolution.Occupancy),
			}
		}
	}
	return nil
}

package availability

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func spanEvent(channel Channel, kind EventKind, status BookingStatus, start, end time.Time) CalendarEvent {
	return CalendarEvent{
		ListingID: "listing-1",
		Start:     start,
		End:       end,
		Channel:   channel,
		Kind:      kind,
		Status:    status,
	}
}

func TestResolveDayState_Free(t *testing.T) {
	if state := ResolveDayState(nil); state != DayFree {
		t.Fatalf("expected free, got %s", state)
	}
}

func TestResolveDayState_DirectPending(t *testing.T) {
	events := []CalendarEvent{
		spanEvent(ChannelDirect, KindBooking, StatusPending, day(2025, 3, 1), day(2025, 3, 4)),
	}
	if state := ResolveDayState(events); state != DayDirectPending {
		t.Fatalf("expected direct_pending, got %s", state)
	}
}

func TestResolveDayState_SingleBuckets(t *testing.T) {
	cases := []struct {
		name  string
		event CalendarEvent
		want  DayState
	}{
		{"confirmed", spanEvent(ChannelDirect, KindBooking, StatusConfirmed, day(2025, 3, 1), day(2025, 3, 2)), DayDirectConfirmed},
		{"pending", spanEvent(ChannelDirect, KindBooking, StatusPending, day(2025, 3, 1), day(2025, 3, 2)), DayDirectPending},
		{"blocked channel", spanEvent(ChannelBlocked, KindBlock, "", day(2025, 3, 1), day(2025, 3, 2)), DayBlocked},
		{"manual block", spanEvent(ChannelManual, KindBlock, "", day(2025, 3, 1), day(2025, 3, 2)), DayBlocked},
		{"manual booking", spanEvent(ChannelManual, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
		{"airbnb", spanEvent(ChannelAirbnb, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
		{"vrbo", spanEvent(ChannelVrbo, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
		{"bookingcom", spanEvent(ChannelBookingCom, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
		{"expedia", spanEvent(ChannelExpedia, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
		{"other", spanEvent(ChannelOther, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2)), DayExternal},
	}
	for _, tc := range cases {
		if state := ResolveDayState([]CalendarEvent{tc.event}); state != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, state)
		}
	}
}

func TestResolveDayState_ConflictDominance(t *testing.T) {
	confirmed := spanEvent(ChannelDirect, KindBooking, StatusConfirmed, day(2025, 3, 1), day(2025, 3, 2))
	pending := spanEvent(ChannelDirect, KindBooking, StatusPending, day(2025, 3, 1), day(2025, 3, 2))
	blocked := spanEvent(ChannelBlocked, KindBlock, "", day(2025, 3, 1), day(2025, 3, 2))
	external := spanEvent(ChannelAirbnb, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2))

	buckets := []CalendarEvent{confirmed, pending, blocked, external}
	for i := range buckets {
		for j := range buckets {
			if i == j {
				continue
			}
			state := ResolveDayState([]CalendarEvent{buckets[i], buckets[j]})
			if state != DayConflict {
				t.Errorf("pair (%d,%d): expected conflict, got %s", i, j, state)
			}
		}
	}
}

func TestResolveDayState_ExternalPlusBlockedConflict(t *testing.T) {
	events := []CalendarEvent{
		spanEvent(ChannelAirbnb, KindBooking, "", day(2025, 3, 1), day(2025, 3, 4)),
		spanEvent(ChannelBlocked, KindBlock, "", day(2025, 3, 1), day(2025, 3, 4)),
	}
	if state := ResolveDayState(events); state != DayConflict {
		t.Fatalf("expected conflict, got %s", state)
	}
}

func TestResolveDayState_OrderIndependent(t *testing.T) {
	a := spanEvent(ChannelDirect, KindBooking, StatusConfirmed, day(2025, 3, 1), day(2025, 3, 2))
	b := spanEvent(ChannelBlocked, KindBlock, "", day(2025, 3, 1), day(2025, 3, 2))
	c := spanEvent(ChannelAirbnb, KindBooking, "", day(2025, 3, 1), day(2025, 3, 2))

	permutations := [][]CalendarEvent{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	want := ResolveDayState(permutations[0])
	for i, events := range permutations {
		if state := ResolveDayState(events); state != want {
			t.Errorf("permutation %d: expected %s, got %s", i, want, state)
		}
	}
}

func TestResolveDayState_SameBucketNoConflict(t *testing.T) {
	events := []CalendarEvent{
		spanEvent(ChannelAirbnb, KindBooking, "", day(2025, 3, 1), day(2025, 3, 4)),
		spanEvent(ChannelVrbo, KindBooking, "", day(2025, 3, 2), day(2025, 3, 5)),
	}
	if state := ResolveDayState(events); state != DayExternal {
		t.Fatalf("expected external, got %s", state)
	}
}

func TestCovers_HalfOpenRange(t *testing.T) {
	event := spanEvent(ChannelDirect, KindBooking, StatusConfirmed, day(2025, 3, 1), day(2025, 3, 4))
	if !event.Covers(day(2025, 3, 1)) {
		t.Fatal("start day must be covered")
	}
	if !event.Covers(day(2025, 3, 3)) {
		t.Fatal("last night must be covered")
	}
	if event.Covers(day(2025, 3, 4)) {
		t.Fatal("check-out day must not be covered")
	}
}

func TestCheckRangeFree(t *testing.T) {
	events := []CalendarEvent{
		spanEvent(ChannelDirect, KindBooking, StatusConfirmed, day(2025, 3, 5), day(2025, 3, 8)),
	}
	if err := CheckRangeFree(events, day(2025, 3, 1), day(2025, 3, 5)); err != nil {
		t.Fatalf("expected free range, got %v", err)
	}

	err := CheckRangeFree(events, day(2025, 3, 4), day(2025, 3, 6))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Category != ConflictGuestBooked {
		t.Fatalf("expected guest_booked, got %s", conflict.Category)
	}
	if !conflict.Day.Equal(day(2025, 3, 5)) {
		t.Fatalf("expected first conflicting day 2025-03-05, got %s", conflict.Day)
	}
}

func TestCheckRangeFree_ManualBookingBlocksRange(t *testing.T) {
	events := []CalendarEvent{
		spanEvent(ChannelManual, KindBooking, "", day(2025, 3, 1), day(2025, 3, 4)),
	}
	if state := ResolveDayState(EventsCovering(events, day(2025, 3, 2))); state != DayExternal {
		t.Fatalf("expected external, got %s", state)
	}

	err := CheckRangeFree(events, day(2025, 3, 1), day(2025, 3, 4))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict over manual booking, got %v", err)
	}
	if conflict.Category != ConflictExternalChannel {
		t.Fatalf("expected external_channel, got %s", conflict.Category)
	}
}

func TestCheckRangeFree_InvalidRange(t *testing.T) {
	if err := CheckRangeFree(nil, day(2025, 3, 5), day(2025, 3, 5)); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		occ  Occupancy
		want ConflictCategory
	}{
		{Occupancy{DirectConfirmed: true}, ConflictGuestBooked},
		{Occupancy{DirectPending: true, External: true}, ConflictGuestBooked},
		{Occupancy{Blocked: true, External: true}, ConflictHostBlocked},
		{Occupancy{External: true}, ConflictExternalChannel},
	}
	for i, tc := range cases {
		if got := CategoryOf(tc.occ); got != tc.want {
			t.Errorf("case %d: expected %s, got %s", i, tc.want, got)
		}
	}
}

package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyListingID is returned when a listing id is missing.
	ErrEmptyListingID = errors.New("availability: empty listing id")
	// ErrInvalidRange is returned when check-out is not after check-in.
	ErrInvalidRange = errors.New("availability: invalid date range")
	// ErrInvalidChannel is returned for an unknown channel value.
	ErrInvalidChannel = errors.New("availability: invalid channel")
	// ErrNilEvent is returned when persisting an empty event.
	ErrNilEvent = errors.New("availability: nil event")
)

// ConflictCategory tells the caller who owns the contested day, so the right
// message can be presented.
type ConflictCategory string

const (
	ConflictGuestBooked     ConflictCategory = "guest_booked"
	ConflictHostBlocked     ConflictCategory = "host_blocked"
	ConflictExternalChannel ConflictCategory = "external_channel"
)

// CategoryOf derives the conflict category from bucket occupancy. A direct
// booking outranks a host block, which outranks an external claim.
func CategoryOf(occ Occupancy) ConflictCategory {
	switch {
	case occ.DirectConfirmed || occ.DirectPending:
		return ConflictGuestBooked
	case occ.Blocked:
		return ConflictHostBlocked
	default:
		return ConflictExternalChannel
	}
}

// ConflictError reports that a target range is not entirely free.
type ConflictError struct {
	ListingID string
	Day       time.Time
	State     DayState
	Category  ConflictCategory
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("availability: %s on %s (%s)", e.Category, e.Day.Format("2006-01-02"), e.State)
}

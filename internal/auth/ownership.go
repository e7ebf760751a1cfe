package auth

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrNotOwner indicates the listing belongs to a different host.
	ErrNotOwner = errors.New("auth: not listing owner")
	// ErrNotFound indicates the listing does not exist.
	ErrNotFound = errors.New("auth: listing not found")
)

// ListingOwnerChecker validates listing ownership for host-only operations.
type ListingOwnerChecker interface {
	EnsureListingOwner(ctx context.Context, userID, listingID string) error
}

// ListingChecker checks ownership against the listings table. Admins bypass
// the check in the handlers, not here.
type ListingChecker struct {
	db *sql.DB
}

// NewListingChecker constructs a ListingChecker.
func NewListingChecker(db *sql.DB) *ListingChecker {
	if db == nil {
		return nil
	}
	return &ListingChecker{db: db}
}

// EnsureListingOwner verifies the listing belongs to the user.
func (c *ListingChecker) EnsureListingOwner(ctx context.Context, userID, listingID string) error {
	if c == nil || c.db == nil {
		return nil
	}
	if userID == "" || listingID == "" {
		return nil
	}
	var ownerID string
	err := c.db.QueryRowContext(ctx, "SELECT host_id FROM listings WHERE id = $1", listingID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}
	return nil
}

package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"staybook/internal/audit"
	"staybook/internal/auth"
	"staybook/internal/availability/application"
	availability "staybook/internal/availability/domain"
	"staybook/internal/observability/metrics"
	pricing "staybook/internal/pricing/domain"
)

// BookingHandler handles booking creation under /api/v1/bookings.
type BookingHandler struct {
	service     *application.BookingService
	auditLogger audit.Logger
}

// NewBookingHandler constructs a handler.
func NewBookingHandler(service *application.BookingService, auditLogger audit.Logger) (*BookingHandler, error) {
	if service == nil {
		return nil, errors.New("booking handler: nil service")
	}
	return &BookingHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles booking routes.
func (h *BookingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/bookings" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.handleCreate(w, r)
}

func (h *BookingHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := metrics.BookingOutcomeCreated
	defer func() {
		metrics.ObserveBookingCreate(outcome, time.Since(start))
	}()

	var req struct {
		ListingID               string `json:"listing_id"`
		CheckIn                 string `json:"check_in"`
		CheckOut                string `json:"check_out"`
		HostNetNightlyMinor     int64  `json:"host_net_nightly_minor"`
		IsFirstCompletedBooking bool   `json:"is_first_completed_booking"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		outcome = metrics.BookingOutcomeInvalid
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		outcome = metrics.BookingOutcomeInvalid
		http.Error(w, "invalid check_in date", http.StatusBadRequest)
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		outcome = metrics.BookingOutcomeInvalid
		http.Error(w, "invalid check_out date", http.StatusBadRequest)
		return
	}

	booking, err := h.service.Reserve(r.Context(), application.ReserveRequest{
		ListingID:               req.ListingID,
		CheckIn:                 checkIn,
		CheckOut:                checkOut,
		HostNetNightlyMinor:     req.HostNetNightlyMinor,
		IsFirstCompletedBooking: req.IsFirstCompletedBooking,
	})
	if err != nil {
		outcome = respondBookingError(w, err)
		return
	}

	resp := map[string]any{
		"booking_id":             booking.ID,
		"listing_id":             booking.ListingID,
		"check_in":               booking.CheckIn.Format(dateLayout),
		"check_out":              booking.CheckOut.Format(dateLayout),
		"nights":                 booking.Nights,
		"status":                 string(booking.Status),
		"currency":               booking.Quote.Currency,
		"guest_unit_price_minor": booking.Quote.GuestUnitPriceMinor,
		"guest_total_minor":      booking.Quote.GuestTotalMinor,
		"pricing_version":        booking.Quote.PricingVersion,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)

	h.logAudit(r, booking.ListingID, booking.ID, "booking.create", map[string]any{
		"check_in":  booking.CheckIn.Format(dateLayout),
		"check_out": booking.CheckOut.Format(dateLayout),
		"nights":    booking.Nights,
	})
}

// respondBookingError maps reserve errors to status codes and returns the
// metrics outcome label.
func respondBookingError(w http.ResponseWriter, err error) string {
	var conflict *availability.ConflictError
	if errors.As(err, &conflict) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    "range not available",
			"category": string(conflict.Category),
			"day":      conflict.Day.Format(dateLayout),
			"state":    string(conflict.State),
		})
		return metrics.BookingOutcomeConflict
	}
	switch {
	case errors.Is(err, availability.ErrEmptyListingID),
		errors.Is(err, availability.ErrInvalidRange),
		errors.Is(err, pricing.ErrNegativeHostNet),
		errors.Is(err, pricing.ErrNonPositiveHostNet),
		errors.Is(err, pricing.ErrInvalidNights):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return metrics.BookingOutcomeInvalid
	case errors.Is(err, pricing.ErrInvalidFeeConfig),
		errors.Is(err, pricing.ErrMarginCorrectionBound),
		errors.Is(err, pricing.ErrEmptySchedule):
		http.Error(w, "pricing configuration error", http.StatusInternalServerError)
		return metrics.BookingOutcomeError
	default:
		http.Error(w, "booking create failed", http.StatusInternalServerError)
		return metrics.BookingOutcomeError
	}
}

func (h *BookingHandler) logAudit(r *http.Request, listingID, bookingID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	actor := auth.UserIDFromContext(r.Context())
	if actor == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        actor,
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "booking",
		ResourceID:   bookingID,
		ListingID:    listingID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

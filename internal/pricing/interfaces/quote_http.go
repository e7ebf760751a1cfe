package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"staybook/internal/observability/metrics"
	"staybook/internal/pricing/application"
	pricing "staybook/internal/pricing/domain"
)

// QuoteHandler handles pricing quote APIs under /api/v1/quotes.
type QuoteHandler struct {
	service *application.QuoteService
}

// NewQuoteHandler constructs a handler.
func NewQuoteHandler(service *application.QuoteService) (*QuoteHandler, error) {
	if service == nil {
		return nil, errors.New("quote handler: nil service")
	}
	return &QuoteHandler{service: service}, nil
}

// ServeHTTP dispatches quote routes.
func (h *QuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.URL.Path {
	case "/api/v1/quotes":
		h.handleQuote(w, r)
	case "/api/v1/quotes/receipt.pdf":
		h.handleReceiptPDF(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type quoteRequest struct {
	HostNetNightlyMinor     int64 `json:"host_net_nightly_minor"`
	Nights                  int   `json:"nights"`
	IsFirstCompletedBooking bool  `json:"is_first_completed_booking"`
}

type quoteResponse struct {
	Currency               string `json:"currency"`
	Nights                 int    `json:"nights"`
	HostNetNightlyMinor    int64  `json:"host_net_nightly_minor"`
	GuestUnitPriceMinor    int64  `json:"guest_unit_price_minor"`
	GuestTotalMinor        int64  `json:"guest_total_minor"`
	PlatformFeeEstMinor    int64  `json:"platform_fee_est_minor"`
	PlatformFeeCapped      bool   `json:"platform_fee_capped"`
	StripeFeeEstMinor      int64  `json:"stripe_fee_est_minor"`
	PlatformMarginEstMinor int64  `json:"platform_margin_est_minor"`
	PlatformFeeBps         uint32 `json:"platform_fee_bps"`
	StripeVarBps           uint32 `json:"stripe_var_bps"`
	StripeFixedMinor       uint32 `json:"stripe_fixed_minor"`
	PricingVersion         string `json:"pricing_version"`
}

func (h *QuoteHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveQuote(result, time.Since(start))
	}()

	quote, ok := h.quoteFromRequest(w, r, &result)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toQuoteResponse(quote))
}

func (h *QuoteHandler) handleReceiptPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", result, time.Since(start))
	}()

	quote, ok := h.quoteFromRequest(w, r, &result)
	if !ok {
		return
	}
	data, err := BuildQuoteReceiptPDF(quote)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *QuoteHandler) quoteFromRequest(w http.ResponseWriter, r *http.Request, result *string) (application.QuoteResult, bool) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		*result = metrics.ResultError
		http.Error(w, "invalid json", http.StatusBadRequest)
		return application.QuoteResult{}, false
	}

	quote, err := h.service.Quote(r.Context(), application.QuoteRequest{
		HostNetNightlyMinor:     req.HostNetNightlyMinor,
		Nights:                  req.Nights,
		IsFirstCompletedBooking: req.IsFirstCompletedBooking,
	})
	if err != nil {
		*result = metrics.ResultError
		respondQuoteError(w, err)
		return application.QuoteResult{}, false
	}
	return quote, true
}

func toQuoteResponse(quote application.QuoteResult) quoteResponse {
	return quoteResponse{
		Currency:               quote.Currency,
		Nights:                 quote.Nights,
		HostNetNightlyMinor:    quote.HostNetNightlyMinor,
		GuestUnitPriceMinor:    quote.GuestUnitPriceMinor,
		GuestTotalMinor:        quote.GuestTotalMinor,
		PlatformFeeEstMinor:    quote.PlatformFeeEstMinor,
		PlatformFeeCapped:      quote.PlatformFeeCapped,
		StripeFeeEstMinor:      quote.StripeFeeEstMinor,
		PlatformMarginEstMinor: quote.PlatformMarginEstMinor,
		PlatformFeeBps:         quote.PlatformFeeBps,
		StripeVarBps:           quote.StripeVarBps,
		StripeFixedMinor:       quote.StripeFixedMinor,
		PricingVersion:         quote.PricingVersion,
	}
}

// respondQuoteError maps pricing errors to status codes. Configuration
// faults halt quoting with a 500 rather than returning a wrong price.
func respondQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrNegativeHostNet),
		errors.Is(err, pricing.ErrNonPositiveHostNet),
		errors.Is(err, pricing.ErrInvalidNights):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pricing.ErrInvalidFeeConfig),
		errors.Is(err, pricing.ErrMarginCorrectionBound),
		errors.Is(err, pricing.ErrEmptySchedule):
		http.Error(w, "pricing configuration error", http.StatusInternalServerError)
	default:
		http.Error(w, "quote failed", http.StatusInternalServerError)
	}
}

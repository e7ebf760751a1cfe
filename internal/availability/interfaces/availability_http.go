package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"staybook/internal/availability/application"
	availability "staybook/internal/availability/domain"
	"staybook/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// AvailabilityHandler handles listing availability APIs under
// /api/v1/listings/{id}/....
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler constructs a handler.
func NewAvailabilityHandler(service *application.AvailabilityService) (*AvailabilityHandler, error) {
	if service == nil {
		return nil, errors.New("availability handler: nil service")
	}
	return &AvailabilityHandler{service: service}, nil
}

// ServeHTTP dispatches availability routes.
func (h *AvailabilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/listings/")
	if rest == r.URL.Path {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	listingID, tail := parts[0], parts[1]

	switch {
	case tail == "availability" && r.Method == http.MethodGet:
		h.handleQuery(w, r, listingID)
	case tail == "calendar/export.xlsx" && r.Method == http.MethodGet:
		h.handleExportXLSX(w, r, listingID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AvailabilityHandler) handleQuery(w http.ResponseWriter, r *http.Request, listingID string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveAvailabilityQuery(result, time.Since(start))
	}()

	from, to, err := parseRange(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Query(r.Context(), listingID, from, to)
	if err != nil {
		result = metrics.ResultError
		respondAvailabilityError(w, err)
		return
	}

	resp := struct {
		Booked  []string `json:"booked"`
		Blocked []string `json:"blocked"`
	}{
		Booked:  formatDays(report.Booked),
		Blocked: formatDays(report.Blocked),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *AvailabilityHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request, listingID string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", result, time.Since(start))
	}()

	from, to, err := parseRange(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resolutions, err := h.service.Resolutions(r.Context(), listingID, from, to)
	if err != nil {
		result = metrics.ResultError
		respondAvailabilityError(w, err)
		return
	}

	data, err := BuildCalendarXLSX(listingID, resolutions)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	from, err := time.Parse(dateLayout, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from date")
	}
	to, err := time.Parse(dateLayout, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid to date")
	}
	return from, to, nil
}

func formatDays(days []time.Time) []string {
	formatted := make([]string, 0, len(days))
	for _, day := range days {
		formatted = append(formatted, day.Format(dateLayout))
	}
	return formatted
}

func respondAvailabilityError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, availability.ErrEmptyListingID) || errors.Is(err, availability.ErrInvalidRange) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "availability query failed", http.StatusInternalServerError)
}

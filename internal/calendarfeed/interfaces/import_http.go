package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"staybook/internal/audit"
	"staybook/internal/auth"
	availability "staybook/internal/availability/domain"
	"staybook/internal/calendarfeed"
	"staybook/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// ImportHandler handles external calendar feed APIs under /api/v1/calendar.
type ImportHandler struct {
	service     *calendarfeed.ImportService
	owners      auth.ListingOwnerChecker
	auditLogger audit.Logger
}

// NewImportHandler constructs a handler. A nil owner checker disables the
// ownership check on sync.
func NewImportHandler(service *calendarfeed.ImportService, owners auth.ListingOwnerChecker, auditLogger audit.Logger) (*ImportHandler, error) {
	if service == nil {
		return nil, errors.New("import handler: nil service")
	}
	return &ImportHandler{service: service, owners: owners, auditLogger: auditLogger}, nil
}

// ServeHTTP dispatches calendar feed routes.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.URL.Path {
	case "/api/v1/calendar/import":
		h.handleImport(w, r)
	case "/api/v1/calendar/sync":
		h.handleSync(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type importedEvent struct {
	UID     string `json:"uid"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Nights  int    `json:"nights"`
}

type importResponse struct {
	Events  []importedEvent `json:"events"`
	Skipped int             `json:"skipped"`
}

func (h *ImportHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		metrics.ObserveFeedImport(metrics.ResultError, 0, 0)
		http.Error(w, "invalid json: url required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Import(r.Context(), req.URL)
	if err != nil {
		metrics.ObserveFeedImport(metrics.ResultError, 0, 0)
		http.Error(w, "calendar feed unavailable", http.StatusBadGateway)
		return
	}
	metrics.ObserveFeedImport(metrics.ResultSuccess, len(result.Events), result.Skipped)
	h.logAudit(r, "", "calendar.import", map[string]any{
		"url":     req.URL,
		"events":  len(result.Events),
		"skipped": result.Skipped,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toImportResponse(result))
}

func (h *ImportHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID string `json:"listing_id"`
		Channel   string `json:"channel"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	channel, ok := availability.NormalizeChannel(req.Channel)
	if !ok || channel == availability.ChannelDirect {
		http.Error(w, "invalid channel", http.StatusBadRequest)
		return
	}
	if req.ListingID == "" || req.URL == "" {
		http.Error(w, "listing_id and url required", http.StatusBadRequest)
		return
	}
	if h.owners != nil && auth.RoleFromContext(r.Context()) != auth.RoleAdmin {
		if err := h.owners.EnsureListingOwner(r.Context(), auth.UserIDFromContext(r.Context()), req.ListingID); err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				http.Error(w, "listing not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, auth.ErrNotOwner) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "ownership check failed", http.StatusInternalServerError)
			return
		}
	}

	result, err := h.service.SyncListing(r.Context(), req.ListingID, channel, req.URL)
	if err != nil {
		metrics.ObserveFeedImport(metrics.ResultError, 0, 0)
		if errors.Is(err, availability.ErrEmptyListingID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "calendar feed sync failed", http.StatusBadGateway)
		return
	}
	metrics.ObserveFeedImport(metrics.ResultSuccess, len(result.Events), result.Skipped)
	h.logAudit(r, req.ListingID, "calendar.sync", map[string]any{
		"url":     req.URL,
		"channel": req.Channel,
		"events":  len(result.Events),
		"skipped": result.Skipped,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toImportResponse(result))
}

func toImportResponse(result calendarfeed.ImportResult) importResponse {
	events := make([]importedEvent, 0, len(result.Events))
	for _, ev := range result.Events {
		events = append(events, importedEvent{
			UID:     ev.UID,
			Start:   ev.Start.UTC().Format(dateLayout),
			End:     ev.End.UTC().Format(dateLayout),
			Summary: ev.Summary,
			URL:     ev.URL,
			Nights:  ev.Nights,
		})
	}
	return importResponse{Events: events, Skipped: result.Skipped}
}

func (h *ImportHandler) logAudit(r *http.Request, listingID, action string, meta map[string]any) {
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
		ResourceType: "calendar_feed",
		ListingID:    listingID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		CreatedAt:    time.Now().UTC(),
	})
}

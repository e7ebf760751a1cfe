package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "staybook_"

	resultSuccess = "success"
	resultError   = "error"

	bookingOutcomeCreated  = "created"
	bookingOutcomeConflict = "conflict"
	bookingOutcomeInvalid  = "invalid"
	bookingOutcomeError    = "error"
)

var (
	registerOnce sync.Once

	quoteRequests *prometheus.CounterVec
	quoteLatency  *prometheus.HistogramVec

	availabilityQueries *prometheus.CounterVec
	availabilityLatency *prometheus.HistogramVec

	bookingCreates *prometheus.CounterVec
	bookingLatency *prometheus.HistogramVec

	feedImports        *prometheus.CounterVec
	feedEventsImported prometheus.Counter
	feedBlocksSkipped  prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		quoteRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quote_requests_total",
				Help: "Total quote requests by result",
			},
			[]string{"result"},
		)
		quoteLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "quote_latency_seconds",
				Help:    "Quote latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		availabilityQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "availability_queries_total",
				Help: "Total availability range queries by result",
			},
			[]string{"result"},
		)
		availabilityLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "availability_latency_seconds",
				Help:    "Availability query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		bookingCreates = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "booking_creates_total",
				Help: "Total booking create attempts by outcome",
			},
			[]string{"outcome"},
		)
		bookingLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "booking_create_latency_seconds",
				Help:    "Booking create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		)

		feedImports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_imports_total",
				Help: "Total calendar feed imports by result",
			},
			[]string{"result"},
		)
		feedEventsImported = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_events_imported_total",
				Help: "Total events imported from calendar feeds",
			},
		)
		feedBlocksSkipped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "feed_blocks_skipped_total",
				Help: "Total malformed feed blocks skipped",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			quoteRequests,
			quoteLatency,
			availabilityQueries,
			availabilityLatency,
			bookingCreates,
			bookingLatency,
			feedImports,
			feedEventsImported,
			feedBlocksSkipped,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "pending_direct_bookings",
			Help: "Direct bookings awaiting confirmation",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM calendar_events WHERE channel = 'direct' AND status = 'pending'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "calendar_events_total",
			Help: "Calendar events currently stored",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM calendar_events")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// ObserveQuote records quote request duration and result.
func ObserveQuote(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if quoteRequests != nil {
		quoteRequests.WithLabelValues(result).Inc()
	}
	if quoteLatency != nil {
		quoteLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveAvailabilityQuery records availability query duration and result.
func ObserveAvailabilityQuery(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if availabilityQueries != nil {
		availabilityQueries.WithLabelValues(result).Inc()
	}
	if availabilityLatency != nil {
		availabilityLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveBookingCreate records booking create duration and outcome.
func ObserveBookingCreate(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = bookingOutcomeError
	}
	if bookingCreates != nil {
		bookingCreates.WithLabelValues(outcome).Inc()
	}
	if bookingLatency != nil {
		bookingLatency.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

// ObserveFeedImport records a feed import outcome with event and skip counts.
func ObserveFeedImport(result string, imported, skipped int) {
	if result == "" {
		result = resultSuccess
	}
	if feedImports != nil {
		feedImports.WithLabelValues(result).Inc()
	}
	if imported > 0 && feedEventsImported != nil {
		feedEventsImported.Add(float64(imported))
	}
	if skipped > 0 && feedBlocksSkipped != nil {
		feedBlocksSkipped.Add(float64(skipped))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	BookingOutcomeCreated  = bookingOutcomeCreated
	BookingOutcomeConflict = bookingOutcomeConflict
	BookingOutcomeInvalid  = bookingOutcomeInvalid
	BookingOutcomeError    = bookingOutcomeError
)

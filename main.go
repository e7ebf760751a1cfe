package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"staybook/internal/audit"
	"staybook/internal/auth"
	pricingadapter "staybook/internal/availability/adapters/pricing"
	availabilityapp "staybook/internal/availability/application"
	availabilityrepo "staybook/internal/availability/infrastructure/postgres"
	availabilityhttp "staybook/internal/availability/interfaces"
	"staybook/internal/calendarfeed"
	calendarhttp "staybook/internal/calendarfeed/interfaces"
	"staybook/internal/observability/metrics"
	pricingapp "staybook/internal/pricing/application"
	"staybook/internal/pricing/infrastructure/feeschedule"
	pricinghttp "staybook/internal/pricing/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	listingChecker := auth.NewListingChecker(db)
	auditRepo := audit.NewRepository(db)

	var schedules pricingapp.FeeScheduleProvider
	if cfg.FeeScheduleSource == "postgres" {
		schedules = feeschedule.NewPostgresProvider(db)
	} else {
		schedule, err := pricingapp.LoadScheduleConfig()
		if err != nil {
			logger.Fatalf("fee schedule config error: %v", err)
		}
		provider, err := feeschedule.NewStaticProvider(schedule)
		if err != nil {
			logger.Fatalf("fee schedule provider error: %v", err)
		}
		schedules = provider
	}

	quoteService, err := pricingapp.NewQuoteService(schedules)
	if err != nil {
		logger.Fatalf("quote service error: %v", err)
	}
	quoteHandler, err := pricinghttp.NewQuoteHandler(quoteService)
	if err != nil {
		logger.Fatalf("quote handler error: %v", err)
	}

	eventRepo := availabilityrepo.NewEventRepository(db)
	availabilityService, err := availabilityapp.NewAvailabilityService(eventRepo)
	if err != nil {
		logger.Fatalf("availability service error: %v", err)
	}
	availabilityHandler, err := availabilityhttp.NewAvailabilityHandler(availabilityService)
	if err != nil {
		logger.Fatalf("availability handler error: %v", err)
	}

	quoter, err := pricingadapter.NewQuoterAdapter(quoteService)
	if err != nil {
		logger.Fatalf("quoter adapter error: %v", err)
	}
	bookingService, err := availabilityapp.NewBookingService(eventRepo, quoter, availabilityhttp.NewLoggingPublisher(logger), nil,
		availabilityapp.WithBookingLogger(logger))
	if err != nil {
		logger.Fatalf("booking service error: %v", err)
	}
	bookingHandler, err := availabilityhttp.NewBookingHandler(bookingService, auditRepo)
	if err != nil {
		logger.Fatalf("booking handler error: %v", err)
	}

	fetcher := calendarfeed.NewFetcher(&http.Client{Timeout: cfg.FeedTimeout})
	importService, err := calendarfeed.NewImportService(fetcher, eventRepo, logger)
	if err != nil {
		logger.Fatalf("import service error: %v", err)
	}
	importHandler, err := calendarhttp.NewImportHandler(importService, listingChecker, auditRepo)
	if err != nil {
		logger.Fatalf("import handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/quotes", quoteHandler)
	mux.Handle("/api/v1/quotes/receipt.pdf", quoteHandler)
	mux.Handle("/api/v1/bookings", bookingHandler)
	mux.Handle("/api/v1/listings/", availabilityHandler)
	mux.Handle("/api/v1/calendar/import", importHandler)
	mux.Handle("/api/v1/calendar/sync", importHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	JWTSecret         string
	FeeScheduleSource string
	FeedTimeout       time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		FeeScheduleSource: getenvDefault("FEE_SCHEDULE_SOURCE", "config"),
		FeedTimeout:       getenvDuration("FEED_HTTP_TIMEOUT", 15*time.Second),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

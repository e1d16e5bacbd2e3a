package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	alertapp "github.com/AtharvSabde/Cropverse/internal/alerts/application"
	alertmemory "github.com/AtharvSabde/Cropverse/internal/alerts/infrastructure/memory"
	alertpostgres "github.com/AtharvSabde/Cropverse/internal/alerts/infrastructure/postgres"
	alerthttp "github.com/AtharvSabde/Cropverse/internal/alerts/interfaces/http"
	alertnotify "github.com/AtharvSabde/Cropverse/internal/alerts/notify"
	analyticsapp "github.com/AtharvSabde/Cropverse/internal/analytics/application"
	analyticsmemory "github.com/AtharvSabde/Cropverse/internal/analytics/infrastructure/memory"
	analyticspostgres "github.com/AtharvSabde/Cropverse/internal/analytics/infrastructure/postgres"
	analyticshttp "github.com/AtharvSabde/Cropverse/internal/analytics/interfaces/http"
	"github.com/AtharvSabde/Cropverse/internal/audit"
	"github.com/AtharvSabde/Cropverse/internal/auth"
	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
	readingsapp "github.com/AtharvSabde/Cropverse/internal/readings/application"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
	readingsmemory "github.com/AtharvSabde/Cropverse/internal/readings/infrastructure/memory"
	readingspostgres "github.com/AtharvSabde/Cropverse/internal/readings/infrastructure/postgres"
	readingsdevice "github.com/AtharvSabde/Cropverse/internal/readings/interfaces/device"
	readingshttp "github.com/AtharvSabde/Cropverse/internal/readings/interfaces/http"
	"github.com/AtharvSabde/Cropverse/internal/reports"
	"github.com/AtharvSabde/Cropverse/internal/settings"
	settingshttp "github.com/AtharvSabde/Cropverse/internal/settings/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	monitorCfg, err := analyticsapp.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if len(monitorCfg.Schedule.Sensors) == 0 {
		monitorCfg.Schedule.Sensors = []string{cfg.DefaultSensorID}
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	} else {
		logger.Printf("no DATABASE_URL set, using in-memory stores")
	}

	metrics.Init()

	var readingRepo readings.Repository
	var alertRepo alerts.Repository
	var summaryRepo analytics.Repository
	var settingsStore settings.Store
	var auditor audit.Logger
	if db != nil {
		readingRepo = readingspostgres.NewReadingRepository(db)
		alertRepo = alertpostgres.NewAlertRepository(db)
		summaryRepo = analyticspostgres.NewSummaryRepository(db)
		settingsStore = settings.NewPostgresStore(db)
		auditor = audit.NewRepository(db)
	} else {
		readingRepo = readingsmemory.NewReadingRepository()
		alertRepo = alertmemory.NewAlertRepository()
		summaryRepo = analyticsmemory.NewSummaryRepository()
		settingsStore = settings.NewMemoryStore()
		auditor = audit.NewMemoryLogger()
	}

	thresholdProvider := settings.NewProvider(settingsStore,
		settings.WithFileOverrides(monitorCfg.Thresholds),
		settings.WithLogger(logger),
	)

	var summaryChannel analyticsapp.SummaryChannel
	alertOpts := []alertapp.ServiceOption{
		alertapp.WithDedupeWindow(cfg.AlertDedupeWindow),
	}
	if monitorCfg.WebhookURL != "" {
		channel, err := alertnotify.NewWebhookChannel(monitorCfg.WebhookURL)
		if err != nil {
			logger.Fatalf("alert webhook error: %v", err)
		}
		tpl, err := alertnotify.NewTemplate(monitorCfg.Template)
		if err != nil {
			logger.Fatalf("alert template error: %v", err)
		}
		notifier, err := alertnotify.NewNotifier(channel, tpl,
			alertnotify.WithCooldown(cfg.AlertNotifyCooldown),
			alertnotify.WithDedupeWindow(cfg.AlertNotifyDedupeWindow),
		)
		if err != nil {
			logger.Fatalf("alert notifier error: %v", err)
		}
		alertOpts = append(alertOpts, alertapp.WithNotifier(alertnotify.NewMultiNotifier(notifier)))
		summaryChannel = channel
	}

	alertService, err := alertapp.NewService(alertRepo, alertOpts...)
	if err != nil {
		logger.Fatalf("alert service error: %v", err)
	}

	ingestService, err := readingsapp.NewIngestService(readingRepo, alertService, thresholdProvider, logger,
		readingsapp.WithDefaultSensorID(cfg.DefaultSensorID),
	)
	if err != nil {
		logger.Fatalf("ingest service error: %v", err)
	}

	summaryService, err := analyticsapp.NewSummaryService(summaryRepo, readingRepo, alertService, logger,
		analyticsapp.WithTrendWindowDays(cfg.TrendWindowDays),
	)
	if err != nil {
		logger.Fatalf("summary service error: %v", err)
	}

	scheduler, err := analyticsapp.NewScheduler(summaryService, alertService, summaryChannel, monitorCfg.Schedule, logger)
	if err != nil {
		logger.Fatalf("scheduler error: %v", err)
	}
	go scheduler.Start(context.Background())

	ingestHandler, err := readingsdevice.NewIngestHandler(ingestService, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}
	readingHandler, err := readingshttp.NewHandler(ingestService)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	alertHandler, err := alerthttp.NewHandler(alertService, auditor)
	if err != nil {
		logger.Fatalf("alert handler error: %v", err)
	}
	analyticsHandler, err := analyticshttp.NewHandler(summaryService, auditor)
	if err != nil {
		logger.Fatalf("analytics handler error: %v", err)
	}
	reportHandler, err := reports.NewHandler(summaryService, auditor)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}
	settingsHandler, err := settingshttp.NewHandler(thresholdProvider, auditor)
	if err != nil {
		logger.Fatalf("settings handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ingest/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), time.Duration(cfg.IngestSkewSeconds)*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/ingest/readings", ingestAuth.Wrap(ingestHandler))
	mux.Handle("/api/v1/readings", readingHandler)
	mux.Handle("/api/v1/alerts", alertHandler)
	mux.Handle("/api/v1/alerts/", alertHandler)
	mux.Handle("/api/v1/analytics/", analyticsHandler)
	mux.Handle("/api/v1/reports/daily", reportHandler)
	mux.Handle("/api/v1/settings", settingsHandler)
	mux.Handle("/api/v1/settings/", settingsHandler)
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
	DatabaseURL             string
	HTTPAddr                string
	DefaultSensorID         string
	TrendWindowDays         int
	AlertDedupeWindow       time.Duration
	AlertNotifyCooldown     time.Duration
	AlertNotifyDedupeWindow time.Duration
	JWTSecret               string
	IngestSecret            string
	IngestSkewSeconds       int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:             getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:                getenvDefault("HTTP_ADDR", ":8080"),
		DefaultSensorID:         getenvDefault("DEFAULT_SENSOR_ID", readingsapp.DefaultSensorID),
		TrendWindowDays:         getenvIntDefault("TREND_WINDOW_DAYS", analyticsapp.DefaultTrendWindowDays),
		AlertDedupeWindow:       getenvDuration("ALERT_DEDUP_WINDOW", 0),
		AlertNotifyCooldown:     getenvDuration("ALERT_NOTIFY_COOLDOWN", 0),
		AlertNotifyDedupeWindow: getenvDuration("ALERT_NOTIFY_DEDUP_WINDOW", 0),
		JWTSecret:               getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:            getenvDefault("INGEST_HMAC_SECRET", ""),
		IngestSkewSeconds:       getenvIntDefault("INGEST_MAX_SKEW_SECONDS", 300),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	if cfg.IngestSecret == "" {
		log.Fatal("INGEST_HMAC_SECRET is required")
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

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
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

package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pharmacy-ai-agent/internal/chat"
	"pharmacy-ai-agent/internal/config"
	"pharmacy-ai-agent/internal/notify"
	"pharmacy-ai-agent/internal/observability/metrics"
	"pharmacy-ai-agent/internal/pharmacy"
	"pharmacy-ai-agent/internal/platform/telegram"
	"pharmacy-ai-agent/internal/report"
	"pharmacy-ai-agent/pkg/logging"
)

func main() {
	// 1. Infrastructure
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	var db *sql.DB
	var err error

	// Simple retry loop so the server survives a slow database start.
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}
		logger.Info("waiting for database", "attempt", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	logger.Info("connected to database")

	m, err := migrate.New(cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("migration init failed: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("migration up failed: %v", err)
	}
	logger.Info("migrations applied")

	// 2. Repositories
	catalogRepo := pharmacy.NewCatalogRepository(db)
	pendingRepo := pharmacy.NewPendingOrderRepository(db)
	orderRepo := pharmacy.NewOrderRepository(db)
	prescriptionRepo := pharmacy.NewPrescriptionRepository(db)
	alertRepo := pharmacy.NewRefillAlertRepository(db)

	// 3. Services
	chatMetrics := metrics.NewChatMetrics(nil)

	warehouse := notify.NewWarehouseClient(cfg.WarehouseWebhookURL, cfg.WebhookTimeout)
	inventory := pharmacy.NewInventoryGate(catalogRepo)
	safety := pharmacy.NewSafetyGate(catalogRepo, orderRepo, prescriptionRepo, cfg.RecentPurchaseWindow)
	committer := pharmacy.NewCommitter(db, warehouse, cfg.RecentPurchaseWindow, logger.With("component", "committer"))
	recommender := pharmacy.NewRecommender(catalogRepo, cfg.RecommendationLimit)
	resolver := chat.NewResolver(catalogRepo, cfg.FuzzyMatchThreshold)

	orchestrator := chat.NewOrchestrator(
		chat.NewClassifier(),
		resolver,
		pendingRepo,
		inventory,
		safety,
		committer,
		recommender,
		chatMetrics,
		logger.With("component", "chat"),
	)
	chatHandler := chat.NewHandler(orchestrator)

	scanner := pharmacy.NewRefillScanner(orderRepo, alertRepo, cfg.RefillLeadTime, logger.With("component", "refill"))
	var reporter pharmacy.RefillReporter
	if cfg.TelegramBotToken != "" && cfg.PharmacistChatID != 0 {
		tgClient := telegram.NewClient(cfg.TelegramBotToken)
		reporter = report.NewService(tgClient, cfg.PharmacistChatID, logger.With("component", "report"))
	} else {
		logger.Warn("telegram not configured, refill reports disabled")
	}
	pharmacyHandler := pharmacy.NewHandler(scanner, reporter, logger)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for the chat frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if req.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"message": "Pharmacy assistant running"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		chat.RegisterRoutes(r, chatHandler)
	})
	r.Route("/admin", func(r chi.Router) {
		pharmacy.RegisterAdminRoutes(r, pharmacyHandler)
	})

	logger.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

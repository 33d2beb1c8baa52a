package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/handler"
	"github.com/pawnledger/ledger-engine/internal/repository"
	"github.com/pawnledger/ledger-engine/internal/service"
	"github.com/pawnledger/ledger-engine/pkg/response"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer db.Close()

	if err := repository.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	userRepo := repository.NewSystemUserRepository(db)

	// Initialize services
	ledgerService := service.NewLedgerService(loanRepo, paymentRepo, customerRepo, redisClient, cfg)
	customerService := service.NewCustomerService(customerRepo)
	reportService := service.NewReportService(reportRepo, customerRepo, loanRepo, paymentRepo, redisClient, cfg)
	authService := service.NewAuthService(userRepo, redisClient, cfg)

	if err := authService.EnsureSeed(context.Background()); err != nil {
		log.Fatalf("Failed to seed system credentials: %v", err)
	}

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	customerHandler := handler.NewCustomerHandler(customerService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	// Setup routes
	router := setupRoutes(ledgerHandler, customerHandler, reportHandler, authHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	ledgerHandler *handler.LedgerHandler,
	customerHandler *handler.CustomerHandler,
	reportHandler *handler.ReportHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware)
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/password", authHandler.ChangePassword).Methods("POST")

	api.HandleFunc("/customers", customerHandler.Register).Methods("POST")
	api.HandleFunc("/customers", customerHandler.List).Methods("GET")
	api.HandleFunc("/customers/import", customerHandler.Import).Methods("POST")
	api.HandleFunc("/customers/{customerId}", customerHandler.Get).Methods("GET")
	api.HandleFunc("/customers/{customerId}", customerHandler.Update).Methods("PUT")

	api.HandleFunc("/loans", ledgerHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", ledgerHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}", ledgerHandler.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/assets", ledgerHandler.UpdateAssets).Methods("PUT")
	api.HandleFunc("/loans/{loanId}/payments", ledgerHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}", ledgerHandler.EditPayment).Methods("PUT")

	api.HandleFunc("/reports/summary", reportHandler.Summary).Methods("GET")
	api.HandleFunc("/reports/customers/{customerId}/loans", reportHandler.CustomerLoans).Methods("GET")
	api.HandleFunc("/reports/customers/{customerId}/totals", reportHandler.CustomerTotals).Methods("GET")
	api.HandleFunc("/reports/customers/{customerId}/pdf", reportHandler.CustomerPDF).Methods("POST")

	return router
}

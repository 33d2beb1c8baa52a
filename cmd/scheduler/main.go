package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/repository"
	"github.com/pawnledger/ledger-engine/internal/service"
)

func main() {
	log.Println("Starting ledger scheduler...")

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer db.Close()

	if err := repository.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	reportRepo := repository.NewReportRepository(db)

	ledgerService := service.NewLedgerService(loanRepo, paymentRepo, customerRepo, redisClient, cfg)
	reportService := service.NewReportService(reportRepo, customerRepo, loanRepo, paymentRepo, redisClient, cfg)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	_, err = c.AddFunc(cfg.Scheduler.AuditSpec, func() {
		runAudit(ledgerService, reportService)
	})
	if err != nil {
		log.Fatalf("Error scheduling ledger audit job: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

// runAudit cross-checks every loan's paid total against its payment rows
// and refreshes the cached summary stats.
func runAudit(ledgerService *service.LedgerService, reportService *service.ReportService) {
	log.Println("Running ledger audit job...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	findings, err := ledgerService.Audit(ctx)
	if err != nil {
		log.Printf("Ledger audit failed: %v", err)
		return
	}

	if len(findings) == 0 {
		log.Println("Ledger audit clean")
	} else {
		for _, finding := range findings {
			log.Printf("Ledger audit: %s", finding)
		}
	}

	stats, err := reportService.RefreshSummary(ctx)
	if err != nil {
		log.Printf("Failed to refresh summary stats: %v", err)
		return
	}
	log.Printf("Summary refreshed: %d customers, %s due", stats.TotalCustomers, stats.TotalLoanDue.StringFixed(2))
}

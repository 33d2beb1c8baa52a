package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/repository"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

// ReportService serves read-only projections over the ledger. Everything
// is recomputed per call from loan_view and the base tables; only the
// ledger-wide summary is cached, and writes drop that cache.
type ReportService struct {
	ReportRepo   repository.ReportRepository
	CustomerRepo repository.CustomerRepository
	LoanRepo     repository.LoanRepository
	PaymentRepo  repository.PaymentRepository
	redis        *redis.Client
	config       *config.Config
}

func NewReportService(
	reportRepo repository.ReportRepository,
	customerRepo repository.CustomerRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	redis *redis.Client,
	config *config.Config,
) *ReportService {
	return &ReportService{
		ReportRepo:   reportRepo,
		CustomerRepo: customerRepo,
		LoanRepo:     loanRepo,
		PaymentRepo:  paymentRepo,
		redis:        redis,
		config:       config,
	}
}

// SummaryStats returns customer count and total amount due, optionally
// restricted to loans created in one year.
func (s *ReportService) SummaryStats(ctx context.Context, year int) (*domain.SummaryStats, error) {
	if year == 0 {
		if cached := s.cachedSummary(ctx); cached != nil {
			return cached, nil
		}
	}

	stats, err := s.ReportRepo.SummaryStats(ctx, year)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	if year == 0 {
		s.cacheSummary(ctx, stats)
	}

	return stats, nil
}

// RefreshSummary drops the cached summary and recomputes it from the
// database, so the new value reflects the ledger rather than whatever was
// cached before.
func (s *ReportService) RefreshSummary(ctx context.Context) (*domain.SummaryStats, error) {
	if s.redis != nil {
		if err := s.redis.Del(ctx, summaryCacheKey).Err(); err != nil {
			log.Printf("failed to drop summary cache: %v", err)
		}
	}
	return s.SummaryStats(ctx, 0)
}

// LoansForCustomer lists a customer's loans from loan_view, optionally
// filtered by year or date range and paginated.
func (s *ReportService) LoansForCustomer(ctx context.Context, customerID int64, filter domain.LoanFilter) ([]*domain.LoanSummary, error) {
	if _, err := s.CustomerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapCustomerNotFound(customerID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	summaries, err := s.ReportRepo.LoansForCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return summaries, nil
}

// CustomerTotals sums one customer's principals and outstanding dues.
func (s *ReportService) CustomerTotals(ctx context.Context, customerID int64) (*domain.CustomerTotals, error) {
	if _, err := s.CustomerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapCustomerNotFound(customerID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	totals, err := s.ReportRepo.CustomerTotals(ctx, customerID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return totals, nil
}

func (s *ReportService) cachedSummary(ctx context.Context) *domain.SummaryStats {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("failed to read summary cache: %v", err)
		}
		return nil
	}

	var stats domain.SummaryStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		log.Printf("failed to decode summary cache: %v", err)
		return nil
	}
	return &stats
}

func (s *ReportService) cacheSummary(ctx context.Context, stats *domain.SummaryStats) {
	if s.redis == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, summaryCacheKey, raw, s.config.Report.SummaryCacheTTL).Err(); err != nil {
		log.Printf("failed to write summary cache: %v", err)
	}
}

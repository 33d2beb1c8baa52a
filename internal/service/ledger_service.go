package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/repository"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
	"github.com/pawnledger/ledger-engine/pkg/utils"
)

// summaryCacheKey holds the ledger-wide summary stats; every write to the
// ledger drops it.
const summaryCacheKey = "summary_stats"

// LedgerService owns all mutations of the loan ledger. The settlement rule
// is fixed: the due amount is the principal only, a payment may never push
// the paid total past it, and a loan is Completed exactly when nothing is
// left due.
type LedgerService struct {
	LoanRepo     repository.LoanRepository
	PaymentRepo  repository.PaymentRepository
	CustomerRepo repository.CustomerRepository
	redis        *redis.Client
	config       *config.Config
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	redis *redis.Client,
	config *config.Config,
) *LedgerService {
	return &LedgerService{
		LoanRepo:     loanRepo,
		PaymentRepo:  paymentRepo,
		CustomerRepo: customerRepo,
		redis:        redis,
		config:       config,
	}
}

// CreateLoan registers a loan with its pledged assets as one atomic unit.
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.Asset, error) {
	if _, err := s.CustomerRepo.GetByID(ctx, request.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.WrapCustomerNotFound(request.CustomerID)
		}
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	if !request.Amount.IsPositive() {
		return nil, nil, apperrors.WrapInvalidLoanAmount(request.Amount.String())
	}
	if len(request.Assets) == 0 {
		return nil, nil, apperrors.WrapNoAssets()
	}

	assets := make([]*domain.Asset, 0, len(request.Assets))
	for _, input := range request.Assets {
		if !input.Weight.IsPositive() {
			return nil, nil, apperrors.WrapInvalidAssetWeight(input.Description)
		}
		assets = append(assets, &domain.Asset{
			Description: input.Description,
			Weight:      input.Weight,
		})
	}

	loanDate := time.Now()
	if request.LoanDate != "" {
		parsed, err := utils.ParseDate(request.LoanDate)
		if err != nil {
			return nil, nil, apperrors.WrapInvalidDate(request.LoanDate, err)
		}
		loanDate = parsed
	}

	loan := &domain.Loan{
		CustomerID: request.CustomerID,
		Amount:     request.Amount,
		AmountPaid: decimal.Zero,
		Status:     domain.LoanStatusPending,
		CreatedAt:  loanDate,
	}

	if request.BaseReference != "" {
		existing, err := s.LoanRepo.ListReferenceIDs(ctx, request.BaseReference+"-%")
		if err != nil {
			return nil, nil, apperrors.WrapDatabaseError(err)
		}
		referenceID := utils.NextReferenceID(request.BaseReference, loanDate, existing)
		loan.ReferenceID = &referenceID
	}

	if err := s.LoanRepo.CreateWithAssets(ctx, loan, assets); err != nil {
		if repository.IsUniqueViolation(err) && loan.ReferenceID != nil {
			return nil, nil, apperrors.WrapDuplicateReference(*loan.ReferenceID)
		}
		return nil, nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx)

	return loan, assets, nil
}

// RecordPayment applies a repayment to a loan. The payment row and the
// loan balance move in one transaction; an amount that would push the paid
// total past the principal is rejected with all rows unchanged.
func (s *LedgerService) RecordPayment(ctx context.Context, loanID int64, request *domain.RecordPaymentRequest) (*domain.LoanPayment, error) {
	if !request.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidPayment(request.Amount.String())
	}
	if request.Interest.IsNegative() {
		return nil, apperrors.WrapInvalidPayment(request.Interest.String())
	}

	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapLoanNotFound(loanID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	newPaid := loan.AmountPaid.Add(request.Amount)
	if newPaid.GreaterThan(loan.Amount) {
		return nil, apperrors.WrapPaymentExceedsDue(loan.AmountDue().StringFixed(2), request.Amount.StringFixed(2))
	}

	status := domain.LoanStatusPending
	if loan.Amount.Sub(newPaid).LessThanOrEqual(decimal.Zero) {
		status = domain.LoanStatusCompleted
	}

	paymentDate := time.Now()
	if request.PaymentDate != "" {
		if paymentDate, err = utils.ParseDate(request.PaymentDate); err != nil {
			return nil, apperrors.WrapInvalidDate(request.PaymentDate, err)
		}
	}

	payment := &domain.LoanPayment{
		ID:          uuid.NewString(),
		LoanID:      loanID,
		PaymentDate: paymentDate,
		Amount:      request.Amount,
		Interest:    request.Interest,
		AmountLeft:  loan.Amount.Sub(newPaid),
	}
	if request.AssetDescription != "" {
		payment.AssetDescription = &request.AssetDescription
	}

	if err := s.PaymentRepo.Settle(ctx, payment, loan.AmountPaid, newPaid, status); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx)

	return payment, nil
}

// EditPayment retroactively corrects a payment row. Unlike RecordPayment,
// the paid total is rebuilt by summing every payment of the loan, because
// the running total no longer reflects history once a row is rewritten.
func (s *LedgerService) EditPayment(ctx context.Context, paymentID string, request *domain.EditPaymentRequest) (*domain.LoanPayment, error) {
	if !request.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidPayment(request.Amount.String())
	}
	if request.Interest.IsNegative() {
		return nil, apperrors.WrapInvalidPayment(request.Interest.String())
	}

	payment, err := s.PaymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapPaymentNotFound(paymentID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	payment.Amount = request.Amount
	payment.Interest = request.Interest
	if request.AssetDescription != "" {
		payment.AssetDescription = &request.AssetDescription
	}
	if request.PaymentDate != "" {
		parsed, err := utils.ParseDate(request.PaymentDate)
		if err != nil {
			return nil, apperrors.WrapInvalidDate(request.PaymentDate, err)
		}
		payment.PaymentDate = parsed
	}

	if err := s.PaymentRepo.UpdateAndRecompute(ctx, payment); err != nil {
		var bizErr *apperrors.BusinessError
		if errors.As(err, &bizErr) {
			return nil, err
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx)

	return payment, nil
}

// DeleteLoan removes a loan with its assets and payments. Loans with
// recorded payments can only be deleted once fully settled.
func (s *LedgerService) DeleteLoan(ctx context.Context, loanID int64) error {
	if err := s.LoanRepo.Delete(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.WrapLoanNotFound(loanID)
		}
		var bizErr *apperrors.BusinessError
		if errors.As(err, &bizErr) {
			return err
		}
		return apperrors.WrapDatabaseError(err)
	}

	s.invalidateSummary(ctx)

	return nil
}

// UpdateLoanAssets replaces the pledged assets of a loan.
func (s *LedgerService) UpdateLoanAssets(ctx context.Context, loanID int64, request *domain.UpdateAssetsRequest) ([]*domain.Asset, error) {
	if _, err := s.LoanRepo.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapLoanNotFound(loanID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if len(request.Assets) == 0 {
		return nil, apperrors.WrapNoAssets()
	}

	assets := make([]*domain.Asset, 0, len(request.Assets))
	for _, input := range request.Assets {
		if !input.Weight.IsPositive() {
			return nil, apperrors.WrapInvalidAssetWeight(input.Description)
		}
		assets = append(assets, &domain.Asset{
			Description: input.Description,
			Weight:      input.Weight,
		})
	}

	if err := s.LoanRepo.ReplaceAssets(ctx, loanID, assets); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return assets, nil
}

// GetLoanDetail returns a loan with its assets and full payment history.
func (s *LedgerService) GetLoanDetail(ctx context.Context, loanID int64) (*domain.LoanDetailResponse, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapLoanNotFound(loanID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	assets, err := s.LoanRepo.GetAssets(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return &domain.LoanDetailResponse{
		Loan:     loan,
		Assets:   assets,
		Payments: payments,
	}, nil
}

// Audit sweeps the ledger and reports every loan whose stored paid total
// disagrees with the sum of its payment rows, or whose balance violates
// 0 <= paid <= principal.
func (s *LedgerService) Audit(ctx context.Context) ([]string, error) {
	ids, err := s.LoanRepo.ListIDs(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	var findings []string
	for _, id := range ids {
		loan, err := s.LoanRepo.GetByID(ctx, id)
		if err != nil {
			return findings, apperrors.WrapDatabaseError(err)
		}

		totalPaid, err := s.PaymentRepo.GetTotalPaid(ctx, id)
		if err != nil {
			return findings, apperrors.WrapDatabaseError(err)
		}

		if !totalPaid.Equal(loan.AmountPaid) {
			findings = append(findings, fmt.Sprintf("loan %d: paid total %s != payment sum %s", id, loan.AmountPaid.StringFixed(2), totalPaid.StringFixed(2)))
		}
		if loan.AmountPaid.IsNegative() || loan.AmountPaid.GreaterThan(loan.Amount) {
			findings = append(findings, fmt.Sprintf("loan %d: paid total %s outside [0, %s]", id, loan.AmountPaid.StringFixed(2), loan.Amount.StringFixed(2)))
		}
		settled := loan.Settled()
		if settled && loan.Status != domain.LoanStatusCompleted || !settled && loan.Status != domain.LoanStatusPending {
			findings = append(findings, fmt.Sprintf("loan %d: status %s disagrees with due amount %s", id, loan.Status, loan.AmountDue().StringFixed(2)))
		}
	}

	return findings, nil
}

func (s *LedgerService) invalidateSummary(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCacheKey).Err(); err != nil {
		log.Printf("failed to drop summary cache: %v", err)
	}
}

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/domain"
	ledgerService "github.com/pawnledger/ledger-engine/internal/service"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
	"github.com/pawnledger/ledger-engine/tests/mocks"
)

func newLedgerService(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, customerRepo *mocks.MockCustomerRepository) *ledgerService.LedgerService {
	return ledgerService.NewLedgerService(loanRepo, paymentRepo, customerRepo, nil, &config.Config{})
}

func TestCreateLoan(t *testing.T) {
	tests := []struct {
		name           string
		request        *domain.CreateLoanRequest
		setupMocks     func(*mocks.MockLoanRepository, *mocks.MockCustomerRepository)
		expectedError  bool
		errorCode      string
		validateResult func(*testing.T, *domain.Loan, []*domain.Asset)
	}{
		{
			name: "Success - Create loan with generated reference",
			request: &domain.CreateLoanRequest{
				CustomerID:    1,
				Amount:        decimal.NewFromInt(10000),
				LoanDate:      "2025-03-10",
				BaseReference: "xyz",
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.NewFromFloat(12.5)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1, Name: "John Smith"}, nil)
				loanRepo.On("ListReferenceIDs", mock.Anything, "xyz-%").Return([]string{"xyz-2501", "xyz-2502"}, nil)
				loanRepo.On("CreateWithAssets", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.ReferenceID != nil && *loan.ReferenceID == "xyz-2503"
				}), mock.Anything).Return(nil)
			},
			expectedError: false,
			validateResult: func(t *testing.T, loan *domain.Loan, assets []*domain.Asset) {
				assert.Equal(t, domain.LoanStatusPending, loan.Status)
				assert.True(t, loan.AmountPaid.IsZero())
				assert.True(t, loan.AmountDue().Equal(decimal.NewFromInt(10000)))
				assert.Len(t, assets, 1)
			},
		},
		{
			name: "Success - Sequence restarts in a new year",
			request: &domain.CreateLoanRequest{
				CustomerID:    1,
				Amount:        decimal.NewFromInt(5000),
				LoanDate:      "2026-01-02",
				BaseReference: "xyz",
				Assets: []domain.AssetInput{
					{Description: "gold ring", Weight: decimal.NewFromFloat(3.2)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
				loanRepo.On("ListReferenceIDs", mock.Anything, "xyz-%").Return([]string{"xyz-2501", "xyz-2599"}, nil)
				loanRepo.On("CreateWithAssets", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.ReferenceID != nil && *loan.ReferenceID == "xyz-2601"
				}), mock.Anything).Return(nil)
			},
			expectedError: false,
		},
		{
			name: "Failure - Customer not found",
			request: &domain.CreateLoanRequest{
				CustomerID: 42,
				Amount:     decimal.NewFromInt(10000),
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.NewFromFloat(12.5)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeCustomerNotFound,
		},
		{
			name: "Failure - Zero loan amount",
			request: &domain.CreateLoanRequest{
				CustomerID: 1,
				Amount:     decimal.Zero,
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.NewFromFloat(12.5)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidLoanAmount,
		},
		{
			name: "Failure - No pledged assets",
			request: &domain.CreateLoanRequest{
				CustomerID: 1,
				Amount:     decimal.NewFromInt(10000),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeNoAssets,
		},
		{
			name: "Failure - Non-positive asset weight",
			request: &domain.CreateLoanRequest{
				CustomerID: 1,
				Amount:     decimal.NewFromInt(10000),
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.Zero},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidAssetWeight,
		},
		{
			name: "Failure - Unparseable loan date",
			request: &domain.CreateLoanRequest{
				CustomerID: 1,
				Amount:     decimal.NewFromInt(10000),
				LoanDate:   "10/03/2025",
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.NewFromFloat(12.5)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidDate,
		},
		{
			name: "Failure - Duplicate reference",
			request: &domain.CreateLoanRequest{
				CustomerID:    1,
				Amount:        decimal.NewFromInt(10000),
				BaseReference: "xyz",
				Assets: []domain.AssetInput{
					{Description: "gold chain", Weight: decimal.NewFromFloat(12.5)},
				},
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, customerRepo *mocks.MockCustomerRepository) {
				customerRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Customer{ID: 1}, nil)
				loanRepo.On("ListReferenceIDs", mock.Anything, "xyz-%").Return([]string{}, nil)
				loanRepo.On("CreateWithAssets", mock.Anything, mock.Anything, mock.Anything).
					Return(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeDuplicateReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLoanRepo := &mocks.MockLoanRepository{}
			mockPaymentRepo := &mocks.MockPaymentRepository{}
			mockCustomerRepo := &mocks.MockCustomerRepository{}

			tt.setupMocks(mockLoanRepo, mockCustomerRepo)

			service := newLedgerService(mockLoanRepo, mockPaymentRepo, mockCustomerRepo)
			loan, assets, err := service.CreateLoan(context.Background(), tt.request)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, loan)
				if tt.errorCode != "" {
					var bizErr *apperrors.BusinessError
					assert.True(t, errors.As(err, &bizErr))
					assert.Equal(t, tt.errorCode, bizErr.Code)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, loan)
				if tt.validateResult != nil {
					tt.validateResult(t, loan, assets)
				}
			}

			mockLoanRepo.AssertExpectations(t)
			mockCustomerRepo.AssertExpectations(t)
		})
	}
}

func TestRecordPayment(t *testing.T) {
	principal := decimal.NewFromInt(10000)

	tests := []struct {
		name           string
		loan           *domain.Loan
		request        *domain.RecordPaymentRequest
		setupMocks     func(*mocks.MockLoanRepository, *mocks.MockPaymentRepository, *domain.Loan)
		expectedError  bool
		errorCode      string
		validateResult func(*testing.T, *domain.LoanPayment)
	}{
		{
			name: "Success - Partial payment keeps loan pending",
			loan: &domain.Loan{ID: 7, Amount: principal, AmountPaid: decimal.Zero, Status: domain.LoanStatusPending},
			request: &domain.RecordPaymentRequest{
				Amount:   decimal.NewFromInt(4000),
				Interest: decimal.NewFromInt(250),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(loan, nil)
				paymentRepo.On("Settle", mock.Anything, mock.MatchedBy(func(p *domain.LoanPayment) bool {
					return p.AmountLeft.Equal(decimal.NewFromInt(6000))
				}), decimal.Zero, decimal.NewFromInt(4000), domain.LoanStatusPending).Return(nil)
			},
			expectedError: false,
			validateResult: func(t *testing.T, payment *domain.LoanPayment) {
				assert.NotEmpty(t, payment.ID)
				assert.True(t, payment.AmountLeft.Equal(decimal.NewFromInt(6000)))
			},
		},
		{
			name: "Success - Final payment completes the loan",
			loan: &domain.Loan{ID: 7, Amount: principal, AmountPaid: decimal.NewFromInt(4000), Status: domain.LoanStatusPending},
			request: &domain.RecordPaymentRequest{
				Amount: decimal.NewFromInt(6000),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(loan, nil)
				paymentRepo.On("Settle", mock.Anything, mock.MatchedBy(func(p *domain.LoanPayment) bool {
					return p.AmountLeft.IsZero()
				}), decimal.NewFromInt(4000), decimal.NewFromInt(10000), domain.LoanStatusCompleted).Return(nil)
			},
			expectedError: false,
			validateResult: func(t *testing.T, payment *domain.LoanPayment) {
				assert.True(t, payment.AmountLeft.IsZero())
			},
		},
		{
			name: "Failure - Payment on settled loan exceeds due",
			loan: &domain.Loan{ID: 7, Amount: principal, AmountPaid: principal, Status: domain.LoanStatusCompleted},
			request: &domain.RecordPaymentRequest{
				Amount: decimal.NewFromInt(1),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(loan, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodePaymentExceedsDue,
		},
		{
			name: "Failure - Overpayment rejected",
			loan: &domain.Loan{ID: 7, Amount: principal, AmountPaid: decimal.NewFromInt(4000), Status: domain.LoanStatusPending},
			request: &domain.RecordPaymentRequest{
				Amount: decimal.NewFromInt(6001),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(loan, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodePaymentExceedsDue,
		},
		{
			name: "Failure - Non-positive payment amount",
			loan: &domain.Loan{ID: 7, Amount: principal},
			request: &domain.RecordPaymentRequest{
				Amount: decimal.Zero,
			},
			setupMocks:    func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidPayment,
		},
		{
			name: "Failure - Negative interest",
			loan: &domain.Loan{ID: 7, Amount: principal},
			request: &domain.RecordPaymentRequest{
				Amount:   decimal.NewFromInt(100),
				Interest: decimal.NewFromInt(-1),
			},
			setupMocks:    func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidPayment,
		},
		{
			name: "Failure - Unparseable payment date",
			loan: &domain.Loan{ID: 7, Amount: principal, AmountPaid: decimal.Zero, Status: domain.LoanStatusPending},
			request: &domain.RecordPaymentRequest{
				Amount:      decimal.NewFromInt(4000),
				PaymentDate: "31/12/2025",
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(loan, nil)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeInvalidDate,
		},
		{
			name: "Failure - Loan not found",
			loan: nil,
			request: &domain.RecordPaymentRequest{
				Amount: decimal.NewFromInt(100),
			},
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, loan *domain.Loan) {
				loanRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			errorCode:     apperrors.ErrCodeLoanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLoanRepo := &mocks.MockLoanRepository{}
			mockPaymentRepo := &mocks.MockPaymentRepository{}
			mockCustomerRepo := &mocks.MockCustomerRepository{}

			tt.setupMocks(mockLoanRepo, mockPaymentRepo, tt.loan)

			service := newLedgerService(mockLoanRepo, mockPaymentRepo, mockCustomerRepo)
			payment, err := service.RecordPayment(context.Background(), 7, tt.request)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, payment)
				if tt.errorCode != "" {
					var bizErr *apperrors.BusinessError
					assert.True(t, errors.As(err, &bizErr))
					assert.Equal(t, tt.errorCode, bizErr.Code)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, payment)
				if tt.validateResult != nil {
					tt.validateResult(t, payment)
				}
			}

			mockLoanRepo.AssertExpectations(t)
			mockPaymentRepo.AssertExpectations(t)
		})
	}
}

func TestEditPayment(t *testing.T) {
	t.Run("Success - Correction recomputes via repository", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockPaymentRepo := &mocks.MockPaymentRepository{}
		mockCustomerRepo := &mocks.MockCustomerRepository{}

		existing := &domain.LoanPayment{
			ID:       "pay-1",
			LoanID:   7,
			Amount:   decimal.NewFromInt(4000),
			Interest: decimal.NewFromInt(250),
		}
		mockPaymentRepo.On("GetByID", mock.Anything, "pay-1").Return(existing, nil)
		mockPaymentRepo.On("UpdateAndRecompute", mock.Anything, mock.MatchedBy(func(p *domain.LoanPayment) bool {
			return p.Amount.Equal(decimal.NewFromInt(3500)) && p.Interest.Equal(decimal.NewFromInt(300))
		})).Return(nil)

		service := newLedgerService(mockLoanRepo, mockPaymentRepo, mockCustomerRepo)
		payment, err := service.EditPayment(context.Background(), "pay-1", &domain.EditPaymentRequest{
			Amount:   decimal.NewFromInt(3500),
			Interest: decimal.NewFromInt(300),
		})

		assert.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(3500)))
		mockPaymentRepo.AssertExpectations(t)
	})

	t.Run("Failure - Corrected total exceeds principal", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockPaymentRepo := &mocks.MockPaymentRepository{}
		mockCustomerRepo := &mocks.MockCustomerRepository{}

		existing := &domain.LoanPayment{ID: "pay-1", LoanID: 7, Amount: decimal.NewFromInt(4000)}
		mockPaymentRepo.On("GetByID", mock.Anything, "pay-1").Return(existing, nil)
		mockPaymentRepo.On("UpdateAndRecompute", mock.Anything, mock.Anything).
			Return(apperrors.WrapPaymentExceedsDue("10000.00", "12000.00"))

		service := newLedgerService(mockLoanRepo, mockPaymentRepo, mockCustomerRepo)
		_, err := service.EditPayment(context.Background(), "pay-1", &domain.EditPaymentRequest{
			Amount: decimal.NewFromInt(12000),
		})

		var bizErr *apperrors.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, apperrors.ErrCodePaymentExceedsDue, bizErr.Code)
	})

	t.Run("Failure - Payment not found", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockPaymentRepo := &mocks.MockPaymentRepository{}
		mockCustomerRepo := &mocks.MockCustomerRepository{}

		mockPaymentRepo.On("GetByID", mock.Anything, "missing").Return(nil, sql.ErrNoRows)

		service := newLedgerService(mockLoanRepo, mockPaymentRepo, mockCustomerRepo)
		_, err := service.EditPayment(context.Background(), "missing", &domain.EditPaymentRequest{
			Amount: decimal.NewFromInt(100),
		})

		var bizErr *apperrors.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, apperrors.ErrCodePaymentNotFound, bizErr.Code)
	})
}

func TestDeleteLoan(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockLoanRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

		service := newLedgerService(mockLoanRepo, &mocks.MockPaymentRepository{}, &mocks.MockCustomerRepository{})
		assert.NoError(t, service.DeleteLoan(context.Background(), 7))
		mockLoanRepo.AssertExpectations(t)
	})

	t.Run("Failure - Outstanding balance with payments", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockLoanRepo.On("Delete", mock.Anything, int64(7)).Return(apperrors.WrapLoanNotSettled(7))

		service := newLedgerService(mockLoanRepo, &mocks.MockPaymentRepository{}, &mocks.MockCustomerRepository{})
		err := service.DeleteLoan(context.Background(), 7)

		var bizErr *apperrors.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, apperrors.ErrCodeLoanNotSettled, bizErr.Code)
	})

	t.Run("Failure - Loan not found", func(t *testing.T) {
		mockLoanRepo := &mocks.MockLoanRepository{}
		mockLoanRepo.On("Delete", mock.Anything, int64(7)).Return(sql.ErrNoRows)

		service := newLedgerService(mockLoanRepo, &mocks.MockPaymentRepository{}, &mocks.MockCustomerRepository{})
		err := service.DeleteLoan(context.Background(), 7)

		var bizErr *apperrors.BusinessError
		assert.True(t, errors.As(err, &bizErr))
		assert.Equal(t, apperrors.ErrCodeLoanNotFound, bizErr.Code)
	})
}

func TestAudit(t *testing.T) {
	mockLoanRepo := &mocks.MockLoanRepository{}
	mockPaymentRepo := &mocks.MockPaymentRepository{}

	mockLoanRepo.On("ListIDs", mock.Anything).Return([]int64{1, 2, 3}, nil)

	// Consistent loan
	mockLoanRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Loan{
		ID: 1, Amount: decimal.NewFromInt(10000), AmountPaid: decimal.NewFromInt(4000), Status: domain.LoanStatusPending,
	}, nil)
	mockPaymentRepo.On("GetTotalPaid", mock.Anything, int64(1)).Return(decimal.NewFromInt(4000), nil)

	// Paid total drifted from payment sum
	mockLoanRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.Loan{
		ID: 2, Amount: decimal.NewFromInt(10000), AmountPaid: decimal.NewFromInt(5000), Status: domain.LoanStatusPending,
	}, nil)
	mockPaymentRepo.On("GetTotalPaid", mock.Anything, int64(2)).Return(decimal.NewFromInt(4000), nil)

	// Status disagrees with the balance
	mockLoanRepo.On("GetByID", mock.Anything, int64(3)).Return(&domain.Loan{
		ID: 3, Amount: decimal.NewFromInt(10000), AmountPaid: decimal.NewFromInt(10000), Status: domain.LoanStatusPending,
	}, nil)
	mockPaymentRepo.On("GetTotalPaid", mock.Anything, int64(3)).Return(decimal.NewFromInt(10000), nil)

	service := newLedgerService(mockLoanRepo, mockPaymentRepo, &mocks.MockCustomerRepository{})
	findings, err := service.Audit(context.Background())

	assert.NoError(t, err)
	assert.Len(t, findings, 2)
	assert.Contains(t, findings[0], "loan 2")
	assert.Contains(t, findings[1], "loan 3")
}

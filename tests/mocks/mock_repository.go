package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/pawnledger/ledger-engine/internal/domain"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, customerID int64) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, year int) ([]*domain.Customer, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CreateBatch(ctx context.Context, customers []*domain.Customer) error {
	args := m.Called(ctx, customers)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) CreateWithAssets(ctx context.Context, loan *domain.Loan, assets []*domain.Asset) error {
	args := m.Called(ctx, loan, assets)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID int64) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListReferenceIDs(ctx context.Context, pattern string) ([]string, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLoanRepository) GetAssets(ctx context.Context, loanID int64) ([]*domain.Asset, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Asset), args.Error(1)
}

func (m *MockLoanRepository) ReplaceAssets(ctx context.Context, loanID int64, assets []*domain.Asset) error {
	args := m.Called(ctx, loanID, assets)
	return args.Error(0)
}

func (m *MockLoanRepository) Delete(ctx context.Context, loanID int64) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

func (m *MockLoanRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Settle(ctx context.Context, payment *domain.LoanPayment, expectedPaid, newPaid decimal.Decimal, status string) error {
	args := m.Called(ctx, payment, expectedPaid, newPaid, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateAndRecompute(ctx context.Context, payment *domain.LoanPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, paymentID string) (*domain.LoanPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanPayment), args.Error(1)
}

func (m *MockPaymentRepository) GetByLoanID(ctx context.Context, loanID int64) ([]*domain.LoanPayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPayment), args.Error(1)
}

func (m *MockPaymentRepository) GetTotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) LoansForCustomer(ctx context.Context, customerID int64, filter domain.LoanFilter) ([]*domain.LoanSummary, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanSummary), args.Error(1)
}

func (m *MockReportRepository) SummaryStats(ctx context.Context, year int) (*domain.SummaryStats, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SummaryStats), args.Error(1)
}

func (m *MockReportRepository) CustomerTotals(ctx context.Context, customerID int64) (*domain.CustomerTotals, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerTotals), args.Error(1)
}

type MockSystemUserRepository struct {
	mock.Mock
}

func (m *MockSystemUserRepository) GetPasswordHash(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSystemUserRepository) SetPasswordHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func (m *MockSystemUserRepository) Seed(ctx context.Context, hash string, seededAt time.Time) error {
	args := m.Called(ctx, hash, seededAt)
	return args.Error(0)
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawnledger/ledger-engine/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create inserts a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by its ID
	GetByID(ctx context.Context, customerID int64) (*domain.Customer, error)

	// Update overwrites a customer's mutable fields
	Update(ctx context.Context, customer *domain.Customer) error

	// List retrieves customers ordered by name; year > 0 restricts the
	// result to customers holding at least one loan created in that year
	List(ctx context.Context, year int) ([]*domain.Customer, error)

	// CreateBatch inserts customers in a single transaction (all-or-nothing)
	CreateBatch(ctx context.Context, customers []*domain.Customer) error
}

// LoanRepository defines the interface for loan and asset data operations
type LoanRepository interface {
	// CreateWithAssets inserts a loan and its pledged assets atomically
	CreateWithAssets(ctx context.Context, loan *domain.Loan, assets []*domain.Asset) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, loanID int64) (*domain.Loan, error)

	// ListReferenceIDs returns reference IDs matching a LIKE pattern
	ListReferenceIDs(ctx context.Context, pattern string) ([]string, error)

	// GetAssets retrieves the assets pledged against a loan
	GetAssets(ctx context.Context, loanID int64) ([]*domain.Asset, error)

	// ReplaceAssets swaps a loan's asset rows atomically
	ReplaceAssets(ctx context.Context, loanID int64, assets []*domain.Asset) error

	// Delete removes a loan together with its assets and payments.
	// Deletion is refused while the loan has payments and an outstanding
	// balance.
	Delete(ctx context.Context, loanID int64) error

	// ListIDs returns every loan ID, for audit sweeps
	ListIDs(ctx context.Context) ([]int64, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Settle inserts a payment row and applies the new paid total and
	// status to the owning loan in one transaction. expectedPaid guards
	// against concurrent settlement of the same loan.
	Settle(ctx context.Context, payment *domain.LoanPayment, expectedPaid, newPaid decimal.Decimal, status string) error

	// UpdateAndRecompute overwrites a payment row, then recomputes the
	// owning loan's paid total as SUM(payment_amount) and its status,
	// all in one transaction. Fails if the new total exceeds the
	// principal.
	UpdateAndRecompute(ctx context.Context, payment *domain.LoanPayment) error

	// GetByID retrieves a payment by its ID
	GetByID(ctx context.Context, paymentID string) (*domain.LoanPayment, error)

	// GetByLoanID retrieves all payments for a loan ordered by date
	GetByLoanID(ctx context.Context, loanID int64) ([]*domain.LoanPayment, error)

	// GetTotalPaid sums payment_amount over a loan's payments
	GetTotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error)
}

// ReportRepository defines read-only projections over the ledger
type ReportRepository interface {
	// LoansForCustomer lists loan_view rows for one customer
	LoansForCustomer(ctx context.Context, customerID int64, filter domain.LoanFilter) ([]*domain.LoanSummary, error)

	// SummaryStats aggregates customer count and total due; year > 0
	// restricts to loans created in that year
	SummaryStats(ctx context.Context, year int) (*domain.SummaryStats, error)

	// CustomerTotals sums one customer's principals and dues
	CustomerTotals(ctx context.Context, customerID int64) (*domain.CustomerTotals, error)
}

// SystemUserRepository stores the single shared login secret
type SystemUserRepository interface {
	// GetPasswordHash returns the stored hash
	GetPasswordHash(ctx context.Context) (string, error)

	// SetPasswordHash overwrites the stored hash
	SetPasswordHash(ctx context.Context, hash string) error

	// Seed inserts the hash if no row exists yet
	Seed(ctx context.Context, hash string, seededAt time.Time) error
}
